package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/group-decision/room-engine/application/commands"
	"quorum/contexts/group-decision/room-engine/application/queries"
	"quorum/contexts/group-decision/room-engine/domain/entities"
	httptransport "quorum/contexts/group-decision/room-engine/transport/http"
)

type Handler struct {
	Rooms   commands.RoomUseCase
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateRoomHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateRoomRequest,
) (httptransport.CreateRoomResponse, error) {
	room, err := h.Rooms.CreateRoom(ctx, commands.CreateRoomCommand{
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		return httptransport.CreateRoomResponse{}, err
	}
	return httptransport.CreateRoomResponse{
		RoomID:     room.RoomID,
		Code:       room.Code,
		InvitePath: "/join/" + room.Code,
	}, nil
}

func (h Handler) JoinRoomHandler(
	ctx context.Context,
	userID string,
	req httptransport.JoinRoomRequest,
) (httptransport.RoomResponse, error) {
	room, err := h.Rooms.JoinRoom(ctx, userID, req.Code)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return mapRoom(room), nil
}

func (h Handler) ListRoomsHandler(ctx context.Context, userID string) (httptransport.RoomListResponse, error) {
	rooms, err := h.Results.RoomsByParticipant(ctx, userID)
	if err != nil {
		return httptransport.RoomListResponse{}, err
	}
	items := make([]httptransport.RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, mapRoom(room))
	}
	return httptransport.RoomListResponse{Items: items}, nil
}

func (h Handler) GetRoomHandler(ctx context.Context, roomID string, userID string) (httptransport.RoomDetailResponse, error) {
	detail, err := h.Results.Detail(ctx, roomID, userID)
	if err != nil {
		return httptransport.RoomDetailResponse{}, err
	}
	options := make([]httptransport.OptionResponse, 0, len(detail.Options))
	for _, option := range detail.Options {
		options = append(options, mapOption(option))
	}
	return httptransport.RoomDetailResponse{
		Room:    mapRoom(detail.Room),
		Options: options,
	}, nil
}

func (h Handler) SubmitOptionHandler(
	ctx context.Context,
	roomID string,
	userID string,
	req httptransport.SubmitOptionRequest,
) (httptransport.OptionResponse, error) {
	option, err := h.Rooms.SubmitOption(ctx, commands.SubmitOptionCommand{
		RoomID: roomID,
		UserID: userID,
		Text:   req.Text,
	})
	if err != nil {
		return httptransport.OptionResponse{}, err
	}
	return mapOption(option), nil
}

func (h Handler) OpenVotingHandler(ctx context.Context, roomID string, userID string) (httptransport.RoomResponse, error) {
	room, err := h.Rooms.OpenVoting(ctx, roomID, userID)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return mapRoom(room), nil
}

func (h Handler) CloseVotingHandler(ctx context.Context, roomID string, userID string) (httptransport.RoomResponse, error) {
	room, err := h.Rooms.CloseVoting(ctx, roomID, userID)
	if err != nil {
		return httptransport.RoomResponse{}, err
	}
	return mapRoom(room), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	roomID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Rooms.CastVote(ctx, commands.CastVoteCommand{
		RoomID:   roomID,
		UserID:   userID,
		OptionID: req.OptionID,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:   vote.VoteID,
		RoomID:   vote.RoomID,
		OptionID: vote.OptionID,
		VoterID:  vote.VoterID,
	}, nil
}

func (h Handler) ResultsHandler(ctx context.Context, roomID string, userID string) (httptransport.ResultsResponse, error) {
	results, err := h.Results.Results(ctx, roomID, userID)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	items := make([]httptransport.TallyItem, 0, len(results.Ranking))
	for _, item := range results.Ranking {
		items = append(items, mapTally(item))
	}
	return httptransport.ResultsResponse{
		Results:          items,
		FinalOption:      results.FinalOption,
		TiebreakerMethod: results.TiebreakerMethod,
	}, nil
}

func (h Handler) TiebreakerHandler(
	ctx context.Context,
	roomID string,
	userID string,
	req httptransport.TiebreakerRequest,
) (httptransport.TiebreakerResponse, error) {
	result, err := h.Rooms.RunTiebreaker(ctx, commands.RunTiebreakerCommand{
		RoomID: roomID,
		UserID: userID,
		Method: req.Method,
	})
	if err != nil {
		return httptransport.TiebreakerResponse{}, err
	}
	return httptransport.TiebreakerResponse{
		Winner: mapTally(result.Winner),
		Method: result.Method,
	}, nil
}

func (h Handler) DeleteRoomHandler(ctx context.Context, roomID string, userID string) error {
	return h.Rooms.DeleteRoom(ctx, roomID, userID)
}

func mapRoom(room entities.Room) httptransport.RoomResponse {
	return httptransport.RoomResponse{
		RoomID:           room.RoomID,
		Code:             room.Code,
		Title:            room.Title,
		Description:      room.Description,
		Capacity:         room.Capacity,
		CreatorID:        room.CreatorID,
		Participants:     room.Participants,
		State:            string(room.State),
		FinalOption:      room.FinalOption,
		TiebreakerMethod: room.TiebreakerMethod,
		CreatedAt:        room.CreatedAt,
	}
}

func mapOption(option entities.Option) httptransport.OptionResponse {
	return httptransport.OptionResponse{
		OptionID:    option.OptionID,
		RoomID:      option.RoomID,
		Text:        option.Text,
		SubmittedBy: option.SubmittedBy,
		CreatedAt:   option.CreatedAt,
	}
}

func mapTally(item entities.OptionTally) httptransport.TallyItem {
	return httptransport.TallyItem{
		OptionID: item.OptionID,
		Text:     item.Text,
		Votes:    item.Votes,
	}
}
