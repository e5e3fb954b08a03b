package queries

import (
	"context"
	"strings"

	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
	"quorum/contexts/group-decision/room-engine/ports"
)

// ResultsUseCase serves the read side: room listings, room detail, and the
// vote tally once voting has closed. All reads are pure; nothing here
// mutates room state.
type ResultsUseCase struct {
	Rooms   ports.RoomRepository
	Options ports.OptionRepository
	Votes   ports.VoteRepository
}

// RoomResults is the closed-room tally plus any recorded resolution.
type RoomResults struct {
	Ranking          []entities.OptionTally
	FinalOption      string
	TiebreakerMethod string
}

// RoomDetail is a room with its submitted options, vote counts excluded.
type RoomDetail struct {
	Room    entities.Room
	Options []entities.Option
}

// Results returns the descending tally for a room. Callable by any
// participant once the room is closed or resolved.
func (uc ResultsUseCase) Results(ctx context.Context, roomID string, userID string) (RoomResults, error) {
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return RoomResults{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return RoomResults{}, err
	}
	if !room.HasParticipant(userID) {
		return RoomResults{}, domainerrors.ErrNotAMember
	}
	if !room.State.AcceptsResults() {
		return RoomResults{}, domainerrors.ErrInvalidState
	}

	counts, err := uc.Votes.CountVotesByOption(ctx, room.RoomID)
	if err != nil {
		return RoomResults{}, err
	}
	options, err := uc.Options.ListOptionsByRoom(ctx, room.RoomID)
	if err != nil {
		return RoomResults{}, err
	}

	byOption := make(map[string]int, len(counts))
	for _, count := range counts {
		byOption[count.OptionID] = count.Votes
	}
	texts := make(map[string]string, len(options))
	for _, option := range options {
		texts[option.OptionID] = option.Text
	}

	return RoomResults{
		Ranking:          entities.RankOptions(byOption, texts),
		FinalOption:      room.FinalOption,
		TiebreakerMethod: room.TiebreakerMethod,
	}, nil
}

// Detail returns the room and its options for any participant, in any state.
func (uc ResultsUseCase) Detail(ctx context.Context, roomID string, userID string) (RoomDetail, error) {
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return RoomDetail{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return RoomDetail{}, err
	}
	if !room.HasParticipant(userID) {
		return RoomDetail{}, domainerrors.ErrNotAMember
	}
	options, err := uc.Options.ListOptionsByRoom(ctx, room.RoomID)
	if err != nil {
		return RoomDetail{}, err
	}
	return RoomDetail{Room: room, Options: options}, nil
}

// RoomsByParticipant lists the caller's rooms, newest first.
func (uc ResultsUseCase) RoomsByParticipant(ctx context.Context, userID string) ([]entities.Room, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return uc.Rooms.ListRoomsByParticipant(ctx, userID)
}
