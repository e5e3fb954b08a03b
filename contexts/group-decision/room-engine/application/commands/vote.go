package commands

import (
	"context"
	"strings"

	application "quorum/contexts/group-decision/room-engine/application"
	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
)

// SubmitOptionCommand proposes an option inside a room.
type SubmitOptionCommand struct {
	RoomID string
	UserID string
	Text   string
}

// CastVoteCommand casts the caller's single vote in a room.
type CastVoteCommand struct {
	RoomID   string
	UserID   string
	OptionID string
}

// SubmitOption records a proposal. Legal only while the room is collecting;
// any participant may submit, with no limit per participant.
func (uc RoomUseCase) SubmitOption(ctx context.Context, cmd SubmitOptionCommand) (entities.Option, error) {
	logger := application.ResolveLogger(uc.Logger)
	roomID := strings.TrimSpace(cmd.RoomID)
	userID := strings.TrimSpace(cmd.UserID)
	text := strings.TrimSpace(cmd.Text)
	if roomID == "" || userID == "" || text == "" {
		logger.Warn("option submit validation failed",
			"event", "option_submit_validation_failed",
			"module", "group-decision/room-engine",
			"layer", "application",
			"room_id", roomID,
			"user_id", userID,
		)
		return entities.Option{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return entities.Option{}, err
	}
	if !room.HasParticipant(userID) {
		return entities.Option{}, domainerrors.ErrNotAMember
	}
	if room.State != entities.RoomStateCollecting {
		return entities.Option{}, domainerrors.ErrInvalidState
	}

	optionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Option{}, err
	}
	option := entities.Option{
		OptionID:    optionID,
		RoomID:      room.RoomID,
		Text:        text,
		SubmittedBy: userID,
		CreatedAt:   uc.now(),
	}
	if err := uc.Options.InsertOption(ctx, option); err != nil {
		return entities.Option{}, err
	}
	logger.Info("option submitted",
		"event", "option_submitted",
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"option_id", option.OptionID,
		"submitted_by", userID,
	)
	return option, nil
}

// CastVote records the caller's vote. Legal only while voting is open, one
// vote per participant per room, and the option must belong to the room.
// Voting for one's own option is allowed.
func (uc RoomUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.Vote, error) {
	logger := application.ResolveLogger(uc.Logger)
	roomID := strings.TrimSpace(cmd.RoomID)
	userID := strings.TrimSpace(cmd.UserID)
	optionID := strings.TrimSpace(cmd.OptionID)
	if roomID == "" || userID == "" || optionID == "" {
		logger.Warn("vote cast validation failed",
			"event", "vote_cast_validation_failed",
			"module", "group-decision/room-engine",
			"layer", "application",
			"room_id", roomID,
			"user_id", userID,
		)
		return entities.Vote{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return entities.Vote{}, err
	}
	if room.State != entities.RoomStateVoting {
		return entities.Vote{}, domainerrors.ErrInvalidState
	}
	if !room.HasParticipant(userID) {
		return entities.Vote{}, domainerrors.ErrNotAMember
	}

	// Fast path; the store's (room, voter) uniqueness constraint remains the
	// source of truth under concurrent casts.
	voted, err := uc.Votes.HasVoted(ctx, room.RoomID, userID)
	if err != nil {
		return entities.Vote{}, err
	}
	if voted {
		return entities.Vote{}, domainerrors.ErrAlreadyVoted
	}

	option, err := uc.Options.GetOption(ctx, optionID)
	if err != nil {
		return entities.Vote{}, err
	}
	if option.RoomID != room.RoomID {
		return entities.Vote{}, domainerrors.ErrCrossRoomOption
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	vote := entities.Vote{
		VoteID:    voteID,
		RoomID:    room.RoomID,
		OptionID:  option.OptionID,
		VoterID:   userID,
		CreatedAt: uc.now(),
	}
	if err := uc.Votes.InsertVote(ctx, vote); err != nil {
		return entities.Vote{}, err
	}
	logger.Info("vote cast",
		"event", "vote_cast",
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"option_id", option.OptionID,
		"voter_id", userID,
	)
	return vote, nil
}
