package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/group-decision/room-engine/application"
	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
	"quorum/contexts/group-decision/room-engine/ports"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6

	// defaultCodeAttempts bounds unique-code generation; exceeding it fails
	// with ErrCodeSpaceExhausted instead of looping forever.
	defaultCodeAttempts = 1000
)

// CreateRoomCommand is the write-model input for room creation.
type CreateRoomCommand struct {
	CreatorID   string
	Title       string
	Description string
	Capacity    int
}

// RoomUseCase orchestrates the room lifecycle: creation, membership,
// option collection, voting, tie resolution, and deletion. Legal-transition
// and authorship rules live here; uniqueness rules are enforced by the
// repositories' constraints.
type RoomUseCase struct {
	Rooms        ports.RoomRepository
	Options      ports.OptionRepository
	Votes        ports.VoteRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Random       ports.RandomSource
	CodeAttempts int
	Logger       *slog.Logger
}

// CreateRoom creates a room in the collecting state with the creator as its
// first participant. The join code is drawn at random and retried on
// collision up to CodeAttempts times.
func (uc RoomUseCase) CreateRoom(ctx context.Context, cmd CreateRoomCommand) (entities.Room, error) {
	logger := application.ResolveLogger(uc.Logger)
	creatorID := strings.TrimSpace(cmd.CreatorID)
	title := strings.TrimSpace(cmd.Title)
	if creatorID == "" || title == "" || cmd.Capacity < 0 {
		logger.Warn("room create validation failed",
			"event", "room_create_validation_failed",
			"module", "group-decision/room-engine",
			"layer", "application",
			"creator_id", creatorID,
		)
		return entities.Room{}, domainerrors.ErrInvalidInput
	}

	roomID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Room{}, err
	}
	now := uc.now()

	for attempt := 0; attempt < uc.resolveCodeAttempts(); attempt++ {
		room := entities.Room{
			RoomID:       roomID,
			Code:         uc.newRoomCode(),
			Title:        title,
			Description:  strings.TrimSpace(cmd.Description),
			Capacity:     cmd.Capacity,
			CreatorID:    creatorID,
			Participants: []string{creatorID},
			State:        entities.RoomStateCollecting,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.Rooms.InsertRoom(ctx, room); err != nil {
			if errors.Is(err, domainerrors.ErrCodeCollision) {
				continue
			}
			return entities.Room{}, err
		}
		logger.Info("room created",
			"event", "room_created",
			"module", "group-decision/room-engine",
			"layer", "application",
			"room_id", room.RoomID,
			"room_code", room.Code,
			"creator_id", creatorID,
			"capacity", room.Capacity,
		)
		return room, nil
	}

	logger.Error("room code space exhausted",
		"event", "room_code_space_exhausted",
		"module", "group-decision/room-engine",
		"layer", "application",
		"creator_id", creatorID,
		"attempts", uc.resolveCodeAttempts(),
	)
	return entities.Room{}, domainerrors.ErrCodeSpaceExhausted
}

// JoinRoom resolves a room by its join code (case-insensitive) and adds the
// caller to its participants. Joining a room the caller already belongs to
// succeeds without effect.
func (uc RoomUseCase) JoinRoom(ctx context.Context, userID string, code string) (entities.Room, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID = strings.TrimSpace(userID)
	code = strings.ToUpper(strings.TrimSpace(code))
	if userID == "" || code == "" {
		return entities.Room{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoomByCode(ctx, code)
	if err != nil {
		return entities.Room{}, err
	}
	if room.HasParticipant(userID) {
		return room, nil
	}
	if room.AtCapacity() {
		logger.Warn("room join rejected, room full",
			"event", "room_join_room_full",
			"module", "group-decision/room-engine",
			"layer", "application",
			"room_id", room.RoomID,
			"user_id", userID,
			"capacity", room.Capacity,
		)
		return entities.Room{}, domainerrors.ErrRoomFull
	}
	if err := uc.Rooms.AddParticipant(ctx, room.RoomID, userID); err != nil {
		return entities.Room{}, err
	}
	room.Participants = append(room.Participants, userID)
	logger.Info("room joined",
		"event", "room_joined",
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"user_id", userID,
	)
	return room, nil
}

// OpenVoting moves the room from collecting to voting. Creator only.
func (uc RoomUseCase) OpenVoting(ctx context.Context, roomID string, userID string) (entities.Room, error) {
	return uc.transition(ctx, roomID, userID, entities.RoomStateCollecting, entities.RoomStateVoting, "voting_opened")
}

// CloseVoting moves the room from voting to closed. Creator only.
func (uc RoomUseCase) CloseVoting(ctx context.Context, roomID string, userID string) (entities.Room, error) {
	return uc.transition(ctx, roomID, userID, entities.RoomStateVoting, entities.RoomStateClosed, "voting_closed")
}

func (uc RoomUseCase) transition(
	ctx context.Context,
	roomID string,
	userID string,
	from entities.RoomState,
	to entities.RoomState,
	event string,
) (entities.Room, error) {
	logger := application.ResolveLogger(uc.Logger)
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return entities.Room{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return entities.Room{}, err
	}
	if room.CreatorID != userID {
		return entities.Room{}, domainerrors.ErrForbidden
	}
	if room.State != from {
		return entities.Room{}, domainerrors.ErrInvalidState
	}

	room.State = to
	room.UpdatedAt = uc.now()
	if err := uc.Rooms.SaveRoom(ctx, room); err != nil {
		return entities.Room{}, err
	}
	logger.Info("room state changed",
		"event", event,
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"state", string(room.State),
	)
	return room, nil
}

// DeleteRoom removes the room and everything it owns. Creator only, legal
// in any state. Votes go first, then options, then the room, so a partial
// failure never leaves votes referencing a deleted room.
func (uc RoomUseCase) DeleteRoom(ctx context.Context, roomID string, userID string) error {
	logger := application.ResolveLogger(uc.Logger)
	roomID = strings.TrimSpace(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.CreatorID != userID {
		return domainerrors.ErrForbidden
	}
	if err := uc.Rooms.DeleteRoomCascade(ctx, room.RoomID); err != nil {
		return err
	}
	logger.Info("room deleted",
		"event", "room_deleted",
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"creator_id", userID,
	)
	return nil
}

func (uc RoomUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc RoomUseCase) resolveCodeAttempts() int {
	if uc.CodeAttempts <= 0 {
		return defaultCodeAttempts
	}
	return uc.CodeAttempts
}

func (uc RoomUseCase) newRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[uc.Random.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
