package ports

import (
	"context"
	"time"

	"quorum/contexts/group-decision/room-engine/domain/entities"
)

type RoomRepository interface {
	// InsertRoom persists a new room together with its initial participant
	// set. A join-code collision reports domainerrors.ErrCodeCollision; the
	// store's uniqueness constraint on the code is the authoritative guard.
	InsertRoom(ctx context.Context, room entities.Room) error
	// SaveRoom updates the room's mutable lifecycle fields (state, final
	// option, tiebreaker method). Participants are managed through
	// AddParticipant.
	SaveRoom(ctx context.Context, room entities.Room) error
	GetRoom(ctx context.Context, roomID string) (entities.Room, error)
	GetRoomByCode(ctx context.Context, code string) (entities.Room, error)
	ListRoomsByParticipant(ctx context.Context, userID string) ([]entities.Room, error)
	// AddParticipant is a no-op when the user is already a member.
	AddParticipant(ctx context.Context, roomID string, userID string) error
	// DeleteRoomCascade removes the room's votes, then its options, then the
	// room itself, so no vote row ever outlives its room.
	DeleteRoomCascade(ctx context.Context, roomID string) error
}

type OptionRepository interface {
	InsertOption(ctx context.Context, option entities.Option) error
	GetOption(ctx context.Context, optionID string) (entities.Option, error)
	ListOptionsByRoom(ctx context.Context, roomID string) ([]entities.Option, error)
}

type OptionCount struct {
	OptionID string
	Votes    int
}

type VoteRepository interface {
	// InsertVote records a vote. A second vote by the same voter in the same
	// room reports domainerrors.ErrAlreadyVoted; the store's uniqueness
	// constraint on (room, voter) is the authoritative guard.
	InsertVote(ctx context.Context, vote entities.Vote) error
	HasVoted(ctx context.Context, roomID string, voterID string) (bool, error)
	CountVotesByOption(ctx context.Context, roomID string) ([]OptionCount, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// RandomSource isolates randomness so tests can substitute a deterministic
// sequence. Intn returns a value in [0, n).
type RandomSource interface {
	Intn(n int) int
}
