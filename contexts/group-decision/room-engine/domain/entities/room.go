package entities

import "time"

// RoomState is the room's lifecycle position. It replaces the pair of
// votingOpen/votingClosed flags so that contradictory combinations are not
// representable.
type RoomState string

const (
	RoomStateCollecting RoomState = "collecting"
	RoomStateVoting     RoomState = "voting"
	RoomStateClosed     RoomState = "closed"
	RoomStateResolved   RoomState = "resolved"
)

// AcceptsResults reports whether tallies may be read and tiebreakers run.
func (s RoomState) AcceptsResults() bool {
	return s == RoomStateClosed || s == RoomStateResolved
}

type Room struct {
	RoomID           string
	Code             string
	Title            string
	Description      string
	Capacity         int
	CreatorID        string
	Participants     []string
	State            RoomState
	FinalOption      string
	TiebreakerMethod string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r Room) HasParticipant(userID string) bool {
	for _, participant := range r.Participants {
		if participant == userID {
			return true
		}
	}
	return false
}

// AtCapacity reports whether another participant may still join.
// Capacity zero means unlimited.
func (r Room) AtCapacity() bool {
	return r.Capacity > 0 && len(r.Participants) >= r.Capacity
}

type Option struct {
	OptionID    string
	RoomID      string
	Text        string
	SubmittedBy string
	CreatedAt   time.Time
}

type Vote struct {
	VoteID    string
	RoomID    string
	OptionID  string
	VoterID   string
	CreatedAt time.Time
}
