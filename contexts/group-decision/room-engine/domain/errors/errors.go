package errors

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrRoomNotFound       = errors.New("room not found")
	ErrOptionNotFound     = errors.New("option not found")
	ErrForbidden          = errors.New("only the room creator may perform this action")
	ErrNotAMember         = errors.New("caller is not a room participant")
	ErrInvalidState       = errors.New("operation is not allowed in the room's current state")
	ErrAlreadyVoted       = errors.New("participant already voted in this room")
	ErrCrossRoomOption    = errors.New("option does not belong to this room")
	ErrRoomFull           = errors.New("room is full")
	ErrNoTie              = errors.New("no tie to break")
	ErrCodeCollision      = errors.New("room code already in use")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")
)
