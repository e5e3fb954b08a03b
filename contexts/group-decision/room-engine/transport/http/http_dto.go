package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateRoomRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
}

type CreateRoomResponse struct {
	RoomID     string `json:"room_id"`
	Code       string `json:"code"`
	InvitePath string `json:"invite_path"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
}

type RoomResponse struct {
	RoomID           string    `json:"room_id"`
	Code             string    `json:"code"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Capacity         int       `json:"capacity"`
	CreatorID        string    `json:"creator_id"`
	Participants     []string  `json:"participants"`
	State            string    `json:"state"`
	FinalOption      string    `json:"final_option,omitempty"`
	TiebreakerMethod string    `json:"tiebreaker_method,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type RoomListResponse struct {
	Items []RoomResponse `json:"items"`
}

type RoomDetailResponse struct {
	Room    RoomResponse     `json:"room"`
	Options []OptionResponse `json:"options"`
}

type SubmitOptionRequest struct {
	Text string `json:"text"`
}

type OptionResponse struct {
	OptionID    string    `json:"option_id"`
	RoomID      string    `json:"room_id"`
	Text        string    `json:"text"`
	SubmittedBy string    `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

type VoteResponse struct {
	VoteID   string `json:"vote_id"`
	RoomID   string `json:"room_id"`
	OptionID string `json:"option_id"`
	VoterID  string `json:"voter_id"`
}

type TallyItem struct {
	OptionID string `json:"option_id"`
	Text     string `json:"text"`
	Votes    int    `json:"votes"`
}

type ResultsResponse struct {
	Results          []TallyItem `json:"results"`
	FinalOption      string      `json:"final_option,omitempty"`
	TiebreakerMethod string      `json:"tiebreaker_method,omitempty"`
}

type TiebreakerRequest struct {
	Method string `json:"method,omitempty"`
}

type TiebreakerResponse struct {
	Winner TallyItem `json:"winner"`
	Method string    `json:"method"`
}
