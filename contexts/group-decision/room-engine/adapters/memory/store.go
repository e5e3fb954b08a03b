package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
	"quorum/contexts/group-decision/room-engine/ports"

	"github.com/google/uuid"
)

// Store is the in-memory Entity Store used by tests and local wiring. It
// enforces the same uniqueness rules as the relational adapter: one room per
// join code, one vote per (room, voter).
type Store struct {
	mu sync.RWMutex

	rooms   map[string]entities.Room
	codes   map[string]string // join code -> room id
	options map[string]entities.Option
	votes   map[string]entities.Vote
	voted   map[string]string // room id + "/" + voter id -> vote id
}

func NewStore() *Store {
	return &Store{
		rooms:   make(map[string]entities.Room),
		codes:   make(map[string]string),
		options: make(map[string]entities.Option),
		votes:   make(map[string]entities.Vote),
		voted:   make(map[string]string),
	}
}

func (s *Store) InsertRoom(_ context.Context, room entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := strings.TrimSpace(room.Code)
	if _, exists := s.codes[code]; exists {
		return domainerrors.ErrCodeCollision
	}
	s.codes[code] = room.RoomID
	s.rooms[room.RoomID] = cloneRoom(room)
	return nil
}

func (s *Store) SaveRoom(_ context.Context, room entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.RoomID]
	if !ok {
		return domainerrors.ErrRoomNotFound
	}
	// Participants are managed through AddParticipant; keep the stored set.
	room.Participants = existing.Participants
	room.Code = existing.Code
	s.rooms[room.RoomID] = cloneRoom(room)
	return nil
}

func (s *Store) GetRoom(_ context.Context, roomID string) (entities.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[strings.TrimSpace(roomID)]
	if !ok {
		return entities.Room{}, domainerrors.ErrRoomNotFound
	}
	return cloneRoom(room), nil
}

func (s *Store) GetRoomByCode(_ context.Context, code string) (entities.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.codes[strings.TrimSpace(code)]
	if !ok {
		return entities.Room{}, domainerrors.ErrRoomNotFound
	}
	return cloneRoom(s.rooms[roomID]), nil
}

func (s *Store) ListRoomsByParticipant(_ context.Context, userID string) ([]entities.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Room, 0)
	for _, room := range s.rooms {
		if room.HasParticipant(strings.TrimSpace(userID)) {
			items = append(items, cloneRoom(room))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RoomID < items[j].RoomID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AddParticipant(_ context.Context, roomID string, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[strings.TrimSpace(roomID)]
	if !ok {
		return domainerrors.ErrRoomNotFound
	}
	userID = strings.TrimSpace(userID)
	if room.HasParticipant(userID) {
		return nil
	}
	room.Participants = append(room.Participants, userID)
	s.rooms[room.RoomID] = room
	return nil
}

func (s *Store) DeleteRoomCascade(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID = strings.TrimSpace(roomID)
	room, ok := s.rooms[roomID]
	if !ok {
		return domainerrors.ErrRoomNotFound
	}
	for voteID, vote := range s.votes {
		if vote.RoomID == roomID {
			delete(s.votes, voteID)
			delete(s.voted, voteKey(roomID, vote.VoterID))
		}
	}
	for optionID, option := range s.options {
		if option.RoomID == roomID {
			delete(s.options, optionID)
		}
	}
	delete(s.codes, room.Code)
	delete(s.rooms, roomID)
	return nil
}

func (s *Store) InsertOption(_ context.Context, option entities.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[option.OptionID] = option
	return nil
}

func (s *Store) GetOption(_ context.Context, optionID string) (entities.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.options[strings.TrimSpace(optionID)]
	if !ok {
		return entities.Option{}, domainerrors.ErrOptionNotFound
	}
	return option, nil
}

func (s *Store) ListOptionsByRoom(_ context.Context, roomID string) ([]entities.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Option, 0)
	for _, option := range s.options {
		if option.RoomID == strings.TrimSpace(roomID) {
			items = append(items, option)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OptionID < items[j].OptionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) InsertVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey(vote.RoomID, vote.VoterID)
	if _, exists := s.voted[key]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.voted[key] = vote.VoteID
	s.votes[vote.VoteID] = vote
	return nil
}

func (s *Store) HasVoted(_ context.Context, roomID string, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.voted[voteKey(strings.TrimSpace(roomID), strings.TrimSpace(voterID))]
	return exists, nil
}

func (s *Store) CountVotesByOption(_ context.Context, roomID string) ([]ports.OptionCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byOption := make(map[string]int)
	for _, vote := range s.votes {
		if vote.RoomID == strings.TrimSpace(roomID) {
			byOption[vote.OptionID]++
		}
	}
	items := make([]ports.OptionCount, 0, len(byOption))
	for optionID, votes := range byOption {
		items = append(items, ports.OptionCount{OptionID: optionID, Votes: votes})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OptionID < items[j].OptionID
	})
	return items, nil
}

// VoteCountForRoom reports the number of stored votes for a room; test hook.
func (s *Store) VoteCountForRoom(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, vote := range s.votes {
		if vote.RoomID == roomID {
			total++
		}
	}
	return total
}

// OptionCountForRoom reports the number of stored options for a room; test hook.
func (s *Store) OptionCountForRoom(roomID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, option := range s.options {
		if option.RoomID == roomID {
			total++
		}
	}
	return total
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) Intn(n int) int {
	return rand.IntN(n)
}

func voteKey(roomID string, voterID string) string {
	return roomID + "/" + voterID
}

func cloneRoom(room entities.Room) entities.Room {
	room.Participants = append([]string(nil), room.Participants...)
	return room
}

var _ ports.RoomRepository = (*Store)(nil)
var _ ports.OptionRepository = (*Store)(nil)
var _ ports.VoteRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.RandomSource = (*Store)(nil)
