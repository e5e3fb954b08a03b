package commands

import (
	"context"
	"errors"
	"testing"

	"quorum/contexts/group-decision/room-engine/adapters/memory"
	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
)

// setupTiedRoom builds a closed room where two options share the maximum
// vote count. Returns the room and the tied option ids in ranking order.
func setupTiedRoom(t *testing.T, uc RoomUseCase) (entities.Room, []entities.Option) {
	t.Helper()
	room, err := uc.CreateRoom(context.Background(), CreateRoomCommand{CreatorID: "alice", Title: "Dinner"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, user := range []string{"bob", "carol"} {
		if _, err := uc.JoinRoom(context.Background(), user, room.Code); err != nil {
			t.Fatalf("join by %s failed: %v", user, err)
		}
	}

	first, err := uc.SubmitOption(context.Background(), SubmitOptionCommand{RoomID: room.RoomID, UserID: "alice", Text: "Pizza"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := uc.SubmitOption(context.Background(), SubmitOptionCommand{RoomID: room.RoomID, UserID: "bob", Text: "Sushi"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := uc.OpenVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{RoomID: room.RoomID, UserID: "bob", OptionID: first.OptionID}); err != nil {
		t.Fatalf("bob vote failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{RoomID: room.RoomID, UserID: "carol", OptionID: second.OptionID}); err != nil {
		t.Fatalf("carol vote failed: %v", err)
	}
	if _, err := uc.CloseVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Ranking orders equal counts by option id.
	if second.OptionID < first.OptionID {
		first, second = second, first
	}
	return room, []entities.Option{first, second}
}

func TestRunTiebreakerResolvesTiedRoom(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store)
	room, tied := setupTiedRoom(t, uc)
	uc.Random = &stubRandom{seq: []int{1}}

	result, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"})
	if err != nil {
		t.Fatalf("tiebreaker failed: %v", err)
	}
	if result.Winner.OptionID != tied[1].OptionID {
		t.Fatalf("expected winner %s, got %s", tied[1].OptionID, result.Winner.OptionID)
	}
	if result.Method != "random" {
		t.Fatalf("expected default method, got %s", result.Method)
	}

	resolved, err := store.GetRoom(context.Background(), room.RoomID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if resolved.State != entities.RoomStateResolved {
		t.Fatalf("expected resolved state, got %s", resolved.State)
	}
	if resolved.FinalOption != tied[1].Text {
		t.Fatalf("expected final option %q, got %q", tied[1].Text, resolved.FinalOption)
	}
	if resolved.TiebreakerMethod != "random" {
		t.Fatalf("expected recorded method, got %q", resolved.TiebreakerMethod)
	}
}

func TestRunTiebreakerRecordsCustomMethod(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store)
	room, _ := setupTiedRoom(t, uc)
	uc.Random = &stubRandom{}

	result, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice", Method: "dice"})
	if err != nil {
		t.Fatalf("tiebreaker failed: %v", err)
	}
	if result.Method != "dice" {
		t.Fatalf("expected dice, got %s", result.Method)
	}
}

func TestRunTiebreakerRerunOverwrites(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store)
	room, tied := setupTiedRoom(t, uc)

	uc.Random = &stubRandom{seq: []int{0}}
	if _, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	uc.Random = &stubRandom{seq: []int{1}}
	result, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice", Method: "spinner"})
	if err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if result.Winner.OptionID != tied[1].OptionID {
		t.Fatalf("expected rerun winner %s, got %s", tied[1].OptionID, result.Winner.OptionID)
	}

	resolved, err := store.GetRoom(context.Background(), room.RoomID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if resolved.FinalOption != tied[1].Text || resolved.TiebreakerMethod != "spinner" {
		t.Fatalf("expected overwritten resolution, got %q via %q", resolved.FinalOption, resolved.TiebreakerMethod)
	}
}

func TestRunTiebreakerCreatorOnly(t *testing.T) {
	uc := newUseCase(memory.NewStore())
	room, _ := setupTiedRoom(t, uc)

	_, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "bob"})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRunTiebreakerRequiresClosedRoom(t *testing.T) {
	uc := newUseCase(memory.NewStore())

	room, err := uc.CreateRoom(context.Background(), CreateRoomCommand{CreatorID: "alice", Title: "Dinner"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err = uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"})
	if !errors.Is(err, domainerrors.ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestRunTiebreakerRequiresTie(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store)

	room, err := uc.CreateRoom(context.Background(), CreateRoomCommand{CreatorID: "alice", Title: "Dinner"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.JoinRoom(context.Background(), "bob", room.Code); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	option, err := uc.SubmitOption(context.Background(), SubmitOptionCommand{RoomID: room.RoomID, UserID: "alice", Text: "Pizza"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := uc.OpenVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := uc.CastVote(context.Background(), CastVoteCommand{RoomID: room.RoomID, UserID: "bob", OptionID: option.OptionID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := uc.CloseVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	_, err = uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"})
	if !errors.Is(err, domainerrors.ErrNoTie) {
		t.Fatalf("expected no tie with a unique leader, got %v", err)
	}
}

func TestRunTiebreakerNoVotesNoTie(t *testing.T) {
	uc := newUseCase(memory.NewStore())

	room, err := uc.CreateRoom(context.Background(), CreateRoomCommand{CreatorID: "alice", Title: "Dinner"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := uc.OpenVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := uc.CloseVoting(context.Background(), room.RoomID, "alice"); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	_, err = uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"})
	if !errors.Is(err, domainerrors.ErrNoTie) {
		t.Fatalf("expected no tie with no votes, got %v", err)
	}
}

func TestRunTiebreakerPicksUniformly(t *testing.T) {
	store := memory.NewStore()
	uc := newUseCase(store)
	room, tied := setupTiedRoom(t, uc)

	// Re-running is legal, so sample the real random source repeatedly.
	const runs = 4000
	wins := make(map[string]int, 2)
	for i := 0; i < runs; i++ {
		result, err := uc.RunTiebreaker(context.Background(), RunTiebreakerCommand{RoomID: room.RoomID, UserID: "alice"})
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		wins[result.Winner.OptionID]++
	}

	for _, option := range tied {
		count := wins[option.OptionID]
		if count < runs/4 || count > 3*runs/4 {
			t.Fatalf("selection heavily skewed: %v", wins)
		}
	}
}
