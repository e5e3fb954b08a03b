package commands

import (
	"context"
	"strings"

	application "quorum/contexts/group-decision/room-engine/application"
	"quorum/contexts/group-decision/room-engine/domain/entities"
	domainerrors "quorum/contexts/group-decision/room-engine/domain/errors"
)

const defaultTiebreakerMethod = "random"

// RunTiebreakerCommand resolves a tied room by random selection.
type RunTiebreakerCommand struct {
	RoomID string
	UserID string
	// Method is a free-form audit label ("dice", "spinner", ...); empty
	// defaults to "random".
	Method string
}

// TiebreakResult is the resolved winner and the recorded method.
type TiebreakResult struct {
	Winner entities.OptionTally
	Method string
}

// RunTiebreaker ranks the room's options and, when at least two share the
// maximum vote count, picks one of them uniformly at random. The winner's
// text is snapshotted into the room's final option and the room becomes
// resolved. Re-running is legal and overwrites the prior resolution.
func (uc RoomUseCase) RunTiebreaker(ctx context.Context, cmd RunTiebreakerCommand) (TiebreakResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	roomID := strings.TrimSpace(cmd.RoomID)
	userID := strings.TrimSpace(cmd.UserID)
	if roomID == "" || userID == "" {
		return TiebreakResult{}, domainerrors.ErrInvalidInput
	}

	room, err := uc.Rooms.GetRoom(ctx, roomID)
	if err != nil {
		return TiebreakResult{}, err
	}
	if room.CreatorID != userID {
		return TiebreakResult{}, domainerrors.ErrForbidden
	}
	if !room.State.AcceptsResults() {
		return TiebreakResult{}, domainerrors.ErrInvalidState
	}

	ranking, err := uc.rankRoom(ctx, room.RoomID)
	if err != nil {
		return TiebreakResult{}, err
	}
	leaders := entities.TiedLeaders(ranking)
	if len(leaders) < 2 {
		return TiebreakResult{}, domainerrors.ErrNoTie
	}

	winner := leaders[uc.Random.Intn(len(leaders))]
	method := strings.TrimSpace(cmd.Method)
	if method == "" {
		method = defaultTiebreakerMethod
	}

	room.FinalOption = winner.Text
	room.TiebreakerMethod = method
	room.State = entities.RoomStateResolved
	room.UpdatedAt = uc.now()
	if err := uc.Rooms.SaveRoom(ctx, room); err != nil {
		return TiebreakResult{}, err
	}

	logger.Info("tiebreaker resolved",
		"event", "tiebreaker_resolved",
		"module", "group-decision/room-engine",
		"layer", "application",
		"room_id", room.RoomID,
		"winner_option_id", winner.OptionID,
		"method", method,
		"tied_count", len(leaders),
	)
	return TiebreakResult{Winner: winner, Method: method}, nil
}

// rankRoom aggregates the room's votes into the shared tally ranking.
func (uc RoomUseCase) rankRoom(ctx context.Context, roomID string) ([]entities.OptionTally, error) {
	counts, err := uc.Votes.CountVotesByOption(ctx, roomID)
	if err != nil {
		return nil, err
	}
	options, err := uc.Options.ListOptionsByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	byOption := make(map[string]int, len(counts))
	for _, count := range counts {
		byOption[count.OptionID] = count.Votes
	}
	texts := make(map[string]string, len(options))
	for _, option := range options {
		texts[option.OptionID] = option.Text
	}
	return entities.RankOptions(byOption, texts), nil
}
