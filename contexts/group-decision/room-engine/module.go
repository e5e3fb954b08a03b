package roomengine

import (
	"log/slog"

	httpadapter "quorum/contexts/group-decision/room-engine/adapters/http"
	"quorum/contexts/group-decision/room-engine/adapters/memory"
	"quorum/contexts/group-decision/room-engine/application/commands"
	"quorum/contexts/group-decision/room-engine/application/queries"
	"quorum/contexts/group-decision/room-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Rooms        ports.RoomRepository
	Options      ports.OptionRepository
	Votes        ports.VoteRepository
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Random       ports.RandomSource
	CodeAttempts int
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	roomUseCase := commands.RoomUseCase{
		Rooms:        deps.Rooms,
		Options:      deps.Options,
		Votes:        deps.Votes,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Random:       deps.Random,
		CodeAttempts: deps.CodeAttempts,
		Logger:       deps.Logger,
	}
	resultsUseCase := queries.ResultsUseCase{
		Rooms:   deps.Rooms,
		Options: deps.Options,
		Votes:   deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Rooms:   roomUseCase,
			Results: resultsUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Rooms:   store,
		Options: store,
		Votes:   store,
		Clock:   store,
		IDGen:   store,
		Random:  store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
