package game

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/galacticturtle/galacticd/internal/random"
)

// Registry keeps every game created during the lifetime of the process in
// creation order. Games are never removed.
type Registry struct {
	games  []*Game
	rng    random.Source
	scores ScoreRecorder
	logger *logrus.Logger
}

func NewRegistry(rng random.Source, scores ScoreRecorder, logger *logrus.Logger) *Registry {
	return &Registry{
		rng:    rng,
		scores: scores,
		logger: logger,
	}
}

// Create registers a new game played on a copy of board and returns its ID.
func (r *Registry) Create(cfg Config, board *Board) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	snapshot := board.Clone()
	if n := len(snapshot.Planets()); n != cfg.Planets {
		return 0, fmt.Errorf("%w: board has %d planets, expected %d", ErrInvalidConfig, n, cfg.Planets)
	}

	id := 1
	if len(r.games) > 0 {
		id = r.games[len(r.games)-1].id + 1
	}

	entry := r.logger.WithField("component", "game")
	g := newGame(id, cfg, snapshot, r.rng, r.scores, entry)
	r.games = append(r.games, g)

	g.logger.Infof("created game for %d players, %d planets, %d turns", cfg.Players, cfg.Planets, cfg.Turns)
	return id, nil
}

// Find looks up a game by ID.
func (r *Registry) Find(id int) (*Game, error) {
	// IDs are handed out sequentially from 1, so the ID doubles as an index.
	if id >= 1 && id <= len(r.games) && r.games[id-1].id == id {
		return r.games[id-1], nil
	}
	for _, g := range r.games {
		if g.id == id {
			return g, nil
		}
	}
	return nil, ErrGameNotFound
}

// Join reserves a seat in an open game.
func (r *Registry) Join(id int) (*Game, error) {
	g, err := r.Find(id)
	if err != nil {
		return nil, err
	}
	if err := g.reserve(); err != nil {
		return nil, err
	}
	return g, nil
}

// Games returns every registered game in creation order.
func (r *Registry) Games() []*Game {
	games := make([]*Game, len(r.games))
	copy(games, r.games)
	return games
}

// NewBoard generates a topology with the registry's random source.
func (r *Registry) NewBoard(planets int) *Board {
	return GenerateTopology(r.rng, planets)
}
