package game

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// OrderError is the reason a player's order was refused. The values are
// ordered the way an order is validated.
type OrderError int

const (
	ErrEmptyOrder OrderError = iota + 1
	ErrUnparsableOrder
	ErrInvalidSource
	ErrNotOwner
	ErrInvalidTarget
	ErrInvalidShipCount
)

func (e OrderError) Error() string {
	switch e {
	case ErrEmptyOrder:
		return "empty order"
	case ErrUnparsableOrder:
		return "unparsable order"
	case ErrInvalidSource:
		return "invalid source planet"
	case ErrNotOwner:
		return "source planet not owned by player"
	case ErrInvalidTarget:
		return "invalid target planet"
	case ErrInvalidShipCount:
		return "invalid number of ships"
	default:
		return "unknown order error"
	}
}

var orderPattern = regexp.MustCompile(`^([A-Za-z])\s+([A-Za-z])\s+([1-9][0-9]*)$`)

// Order is a parsed "<from> <to> <ships>" command. From and To are planet
// indexes, not yet checked against a board.
type Order struct {
	From, To int
	Ships    int
}

// ParseOrder parses a command such as "a C 12".
func ParseOrder(line string) (Order, error) {
	if line == "" {
		return Order{}, ErrEmptyOrder
	}

	m := orderPattern.FindStringSubmatch(line)
	if m == nil {
		return Order{}, ErrUnparsableOrder
	}

	ships, err := strconv.Atoi(m[3])
	if err != nil {
		return Order{}, ErrInvalidShipCount
	}

	return Order{
		From:  int(strings.ToUpper(m[1])[0] - 'A'),
		To:    int(strings.ToUpper(m[2])[0] - 'A'),
		Ships: ships,
	}, nil
}

// Move is a fleet in flight, resolved when the game reaches its arrival turn.
type Move struct {
	Owner  *Identity
	Target *Planet
	Ships  int
	// Attack of the source planet when the fleet was launched.
	Attack int
}

// travelTime is the whole number of turns a fleet needs between two planets.
func travelTime(from, to *Planet) int {
	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	return int(math.Floor(math.Sqrt(dx*dx + dy*dy)))
}

// schedule queues m for its arrival turn, merging it into an existing fleet
// of the same owner, target and attack.
func (g *Game) schedule(arrival int, m *Move) {
	for _, queued := range g.moves[arrival] {
		if queued.Owner == m.Owner && queued.Target == m.Target && queued.Attack == m.Attack {
			queued.Ships += m.Ships
			return
		}
	}
	g.moves[arrival] = append(g.moves[arrival], m)
}

// PendingMoves returns the fleets due at the given arrival turn.
func (g *Game) PendingMoves(arrival int) []*Move {
	if arrival < 1 || arrival > MaxTurns {
		return nil
	}
	return g.moves[arrival]
}

// Order validates and launches a fleet for seat. Ships leave the source planet
// immediately; fleets that would arrive after the last possible turn are lost.
func (g *Game) Order(seat *Seat, line string) error {
	o, err := ParseOrder(line)
	if err != nil {
		return err
	}

	if o.From < 0 || o.From >= len(g.planets) {
		return ErrInvalidSource
	}
	source := g.planets[o.From]
	if source.Owner != seat.identity {
		return ErrNotOwner
	}

	if o.To < 0 || o.To >= len(g.planets) || o.To == o.From {
		return ErrInvalidTarget
	}
	target := g.planets[o.To]

	if o.Ships <= 0 || o.Ships > source.Ships {
		return ErrInvalidShipCount
	}

	arrival := travelTime(source, target) + g.turn
	source.Ships -= o.Ships
	if arrival <= MaxTurns {
		g.schedule(arrival, &Move{
			Owner:  seat.identity,
			Target: target,
			Ships:  o.Ships,
			Attack: source.Attack,
		})
	}

	g.logger.Debugf("%s sends %d ships from %c to %c, arriving turn %d",
		seat.Nickname(), o.Ships, source.Name, target.Name, arrival)
	return nil
}
