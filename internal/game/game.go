// Package game implements Galactic Turtle games: board generation, the game
// registry, seating players, and resolving turns.
//
// Nothing in this package locks. Every Game and the Registry are meant to be
// owned by a single goroutine that applies one player action at a time.
package game

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/galacticturtle/galacticd/internal/random"
)

const (
	MinPlayers        = 2
	MaxPlayers        = 10
	MaxPlanets        = 15
	MaxTurns          = 99
	MaxNicknameLength = 15
)

var (
	ErrInvalidConfig = errors.New("invalid game configuration")
	ErrGameNotFound  = errors.New("game not found")
	ErrGameClosed    = errors.New("game is not accepting new players")

	ErrNicknameEmpty   = errors.New("nickname is empty")
	ErrNicknameTaken   = errors.New("nickname is taken")
	ErrNicknameInvalid = errors.New("nickname contains invalid characters")
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9 ]+$`)

// Config holds the parameters a game is created with.
type Config struct {
	Players int
	Planets int
	Turns   int
}

func (c Config) Validate() error {
	if c.Players < MinPlayers || c.Players > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrInvalidConfig, c.Players)
	}
	if c.Planets < c.Players || c.Planets > MaxPlanets {
		return fmt.Errorf("%w: %d planets for %d players", ErrInvalidConfig, c.Planets, c.Players)
	}
	if c.Turns < 1 || c.Turns > MaxTurns {
		return fmt.Errorf("%w: %d turns", ErrInvalidConfig, c.Turns)
	}
	return nil
}

// Sender delivers text to a player's connection.
type Sender interface {
	Send(text string) error
}

// ScoreRecorder receives the final score of every player still seated when a
// game ends.
type ScoreRecorder interface {
	Record(nickname string, score int) error
}

type SeatStatus int

const (
	// SeatWaiting players are seated and waiting for the game to fill up.
	SeatWaiting SeatStatus = iota
	// SeatMoving players are entering this turn's orders.
	SeatMoving
	// SeatPassed players ended their turn and wait for the others.
	SeatPassed
	// SeatFinished players are looking at the final scores.
	SeatFinished
)

// Seat is a player's place in a game.
type Seat struct {
	identity *Identity
	out      Sender
	status   SeatStatus
}

func (s *Seat) Identity() *Identity { return s.identity }
func (s *Seat) Nickname() string    { return s.identity.Nickname() }
func (s *Seat) Status() SeatStatus  { return s.status }

// Game is one match on one board.
type Game struct {
	id  int
	cfg Config

	open bool
	// Players who reserved a seat, whether or not they picked a nickname yet.
	connected int
	// Seated players who are done for the current phase: joined while the
	// game fills up, passed once it runs.
	ready    int
	turn     int
	started  bool
	finished bool

	board   *Board
	planets []*Planet
	seats   []*Seat
	// Fleets indexed by arrival turn.
	moves [MaxTurns + 1][]*Move

	rng    random.Source
	scores ScoreRecorder
	logger *logrus.Entry
}

func newGame(id int, cfg Config, board *Board, rng random.Source, scores ScoreRecorder, logger *logrus.Entry) *Game {
	return &Game{
		id:      id,
		cfg:     cfg,
		open:    true,
		turn:    1,
		board:   board,
		planets: board.Planets(),
		rng:     rng,
		scores:  scores,
		logger:  logger.WithField("game", id),
	}
}

func (g *Game) ID() int            { return g.id }
func (g *Game) Config() Config     { return g.cfg }
func (g *Game) Open() bool         { return g.open }
func (g *Game) Connected() int     { return g.connected }
func (g *Game) Ready() int         { return g.ready }
func (g *Game) Turn() int          { return g.turn }
func (g *Game) Started() bool      { return g.started }
func (g *Game) Finished() bool     { return g.finished }
func (g *Game) Board() *Board      { return g.board }
func (g *Game) Planets() []*Planet { return g.planets }

// Seats returns the seated players in seating order.
func (g *Game) Seats() []*Seat {
	seats := make([]*Seat, len(g.seats))
	copy(seats, g.seats)
	return seats
}

// reserve holds a seat for a player who still has to pick a nickname.
func (g *Game) reserve() error {
	if !g.open {
		return ErrGameClosed
	}
	g.connected++
	if g.connected == g.cfg.Players {
		g.open = false
	}
	return nil
}

// CancelReservation gives back a seat reserved by a player who left before
// picking a nickname.
func (g *Game) CancelReservation() {
	if g.connected == 0 {
		panic(fmt.Sprintf("game %d: reservation cancelled with no reserved seats", g.id))
	}
	g.connected--
	g.open = true
}

func (g *Game) nicknameAvailable(nickname string) bool {
	for _, s := range g.seats {
		if strings.EqualFold(s.Nickname(), nickname) {
			return false
		}
	}
	return true
}

// Seat takes a player holding a reservation into the game under nickname. Once
// every configured player is seated the game starts.
func (g *Game) Seat(nickname string, out Sender) (*Seat, error) {
	switch {
	case nickname == "":
		return nil, ErrNicknameEmpty
	case !g.nicknameAvailable(nickname):
		return nil, ErrNicknameTaken
	case len(nickname) > MaxNicknameLength || !nicknamePattern.MatchString(nickname):
		return nil, ErrNicknameInvalid
	}

	seat := &Seat{identity: NewIdentity(nickname), out: out, status: SeatWaiting}
	g.seats = append(g.seats, seat)
	g.ready++
	g.send(seat, "Waiting for other players to join..\r\n")
	g.logger.Infof("%s joined (%d/%d)", nickname, g.ready, g.cfg.Players)

	if g.ready == g.cfg.Players {
		g.start()
	}
	return seat, nil
}

// start hands every player one random neutral planet and asks for orders.
func (g *Game) start() {
	for _, s := range g.seats {
		var p *Planet
		for p == nil || p.Owner != nil {
			p = g.planets[g.rng.Int()%len(g.planets)]
		}
		p.Owner = s.identity
	}

	g.started = true
	g.broadcast(g.renderScreen())
	for _, s := range g.seats {
		g.Prompt(s)
		s.status = SeatMoving
	}
	g.ready = 0
	g.logger.Info("game started")
}

// Prompt asks seat for its next order.
func (g *Game) Prompt(seat *Seat) {
	g.send(seat, seat.Nickname()+"> ")
}

// Pass ends seat's turn. The turn is resolved as soon as every seated player
// has passed.
func (g *Game) Pass(seat *Seat) {
	if seat.status != SeatMoving {
		g.send(seat, "Please wait for other players to enter their commands..\r\n")
		return
	}

	g.ready++
	if g.ready == len(g.seats) {
		g.AdvanceTurn()
		return
	}
	seat.status = SeatPassed
	g.send(seat, "Please wait for other players to enter their commands..\r\n")
}

// Leave removes seat from the game, whether the player disconnected or went
// back to the menu after the game ended. Planets the player owned keep a
// detached copy of their identity. If everyone left behind has already passed,
// the turn is resolved right away.
func (g *Game) Leave(seat *Seat) {
	idx := g.seatIndex(seat)
	if idx < 0 {
		panic(fmt.Sprintf("game %d: %s is not seated", g.id, seat.Nickname()))
	}
	g.seats = append(g.seats[:idx], g.seats[idx+1:]...)
	g.connected--

	switch seat.status {
	case SeatFinished:
		return
	case SeatWaiting:
		g.ready--
		g.open = true
	case SeatPassed:
		g.ready--
	}

	detached := seat.identity.Detach()
	for _, p := range g.planets {
		if p.Owner == seat.identity {
			p.Owner = detached
		}
	}
	g.logger.Infof("%s left the game", seat.Nickname())

	if g.started && !g.finished && !g.open && g.ready == len(g.seats) {
		g.AdvanceTurn()
	}
}

func (g *Game) seatIndex(seat *Seat) int {
	for i, s := range g.seats {
		if s == seat {
			return i
		}
	}
	return -1
}

func (g *Game) seated(id *Identity) bool {
	for _, s := range g.seats {
		if s.identity == id {
			return true
		}
	}
	return false
}

func (g *Game) send(seat *Seat, text string) {
	if err := seat.out.Send(text); err != nil {
		g.logger.Warnf("failed to send to %s: %v", seat.Nickname(), err)
	}
}

func (g *Game) broadcast(text string) {
	for _, s := range g.seats {
		g.send(s, text)
	}
}
