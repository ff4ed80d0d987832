// Package session implements the menu-driven conversation every connected
// player goes through: creating games, browsing lists, joining a game and
// playing it until it ends.
package session

import (
	"github.com/galacticturtle/galacticd/internal/core/client"
	"github.com/galacticturtle/galacticd/internal/game"
)

// State is where a player is in the conversation.
type State int

const (
	Menu State = iota
	NewGamePlayers
	NewGamePlanets
	NewGameTurns
	NewGameConfirm
	JoinGameID
	JoinGameNickname
	InGameWaiting
	InGameMove
	InGameWaitingOthers
	EndGame
)

var stateNames = map[State]string{
	Menu:                "Menu",
	NewGamePlayers:      "NewGamePlayers",
	NewGamePlanets:      "NewGamePlanets",
	NewGameTurns:        "NewGameTurns",
	NewGameConfirm:      "NewGameConfirm",
	JoinGameID:          "JoinGameID",
	JoinGameNickname:    "JoinGameNickname",
	InGameWaiting:       "InGameWaiting",
	InGameMove:          "InGameMove",
	InGameWaitingOthers: "InGameWaitingOthers",
	EndGame:             "EndGame",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Session is the per-connection state of one player.
type Session struct {
	client *client.Client
	state  State

	// Parameters of a game being set up.
	players int
	planets int
	turns   int
	staged  *game.Board

	// Set once a seat is reserved; seat is set once the player picked a
	// nickname and sat down.
	game *game.Game
	seat *game.Seat
}

func newSession(c *client.Client) *Session {
	return &Session{client: c, state: Menu}
}

// State reports the current state. Once seated, the state follows the seat,
// since turns resolved by other players move everyone at once.
func (s *Session) State() State {
	if s.seat == nil {
		return s.state
	}
	switch s.seat.Status() {
	case game.SeatWaiting:
		return InGameWaiting
	case game.SeatMoving:
		return InGameMove
	case game.SeatPassed:
		return InGameWaitingOthers
	default:
		return EndGame
	}
}

func (s *Session) Game() *game.Game { return s.game }

// backToMenu drops everything tied to a game or a game being created.
func (s *Session) backToMenu() {
	s.state = Menu
	s.staged = nil
	s.game = nil
	s.seat = nil
}
