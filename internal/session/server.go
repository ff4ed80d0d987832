package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/galacticturtle/galacticd/internal/core/client"
	"github.com/galacticturtle/galacticd/internal/core/data"
	"github.com/galacticturtle/galacticd/internal/game"
)

const (
	menuText = "\r\n" +
		"=================================\r\n" +
		"Welcome to Galactic Turtle! (.-.)\r\n" +
		"=================================\r\n\r\n" +
		"1. Create new game\r\n" +
		"2. Game list\r\n" +
		"3. Join a game\r\n" +
		"4. Highscore list\r\n" +
		"5. Exit\r\n\r\n" +
		"Selection: "

	invalidSelection = "Invalid selection, try again: "
	likeItPrompt     = "\r\nLike it? [y/N]? "
)

var orderErrorText = map[game.OrderError]string{
	game.ErrEmptyOrder:       "To end your turn enter 'pass'.\r\n",
	game.ErrUnparsableOrder:  "You're doing it wrong.\r\n",
	game.ErrInvalidSource:    "Wrong source planet buddy.\r\n",
	game.ErrNotOwner:         "You don't own that planet.\r\n",
	game.ErrInvalidTarget:    "You can't attack that planet.\r\n",
	game.ErrInvalidShipCount: "You can has ships, not.\r\n",
}

// Scoreboard is the persistent highscore list.
type Scoreboard interface {
	Record(nickname string, score int) error
	List() ([]data.Score, error)
}

// Server is the Backend that runs the conversation with every player. All of
// its methods must be called from the same goroutine.
type Server struct {
	Name       string
	Logger     *logrus.Logger
	Registry   *game.Registry
	Scoreboard Scoreboard

	sessions map[uint64]*Session
}

func (s *Server) Identifier() string {
	return s.Name
}

func (s *Server) Init(_ context.Context) error {
	if s.Registry == nil {
		return errors.New("session server requires a game registry")
	}
	s.sessions = make(map[uint64]*Session)
	return nil
}

// Handshake starts a new session at the main menu.
func (s *Server) Handshake(c *client.Client) error {
	s.sessions[c.ID()] = newSession(c)
	return c.Send(menuText)
}

// Session returns the session of a connected client.
func (s *Server) Session(c *client.Client) (*Session, bool) {
	sess, ok := s.sessions[c.ID()]
	return sess, ok
}

// Handle processes one line of input from c.
func (s *Server) Handle(_ context.Context, c *client.Client, line string) error {
	sess, ok := s.sessions[c.ID()]
	if !ok {
		return fmt.Errorf("no session for client %s", c)
	}

	switch sess.State() {
	case Menu:
		s.handleMenu(sess, line)
	case NewGamePlayers:
		s.handleNewGamePlayers(sess, line)
	case NewGamePlanets:
		s.handleNewGamePlanets(sess, line)
	case NewGameTurns:
		s.handleNewGameTurns(sess, line)
	case NewGameConfirm:
		s.handleNewGameConfirm(sess, line)
	case JoinGameID:
		s.handleJoinGameID(sess, line)
	case JoinGameNickname:
		s.handleJoinGameNickname(sess, line)
	case InGameWaiting:
		// Nothing to do until the game starts.
	case InGameMove, InGameWaitingOthers:
		s.handleOrder(sess, line)
	case EndGame:
		s.handleEndGame(sess)
	}
	return nil
}

// Disconnect releases everything the client's session held: a staged board,
// a reserved seat or a seat in a running game.
func (s *Server) Disconnect(c *client.Client) {
	sess, ok := s.sessions[c.ID()]
	if !ok {
		return
	}
	delete(s.sessions, c.ID())

	// The session drops the seat before Leave runs, so it is never left twice.
	g, seat := sess.game, sess.seat
	sess.backToMenu()
	switch {
	case seat != nil:
		g.Leave(seat)
	case g != nil:
		g.CancelReservation()
	}
}

func (s *Server) handleMenu(sess *Session, line string) {
	switch leadingInt(line) {
	case 1:
		sess.state = NewGamePlayers
		s.send(sess, fmt.Sprintf("Number of players [%d-%d]: ", game.MinPlayers, game.MaxPlayers))
	case 2:
		s.send(sess, s.renderGameList()+menuText)
	case 3:
		sess.state = JoinGameID
		s.send(sess, "Enter game id: ")
	case 4:
		s.send(sess, s.renderScores()+menuText)
	case 5:
		s.send(sess, "Bye!\r\n")
		if err := sess.client.Close(); err != nil {
			s.Logger.Warnf("[%s] failed to close %s: %v", s.Name, sess.client, err)
		}
	default:
		s.send(sess, invalidSelection)
	}
}

func (s *Server) handleNewGamePlayers(sess *Session, line string) {
	players := leadingInt(line)
	if players < game.MinPlayers || players > game.MaxPlayers {
		s.send(sess, invalidSelection)
		return
	}
	sess.players = players
	sess.state = NewGamePlanets
	s.send(sess, fmt.Sprintf("Number of planets [%d-%d]: ", players, game.MaxPlanets))
}

func (s *Server) handleNewGamePlanets(sess *Session, line string) {
	planets := leadingInt(line)
	if planets < sess.players || planets > game.MaxPlanets {
		s.send(sess, invalidSelection)
		return
	}
	sess.planets = planets
	sess.staged = s.Registry.NewBoard(planets)
	sess.state = NewGameTurns
	s.send(sess, fmt.Sprintf("Number of turns [1-%d]: ", game.MaxTurns))
}

func (s *Server) handleNewGameTurns(sess *Session, line string) {
	turns := leadingInt(line)
	if turns < 1 || turns > game.MaxTurns {
		s.send(sess, invalidSelection)
		return
	}
	sess.turns = turns
	sess.state = NewGameConfirm
	s.send(sess, sess.staged.Render()+likeItPrompt)
}

func (s *Server) handleNewGameConfirm(sess *Session, line string) {
	var answer rune
	if line != "" {
		answer = unicode.ToLower(rune(line[0]))
	}

	switch answer {
	case 'y':
		cfg := game.Config{Players: sess.players, Planets: sess.planets, Turns: sess.turns}
		id, err := s.Registry.Create(cfg, sess.staged)
		sess.backToMenu()
		if err != nil {
			s.Logger.Errorf("[%s] failed to create game %+v: %v", s.Name, cfg, err)
			s.send(sess, menuText)
			return
		}
		s.send(sess, fmt.Sprintf("Game created! ID: %d \r\n", id)+menuText)
	case 'n', 0:
		sess.staged = s.Registry.NewBoard(sess.planets)
		s.send(sess, "OK, here's another one:\r\n"+sess.staged.Render()+likeItPrompt)
	default:
		s.send(sess, invalidSelection)
	}
}

func (s *Server) handleJoinGameID(sess *Session, line string) {
	g, err := s.Registry.Join(leadingInt(line))
	switch {
	case errors.Is(err, game.ErrGameClosed):
		sess.backToMenu()
		s.send(sess, "\r\nThis game is not accepting new players!\r\n"+menuText)
	case err != nil:
		sess.backToMenu()
		s.send(sess, "\r\nNonexistent game!\r\n"+menuText)
	default:
		sess.game = g
		sess.state = JoinGameNickname
		s.send(sess, fmt.Sprintf("Enter a nickname [%d chars max]: ", game.MaxNicknameLength))
	}
}

func (s *Server) handleJoinGameNickname(sess *Session, line string) {
	nickname := line
	if len(nickname) > game.MaxNicknameLength {
		nickname = nickname[:game.MaxNicknameLength]
	}

	seat, err := sess.game.Seat(nickname, sess.client)
	switch {
	case errors.Is(err, game.ErrNicknameEmpty):
		s.send(sess, "Your nickname cannot be empty, try again: ")
	case errors.Is(err, game.ErrNicknameTaken):
		s.send(sess, "The selected nickname is taken, try another one: ")
	case err != nil:
		s.send(sess, "Your nickname may only consist of letters (A-Z, a-z), numbers (0-9) and spaces.\r\n"+
			"Invalid nickname, try again: ")
	default:
		sess.seat = seat
		s.Logger.Infof("[%s] %s joined game %d as %s", s.Name, sess.client, sess.game.ID(), nickname)
	}
}

func (s *Server) handleOrder(sess *Session, line string) {
	if strings.EqualFold(line, "pass") {
		sess.game.Pass(sess.seat)
		return
	}

	if err := sess.game.Order(sess.seat, line); err != nil {
		var orderErr game.OrderError
		if errors.As(err, &orderErr) {
			s.send(sess, orderErrorText[orderErr])
		} else {
			s.Logger.Warnf("[%s] unexpected order error from %s: %v", s.Name, sess.client, err)
		}
	}
	sess.game.Prompt(sess.seat)
}

func (s *Server) handleEndGame(sess *Session) {
	g, seat := sess.game, sess.seat
	sess.backToMenu()
	g.Leave(seat)
	s.send(sess, menuText)
}

func (s *Server) renderGameList() string {
	var sb strings.Builder
	sb.WriteString("\r\n" +
		"Game ID  Players  Planets  Turns  Open\r\n" +
		"=======  =======  =======  =====  ====\r\n")

	for _, g := range s.Registry.Games() {
		cfg := g.Config()
		open := "No"
		if g.Open() {
			open = "Yes"
		}
		fmt.Fprintf(&sb, "%-7d  %-7s  %-7d  %-5d  %-4s\r\n",
			g.ID(),
			fmt.Sprintf("%d/%d", g.Connected(), cfg.Players),
			cfg.Planets,
			cfg.Turns,
			open,
		)
	}
	return sb.String()
}

func (s *Server) renderScores() string {
	var sb strings.Builder
	sb.WriteString("\r\n" +
		"Player           Best Score  Last Score\r\n" +
		"======           ==========  ==========\r\n")

	if s.Scoreboard == nil {
		return sb.String()
	}
	scores, err := s.Scoreboard.List()
	if err != nil {
		s.Logger.Errorf("[%s] failed to list scores: %v", s.Name, err)
		return sb.String()
	}
	for _, score := range scores {
		fmt.Fprintf(&sb, "%-15s  %-10s  %-10s\r\n",
			score.Nickname, strconv.Itoa(score.Best), strconv.Itoa(score.Last))
	}
	return sb.String()
}

func (s *Server) send(sess *Session, text string) {
	if err := sess.client.Send(text); err != nil {
		s.Logger.Warnf("[%s] failed to send to %s: %v", s.Name, sess.client, err)
	}
}

// leadingInt parses the optionally signed decimal number at the start of s,
// ignoring anything after it. Input without a leading number yields 0.
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
