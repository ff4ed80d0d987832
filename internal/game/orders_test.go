package game

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/galacticturtle/galacticd/internal/random"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		line    string
		want    Order
		wantErr error
	}{
		{line: "A B 10", want: Order{From: 0, To: 1, Ships: 10}},
		{line: "c a 1", want: Order{From: 2, To: 0, Ships: 1}},
		{line: "O\tA   7", want: Order{From: 14, To: 0, Ships: 7}},
		{line: "", wantErr: ErrEmptyOrder},
		{line: "attack", wantErr: ErrUnparsableOrder},
		{line: "A B", wantErr: ErrUnparsableOrder},
		{line: "A B 0", wantErr: ErrUnparsableOrder},
		{line: "A B -3", wantErr: ErrUnparsableOrder},
		{line: "AB C 3", wantErr: ErrUnparsableOrder},
		{line: "A B 99999999999999999999999", wantErr: ErrInvalidShipCount},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseOrder(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseOrder() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseOrder() diff:\n%s", diff)
			}
		})
	}
}

func newOrderTestGame(t *testing.T) (*Game, *Seat) {
	t.Helper()
	g := newTestGame(t, Config{Players: 2, Planets: 3, Turns: 99},
		newTestBoard([2]int{0, 0}, [2]int{3, 4}, [2]int{15, 15}), random.NewSequence(99), nil)
	seats, _ := startTestGame(g, "P1", "P2")
	g.Planets()[0].Owner = seats[0].Identity()
	g.Planets()[2].Owner = seats[1].Identity()
	return g, seats[0]
}

func TestGame_OrderErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{line: "", want: ErrEmptyOrder},
		{line: "go away", want: ErrUnparsableOrder},
		{line: "Z B 1", want: ErrInvalidSource},
		{line: "D B 1", want: ErrInvalidSource},
		{line: "B A 1", want: ErrNotOwner},
		{line: "C A 1", want: ErrNotOwner},
		{line: "A A 1", want: ErrInvalidTarget},
		{line: "A Z 1", want: ErrInvalidTarget},
		{line: "A B 21", want: ErrInvalidShipCount},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			g, seat := newOrderTestGame(t)
			if err := g.Order(seat, tt.line); !errors.Is(err, tt.want) {
				t.Errorf("Order(%q) error = %v, want %v", tt.line, err, tt.want)
			}
			if g.Planets()[0].Ships != InitialShips {
				t.Errorf("expected a refused order to keep all ships, got %d", g.Planets()[0].Ships)
			}
		})
	}
}

func TestGame_OrderMergesFleets(t *testing.T) {
	g, seat := newOrderTestGame(t)
	a := g.Planets()[0]

	for _, line := range []string{"A B 5", "a b 3"} {
		if err := g.Order(seat, line); err != nil {
			t.Fatalf("Order(%q) returned an unexpected error: %v", line, err)
		}
	}
	// A fleet launched with a different attack ratio travels separately.
	a.Attack = 55
	if err := g.Order(seat, "A B 2"); err != nil {
		t.Fatalf("Order() returned an unexpected error: %v", err)
	}

	if a.Ships != 10 {
		t.Errorf("expected 10 ships left on A, got %d", a.Ships)
	}

	// Distance from A (0,0) to B (3,4) is exactly 5 turns.
	b := g.Planets()[1]
	want := []*Move{
		{Owner: seat.Identity(), Target: b, Ships: 8, Attack: InitialAttack},
		{Owner: seat.Identity(), Target: b, Ships: 2, Attack: 55},
	}
	if diff := cmp.Diff(want, g.PendingMoves(6), cmp.AllowUnexported(Identity{})); diff != "" {
		t.Errorf("PendingMoves() diff:\n%s", diff)
	}
}

func TestGame_OrderBeyondLastTurn(t *testing.T) {
	g, seat := newOrderTestGame(t)
	g.turn = 98

	// Arrives on turn 103, which no game reaches.
	if err := g.Order(seat, "A B 4"); err != nil {
		t.Fatalf("Order() returned an unexpected error: %v", err)
	}
	if g.Planets()[0].Ships != InitialShips-4 {
		t.Errorf("expected the ships to leave anyway, got %d left", g.Planets()[0].Ships)
	}
	for turn := 1; turn <= MaxTurns; turn++ {
		if moves := g.PendingMoves(turn); len(moves) != 0 {
			t.Errorf("expected no fleets, found %d arriving on turn %d", len(moves), turn)
		}
	}
}

func TestTravelTime(t *testing.T) {
	tests := []struct {
		from, to [2]int
		want     int
	}{
		{from: [2]int{0, 0}, to: [2]int{3, 4}, want: 5},
		{from: [2]int{0, 0}, to: [2]int{1, 1}, want: 1},
		{from: [2]int{0, 0}, to: [2]int{15, 15}, want: 21},
		{from: [2]int{4, 4}, to: [2]int{4, 5}, want: 1},
	}
	for _, tt := range tests {
		from := &Planet{X: tt.from[0], Y: tt.from[1]}
		to := &Planet{X: tt.to[0], Y: tt.to[1]}
		if got := travelTime(from, to); got != tt.want {
			t.Errorf("travelTime(%v, %v) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}
