package game

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/galacticturtle/galacticd/internal/random"
)

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{250, 100, 3},
		{200, 100, 2},
		{1, 100, 1},
		{0, 100, 0},
	}
	for _, tt := range tests {
		if got := ceilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAdvanceTurn_ProductivityEvent(t *testing.T) {
	// Planet A: prod event hits, r=25, decrease, second variant; attack event
	// and uprising miss. Planet B is neutral and both events miss.
	rng := random.NewSequence(0, 24, 0, 1, 99, 99, 99, 99)
	g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{8, 8}), rng, nil)
	seats, outs := startTestGame(g, "P1", "P2")
	a := g.Planets()[0]
	a.Owner = seats[0].Identity()

	g.AdvanceTurn()

	if rng.Drawn() != 8 {
		t.Errorf("expected 8 random draws, got %d", rng.Drawn())
	}
	if a.Prod != 7 || a.Ships != 27 {
		t.Errorf("expected prod 7 and 27 ships, got prod %d and %d ships", a.Prod, a.Ships)
	}
	want := "An accident takes place and ship productivity of planet A decreases 25%.\r\n"
	if !strings.Contains(outs[1].String(), want) {
		t.Errorf("expected %q, got:\n%q", want, outs[1].String())
	}
}

func TestAdvanceTurn_AttackEventOnNeutralPlanet(t *testing.T) {
	// Planet A misses both. Planet B: attack event hits, r=50, increase,
	// third variant.
	rng := random.NewSequence(99, 99, 99, 0, 49, 99, 2)
	g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{8, 8}), rng, nil)
	_, outs := startTestGame(g, "P1", "P2")
	b := g.Planets()[1]

	g.AdvanceTurn()

	if rng.Drawn() != 7 {
		t.Errorf("expected 7 random draws, got %d", rng.Drawn())
	}
	if b.Attack != 60 || b.Ships != InitialShips {
		t.Errorf("expected attack 60 and untouched ships, got attack %d and %d ships", b.Attack, b.Ships)
	}
	want := "New weapon system developed, attack ratio of planet B increases 50%.\r\n"
	if !strings.Contains(outs[0].String(), want) {
		t.Errorf("expected %q, got:\n%q", want, outs[0].String())
	}
}

func TestAdvanceTurn_EventWithoutEffect(t *testing.T) {
	// A planet with no production draws no direction and announces nothing.
	rng := random.NewSequence(0, 10, 99, 99, 99)
	g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{8, 8}), rng, nil)
	_, outs := startTestGame(g, "P1", "P2")
	g.Planets()[0].Prod = 0

	g.AdvanceTurn()

	if rng.Drawn() != 5 {
		t.Errorf("expected 5 random draws, got %d", rng.Drawn())
	}
	if strings.Contains(outs[0].String(), "productivity") {
		t.Errorf("expected no productivity message, got:\n%q", outs[0].String())
	}
}

func TestAdvanceTurn_Uprising(t *testing.T) {
	// Planet A: both events miss, uprising hits, the first pick is the
	// current owner and is redrawn. Planet B misses both.
	rng := random.NewSequence(99, 99, 0, 0, 1, 99, 99)
	g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{8, 8}), rng, nil)
	seats, outs := startTestGame(g, "P1", "P2")
	a := g.Planets()[0]
	a.Owner = seats[0].Identity()

	g.AdvanceTurn()

	if rng.Drawn() != 7 {
		t.Errorf("expected 7 random draws, got %d", rng.Drawn())
	}
	if a.Owner != seats[1].Identity() {
		t.Fatalf("expected planet A to join P2, got %v", a.Owner)
	}
	if a.Ships != InitialShips+InitialProd {
		t.Errorf("expected the new owner to collect production, got %d ships", a.Ships)
	}
	if !strings.Contains(outs[0].String(), "The people of planet A decide to join P2.\r\n") {
		t.Errorf("expected the uprising message, got:\n%q", outs[0].String())
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		targetOwn  bool
		defenders  int
		ships      int
		draws      []int
		wantOwner  string
		wantShips  int
		wantProd   int
		wantDrawn  int
		wantOutput string
	}{
		{
			name:       "attacker captures an owned planet",
			targetOwn:  true,
			defenders:  1,
			ships:      3,
			draws:      []int{0, 0, 100},
			wantOwner:  "P1",
			wantShips:  3,
			wantProd:   7,
			wantDrawn:  3,
			wantOutput: "P1 attacks planet B and wins with 3 ships remaining.\r\n",
		},
		{
			name:       "defender repels the attack",
			targetOwn:  true,
			defenders:  5,
			ships:      2,
			draws:      []int{0, 100, 0, 100},
			wantOwner:  "P2",
			wantShips:  5,
			wantProd:   7,
			wantDrawn:  4,
			wantOutput: "P1 attacks planet B but loses. P2 is left with 5 ships.\r\n",
		},
		{
			name:       "attacker colonizes a neutral planet",
			defenders:  1,
			ships:      1,
			draws:      []int{0, 0, 100},
			wantOwner:  "P1",
			wantShips:  1,
			wantProd:   InitialProd,
			wantDrawn:  3,
			wantOutput: "P1 conquers planet B with 1 ships remaining.\r\n",
		},
		{
			name:       "colonization fails",
			defenders:  1,
			ships:      1,
			draws:      []int{0, 100},
			wantShips:  1,
			wantProd:   7,
			wantDrawn:  2,
			wantOutput: "P1 tries to conquer planet B but fails.\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := random.NewSequence(tt.draws...)
			g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
				newTestBoard([2]int{0, 0}, [2]int{8, 8}), rng, nil)
			seats, outs := startTestGame(g, "P1", "P2")

			target := g.Planets()[1]
			target.Ships = tt.defenders
			target.Prod = 7
			if tt.targetOwn {
				target.Owner = seats[1].Identity()
			}

			g.resolve(&Move{Owner: seats[0].Identity(), Target: target, Ships: tt.ships, Attack: InitialAttack})

			owner := ""
			if target.Owner != nil {
				owner = target.Owner.Nickname()
			}
			got := []interface{}{owner, target.Ships, target.Prod, rng.Drawn(), outs[0].String()}
			want := []interface{}{tt.wantOwner, tt.wantShips, tt.wantProd, tt.wantDrawn, tt.wantOutput}
			if diff := deep.Equal(got, want); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestAdvanceTurn_Reinforcements(t *testing.T) {
	g := newTestGame(t, Config{Players: 2, Planets: 3, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{1, 0}, [2]int{15, 15}), random.NewSequence(99), nil)
	seats, outs := startTestGame(g, "P1", "P2")
	a, b, c := g.Planets()[0], g.Planets()[1], g.Planets()[2]
	a.Owner, b.Owner, c.Owner = seats[0].Identity(), seats[0].Identity(), seats[1].Identity()

	if err := g.Order(seats[0], "A B 5"); err != nil {
		t.Fatalf("Order() returned an unexpected error: %v", err)
	}
	if moves := g.PendingMoves(2); len(moves) != 1 {
		t.Fatalf("expected the fleet to arrive on turn 2, got %d moves", len(moves))
	}

	g.AdvanceTurn()

	if a.Ships != 25 || b.Ships != 35 {
		t.Errorf("expected 25 ships on A and 35 on B, got %d and %d", a.Ships, b.Ships)
	}
	if g.PendingMoves(2) != nil {
		t.Error("expected the turn 2 fleets to be consumed")
	}
	if !strings.Contains(outs[1].String(), "Reinforcements (5 ships) arrive at planet B.\r\n") {
		t.Errorf("expected the reinforcement message, got:\n%q", outs[1].String())
	}
}

func TestAdvanceTurn_DropsFleetsOfDepartedPlayers(t *testing.T) {
	g := newTestGame(t, Config{Players: 3, Planets: 3, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{1, 0}, [2]int{15, 15}), random.NewSequence(99), nil)
	seats, _ := startTestGame(g, "P1", "P2", "P3")
	a, b := g.Planets()[0], g.Planets()[1]
	a.Owner, b.Owner = seats[0].Identity(), seats[1].Identity()

	if err := g.Order(seats[0], "A B 5"); err != nil {
		t.Fatalf("Order() returned an unexpected error: %v", err)
	}
	g.Leave(seats[0])
	g.AdvanceTurn()

	if b.Owner != seats[1].Identity() || b.Ships != InitialShips+InitialProd {
		t.Errorf("expected planet B untouched apart from production, got owner %v and %d ships", b.Owner, b.Ships)
	}
}

func TestRenderScreen(t *testing.T) {
	g := newTestGame(t, Config{Players: 2, Planets: 2, Turns: 5},
		newTestBoard([2]int{0, 0}, [2]int{3, 2}), random.NewSequence(99), nil)
	seats, _ := startTestGame(g, "P1", "P2")
	g.Planets()[0].Owner = seats[0].Identity()

	lines := strings.Split(g.renderScreen(), "\r\n")
	empty := strings.Repeat(". ", BoardSize)

	want := []string{
		"A " + strings.Repeat(". ", BoardSize-1) + "| Planet  Ships  Prod  Attack%  Owner",
		empty + "| A       20     10    40       P1",
		". . . B " + strings.Repeat(". ", BoardSize-4) + "| B",
		empty + "| ",
	}
	if diff := deep.Equal(lines[:4], want); diff != nil {
		t.Error(diff)
	}
	if lines[BoardSize] != strings.Repeat("--", BoardSize)+"+-[Galactic Turtle, Turn # 1/ 5]-" {
		t.Errorf("unexpected footer %q", lines[BoardSize])
	}
}

func TestGenerateTopology(t *testing.T) {
	for k := 1; k <= MaxPlanets; k++ {
		b := GenerateTopology(random.NewLocal(int64(k)), k)
		planets := b.Planets()
		if len(planets) != k {
			t.Fatalf("expected %d planets, got %d", k, len(planets))
		}

		seen := make(map[[2]int]bool)
		for i, p := range planets {
			if p.Name != byte('A'+i) {
				t.Errorf("expected planet %d to be named %c, got %c", i, 'A'+i, p.Name)
			}
			if seen[[2]int{p.X, p.Y}] {
				t.Errorf("two planets on cell %d,%d", p.X, p.Y)
			}
			seen[[2]int{p.X, p.Y}] = true
			if b.Cell(p.X, p.Y) != p {
				t.Errorf("planet %c is not on its cell", p.Name)
			}
			if p.Ships != InitialShips || p.Prod != InitialProd || p.Attack != InitialAttack || p.Owner != nil {
				t.Errorf("planet %c not initialized to defaults: %+v", p.Name, p)
			}
		}
	}
}

func TestGenerateTopology_RedrawsOccupiedCells(t *testing.T) {
	b := GenerateTopology(random.NewSequence(1, 2, 1, 2, 5, 6), 2)

	planets := b.Planets()
	if diff := deep.Equal([]int{planets[0].X, planets[0].Y, planets[1].X, planets[1].Y}, []int{1, 2, 5, 6}); diff != nil {
		t.Error(diff)
	}
}

func TestBoard_Render(t *testing.T) {
	b := newTestBoard([2]int{2, 0})
	lines := strings.Split(b.Render(), "\r\n")

	if len(lines) != BoardSize+1 {
		t.Fatalf("expected %d rows, got %d", BoardSize, len(lines)-1)
	}
	if lines[0] != ". . A "+strings.Repeat(". ", BoardSize-3)+"|" {
		t.Errorf("unexpected first row %q", lines[0])
	}
}

func TestBoard_Clone(t *testing.T) {
	b := newTestBoard([2]int{0, 0}, [2]int{1, 1})
	c := b.Clone()
	c.Cell(0, 0).Ships = 1

	if b.Cell(0, 0).Ships != InitialShips {
		t.Error("expected the clone not to share planets")
	}
}
