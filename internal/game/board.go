package game

import (
	"fmt"
	"strings"

	"github.com/galacticturtle/galacticd/internal/random"
)

const (
	BoardSize = 16

	InitialShips  = 20
	InitialProd   = 10
	InitialAttack = 40
)

// Planet is one occupied cell of the board.
type Planet struct {
	Name   byte
	X, Y   int
	Ships  int
	Prod   int
	Attack int
	// Nil while the planet is neutral.
	Owner *Identity
}

// Board is the fixed grid planets are placed on. Empty cells are nil.
type Board struct {
	cells [BoardSize][BoardSize]*Planet
}

// GenerateTopology places k planets on random empty cells, lettered from 'A'
// in placement order. Occupied cells are simply redrawn; with at most
// MaxPlanets planets on 256 cells collisions stay rare.
func GenerateTopology(rng random.Source, k int) *Board {
	if k < 1 || k > MaxPlanets {
		panic(fmt.Sprintf("GenerateTopology: planet count %d out of range", k))
	}

	b := &Board{}
	for placed := 0; placed < k; {
		x := rng.Int() % BoardSize
		y := rng.Int() % BoardSize
		if b.cells[y][x] != nil {
			continue
		}
		b.cells[y][x] = &Planet{
			Name:   byte('A' + placed),
			X:      x,
			Y:      y,
			Ships:  InitialShips,
			Prod:   InitialProd,
			Attack: InitialAttack,
		}
		placed++
	}
	return b
}

// Cell returns the planet at x, y or nil.
func (b *Board) Cell(x, y int) *Planet {
	return b.cells[y][x]
}

// Planets returns the board's planets ordered by name.
func (b *Board) Planets() []*Planet {
	var planets []*Planet
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if p := b.cells[y][x]; p != nil {
				planets = append(planets, p)
			}
		}
	}

	ordered := make([]*Planet, len(planets))
	for _, p := range planets {
		idx := int(p.Name - 'A')
		if idx < 0 || idx >= len(ordered) || ordered[idx] != nil {
			panic(fmt.Sprintf("Planets: board has inconsistent planet name %q", p.Name))
		}
		ordered[idx] = p
	}
	return ordered
}

// Clone returns a deep copy, so the staged board of a player creating a game
// and the board of the registered game never share planets.
func (b *Board) Clone() *Board {
	c := &Board{}
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if p := b.cells[y][x]; p != nil {
				cp := *p
				c.cells[y][x] = &cp
			}
		}
	}
	return c
}

func (b *Board) cellName(x, y int) byte {
	if p := b.cells[y][x]; p != nil {
		return p.Name
	}
	return '.'
}

// Render draws the bare topology as shown while a game is being created.
func (b *Board) Render() string {
	var sb strings.Builder
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			sb.WriteByte(b.cellName(x, y))
			sb.WriteByte(' ')
		}
		sb.WriteString("|\r\n")
	}
	return sb.String()
}
