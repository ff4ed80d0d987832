package game

import (
	"fmt"
	"strings"
)

// renderScreen draws the board with the planet table to its right and the
// turn banner underneath. Only owned planets show their stats.
func (g *Game) renderScreen() string {
	var sb strings.Builder

	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			sb.WriteByte(g.board.cellName(x, y))
			sb.WriteByte(' ')
		}
		sb.WriteString("| ")

		switch {
		case y == 0:
			sb.WriteString("Planet  Ships  Prod  Attack%  Owner\r\n")
		case y <= len(g.planets):
			p := g.planets[y-1]
			if p.Owner != nil {
				fmt.Fprintf(&sb, "%-6c  %-5d  %-4d  %-7d  %s\r\n", p.Name, p.Ships, p.Prod, p.Attack, p.Owner.Nickname())
			} else {
				fmt.Fprintf(&sb, "%c\r\n", p.Name)
			}
		default:
			sb.WriteString("\r\n")
		}
	}

	sb.WriteString(strings.Repeat("--", BoardSize))
	if g.turn > g.cfg.Turns {
		sb.WriteString("+-[Galactic Turtle, Game Over :o ]-\r\n")
	} else {
		fmt.Fprintf(&sb, "+-[Galactic Turtle, Turn #%2d/%2d]-\r\n", g.turn, g.cfg.Turns)
	}
	return sb.String()
}
