package game

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

var (
	prodDecreaseEvents = [3]string{
		"Due to lazy workers, ship productivity of planet %c decreases %d%%.\r\n",
		"An accident takes place and ship productivity of planet %c decreases %d%%.\r\n",
		"Workers go on strike. Ship productivity of planet %c decreases %d%%.\r\n",
	}
	prodIncreaseEvents = [3]string{
		"Thanks to better economy, ship productivity of planet %c increases %d%%.\r\n",
		"New equipment arrives. Ship productivity of planet %c increases %d%%.\r\n",
		"More people are hired and ship productivity of planet %c increases %d%%.\r\n",
	}
	attackDecreaseEvents = [3]string{
		"Due to poor quality ammunition, attack ratio of planet %c decreases %d%%.\r\n",
		"Ammunition delivery is late, attack ratio of planet %c decreases %d%%.\r\n",
		"Weapon systems maintenance, attack ratio of planet %c decreases %d%%.\r\n",
	}
	attackIncreaseEvents = [3]string{
		"Thanks to new technology ships, attack ratio of planet %c increases %d%%.\r\n",
		"An ammunition delivery raises the attack ratio of planet %c by %d%%.\r\n",
		"New weapon system developed, attack ratio of planet %c increases %d%%.\r\n",
	}
)

// AdvanceTurn resolves the current turn: random events and production, fleet
// arrivals, then either the next prompt or the end of the game.
func (g *Game) AdvanceTurn() {
	g.broadcast("\r\n")
	g.releaseOrphanedPlanets(true)

	for _, p := range g.planets {
		g.applyEvents(p)
	}

	g.turn++
	if g.turn <= MaxTurns {
		arrivals := g.moves[g.turn]
		g.moves[g.turn] = nil
		if g.logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
			g.logger.Debugf("resolving turn %d arrivals:\n%s", g.turn, spew.Sdump(arrivals))
		}
		for _, m := range arrivals {
			g.resolve(m)
		}
	}

	for _, s := range g.seats {
		s.status = SeatMoving
	}
	g.ready = 0

	g.broadcast(g.renderScreen())
	if g.turn > g.cfg.Turns || len(g.seats) < 2 {
		g.end()
		return
	}
	for _, s := range g.seats {
		g.Prompt(s)
	}
}

// releaseOrphanedPlanets turns planets of players no longer seated neutral.
func (g *Game) releaseOrphanedPlanets(announce bool) {
	for i, p := range g.planets {
		owner := p.Owner
		if owner == nil || g.seated(owner) {
			continue
		}
		if announce {
			g.broadcast(fmt.Sprintf("%s has disconnected.\r\n", owner.Nickname()))
		}
		for _, other := range g.planets[i:] {
			if other.Owner == owner {
				other.Owner = nil
			}
		}
	}
}

// chance returns true with a probability of percent%.
func (g *Game) chance(percent int) bool {
	return g.rng.Int()%100 < percent
}

// fluctuate applies a random swing of up to 50% to *value and announces it.
func (g *Game) fluctuate(p *Planet, value *int, decrease, increase *[3]string) {
	r := g.rng.Int()%50 + 1
	delta := ceilDiv(*value*r, 100)
	if delta == 0 {
		return
	}

	var text string
	if g.chance(50) {
		*value -= delta
		text = decrease[g.rng.Int()%len(decrease)]
	} else {
		*value += delta
		text = increase[g.rng.Int()%len(increase)]
	}
	g.broadcast(fmt.Sprintf(text, p.Name, r))
}

func (g *Game) applyEvents(p *Planet) {
	if g.chance(10) {
		g.fluctuate(p, &p.Prod, &prodDecreaseEvents, &prodIncreaseEvents)
	}
	if g.chance(10) {
		g.fluctuate(p, &p.Attack, &attackDecreaseEvents, &attackIncreaseEvents)
	}
	if p.Owner != nil && g.chance(1) {
		g.uprise(p)
	}
	if p.Owner != nil {
		p.Ships += p.Prod
	}
}

// uprise hands p over to a random other seated player.
func (g *Game) uprise(p *Planet) {
	if len(g.seats) < 2 {
		return
	}

	var s *Seat
	for s == nil || s.identity == p.Owner {
		s = g.seats[g.rng.Int()%len(g.seats)]
	}
	p.Owner = s.identity
	g.broadcast(fmt.Sprintf("The people of planet %c decide to join %s.\r\n", p.Name, s.Nickname()))
}

// resolve lands a fleet: reinforcement of an own planet, or a battle.
func (g *Game) resolve(m *Move) {
	if !g.seated(m.Owner) {
		return
	}
	target := m.Target

	if target.Owner != nil && target.Owner == m.Owner {
		target.Ships += m.Ships
		g.broadcast(fmt.Sprintf("Reinforcements (%d ships) arrive at planet %c.\r\n", m.Ships, target.Name))
		return
	}

	ships := g.battle(m.Ships, m.Attack, target)
	attacker := m.Owner.Nickname()

	var text string
	switch {
	case target.Owner != nil && ships > 0:
		text = fmt.Sprintf("%s attacks planet %c and wins with %d ships remaining.\r\n", attacker, target.Name, ships)
		target.Owner = m.Owner
		target.Ships = ships
	case target.Owner != nil:
		text = fmt.Sprintf("%s attacks planet %c but loses. %s is left with %d ships.\r\n",
			attacker, target.Name, target.Owner.Nickname(), target.Ships)
	case ships > 0:
		text = fmt.Sprintf("%s conquers planet %c with %d ships remaining.\r\n", attacker, target.Name, ships)
		target.Owner = m.Owner
		target.Ships = ships
		target.Prod = InitialProd
	default:
		text = fmt.Sprintf("%s tries to conquer planet %c but fails.\r\n", attacker, target.Name)
	}
	g.broadcast(text)
}

// battle fights ships with the given attack against target's garrison until
// one side is wiped out, returning the attacker's surviving ships.
func (g *Game) battle(ships, attack int, target *Planet) int {
	defense := target.Attack + g.rng.Int()%16

	for ships > 0 && target.Ships > 0 {
		if g.rng.Int()%101 > attack {
			ships--
		}
		if ships == 0 {
			break
		}
		if g.rng.Int()%101 > defense {
			target.Ships--
		}
	}
	return ships
}

// Score is the sum of ships*attack over the planets id owns.
func (g *Game) Score(id *Identity) int {
	score := 0
	for _, p := range g.planets {
		if p.Owner == id {
			score += p.Ships * p.Attack
		}
	}
	return score
}

func (g *Game) end() {
	g.releaseOrphanedPlanets(false)
	g.finished = true

	// If all players disconnected during a round there's nothing to do.
	if len(g.seats) == 0 {
		g.logger.Info("game ended with no players left")
		return
	}

	var sb strings.Builder
	sb.WriteString("Player               Score\r\n")
	sb.WriteString("======               =====\r\n")

	best, winner := 0, g.seats[0]
	for _, s := range g.seats {
		s.status = SeatFinished

		score := g.Score(s.identity)
		if g.scores != nil {
			if err := g.scores.Record(s.Nickname(), score); err != nil {
				g.logger.Errorf("failed to record score: %v", err)
			}
		}
		fmt.Fprintf(&sb, "%-20s %d\r\n", s.Nickname(), score)

		if score > best {
			best, winner = score, s
		}
	}
	sb.WriteString("\r\n")
	fmt.Fprintf(&sb, "%s wins the game. Press enter to go back to the menu.", winner.Nickname())

	g.broadcast(sb.String())
	g.logger.Infof("game over, %s wins with %d", winner.Nickname(), best)
}

// ceilDiv divides rounding towards positive infinity.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}
