// Package scoreboard keeps the persistent highscore list that finished games
// report their results to.
package scoreboard

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/galacticturtle/galacticd/internal/core/data"
)

const listingKey = "listing"

// Scoreboard records game results and serves the highscore list. Listings are
// kept in memory for ttl and dropped as soon as a new result is recorded.
type Scoreboard struct {
	db     *gorm.DB
	cache  *gocache.Cache
	ttl    time.Duration
	logger *logrus.Entry
}

func New(db *gorm.DB, ttl time.Duration, logger *logrus.Logger) *Scoreboard {
	return &Scoreboard{
		db:     db,
		cache:  gocache.New(gocache.NoExpiration, 10*time.Second),
		ttl:    ttl,
		logger: logger.WithField("component", "scoreboard"),
	}
}

// Record upserts the result of a game for nickname.
func (s *Scoreboard) Record(nickname string, score int) error {
	s.cache.Delete(listingKey)

	if err := data.RecordScore(s.db, nickname, score); err != nil {
		return fmt.Errorf("recording score for %s: %w", nickname, err)
	}
	s.logger.Debugf("recorded score %d for %s", score, nickname)
	return nil
}

// List returns every recorded player ordered by best score, highest first.
func (s *Scoreboard) List() ([]data.Score, error) {
	if cached, ok := s.cache.Get(listingKey); ok {
		return cached.([]data.Score), nil
	}

	scores, err := data.ListScores(s.db)
	if err != nil {
		return nil, fmt.Errorf("listing scores: %w", err)
	}
	if s.ttl > 0 {
		s.cache.Set(listingKey, scores, s.ttl)
	}
	return scores, nil
}
