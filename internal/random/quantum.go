package random

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// QuantumConfig describes how to reach the remote random number service.
type QuantumConfig struct {
	// ServiceURL contains a %d placeholder for the batch size.
	ServiceURL        string
	BatchSize         int
	RequestsPerSecond float64
	Timeout           time.Duration
}

type quantumResponse struct {
	Data    []int `json:"data"`
	Success bool  `json:"success"`
}

// Quantum is a Source that pulls batches of integers from a remote hardware
// random number service. Requests are throttled, and when the service fails
// mid-game the fallback Source is used so a game is never stalled by it.
type Quantum struct {
	cfg      QuantumConfig
	client   *http.Client
	limiter  *rate.Limiter
	fallback Source
	logger   *logrus.Entry

	buffered []int
}

func NewQuantum(cfg QuantumConfig, fallback Source, logger *logrus.Logger) *Quantum {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	return &Quantum{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		fallback: fallback,
		logger:   logger.WithField("component", "quantum"),
	}
}

// Probe fetches a first batch so that an unreachable service is reported
// before the server starts accepting players.
func (q *Quantum) Probe(ctx context.Context) error {
	return q.refill(ctx)
}

func (q *Quantum) Int() int {
	if len(q.buffered) == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), q.requestBudget())
		err := q.refill(ctx)
		cancel()
		if err != nil {
			q.logger.Warnf("falling back to local random numbers: %v", err)
			return q.fallback.Int()
		}
	}

	v := q.buffered[0]
	q.buffered = q.buffered[1:]
	if v < 0 {
		v = -v
	}
	return v
}

// requestBudget bounds both the wait for the limiter and the request itself.
func (q *Quantum) requestBudget() time.Duration {
	wait := time.Duration(float64(time.Second) / q.cfg.RequestsPerSecond)
	if q.cfg.Timeout > 0 {
		return wait + q.cfg.Timeout
	}
	return wait + 10*time.Second
}

func (q *Quantum) refill(ctx context.Context) error {
	if err := q.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for request slot: %w", err)
	}

	url := strings.Replace(q.cfg.ServiceURL, "%d", fmt.Sprint(q.cfg.BatchSize), 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting random numbers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("random service returned %s", resp.Status)
	}

	var body quantumResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding random service response: %w", err)
	}
	if !body.Success || len(body.Data) == 0 {
		return errors.New("random service denied the request")
	}

	q.buffered = append(q.buffered, body.Data...)
	return nil
}
