package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/galacticturtle/galacticd/internal/core"
	"github.com/galacticturtle/galacticd/internal/core/data"
	"github.com/galacticturtle/galacticd/internal/core/debug"
	"github.com/galacticturtle/galacticd/internal/game"
	"github.com/galacticturtle/galacticd/internal/random"
	"github.com/galacticturtle/galacticd/internal/scoreboard"
	"github.com/galacticturtle/galacticd/internal/session"
)

const probeTimeout = 30 * time.Second

// Controller is the main entrypoint for galacticd. It's responsible for
// initializing any shared resources (such as database and logging), defining
// the server, and launching everything.
type Controller struct {
	Config *core.Config

	logger *logrus.Logger
	wg     sync.WaitGroup
	db     *gorm.DB

	server *frontend
}

// Start runs the server until ctx is cancelled. Any error returned happened
// while starting up.
func (c *Controller) Start(ctx context.Context) error {
	var err error
	// Set up the logger, which will be used by all components.
	c.logger, err = core.NewLogger(c.Config)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	// Start any debug utilities if we're configured to do so.
	if c.Config.Debugging.PprofEnabled {
		debug.StartUtilities(c.logger, c.Config.Debugging.PprofPort)
	}

	c.db, err = c.openDatabase()
	if err != nil {
		return err
	}
	defer c.Shutdown()

	rng, err := c.randomSource(ctx)
	if err != nil {
		return err
	}

	scores := scoreboard.New(c.db, c.Config.Scoreboard.CacheTTL, c.logger)
	c.declareServer(game.NewRegistry(rng, scores, c.logger), scores)

	if err := c.server.Start(ctx, &c.wg); err != nil {
		return fmt.Errorf("error starting %s server: %w", c.server.Backend.Identifier(), err)
	}
	c.wg.Wait()
	return nil
}

func (c *Controller) openDatabase() (*gorm.DB, error) {
	dataSource := c.Config.Database.Filename
	if c.Config.Database.Engine == "postgres" {
		dataSource = c.Config.DatabaseURL()
	}

	db, err := data.Open(c.Config.Database.Engine, dataSource, c.Config.Debugging.DatabaseLoggingEnabled)
	if err != nil {
		return nil, fmt.Errorf("error opening %s scoreboard database: %w", c.Config.Database.Engine, err)
	}
	c.logger.Infof("using %s scoreboard database", c.Config.Database.Engine)
	return db, nil
}

// randomSource picks the local PRNG or, when asked for real randomness, the
// remote service. The remote service has to answer once before we go on.
func (c *Controller) randomSource(ctx context.Context) (random.Source, error) {
	local := random.NewLocal(0)
	if !c.Config.ReallyRandom {
		return local, nil
	}

	quantum := random.NewQuantum(random.QuantumConfig{
		ServiceURL:        c.Config.Random.ServiceURL,
		BatchSize:         c.Config.Random.BatchSize,
		RequestsPerSecond: c.Config.Random.RequestsPerSecond,
		Timeout:           c.Config.Random.Timeout,
	}, local, c.logger)

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := quantum.Probe(probeCtx); err != nil {
		return nil, fmt.Errorf("error initializing random number service: %w", err)
	}
	c.logger.Info("using remote random number service")
	return quantum, nil
}

// Set up the game server.
func (c *Controller) declareServer(registry *game.Registry, scores *scoreboard.Scoreboard) {
	c.server = &frontend{
		Address: c.Config.ListenAddress(),
		Backend: &session.Server{
			Name:       "GALACTIC",
			Logger:     c.logger,
			Registry:   registry,
			Scoreboard: scores,
		},
		Config: c.Config,
		Logger: c.logger,
	}
}

func (c *Controller) Shutdown() {
	// Close the database after the server has stopped so that games ending
	// during shutdown can still record their scores.
	c.wg.Wait()
	if err := data.Shutdown(c.db); err != nil {
		c.logger.Errorf("error closing database: %v", err)
	}
}
