package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the server.
type Config struct {
	// Hostname or IP address on which the server will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// Port on which the game server listens.
	Port int `mapstructure:"port"`
	// Maximum number of concurrent connections the server will allow.
	MaxConnections int `mapstructure:"max_connections"`
	// Use the remote random number service instead of the local PRNG.
	ReallyRandom bool `mapstructure:"really_random"`

	Logging struct {
		// Full path to file to which logs will be written. Blank will write to stdout.
		LogFilePath string `mapstructure:"log_file_path"`
		// Minimum level of a log required to be written. Options: debug, info, warn, error
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"logging"`

	Database struct {
		// Either "sqlite" or "postgres".
		Engine string `mapstructure:"engine"`
		// Database file used by the sqlite engine.
		Filename string `mapstructure:"filename"`
		// Hostname of the Postgres database instance.
		Host string `mapstructure:"host"`
		// Port on db_host on which the Postgres instance is accepting connections.
		Port int `mapstructure:"port"`
		// Name of the database in Postgres.
		Name string `mapstructure:"name"`
		// Username and password of a user with full RW privileges to ${db_name}.
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		// Set to verify-full if the Postgres instance supports SSL.
		SSLMode string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Random struct {
		// Endpoint of the remote random number service. The literal %d is
		// replaced with the number of integers requested.
		ServiceURL string `mapstructure:"service_url"`
		// Number of integers fetched per request.
		BatchSize int `mapstructure:"batch_size"`
		// Upper bound on requests made to the service.
		RequestsPerSecond float64 `mapstructure:"requests_per_second"`
		// Timeout for a single request.
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"random"`

	Scoreboard struct {
		// How long the rendered highscore list may be served from memory.
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"scoreboard"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Log every line received from a client.
		LineLoggingEnabled bool `mapstructure:"line_logging_enabled"`
		// Enable database-level query logging.
		DatabaseLoggingEnabled bool `mapstructure:"database_logging_enabled"`
	} `mapstructure:"debugging"`
}

const (
	envVarPrefix = "GALACTICD"

	// DefaultPort is the port the server listens on unless told otherwise.
	DefaultPort = 8000
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("hostname", "0.0.0.0")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("max_connections", 1024)
	v.SetDefault("really_random", false)
	v.SetDefault("logging.log_file_path", "")
	v.SetDefault("logging.log_level", "info")
	v.SetDefault("database.engine", "sqlite")
	v.SetDefault("database.filename", "scoreboard.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "galacticd")
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("random.service_url", "https://qrng.anu.edu.au/API/jsonI.php?length=%d&type=uint16")
	v.SetDefault("random.batch_size", 1024)
	v.SetDefault("random.requests_per_second", 1.0)
	v.SetDefault("random.timeout", 10*time.Second)
	v.SetDefault("scoreboard.cache_ttl", 30*time.Second)
	v.SetDefault("debugging.pprof_enabled", false)
	v.SetDefault("debugging.pprof_port", 6060)
	v.SetDefault("debugging.line_logging_enabled", false)
	v.SetDefault("debugging.database_logging_enabled", false)
}

// LoadConfig initializes v with the contents of the config file under configPath,
// if there is one, layered over the defaults and the environment. Flags bound to
// v before calling LoadConfig take precedence over everything else.
func LoadConfig(v *viper.Viper, configPath string) (*Config, error) {
	setDefaults(v)

	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// This allows us to set nested yaml config options through environment
	// variables. For example, database.host can be set using: <envVarPrefix>_DATABASE_HOST
	for _, k := range v.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("error binding %s to %s: %w", k, envVarPrefix+"_"+envVar, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config object: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxConnections < 1 {
		return errors.New("max_connections must be at least 1")
	}
	switch c.Database.Engine {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database engine %q", c.Database.Engine)
	}
	if c.ReallyRandom && !strings.Contains(c.Random.ServiceURL, "%d") {
		return errors.New("random.service_url must contain %d")
	}
	return nil
}

const databaseURITemplate = "host=%s port=%d dbname=%s user=%s password=%s sslmode=%s"

// DatabaseURL returns a database URL generated from the provided config values.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		databaseURITemplate,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Username,
		c.Database.Password,
		c.Database.SSLMode,
	)
}

// ListenAddress returns the host:port pair the game server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}
