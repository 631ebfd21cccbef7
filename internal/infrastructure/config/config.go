package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Directory backends.
const (
	DirectoryBackendMemory = "memory"
	DirectoryBackendMongo  = "mongo"
)

type Config struct {
	// Host defaults to loopback: the session belongs to the local client.
	Host     string `env:"HOST,      default=127.0.0.1"`
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session   SessionConfig
	Directory DirectoryConfig
	Mongo     MongoConfig
	Redis     RedisConfig

	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT, default=5"`
	NotifyBuffer   int     `env:"NOTIFY_BUFFER,    default=64"`
}

type SessionConfig struct {
	// Secret signs the bearer token handed out on login/register.
	Secret   string        `env:"SESSION_SECRET"`
	TokenTTL time.Duration `env:"SESSION_TOKEN_TTL, default=24h"`
	// StoreTTL expires the persisted snapshot on backends that support it.
	// Zero keeps it until logout, matching the file store.
	StoreTTL time.Duration `env:"SESSION_STORE_TTL, default=0"`
	Backend  string        `env:"SESSION_BACKEND,   default=file"`
	Dir      string        `env:"SESSION_DIR,       default=./data"`
}

type DirectoryConfig struct {
	Backend string `env:"DIRECTORY_BACKEND, default=memory"`
	// SimulatedLatency enables the mock backend delays on validator calls.
	SimulatedLatency bool `env:"SIMULATED_LATENCY, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=matchbot"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=matchbot:"`
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND: unknown backend %q", c.Session.Backend))
	}
	switch c.Directory.Backend {
	case DirectoryBackendMemory, DirectoryBackendMongo:
	default:
		errs = append(errs, fmt.Errorf("DIRECTORY_BACKEND: unknown backend %q", c.Directory.Backend))
	}
	if c.Session.Secret == "" && c.IsProduction() {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	if c.Session.TokenTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TOKEN_TTL must be positive"))
	}
	if c.Session.StoreTTL < 0 {
		errs = append(errs, errors.New("SESSION_STORE_TTL must not be negative"))
	}
	if c.LoginRateLimit < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
