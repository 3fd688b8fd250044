package authsession

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// StorageBackend selects where the durable credential slot lives.
type StorageBackend string

const (
	// BackendFile persists the credential in a single file on disk.
	BackendFile StorageBackend = "file"
	// BackendRedis persists the credential under a single Redis key.
	BackendRedis StorageBackend = "redis"
	// BackendMemory keeps the credential in process memory only. The
	// session then does not survive a restart.
	BackendMemory StorageBackend = "memory"
)

// Config carries the wiring knobs for the session layer. Instances are
// configured during initialization and then treated as immutable.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Log     LogConfig
}

// APIConfig locates the REST backend the collaborators talk to.
type APIConfig struct {
	// BaseURL is the backend root, without a trailing slash.
	BaseURL string `env:"API_BASE_URL"`
	// Timeout bounds every collaborator call. Zero means the transport
	// default.
	Timeout time.Duration `env:"API_TIMEOUT, default=30s"`
}

// StorageConfig selects and parameterizes the durable credential slot.
// Exactly one durable key holds the raw bearer string; absence means
// anonymous.
type StorageConfig struct {
	Backend StorageBackend `env:"CREDENTIAL_BACKEND, default=file"`
	// FilePath is the credential file location for BackendFile.
	FilePath string `env:"CREDENTIAL_FILE, default=.access_token"`
	// RedisAddr and RedisKey parameterize BackendRedis.
	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB, default=0"`
	RedisKey  string `env:"CREDENTIAL_KEY, default=access_token"`
}

// LogConfig controls the structured logger of the example wiring.
type LogConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `env:"LOG_LEVEL, default=info"`
	// Pretty enables human-friendly console output instead of JSON.
	Pretty bool `env:"LOG_PRETTY, default=false"`
}

// DefaultConfig returns the configuration used when nothing else is
// specified: file-backed storage next to the working directory and a
// 30 second API timeout.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Backend:   BackendFile,
			FilePath:  ".access_token",
			RedisAddr: "localhost:6379",
			RedisKey:  "access_token",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromEnv loads a Config from the process environment via go-envconfig.
func FromEnv(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}
	switch c.Storage.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Storage.FilePath) == "" {
			return errors.New("file backend requires FilePath")
		}
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("redis backend requires RedisAddr")
		}
		if strings.TrimSpace(c.Storage.RedisKey) == "" {
			return errors.New("redis backend requires RedisKey")
		}
	case BackendMemory:
	default:
		return errors.New("unsupported storage backend")
	}
	return nil
}
