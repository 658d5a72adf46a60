package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/goserg/devconnector/auth/password"
	"github.com/goserg/devconnector/auth/service"
	"github.com/goserg/devconnector/auth/token"
	"github.com/goserg/devconnector/internal/logger"
	"github.com/goserg/devconnector/internal/storage/mongo"
	"github.com/goserg/devconnector/internal/storage/postgres"
)

const (
	DriverMongo    = "mongo"
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMem      = "mem"
)

const (
	DefaultPath        = "configs/server.toml"
	DefaultTokenHeader = "x-auth-token"
)

type Server struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	Debug           bool          `toml:"debug_mode"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

func (s Server) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

type Sqlite struct {
	File string `toml:"file"`
}

type Storage struct {
	Driver   string          `toml:"driver"`
	Mongo    mongo.Config    `toml:"mongo"`
	Sqlite   Sqlite          `toml:"sqlite"`
	Postgres postgres.Config `toml:"postgres"`
}

type Config struct {
	Server  Server         `toml:"server"`
	Auth    service.Config `toml:"auth"`
	Storage Storage        `toml:"storage"`
	Log     logger.Config  `toml:"log"`
}

func Default() Config {
	return Config{
		Server: Server{
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: service.Config{
			TokenTTL:    token.DefaultTTL,
			TokenHeader: DefaultTokenHeader,
			BcryptCost:  password.DefaultCost,
		},
		Storage: Storage{
			Driver: DriverMongo,
			Mongo: mongo.Config{
				URI:      "mongodb://localhost:27017",
				Database: "devconnector",
			},
			Sqlite: Sqlite{File: "devconnector.sqlite"},
		},
		Log: logger.Config{Level: "info", Format: "text"},
	}
}

// Load reads the toml file at path over the defaults, then applies
// environment overrides. Only a missing file at DefaultPath is tolerated,
// so that a run configured entirely from the environment still starts.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !(path == DefaultPath && errors.Is(err, os.ErrNotExist)) {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.Secret = v
	}
	if v, ok := lookup("MONGO_URI"); ok && v != "" {
		c.Storage.Mongo.URI = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is empty (set it or JWT_SECRET)"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Auth.TokenHeader == "" {
		errs = append(errs, errors.New("auth.token_header is empty"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.Mongo.URI == "" || c.Storage.Mongo.Database == "" {
			errs = append(errs, errors.New("storage.mongo needs uri and database"))
		}
	case DriverSqlite:
		if c.Storage.Sqlite.File == "" {
			errs = append(errs, errors.New("storage.sqlite.file is empty"))
		}
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.Host == "" {
			errs = append(errs, errors.New("storage.postgres needs dsn or host"))
		}
	case DriverMem:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	return errors.Join(errs...)
}
