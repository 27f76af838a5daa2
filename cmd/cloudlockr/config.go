package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/cloudlockr/cloudlockr/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultRedisAddr    = "localhost:6379"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction

	defaultLoginMaxAttempts = 10
	defaultLoginWindow      = time.Minute
	defaultLoginBlock       = 10 * time.Minute
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the cloudlockr service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis instance holding the refresh token whitelist and login counters
	RedisAddr string

	// Secret keys for signing JWT tokens
	// Access and refresh tokens are signed with independent keys so one class
	// can never pass for the other
	AccessSecret  string
	RefreshSecret string

	// Failed login throttling: attempts allowed per window, and how long the
	// key stays blocked once the budget is spent
	LoginMaxAttempts int
	LoginWindow      time.Duration
	LoginBlock       time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:         defaultLoggingLevel,
		ListenAddr:       defaultListenAddr,
		RedisAddr:        defaultRedisAddr,
		Environment:      defaultEnvironment,
		LoginMaxAttempts: defaultLoginMaxAttempts,
		LoginWindow:      defaultLoginWindow,
		LoginBlock:       defaultLoginBlock,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setInt := func(o *int) func(value string) {
		return func(value string) {
			if parsed, err := strconv.Atoi(value); err == nil {
				*o = parsed
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":        setString(&c.ListenAddr),
		"DATABASE_URI":       setString(&c.DatabaseDSN),
		"REDIS_ADDRESS":      setString(&c.RedisAddr),
		"ACCESS_SECRET":      setString(&c.AccessSecret),
		"REFRESH_SECRET":     setString(&c.RefreshSecret),
		"LOG_LEVEL":          setString(&c.LogLevel),
		"ENVIRONMENT":        setString(&c.Environment),
		"LOGIN_MAX_ATTEMPTS": setInt(&c.LoginMaxAttempts),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("cloudlockr", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Access token signing secret")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token signing secret")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.IntVar(&c.LoginMaxAttempts, "login-max-attempts", c.LoginMaxAttempts, "Failed logins allowed per window")

	return fs.Parse(args)
}
