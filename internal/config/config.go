// Package config provides functionality for managing configuration options
// for the server using command-line flags, a config file and environment variables.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// JWTSecret signs access tokens.
	JWTSecret string

	// TokenTTL is the lifetime of an access token and its session.
	TokenTTL time.Duration

	// RedisAddr enables cross-instance favorites notifications when set.
	RedisAddr string

	// LogLevel is the zap level name.
	LogLevel string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// CleanInterval is how often expired sessions are purged.
	CleanInterval time.Duration
}

// Parse parses the process flags and environment. It exits on a malformed config file.
func Parse() *Options {
	opts, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	return opts
}

// Load registers the server flags on fs, parses args and layers the config
// file and environment on top. Precedence: flags < config file < environment.
func Load(fs *flag.FlagSet, args []string) (*Options, error) {
	// .env is optional.
	_ = godotenv.Load()

	opts := &Options{}
	fs.StringVar(&opts.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&opts.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&opts.Config, "config", "config.json", "path to config file")
	fs.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&opts.JWTSecret, "jwt-secret", "dev_secret", "secret for signing access tokens")
	fs.DurationVar(&opts.TokenTTL, "token-ttl", 24*time.Hour, "access token lifetime")
	fs.StringVar(&opts.RedisAddr, "redis", "", "redis address for favorites fan-out")
	fs.StringVar(&opts.LogLevel, "log-level", "Info", "log level")
	fs.StringVar(&opts.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&opts.TLSKey, "tls-key", "", "path to TLS key")
	fs.DurationVar(&opts.CleanInterval, "clean-interval", time.Hour, "expired session cleanup interval")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("server_address", opts.Port)
	v.SetDefault("database_dsn", opts.DatabaseDSN)
	v.SetDefault("jwt_secret", opts.JWTSecret)
	v.SetDefault("token_ttl", opts.TokenTTL)
	v.SetDefault("redis_addr", opts.RedisAddr)
	v.SetDefault("log_level", opts.LogLevel)
	v.SetDefault("tls_cert", opts.TLSCert)
	v.SetDefault("tls_key", opts.TLSKey)
	v.SetDefault("clean_interval", opts.CleanInterval)

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	if opts.Config != "" {
		if _, err := os.Stat(opts.Config); err == nil {
			v.SetConfigFile(opts.Config)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	opts.Port = v.GetString("server_address")
	opts.DatabaseDSN = v.GetString("database_dsn")
	opts.JWTSecret = v.GetString("jwt_secret")
	opts.TokenTTL = v.GetDuration("token_ttl")
	opts.RedisAddr = v.GetString("redis_addr")
	opts.LogLevel = v.GetString("log_level")
	opts.TLSCert = v.GetString("tls_cert")
	opts.TLSKey = v.GetString("tls_key")
	opts.CleanInterval = v.GetDuration("clean_interval")

	return opts, nil
}
