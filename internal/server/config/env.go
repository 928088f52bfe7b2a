package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/mathmystery/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvConfig lists the environment variables understood by the server.
// Names of the first group match the ones the game client deployment
// already uses.
type EnvConfig struct {
	DatabaseDSN       string   `env:"DATABASE_URL"`
	SecretKey         string   `env:"SECRET_KEY"`
	Debug             bool     `env:"DEBUG"`
	CORSOrigins       []string `env:"BACKEND_CORS_ORIGINS" envSeparator:","`
	SessionTTLMinutes int      `env:"ACCESS_TOKEN_EXPIRE_MINUTES"`

	EndpointAddrHTTP string   `env:"HTTP_ADDR"`
	DBMinConns       int      `env:"DB_MIN_CONNS"`
	DBMaxConns       int      `env:"DB_MAX_CONNS"`
	Storage          string   `env:"STORAGE"`
	SavesBackend     string   `env:"SAVES_BACKEND"`
	SeedNPCs         []string `env:"SEED_NPCS" envSeparator:","`
	LogBackend       string   `env:"LOG_BACKEND"`
	LogLevel         string   `env:"LOG_LEVEL"`
	LogFile          string   `env:"LOG_FILE"`
	S3RootUser       string   `env:"S3_ROOT_USER"`
	S3RootPassword   string   `env:"S3_ROOT_PASSWORD"`
	S3Bucket         string   `env:"S3_BUCKET"`
	S3Region         string   `env:"S3_REGION"`
	S3BaseEndpoint   string   `env:"S3_BASE_ENDPOINT"`
}

// parseEnv loads a dotenv file (".env" or the one named by -envfile) without
// overriding variables already present in the process environment, then
// overlays the recognised variables onto config. Variables that are unset
// keep the current value.
func parseEnv(config *Config, args []string) {
	envFile := flagx.LookupString(args, "envfile")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	c := EnvConfig{
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		Debug:            config.Debug,
		CORSOrigins:      config.CORSOrigins,
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		DBMinConns:       config.DBMinConns,
		DBMaxConns:       config.DBMaxConns,
		Storage:          config.Storage,
		SavesBackend:     config.SavesBackend,
		SeedNPCs:         config.SeedNPCs,
		LogBackend:       config.LogBackend,
		LogLevel:         config.LogLevel,
		LogFile:          config.LogFile,
		S3RootUser:       config.S3RootUser,
		S3RootPassword:   config.S3RootPassword,
		S3Bucket:         config.S3Bucket,
		S3Region:         config.S3Region,
		S3BaseEndpoint:   config.S3BaseEndpoint,
	}

	if err := env.Parse(&c); err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.Debug = c.Debug
	config.CORSOrigins = c.CORSOrigins
	// Left unset it stays zero, so a sub-minute TTL from the JSON file survives.
	if c.SessionTTLMinutes > 0 {
		config.SessionTTL = time.Duration(c.SessionTTLMinutes) * time.Minute
	}
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DBMinConns = c.DBMinConns
	config.DBMaxConns = c.DBMaxConns
	config.Storage = c.Storage
	config.SavesBackend = c.SavesBackend
	config.SeedNPCs = c.SeedNPCs
	config.LogBackend = c.LogBackend
	config.LogLevel = c.LogLevel
	config.LogFile = c.LogFile
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
