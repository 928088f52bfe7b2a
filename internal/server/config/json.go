package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mathmystery/internal/flagx"
	"github.com/dmitrijs2005/mathmystery/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "30m" style strings and integer nanoseconds (timex.Duration).
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn"`
	DBMinConns       *int            `json:"db_min_conns"`
	DBMaxConns       *int            `json:"db_max_conns"`
	SecretKey        *string         `json:"secret_key"`
	SessionTTL       *timex.Duration `json:"session_ttl"`
	Debug            *bool           `json:"debug"`
	CORSOrigins      []string        `json:"cors_origins"`
	Storage          *string         `json:"storage"`
	SavesBackend     *string         `json:"saves_backend"`
	SeedNPCs         []string        `json:"seed_npcs"`
	LogBackend       *string         `json:"log_backend"`
	LogLevel         *string         `json:"log_level"`
	LogFile          *string         `json:"log_file"`
	S3RootUser       *string         `json:"s3_root_user"`
	S3RootPassword   *string         `json:"s3_root_password"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config, if any, and copies the
// values it sets into config. Unreadable files or invalid JSON panic: a
// broken config file should stop the server at startup.
func parseJson(config *Config, args []string) {
	path := flagx.LookupString(args, "c", "config")
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.DBMinConns, c.DBMinConns)
	setIf(&config.DBMaxConns, c.DBMaxConns)
	setIf(&config.SecretKey, c.SecretKey)
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	setIf(&config.Debug, c.Debug)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	setIf(&config.Storage, c.Storage)
	setIf(&config.SavesBackend, c.SavesBackend)
	if c.SeedNPCs != nil {
		config.SeedNPCs = c.SeedNPCs
	}
	setIf(&config.LogBackend, c.LogBackend)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.LogFile, c.LogFile)
	setIf(&config.S3RootUser, c.S3RootUser)
	setIf(&config.S3RootPassword, c.S3RootPassword)
	setIf(&config.S3Bucket, c.S3Bucket)
	setIf(&config.S3Region, c.S3Region)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
