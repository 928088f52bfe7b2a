package config

import (
	"flag"
	"strings"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session validity, minutes
//	-m string   storage mode: postgres | memory
//	-b string   saves backend: sql | s3
//	-n string   comma-separated seed NPC ids
//	-l string   log backend: slog | zap
//	-debug      debug mode
//
// Arguments are filtered with flagx.FilterArgs first so the JSON and env
// file flags do not trip the parser.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-m", "-b", "-n", "-l", "-debug"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.Storage, "m", config.Storage, "storage mode (postgres|memory)")
	fs.StringVar(&config.SavesBackend, "b", config.SavesBackend, "game saves backend (sql|s3)")
	seedNPCs := fs.String("n", strings.Join(config.SeedNPCs, ","), "comma-separated seed NPC ids")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.BoolVar(&config.Debug, "debug", config.Debug, "debug mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "n":
			config.SeedNPCs = splitList(*seedNPCs)
		}
	})
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
