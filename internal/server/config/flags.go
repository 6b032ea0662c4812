package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-d", "-s", "-t", "-w", "-f", "-o", "-l", "-production"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   session cookie signing secret
//	-t int      session lifetime, minutes
//	-w int      expired-session sweep interval, minutes
//	-f string   frontend URL used for OAuth redirects
//	-o string   comma separated CORS origins
//	-l string   log level
//	-production secure cookies and production logging
//
// Args not listed above are dropped by flagx.FilterArgs first, so -c and
// unknown flags never reach the flag set.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to serve HTTP")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")
	sweepInterval := fs.Int("w", int(config.SessionSweepInterval.Minutes()), "expired session sweep interval (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend URL")
	origins := flagx.StringList(config.FrontendOrigins)
	fs.Var(&origins, "o", "comma separated frontend origins")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.Production, "production", config.Production, "production mode")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "w":
			config.SessionSweepInterval = time.Duration(*sweepInterval) * time.Minute
		case "o":
			config.FrontendOrigins = origins
		}
	})
	return nil
}
