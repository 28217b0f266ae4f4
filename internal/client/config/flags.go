package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/teamhub/internal/flagx"
)

// parseFlags overlays values from command-line flags.
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-s int      session length (minutes)
//	-w int      session warning threshold (seconds)
//	-d string   client database path
//	-l string   log level
//
// Duration flags only replace the current value when given, so a finer
// value from JSON is not rounded to whole units.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s", "-w", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	session := fs.Int("s", int(cfg.SessionLength.Minutes()), "session length (in minutes)")
	warning := fs.Int("w", int(cfg.WarningThreshold.Seconds()), "session warning threshold (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "client database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "s":
			cfg.SessionLength = time.Duration(*session) * time.Minute
		case "w":
			cfg.WarningThreshold = time.Duration(*warning) * time.Second
		}
	})
}
