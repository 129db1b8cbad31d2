package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/familyorganizer/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   REST API base URL
//	-t int      request timeout in seconds
//	-db string  token database path
//
// os.Args is filtered with flagx.FilterArgs so that flags owned by other
// components (-c, -env) do not trip the parser.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-db"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "REST API base URL")
	fs.StringVar(&cfg.TokenDB, "db", cfg.TokenDB, "token database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
