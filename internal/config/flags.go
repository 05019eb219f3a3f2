package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/sforce/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-u string        username
//	-d string        login domain ("login", "test" or a My Domain name)
//	-v string        API version, e.g. "42.0"
//	-o string        object type, e.g. Contact
//	-op string       bulk operation (insert, update, upsert, delete, hardDelete, query, queryAll)
//	-e string        external id field for upsert
//	-f string        JSON records file for mutation operations
//	-q string        SOQL statement for query operations
//	-serial          serial job concurrency mode
//	-b int           records per batch
//	-i int           poll interval in seconds
//	-w int           poll worker count
//	-m int           poll cap per batch (0 = unbounded)
//
// The password and security token are deliberately not flags; they come from
// the environment or the interactive prompt. The function filters os.Args to
// only the flags it knows about, using flagx.FilterArgs, to avoid
// interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-u", "-d", "-v", "-o", "-op", "-e", "-f", "-q",
		"-serial", "-b", "-i", "-w", "-m",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Username, "u", cfg.Username, "username")
	fs.StringVar(&cfg.Domain, "d", cfg.Domain, "login domain")
	fs.StringVar(&cfg.APIVersion, "v", cfg.APIVersion, "API version")
	fs.StringVar(&cfg.Object, "o", cfg.Object, "object type")
	fs.StringVar(&cfg.Operation, "op", cfg.Operation, "bulk operation")
	fs.StringVar(&cfg.ExternalIDField, "e", cfg.ExternalIDField, "external id field for upsert")
	fs.StringVar(&cfg.InputFile, "f", cfg.InputFile, "JSON records file")
	fs.StringVar(&cfg.Query, "q", cfg.Query, "SOQL statement")
	fs.BoolVar(&cfg.Serial, "serial", cfg.Serial, "serial concurrency mode")
	fs.IntVar(&cfg.BatchSize, "b", cfg.BatchSize, "records per batch")
	pollSeconds := fs.Int("i", int(cfg.PollInterval.Seconds()), "poll interval (in seconds)")
	fs.IntVar(&cfg.Workers, "w", cfg.Workers, "poll worker count")
	fs.IntVar(&cfg.MaxPolls, "m", cfg.MaxPolls, "poll cap per batch (0 = unbounded)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollSeconds) * time.Second
}
