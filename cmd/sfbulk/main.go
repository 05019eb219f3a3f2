// Command sfbulk runs one Bulk API operation against a Salesforce org:
// a mutation fed from a JSON records file, or a SOQL bulk query. Results are
// printed to stdout as JSON, one record per line.
//
// Configuration layers: built-in defaults, a JSON file (-c/-config),
// SF_-prefixed environment variables (a .env file is loaded first when
// present) and command-line flags. The password is prompted interactively
// when it reaches the run unset.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/dmitrijs2005/sforce"
	"github.com/dmitrijs2005/sforce/bulk"
	"github.com/dmitrijs2005/sforce/internal/config"
	"github.com/dmitrijs2005/sforce/logging"
	"github.com/dmitrijs2005/sforce/session"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	// Overlay the environment before config reads it. A missing .env is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	log := logging.NewJSONLogger(os.Stderr, false).With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "bulk run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	if cfg.Object == "" {
		return fmt.Errorf("an object type is required (-o)")
	}

	client, err := buildClient(cfg, log)
	if err != nil {
		return err
	}

	runner := client.Bulk(cfg.Object)
	op := bulk.Operation(cfg.Operation)

	var results []sforce.Record
	switch op {
	case bulk.OpQuery:
		results, err = runner.Query(ctx, cfg.Query)
	case bulk.OpQueryAll:
		results, err = runner.QueryAll(ctx, cfg.Query)
	case bulk.OpInsert, bulk.OpUpdate, bulk.OpUpsert, bulk.OpDelete, bulk.OpHardDelete:
		var records []sforce.Record
		records, err = readRecords(cfg.InputFile)
		if err != nil {
			return err
		}
		switch op {
		case bulk.OpInsert:
			results, err = runner.Insert(ctx, records)
		case bulk.OpUpdate:
			results, err = runner.Update(ctx, records)
		case bulk.OpUpsert:
			results, err = runner.Upsert(ctx, records, cfg.ExternalIDField)
		case bulk.OpDelete:
			results, err = runner.Delete(ctx, records)
		case bulk.OpHardDelete:
			results, err = runner.HardDelete(ctx, records)
		}
	default:
		return fmt.Errorf("unknown bulk operation %q", cfg.Operation)
	}
	if err != nil {
		return err
	}

	log.Info(ctx, "bulk run finished", "object", cfg.Object, "operation", cfg.Operation, "results", len(results))

	enc := json.NewEncoder(os.Stdout)
	for _, rec := range results {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// buildClient wires a Client from the config: a pre-acquired session id when
// given, the SOAP login flow otherwise.
func buildClient(cfg *config.Config, log logging.Logger) (*sforce.Client, error) {
	opts := []sforce.Option{
		sforce.WithAPIVersion(cfg.APIVersion),
		sforce.WithLogger(log),
		sforce.WithBulkOptions(bulk.Options{
			Serial:       cfg.Serial,
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
			Workers:      cfg.Workers,
			MaxPolls:     cfg.MaxPolls,
		}),
	}

	if cfg.SessionID != "" {
		return sforce.NewWithSession(cfg.SessionID, cfg.InstanceHost, opts...)
	}

	password := cfg.Password
	if password == "" {
		fmt.Fprint(os.Stderr, "Enter password: ")
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, err
		}
		password = string(pw)
	}

	return sforce.New(session.Credentials{
		Username:       cfg.Username,
		Password:       password,
		SecurityToken:  cfg.SecurityToken,
		OrganizationID: cfg.OrganizationID,
		Domain:         cfg.Domain,
	}, opts...)
}

// readRecords loads a JSON array of records from path.
func readRecords(path string) ([]sforce.Record, error) {
	if path == "" {
		return nil, fmt.Errorf("a records file is required for mutation operations (-f)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []sforce.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records file %s: %w", path, err)
	}
	return records, nil
}
