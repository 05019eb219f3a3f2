package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays cfg with SF_-prefixed environment variables. The CLI
// loads a .env file into the environment first, so secrets can stay out of
// the JSON config and the command line. Unset variables leave the current
// value in place; malformed numeric values panic.
func parseEnv(cfg *Config) {
	envString(&cfg.Username, "SF_USERNAME")
	envString(&cfg.Password, "SF_PASSWORD")
	envString(&cfg.SecurityToken, "SF_SECURITY_TOKEN")
	envString(&cfg.OrganizationID, "SF_ORGANIZATION_ID")
	envString(&cfg.SessionID, "SF_SESSION_ID")
	envString(&cfg.InstanceHost, "SF_INSTANCE_HOST")
	envString(&cfg.Domain, "SF_DOMAIN")
	envString(&cfg.APIVersion, "SF_API_VERSION")
	envString(&cfg.Object, "SF_OBJECT")
	envString(&cfg.Operation, "SF_OPERATION")
	envString(&cfg.ExternalIDField, "SF_EXTERNAL_ID_FIELD")
	envString(&cfg.InputFile, "SF_INPUT_FILE")
	envString(&cfg.Query, "SF_QUERY")

	if v, ok := os.LookupEnv("SF_SERIAL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.Serial = b
	}
	envInt(&cfg.BatchSize, "SF_BATCH_SIZE")
	envInt(&cfg.Workers, "SF_WORKERS")
	envInt(&cfg.MaxPolls, "SF_MAX_POLLS")

	if v, ok := os.LookupEnv("SF_POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.PollInterval = d
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}
