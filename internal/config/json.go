package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/sforce/internal/flagx"
	"github.com/dmitrijs2005/sforce/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the file can write intervals as strings like "5s".
// Pointer fields distinguish "absent" from "zero": only keys present in the
// file overlay the running Config.
type jsonConfig struct {
	Username        *string         `json:"username"`
	Password        *string         `json:"password"`
	SecurityToken   *string         `json:"security_token"`
	OrganizationID  *string         `json:"organization_id"`
	SessionID       *string         `json:"session_id"`
	InstanceHost    *string         `json:"instance_host"`
	Domain          *string         `json:"domain"`
	APIVersion      *string         `json:"api_version"`
	Object          *string         `json:"object"`
	Operation       *string         `json:"operation"`
	ExternalIDField *string         `json:"external_id_field"`
	InputFile       *string         `json:"input_file"`
	Query           *string         `json:"query"`
	Serial          *bool           `json:"serial"`
	BatchSize       *int            `json:"batch_size"`
	PollInterval    *timex.Duration `json:"poll_interval"`
	Workers         *int            `json:"workers"`
	MaxPolls        *int            `json:"max_polls"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config.
// No flag means no JSON layer. Read or unmarshal errors panic; the CLI treats
// a broken config file as unrecoverable.
func parseJSON(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.Username, jc.Username)
	setString(&cfg.Password, jc.Password)
	setString(&cfg.SecurityToken, jc.SecurityToken)
	setString(&cfg.OrganizationID, jc.OrganizationID)
	setString(&cfg.SessionID, jc.SessionID)
	setString(&cfg.InstanceHost, jc.InstanceHost)
	setString(&cfg.Domain, jc.Domain)
	setString(&cfg.APIVersion, jc.APIVersion)
	setString(&cfg.Object, jc.Object)
	setString(&cfg.Operation, jc.Operation)
	setString(&cfg.ExternalIDField, jc.ExternalIDField)
	setString(&cfg.InputFile, jc.InputFile)
	setString(&cfg.Query, jc.Query)
	if jc.Serial != nil {
		cfg.Serial = *jc.Serial
	}
	if jc.BatchSize != nil {
		cfg.BatchSize = *jc.BatchSize
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.Workers != nil {
		cfg.Workers = *jc.Workers
	}
	if jc.MaxPolls != nil {
		cfg.MaxPolls = *jc.MaxPolls
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
