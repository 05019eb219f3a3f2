package transport

import (
	"fmt"

	"github.com/dmitrijs2005/sforce/session"
	"github.com/dmitrijs2005/sforce/sferr"
)

// API selects one of the Salesforce endpoint families.
type API string

const (
	APIBase     API = "base"
	APIBulk     API = "bulk"
	APITooling  API = "tooling"
	APIApex     API = "apex"
	APIMetadata API = "metadata"
)

// familyURL resolves an API family to its base URL for the given session.
// The shapes match the platform contract exactly:
//
//	base:     https://{instance}/services/data/v{version}/
//	bulk:     https://{instance}/services/async/{version}/
//	tooling:  https://{instance}/services/data/v{version}/tooling/
//	apex:     https://{instance}/services/apexrest/
//	metadata: https://{instance}/services/Soap/m/{version}/
func familyURL(s session.Session, api API) (string, error) {
	base := fmt.Sprintf("https://%s/services/data/v%s/", s.InstanceHost, s.APIVersion)

	switch api {
	case APIBase:
		return base, nil
	case APIBulk:
		return fmt.Sprintf("https://%s/services/async/%s/", s.InstanceHost, s.APIVersion), nil
	case APITooling:
		return base + "tooling/", nil
	case APIApex:
		return fmt.Sprintf("https://%s/services/apexrest/", s.InstanceHost), nil
	case APIMetadata:
		return fmt.Sprintf("https://%s/services/Soap/m/%s/", s.InstanceHost, s.APIVersion), nil
	default:
		return "", sferr.Configuration("unknown API family %q", api)
	}
}
