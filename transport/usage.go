package transport

import (
	"regexp"
	"strconv"
)

// LimitInfoHeader is the exact response header carrying API usage counters.
const LimitInfoHeader = "Sforce-Limit-Info"

// Usage is a used/total pair from the rate-limit header.
type Usage struct {
	Used  int
	Total int
}

// PerAppUsage is the optional per-connected-app clause.
type PerAppUsage struct {
	Used  int
	Total int
	Name  string
}

// UsageSnapshot is the advisory API consumption reported by the server on the
// last response that carried the header. Snapshots are replaced wholesale,
// never merged.
type UsageSnapshot struct {
	API    Usage
	PerApp *PerAppUsage
}

// The primary clause must start the header or follow a separator, so the
// "api-usage" embedded in "per-app-api-usage" can never match it.
var (
	apiUsageRe    = regexp.MustCompile(`(?:^|[;,\s])api-usage=(\d+)/(\d+)`)
	perAppUsageRe = regexp.MustCompile(`per-app-api-usage=(\d+)/(\d+)\(appName=(.+)\)`)
)

// parseUsage parses the Sforce-Limit-Info value, e.g.
//
//	api-usage=18/5000
//	api-usage=25/5000; per-app-api-usage=17/250(appName=sample-connected-app)
//
// A missing or malformed per-app clause never loses the primary clause.
// The second return value is false when the primary clause cannot be parsed.
func parseUsage(headerValue string) (UsageSnapshot, bool) {
	m := apiUsageRe.FindStringSubmatch(headerValue)
	if m == nil {
		return UsageSnapshot{}, false
	}

	used, err := strconv.Atoi(m[1])
	if err != nil {
		return UsageSnapshot{}, false
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return UsageSnapshot{}, false
	}
	snap := UsageSnapshot{API: Usage{Used: used, Total: total}}

	if pm := perAppUsageRe.FindStringSubmatch(headerValue); pm != nil {
		pu, err1 := strconv.Atoi(pm[1])
		pt, err2 := strconv.Atoi(pm[2])
		if err1 == nil && err2 == nil {
			snap.PerApp = &PerAppUsage{Used: pu, Total: pt, Name: pm[3]}
		}
	}

	return snap, true
}
