package transport

import (
	"testing"

	"github.com/dmitrijs2005/sforce/session"
	"github.com/dmitrijs2005/sforce/sferr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilyURL(t *testing.T) {
	s := session.Session{InstanceHost: "na1.salesforce.com", APIVersion: "42.0"}

	tests := []struct {
		api  API
		want string
	}{
		{APIBase, "https://na1.salesforce.com/services/data/v42.0/"},
		{APIBulk, "https://na1.salesforce.com/services/async/42.0/"},
		{APITooling, "https://na1.salesforce.com/services/data/v42.0/tooling/"},
		{APIApex, "https://na1.salesforce.com/services/apexrest/"},
		{APIMetadata, "https://na1.salesforce.com/services/Soap/m/42.0/"},
	}

	for _, tc := range tests {
		t.Run(string(tc.api), func(t *testing.T) {
			got, err := familyURL(s, tc.api)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFamilyURL_Unknown(t *testing.T) {
	_, err := familyURL(session.Session{}, API("soap"))
	require.ErrorIs(t, err, sferr.ErrConfiguration)
}
