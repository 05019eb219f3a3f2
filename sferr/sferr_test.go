package sferr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{300, ErrMoreThanOneRecord},
		{400, ErrMalformedRequest},
		{401, ErrExpiredSession},
		{403, ErrRefusedRequest},
		{404, ErrResourceNotFound},
		{500, ErrGeneral},
		{418, ErrGeneral},
		{503, ErrGeneral},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("status_%d", tc.status), func(t *testing.T) {
			err := Classify(tc.status, nil, "https://na1.salesforce.com/x", "Contact")
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.status, err.StatusCode)
			assert.Equal(t, "Contact", err.Name)
			assert.Equal(t, "https://na1.salesforce.com/x", err.URL)
		})
	}
}

func TestClassify_JSONBodyDecoded(t *testing.T) {
	body := []byte(`[{"message":"Session expired","errorCode":"INVALID_SESSION_ID"}]`)
	err := Classify(401, body, "u", "")

	content, ok := err.Content.([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	first, ok := content[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INVALID_SESSION_ID", first["errorCode"])
}

func TestClassify_NonJSONBodyKeptAsText(t *testing.T) {
	err := Classify(500, []byte("<html>Server Error</html>"), "u", "")
	assert.Equal(t, "<html>Server Error</html>", err.Content)
}

func TestClassify_EmptyBody(t *testing.T) {
	err := Classify(404, nil, "u", "Lead")
	assert.Nil(t, err.Content)
}

func TestError_MatchesOnlyItsOwnKind(t *testing.T) {
	err := Classify(401, nil, "u", "")
	assert.True(t, errors.Is(err, ErrExpiredSession))
	assert.False(t, errors.Is(err, ErrRefusedRequest))
	assert.False(t, errors.Is(err, ErrGeneral))
}

func TestError_MatchesThroughWrapping(t *testing.T) {
	inner := Classify(403, nil, "u", "Account")
	wrapped := fmt.Errorf("bulk job create: %w", inner)
	require.ErrorIs(t, wrapped, ErrRefusedRequest)

	var e *Error
	require.ErrorAs(t, wrapped, &e)
	assert.Equal(t, 403, e.StatusCode)
	assert.Equal(t, "Account", e.Name)
}

func TestConfiguration(t *testing.T) {
	err := Configuration("upsert requires an external id field for %s", "Contact")
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "Contact")
}

func TestAuthentication_PreservesCause(t *testing.T) {
	err := Authentication("https://login.salesforce.com", errors.New("invalid password"))
	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Equal(t, "invalid password", err.Content)
}
