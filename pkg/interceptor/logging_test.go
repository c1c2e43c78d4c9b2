package interceptor_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpayments-go/client/internal/logger"
	"github.com/openpayments-go/client/pkg/httpmsg"
	"github.com/openpayments-go/client/pkg/interceptor"
)

// TestRequestLoggingRedactsAuthorizationS7 grounds on the literal S7
// scenario: a request carrying a secret authorization value is logged, and
// the captured output masks the secret.
func TestRequestLoggingRedactsAuthorizationS7(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, logger.InfoLevel)

	step := interceptor.NewRequestLoggingInterceptor(log, interceptor.LoggingOptions{
		Level:      logger.InfoLevel,
		LogHeaders: true,
	})

	req, err := httpmsg.NewRequest("GET", "https://example.com/resource", map[string]string{
		"Authorization": "GNAP super-secret-value",
	}, nil)
	require.NoError(t, err)

	_, err = step(req)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "***REDACTED***")
	assert.NotContains(t, output, "super-secret-value")
}

func TestRequestLoggingTruncatesBody(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, logger.InfoLevel)

	step := interceptor.NewRequestLoggingInterceptor(log, interceptor.LoggingOptions{
		Level:         logger.InfoLevel,
		LogBody:       true,
		BodyByteLimit: 8,
	})

	req, err := httpmsg.NewRequest("POST", "https://example.com/", nil, []byte("0123456789"))
	require.NoError(t, err)

	_, err = step(req)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "01234567")
	assert.Contains(t, output, "…[truncated]")
	assert.NotContains(t, output, "89")
}

func TestResponseLoggingUsesErrorLevelForNon2xx(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, logger.InfoLevel)

	step := interceptor.NewResponseLoggingInterceptor(log, logger.InfoLevel, logger.ErrorLevel, interceptor.LoggingOptions{})

	resp := httpmsg.NewResponse(500, nil, nil)
	_, err := step(resp)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestResponseLoggingRedactsSetCookie(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&buf, logger.InfoLevel)

	step := interceptor.NewResponseLoggingInterceptor(log, logger.InfoLevel, logger.ErrorLevel, interceptor.LoggingOptions{
		LogHeaders: true,
	})

	resp := httpmsg.NewResponse(200, map[string]string{"Set-Cookie": "session=abc123"}, nil)
	_, err := step(resp)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "***REDACTED***")
	assert.NotContains(t, output, "abc123")
}
