package interceptor

import (
	"strings"

	"github.com/openpayments-go/client/internal/logger"
	"github.com/openpayments-go/client/pkg/httpmsg"
)

const redactedPlaceholder = "***REDACTED***"

const truncationMarker = "…[truncated]"

// fixedRedactedHeaders are always masked regardless of name pattern.
var fixedRedactedHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"signature":           true,
	"signature-input":     true,
}

var redactedNameFragments = []string{"token", "secret", "key", "password"}

func shouldRedact(headerName string) bool {
	name := strings.ToLower(headerName)
	if fixedRedactedHeaders[name] {
		return true
	}
	for _, fragment := range redactedNameFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

func redactedHeaders(headers httpmsg.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, value := range headers {
		if shouldRedact(name) {
			out[name] = redactedPlaceholder
		} else {
			out[name] = value
		}
	}
	return out
}

func truncatedBody(body []byte, limit int) string {
	s := string(body)
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + truncationMarker
}

// LoggingOptions configures how much of a request or response a logging
// interceptor emits.
type LoggingOptions struct {
	Level          logger.Level
	LogHeaders     bool
	LogBody        bool
	BodyByteLimit  int // 0 means DefaultBodyByteLimit
}

// DefaultBodyByteLimit is the truncation point logging interceptors use
// when LoggingOptions.BodyByteLimit is left at zero.
const DefaultBodyByteLimit = 4096

func (o LoggingOptions) bodyLimit() int {
	if o.BodyByteLimit > 0 {
		return o.BodyByteLimit
	}
	return DefaultBodyByteLimit
}

// NewRequestLoggingInterceptor returns a request interceptor that logs the
// request to log at opts.Level. Run it after the signing interceptor so
// the Signature/Signature-Input headers it logs (redacted) reflect what was
// actually sent.
func NewRequestLoggingInterceptor(log logger.Logger, opts LoggingOptions) RequestInterceptor {
	return func(req *httpmsg.Request) (*httpmsg.Request, error) {
		fields := []logger.Field{
			logger.String("method", req.Method()),
			logger.String("url", req.URL().String()),
		}
		if opts.LogHeaders {
			fields = append(fields, logger.Any("headers", redactedHeaders(req.Headers())))
		}
		if opts.LogBody {
			fields = append(fields, logger.String("body", truncatedBody(req.Body(), opts.bodyLimit())))
		}
		logAt(log, opts.Level, "outbound request", fields...)
		return req, nil
	}
}

// NewResponseLoggingInterceptor returns a response interceptor that logs at
// successLevel for 2xx responses and errorLevel otherwise.
func NewResponseLoggingInterceptor(log logger.Logger, successLevel, errorLevel logger.Level, opts LoggingOptions) ResponseInterceptor {
	return func(resp *httpmsg.Response) (*httpmsg.Response, error) {
		level := successLevel
		if resp.Status() < 200 || resp.Status() >= 300 {
			level = errorLevel
		}
		fields := []logger.Field{logger.Int("status", resp.Status())}
		if opts.LogHeaders {
			fields = append(fields, logger.Any("headers", redactedHeaders(resp.Headers())))
		}
		if opts.LogBody {
			fields = append(fields, logger.String("body", truncatedBody(resp.Body(), opts.bodyLimit())))
		}
		logAt(log, level, "inbound response", fields...)
		return resp, nil
	}
}

func logAt(log logger.Logger, level logger.Level, msg string, fields ...logger.Field) {
	switch level {
	case logger.DebugLevel:
		log.Debug(msg, fields...)
	case logger.WarnLevel:
		log.Warn(msg, fields...)
	case logger.ErrorLevel, logger.FatalLevel:
		log.Error(msg, fields...)
	default:
		log.Info(msg, fields...)
	}
}
