package interceptor

import (
	"encoding/json"

	"github.com/openpayments-go/client/pkg/httpmsg"
)

// candidateShape is a superset of the three recognized error field-set
// unions; a field is considered present only if its key was in the parsed
// JSON object at all (including an explicit empty string).
type candidateShape struct {
	Error            *string         `json:"error"`
	ErrorDescription *string         `json:"error_description"`
	Message          *string         `json:"message"`
	Code             *string         `json:"code"`
	Details          json.RawMessage `json:"details"`
	Title            *string         `json:"title"`
	Detail           *string         `json:"detail"`
	Type             *string         `json:"type"`
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewErrorExtractionInterceptor returns a response interceptor that, for
// responses with status outside 2xx, attempts to parse the body as JSON and
// recognizes the first matching field-set union: {error, error_description},
// {message, code, details}, {title, detail, type}. A parse failure or no
// matching union leaves the response's ExtractedError unpopulated rather
// than raising an error. Run this before any business logging of the
// response body, so structured fields are parsed exactly once.
func NewErrorExtractionInterceptor() ResponseInterceptor {
	return func(resp *httpmsg.Response) (*httpmsg.Response, error) {
		if resp.Status() >= 200 && resp.Status() < 300 {
			return resp, nil
		}

		var shape candidateShape
		if err := json.Unmarshal(resp.Body(), &shape); err != nil {
			return resp, nil
		}

		switch {
		case shape.Error != nil || shape.ErrorDescription != nil:
			return resp.WithExtractedError(&httpmsg.ExtractedError{
				Error:            derefOr(shape.Error),
				ErrorDescription: derefOr(shape.ErrorDescription),
			}), nil
		case shape.Message != nil || shape.Code != nil || shape.Details != nil:
			return resp.WithExtractedError(&httpmsg.ExtractedError{
				Message: derefOr(shape.Message),
				Code:    derefOr(shape.Code),
				Details: shape.Details,
			}), nil
		case shape.Title != nil || shape.Detail != nil || shape.Type != nil:
			return resp.WithExtractedError(&httpmsg.ExtractedError{
				Title:  derefOr(shape.Title),
				Detail: derefOr(shape.Detail),
				Type:   derefOr(shape.Type),
			}), nil
		default:
			return resp, nil
		}
	}
}
