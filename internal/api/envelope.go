package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is bumped when the envelope structure changes.
// Clients check this field before parsing the payload.
const EnvelopeVersion = 1

// SuccessEnvelope wraps successful responses.
type SuccessEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope wraps error responses. Error always carries the
// human-readable message; Code and Details are present for structured
// errors only.
type ErrorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope
// clients expect: {v, success, data} on success, {v, success, error, ...}
// on failure. Registered as a huma transformer so handlers return plain
// bodies.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return &ErrorEnvelope{
			V:       EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if statusErr, ok := v.(huma.StatusError); ok {
		return &ErrorEnvelope{
			V:       EnvelopeVersion,
			Success: false,
			Error:   statusErr.Error(),
		}, nil
	}

	return &SuccessEnvelope{
		V:       EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
