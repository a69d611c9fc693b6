package platform

import (
	"encoding/json"

	"github.com/go-playground/errors/v5"
)

// envelope is the optional wrapper some platform deployments apply to
// response bodies. The presence of the "success" key marks the wrapped
// form; bodies without it are decoded bare.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeBody normalizes the two success-body shapes into v, so no caller
// ever sees the wrapper. A wrapped body reporting success=false becomes an
// *Error carrying the wrapper's message. v may be nil when the caller
// ignores the payload.
func decodeBody(status int, body []byte, v any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			return &Error{Status: status, Message: env.Message}
		}
		if v == nil || len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return errors.Wrap(err, "json.Unmarshal()")
		}

		return nil
	}

	if v == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "json.Unmarshal()")
	}

	return nil
}

// failureMessage extracts the displayable message from an error body, which
// arrives as {"message": ...}, {"error": ...}, or the wrapped envelope form.
func failureMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Message != "" {
		return probe.Message
	}

	return probe.Error
}
