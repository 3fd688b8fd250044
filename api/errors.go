package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	authsession "github.com/streamvault/authsession"
)

// errorBody is the backend's error envelope. Detail is either a plain
// message or an array of field-level validation entries, so it stays raw
// until the status code picks the decoding.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// validationEntry is one element of a validation detail array. The last
// loc element names the failing field.
type validationEntry struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// decodeError maps a non-2xx response onto the session error taxonomy.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", authsession.ErrUnauthorized, detailFromRaw(raw))
	case http.StatusUnprocessableEntity:
		if verr := validationFromRaw(raw); verr != nil {
			return verr
		}
	}

	return fmt.Errorf("api: %s: %s", resp.Status, detailFromRaw(raw))
}

// detailMessage extracts a human-readable message from the response body.
func detailMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return detailFromRaw(raw)
}

func detailFromRaw(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return msg
		}
		return "request failed"
	}

	var msg string
	if err := json.Unmarshal(body.Detail, &msg); err == nil {
		return msg
	}

	var entries []validationEntry
	if err := json.Unmarshal(body.Detail, &entries); err == nil && len(entries) > 0 {
		return entries[0].Msg
	}

	return strings.TrimSpace(string(body.Detail))
}

// validationFromRaw decodes a field-level detail array. It returns nil
// when the body is not a validation envelope.
func validationFromRaw(raw []byte) *authsession.ValidationError {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return nil
	}

	var entries []validationEntry
	if err := json.Unmarshal(body.Detail, &entries); err != nil || len(entries) == 0 {
		return nil
	}

	out := &authsession.ValidationError{}
	for _, e := range entries {
		field := ""
		if len(e.Loc) > 0 {
			field = fmt.Sprint(e.Loc[len(e.Loc)-1])
		}
		out.Fields = append(out.Fields, authsession.FieldError{Field: field, Message: e.Msg})
	}
	return out
}
