package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnavailable   = errors.New("server unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("auth transport not configured")
)

// UnknownErrorMessage is used when nothing displayable can be derived.
const UnknownErrorMessage = "unknown error"

const maxErrorBody = 64 << 10

// APIError is the single error shape returned by APIClient. Message is
// always displayable; Status is 0 when no response was received.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// NormalizeError turns any error into an *APIError. Transport failures also
// match ErrUnavailable.
func NormalizeError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, ErrNotConfigured) {
		return &APIError{Message: ErrNotConfigured.Error(), Err: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return &APIError{
		Message: "server unavailable: " + msg,
		Err:     fmt.Errorf("%w: %w", ErrUnavailable, err),
	}
}

// newResponseError builds an APIError from a non-success response and
// consumes its body.
func newResponseError(resp *http.Response) *APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		body = nil
	}

	msg := messageFromBody(body)
	if msg == "" {
		msg = UnknownErrorMessage
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

// messageFromBody extracts a message from JSON bodies shaped like
// {"message": ...}, {"error": ...}, {"detail": ...} or {"errors": [...]},
// falling back to the raw text for non-JSON bodies.
func messageFromBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ""
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return truncate(text, 200)
	}
	return MessageOf(v)
}

// MessageOf renders an arbitrary value as a displayable message. Strings
// and errors are used as is. Objects are searched for a message field; a
// nested object without one is rendered as compact JSON rather than Go's
// map syntax. A top-level object without one yields "".
func MessageOf(v any) string {
	return render(v, true)
}

func render(v any, topLevel bool) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	case map[string]any:
		for _, key := range []string{"message", "error", "detail", "errors"} {
			if inner, ok := val[key]; ok {
				if msg := render(inner, false); msg != "" {
					return msg
				}
			}
		}
		if topLevel || len(val) == 0 {
			return ""
		}
		return compactJSON(val)
	case []any:
		for _, item := range val {
			if msg := render(item, false); msg != "" {
				return msg
			}
		}
		return ""
	case float64, bool, int, int64:
		return fmt.Sprint(val)
	default:
		return compactJSON(val)
	}
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
