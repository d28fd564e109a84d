package apperrors

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrSessionNotFound  = errors.New("no active recording session")
	ErrNoCurrentProject = errors.New("no project selected")
	ErrNoExportTask     = errors.New("no export task to retry")
)

// AppError is the normalized failure shape shared by every backend command
// and surfaced to the presentation layer. Suggestion is optional operator
// guidance, carried through from the backend when it supplies one.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (e AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func New(code, message string) AppError {
	return AppError{Code: code, Message: message}
}

func WithSuggestion(code, message, suggestion string) AppError {
	return AppError{Code: code, Message: message, Suggestion: suggestion}
}

// envelope matches the nested {"error": {...}} payload some backend replies
// wrap their failure in.
type envelope struct {
	Error *AppError `json:"error"`
}

// Normalize coerces an arbitrary failure value into an AppError. It
// recognizes, in order: an AppError (by value or pointer), a Go error whose
// message encodes an AppError or envelope as JSON, a raw JSON string, and
// finally any non-empty string. The fallback code and message are used when
// the shape is unrecognized or empty.
func Normalize(v any, fallbackCode, fallbackMessage string) AppError {
	switch failure := v.(type) {
	case nil:
	case AppError:
		return withFallback(failure, fallbackCode, fallbackMessage)
	case *AppError:
		if failure != nil {
			return withFallback(*failure, fallbackCode, fallbackMessage)
		}
	case error:
		var appErr AppError
		if errors.As(failure, &appErr) {
			return withFallback(appErr, fallbackCode, fallbackMessage)
		}
		return fromText(failure.Error(), fallbackCode, fallbackMessage)
	case string:
		return fromText(failure, fallbackCode, fallbackMessage)
	}
	return AppError{Code: fallbackCode, Message: fallbackMessage}
}

func fromText(text, fallbackCode, fallbackMessage string) AppError {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return AppError{Code: fallbackCode, Message: fallbackMessage}
	}
	if decoded, ok := decodeJSON(trimmed); ok {
		return withFallback(decoded, fallbackCode, fallbackMessage)
	}
	// net/rpc flattens server errors to strings; commands encode the
	// AppError as JSON inside that string so it survives the round trip.
	if start := strings.Index(trimmed, "{"); start > 0 {
		if decoded, ok := decodeJSON(trimmed[start:]); ok {
			return withFallback(decoded, fallbackCode, fallbackMessage)
		}
	}
	return AppError{Code: fallbackCode, Message: trimmed}
}

func decodeJSON(raw string) (AppError, bool) {
	if !strings.HasPrefix(raw, "{") {
		return AppError{}, false
	}
	var wrapped envelope
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
		return *wrapped.Error, true
	}
	var direct AppError
	if err := json.Unmarshal([]byte(raw), &direct); err == nil && (direct.Code != "" || direct.Message != "") {
		return direct, true
	}
	return AppError{}, false
}

func withFallback(e AppError, fallbackCode, fallbackMessage string) AppError {
	if e.Code == "" {
		e.Code = fallbackCode
	}
	if e.Message == "" {
		e.Message = fallbackMessage
	}
	return e
}
