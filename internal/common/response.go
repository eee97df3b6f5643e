package common

import (
	"encoding/json"
	"errors"
	"io"
)

// ErrorBody represents a consistent error payload written by the command line tools.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the provided value to w as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// ErrorBodyFrom renders err using the canonical error shape. Errors that are not
// AppErrors are reported with the given fallback code.
func ErrorBodyFrom(err error, fallback string) *ErrorBody {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		message := appErr.Message
		if message == "" && appErr.Err != nil {
			message = appErr.Err.Error()
		}
		return &ErrorBody{Code: appErr.Code, Message: message, Details: appErr.Details}
	}
	return &ErrorBody{Code: fallback, Message: err.Error()}
}
