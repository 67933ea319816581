// Copyright 2025 Marek Chromy
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New creates a PanelError from a registered error code. Unregistered codes
// fall back to a generic internal error so callers never get a nil message.
func New(code ErrorCode, details string) *PanelError {
	def, ok := errorDefinitions[code]
	if !ok {
		return &PanelError{
			Code:       code,
			Domain:     DomainMisc,
			Message:    "Unknown error",
			Details:    details,
			HTTPStatus: http.StatusInternalServerError,
		}
	}

	return &PanelError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
	}
}

// Wrap converts an arbitrary error into a PanelError with the given code.
// An error that already is a PanelError is returned unchanged so codes
// assigned at the point of origin survive propagation.
func Wrap(err error, code ErrorCode) *PanelError {
	if err == nil {
		return New(code, "")
	}

	var pe *PanelError
	if errors.As(err, &pe) {
		return pe
	}

	return New(code, err.Error())
}

// WithMetadata attaches a key/value pair for logs and API responses.
func (e *PanelError) WithMetadata(key, value string) *PanelError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

func (e *PanelError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s-%d] %s: %s", e.Domain, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s-%d] %s", e.Domain, e.Code, e.Message)
}

// IsPanelError reports whether err carries a PanelError and returns it.
func IsPanelError(err error) (*PanelError, bool) {
	var pe *PanelError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
