package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFormat        = errors.New("invalid CSV format")
	ErrEmptyLedger          = errors.New("ledger is empty")
	ErrSessionNotFound      = errors.New("session not found")
	ErrUploadNotFound       = errors.New("upload not found")
	ErrAssistantUnavailable = errors.New("assistant is not configured")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
)

// FormatError reports the required header columns missing from a ledger.
type FormatError struct {
	Missing []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: missing required audit columns: %s",
		ErrInvalidFormat, strings.Join(e.Missing, ", "))
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}
