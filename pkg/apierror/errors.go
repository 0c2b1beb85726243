package apierror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation            Kind = "VALIDATION"
	KindSynchronization       Kind = "SYNCHRONIZATION"
	KindMissingContractConfig Kind = "MISSING_CONTRACT_CONFIG"
	KindStatus                Kind = "STATUS"
)

// Error is the standard error struct for the SDK. Status errors keep the
// request method, path and response body for diagnostics.
type Error struct {
	Kind       Kind   `json:"code"`
	Message    string `json:"message"`
	Method     string `json:"method,omitempty"`
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Cause      error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, msg string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: msg,
		Cause:   cause,
	}
}

func Validation(msg string) *Error {
	return New(KindValidation, msg, nil)
}

func Validationf(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...), nil)
}

// Synchronization reports that an ownership precondition for a client state
// transition was violated. Callers may retry after dropping other clones.
func Synchronization() *Error {
	return New(KindSynchronization, "client state is shared by another clone", nil)
}

func MissingContractConfig(chainID int64, negRisk bool) *Error {
	return New(KindMissingContractConfig,
		fmt.Sprintf("no exchange contract configured for chain %d (neg_risk=%t)", chainID, negRisk), nil)
}

func Status(method, path string, statusCode int, body string) *Error {
	return &Error{
		Kind:       KindStatus,
		Message:    fmt.Sprintf("unexpected status %d", statusCode),
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Body:       body,
	}
}

// KindOf returns the Kind carried by err, or the empty string when err is not
// an SDK error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsSynchronization(err error) bool {
	return KindOf(err) == KindSynchronization
}

func IsMissingContractConfig(err error) bool {
	return KindOf(err) == KindMissingContractConfig
}

func IsStatus(err error) bool {
	return KindOf(err) == KindStatus
}
