package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Kind is the failure taxonomy: every error a handler surfaces falls into one
// of these classes, each with a fixed HTTP status.
type Kind int

const (
	KindValidation Kind = iota // malformed input or business-rule violation, 400
	KindPermission             // authenticated but not allowed, 403
	KindNotFound               // referenced entity absent, 404
	KindUnexpected             // everything else, 500
)

// StatusCode maps a Kind to its HTTP status
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrorInfo is a classified error ready for the wire envelope
type ErrorInfo struct {
	Kind    Kind
	Message string
}

// ParseError classifies a raw persistence error. Sensitive driver detail stays
// out of the message; the context string names the entity being touched.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Kind: KindUnexpected, Message: "An unexpected error occurred."}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Kind: KindNotFound, Message: notFoundMessage(context)}
	}

	if IsDuplicateKey(err) {
		return parseDuplicateKeyError(errStrLower)
	}

	// Foreign key constraint violation (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: fmt.Sprintf("Referenced %s does not exist.", context),
		}
	}

	// Not null constraint violation (23502)
	if strings.Contains(errStrLower, "not-null constraint") ||
		strings.Contains(errStrLower, "not null constraint") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: fmt.Sprintf("A required %s field is missing.", context),
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Kind:    KindUnexpected,
			Message: "A backing service is unreachable. Please try again later.",
		}
	}

	return ErrorInfo{Kind: KindUnexpected, Message: "An unexpected error occurred."}
}

// IsDuplicateKey reports whether err is a unique-constraint violation.
// Covers gorm's translated error, postgres 23505 and sqlite's
// "UNIQUE constraint failed" wording.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "business_reviewer") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: "You have already reviewed this provider.",
		}
	}
	if strings.Contains(errLower, "username") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: "A user with that username already exists.",
		}
	}
	if strings.Contains(errLower, "email") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: "A user with that email already exists.",
		}
	}
	if strings.Contains(errLower, "user_id") {
		return ErrorInfo{
			Kind:    KindValidation,
			Message: "This user already has a profile.",
		}
	}
	return ErrorInfo{Kind: KindValidation, Message: "This record already exists."}
}

func notFoundMessage(context string) string {
	if context == "" {
		return "Not found."
	}
	return fmt.Sprintf("%s%s not found", strings.ToUpper(context[:1]), context[1:])
}
