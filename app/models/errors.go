package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Sentinels for errors.Is; the typed errors below carry the details.
var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotFound      = errors.New("request not found")
	ErrStorage       = errors.New("storage failure")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
)

// AllowedEmailDomains are the only mail domains a request may come from.
var AllowedEmailDomains = []string{"gmail.com", "ceat.com"}

var emailRE = regexp.MustCompile(`^[\w.+-]+@(gmail\.com|ceat\.com)$`)

// ValidateEmail returns an *InvalidEmailError unless email is
// local-part@gmail.com or local-part@ceat.com.
func ValidateEmail(email string) error {
	if !emailRE.MatchString(email) {
		return &InvalidEmailError{Email: email}
	}
	return nil
}

// ValidateName rejects blank requester names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	return nil
}

type InvalidEmailError struct {
	Email string
}

func (e *InvalidEmailError) Error() string {
	return fmt.Sprintf("invalid email %q: it must end with @%s", e.Email, strings.Join(AllowedEmailDomains, " or @"))
}

func (e *InvalidEmailError) Is(target error) bool { return target == ErrInvalidEmail }

type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q: expected one of Pending, Approved, Rejected", e.Value)
}

func (e *InvalidStatusError) Is(target error) bool { return target == ErrInvalidStatus }

type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("request %d not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps an engine failure raised while running Op.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// InvalidFieldError rejects a form field other than email or status, such
// as an item missing from the catalog or a quantity below one.
type InvalidFieldError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidInput }
