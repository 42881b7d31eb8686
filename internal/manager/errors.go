package manager

import (
	"errors"
	"fmt"
)

// ValidationError reports that a single field of the input violated a
// format or precondition rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validation(field, reason string) ValidationError {
	return ValidationError{Field: field, Reason: reason}
}

// DuplicatePhoneError reports that the supplied phone number already
// belongs to another contact.
type DuplicatePhoneError struct {
	Phone string
}

func (e DuplicatePhoneError) Error() string {
	return fmt.Sprintf("phone number already in use: %s", e.Phone)
}

// NotFoundError reports that no contact exists for the requested id.
type NotFoundError struct {
	Id int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("contact not found: %d", e.Id)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsDuplicatePhone reports whether err is a DuplicatePhoneError.
func IsDuplicatePhone(err error) bool {
	var d DuplicatePhoneError
	return errors.As(err, &d)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var n NotFoundError
	return errors.As(err, &n)
}
