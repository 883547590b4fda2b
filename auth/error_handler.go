package auth

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCredentialMissing is returned when no bearer credential was
	// presented and credentials are required.
	ErrCredentialMissing = errors.New("credential missing")

	// ErrCredentialInvalid is returned when a credential was presented
	// but failed validation for any reason.
	ErrCredentialInvalid = errors.New("credential invalid")
)

// ErrorHandler is called when authentication fails. The err can be
// checked against ErrCredentialMissing and ErrCredentialInvalid for
// specific cases. The default handler answers both with a generic 401
// so the response never reveals which validation step rejected the
// token; keep that property if you supply your own.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is used when no WithErrorHandler option is given.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, ErrCredentialMissing), errors.Is(err, ErrCredentialInvalid):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking the credential."}`))
	}
}

// invalidError handles wrapping a validation error with the concrete
// error ErrCredentialInvalid. We do not expose this publicly because
// the interface methods of Is and Unwrap should give the caller all
// they need.
type invalidError struct {
	details error
}

// Is allows the error to support equality to ErrCredentialInvalid.
func (e *invalidError) Is(target error) bool {
	return target == ErrCredentialInvalid
}

// Error returns a string representation of the error.
func (e *invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCredentialInvalid, e.details)
}

// Unwrap allows the error to support equality to the underlying error
// and not just ErrCredentialInvalid.
func (e *invalidError) Unwrap() error {
	return e.details
}
