package clubio

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeIdentityMismatch = "IDENTITY_PROFILE_MISMATCH"
	textCodeStoreFailure     = "CREDENTIAL_STORE_FAILURE"
)

// ErrIdentityMismatch is returned when a resolved identity carries a
// profile payload that does not match its user type discriminant.
var ErrIdentityMismatch = goerrors.New("identity profile does not match user type", goerrors.CategoryValidation).
	WithTextCode(textCodeIdentityMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrStoreFailure is returned when the durable credential store cannot be
// read or written.
var ErrStoreFailure = goerrors.New("credential store failure", goerrors.CategoryInternal).
	WithTextCode(textCodeStoreFailure).
	WithCode(goerrors.CodeInternal)

// Error strings surfaced through the Result channel. These are user facing
// and mirror what the backend's own clients display.
const (
	msgUnknownError = "an unknown error occurred"
	msgInvalidBody  = "invalid response body"
)

// httpStatusMessage is the fallback when an error body has no detail field.
func httpStatusMessage(status int) string {
	return fmt.Sprintf("HTTP error! status: %d", status)
}
