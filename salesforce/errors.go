package salesforce

import (
	"errors"
	"fmt"
)

// Error kinds. Client methods wrap failures as "<kind>: <cause>" so callers
// can test the kind with errors.Is and still see the original message.
var (
	ErrMissingCredentials = errors.New("missing required Salesforce credentials")
	ErrNotInitialized     = errors.New("salesforce client not initialized")
	ErrLogin              = errors.New("salesforce login failed")
	ErrQuery              = errors.New("SOQL query failed")
	ErrDescribe           = errors.New("object describe failed")
	ErrCreate             = errors.New("record creation failed")
	ErrUpdate             = errors.New("record update failed")
	ErrDelete             = errors.New("record deletion failed")
	ErrUserInfo           = errors.New("get user info failed")
	ErrListObjects        = errors.New("list objects failed")
	ErrNotFound           = errors.New("record not found")
)

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}

// NotFound reports a lookup by id that returned no rows.
func NotFound(object, id string) error {
	return fmt.Errorf("%w: %s with ID %s", ErrNotFound, object, id)
}
