// Package chain exposes the UserDataContract through a fixed
// read/write interface. The contract itself is an external
// collaborator: this package only shapes requests against it and
// never interprets its storage layout.
package chain

import (
	"context"
	"errors"

	"github.com/OxBryte/onchain-linktree/model"
)

// ErrUnavailable indicates the contract gateway could not be reached
// or returned a malformed response.
var ErrUnavailable = errors.New("contract gateway unavailable")

// Reader covers the view functions of the contract ABI. The "My"
// variants read on behalf of a calling wallet, which the gateway
// identifies by the caller address.
type Reader interface {
	GetAllUsers(ctx context.Context) ([]string, error)
	GetUserDetails(ctx context.Context, address string) (model.User, error)
	GetMyDetails(ctx context.Context, caller string) (model.User, error)
	GetUserDataArray(ctx context.Context, address string) ([]model.Link, error)
	GetMyDataArray(ctx context.Context, caller string) ([]model.Link, error)
	UserExists(ctx context.Context, address string) (bool, error)
}

// Writer covers the state-changing functions. Failures carry the
// provider-supplied message verbatim; the service never retries, it
// re-offers the operation to the user.
type Writer interface {
	RegisterUser(ctx context.Context, caller, username string) error
	AddUserData(ctx context.Context, caller, key, value string) error
	AddMultipleUserData(ctx context.Context, caller string, keys, values []string) error
}
