// Package resolver turns a human-readable username into the owning
// wallet address by probing the unordered on-chain user list.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/OxBryte/onchain-linktree/model"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is the terminal outcome when no candidate owns the
// target username. Callers must distinguish it from an in-progress
// scan (a blocked Resolve call) and from cancellation (ctx.Err).
var ErrNotFound = errors.New("username not found")

// DetailFetch looks up the on-chain details for one address.
type DetailFetch func(ctx context.Context, address string) (model.User, error)

// Resolve probes candidates strictly one at a time, in list order,
// until a registered user whose username equals target
// (case-insensitively) is found. The first match in list order wins.
// A failed lookup for one candidate is logged and treated as a
// non-match; the scan continues. Cancelling ctx stops the scan between
// probes, which is how a superseded scan is abandoned.
func Resolve(ctx context.Context, candidates []string, target string, fetch DetailFetch) (string, error) {
	for _, address := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		details, err := fetch(ctx, address)
		if err != nil {
			log.Warn().Err(err).Str("address", address).Str("target", target).
				Msg("Detail lookup failed during username resolution, skipping candidate")
			continue
		}

		if details.Exists && strings.EqualFold(details.Username, target) {
			return address, nil
		}
	}

	return "", ErrNotFound
}
