// Package profile composes the contract reads, the username resolver
// and the event log into the flows the pages need: loading a profile,
// registering, and managing links.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/OxBryte/onchain-linktree/chain"
	"github.com/OxBryte/onchain-linktree/eventlog"
	"github.com/OxBryte/onchain-linktree/model"
	"github.com/OxBryte/onchain-linktree/resolver"

	"github.com/rs/zerolog/log"
)

// Profile is the loaded view of one username.
type Profile struct {
	Found          bool         `json:"found"`
	IsOwner        bool         `json:"isOwner"`
	Username       string       `json:"username"`
	DisplayAddress string       `json:"displayAddress"`
	CreatedAt      int64        `json:"createdAt"`
	Links          []model.Link `json:"links"`
}

// Service implements the profile flows over the contract interface.
type Service struct {
	reader chain.Reader
	writer chain.Writer
	events *eventlog.Log
}

// NewService wires the profile service.
func NewService(reader chain.Reader, writer chain.Writer, events *eventlog.Log) *Service {
	return &Service{reader: reader, writer: writer, events: events}
}

// Load resolves username to its owning address and reads its links.
// When the viewer's own registered username matches, the resolver is
// bypassed and the "my data" read path is used. A successful load
// records exactly one profile-view event. An unresolvable username is
// not an error: it returns Found == false so the caller can render a
// terminal not-found state instead of an endless spinner.
func (s *Service) Load(ctx context.Context, username, viewerAddress string) (Profile, error) {
	if viewerAddress != "" {
		if own, ok := s.loadOwn(ctx, username, viewerAddress); ok {
			return own, nil
		}
	}

	candidates, err := s.reader.GetAllUsers(ctx)
	if err != nil {
		return Profile{}, err
	}

	address, err := resolver.Resolve(ctx, candidates, username, s.reader.GetUserDetails)
	if errors.Is(err, resolver.ErrNotFound) {
		return Profile{Found: false, Username: username}, nil
	}
	if err != nil {
		return Profile{}, err
	}

	details, err := s.reader.GetUserDetails(ctx, address)
	if err != nil {
		return Profile{}, err
	}
	links, err := s.reader.GetUserDataArray(ctx, address)
	if err != nil {
		return Profile{}, err
	}

	s.events.Append(ctx, model.NewProfileView(details.Username))

	return Profile{
		Found:          true,
		Username:       details.Username,
		DisplayAddress: address,
		CreatedAt:      details.CreatedAt,
		Links:          links,
	}, nil
}

// loadOwn attempts the owner short-circuit. It reports ok == false
// whenever the viewer does not own the requested username, including
// when the detail read itself fails; the resolver path then decides.
func (s *Service) loadOwn(ctx context.Context, username, viewerAddress string) (Profile, bool) {
	details, err := s.reader.GetMyDetails(ctx, viewerAddress)
	if err != nil {
		log.Warn().Err(err).Str("viewer", viewerAddress).Msg("Own detail read failed, falling back to resolver")
		return Profile{}, false
	}
	if !details.Exists || !strings.EqualFold(details.Username, username) {
		return Profile{}, false
	}

	links, err := s.reader.GetMyDataArray(ctx, viewerAddress)
	if err != nil {
		log.Warn().Err(err).Str("viewer", viewerAddress).Msg("Own link read failed, falling back to resolver")
		return Profile{}, false
	}

	s.events.Append(ctx, model.NewProfileView(details.Username))

	return Profile{
		Found:          true,
		IsOwner:        true,
		Username:       details.Username,
		DisplayAddress: viewerAddress,
		CreatedAt:      details.CreatedAt,
		Links:          links,
	}, true
}

// Register registers the calling wallet under username and records a
// registration event. Contract errors pass through verbatim.
func (s *Service) Register(ctx context.Context, caller, username string) error {
	if err := s.writer.RegisterUser(ctx, caller, username); err != nil {
		return err
	}
	s.events.Append(ctx, model.NewUserRegistered(username, caller))
	return nil
}

// AddLink appends one link for the calling wallet, records a
// link-added event, and re-reads the updated link list.
func (s *Service) AddLink(ctx context.Context, caller, key, value string) ([]model.Link, error) {
	if err := s.writer.AddUserData(ctx, caller, key, value); err != nil {
		return nil, err
	}

	username := s.callerUsername(ctx, caller)
	s.events.Append(ctx, model.NewLinkAdded(username, key))

	return s.reader.GetMyDataArray(ctx, caller)
}

// AddLinks is the batch form over addMultipleUserData.
func (s *Service) AddLinks(ctx context.Context, caller string, keys, values []string) ([]model.Link, error) {
	if len(keys) != len(values) {
		return nil, errors.New("keys and values must have the same length")
	}
	if err := s.writer.AddMultipleUserData(ctx, caller, keys, values); err != nil {
		return nil, err
	}

	username := s.callerUsername(ctx, caller)
	for _, key := range keys {
		s.events.Append(ctx, model.NewLinkAdded(username, key))
	}

	return s.reader.GetMyDataArray(ctx, caller)
}

// RecordLinkClick records a click reported by the browsing client.
func (s *Service) RecordLinkClick(ctx context.Context, username, linkKey, linkURL string) {
	s.events.Append(ctx, model.NewLinkClick(username, linkKey, linkURL))
}

// ResolveAddress finds the owning address for username without
// loading links or recording a view (used by the QR endpoint).
func (s *Service) ResolveAddress(ctx context.Context, username string) (string, error) {
	candidates, err := s.reader.GetAllUsers(ctx)
	if err != nil {
		return "", err
	}
	return resolver.Resolve(ctx, candidates, username, s.reader.GetUserDetails)
}

func (s *Service) callerUsername(ctx context.Context, caller string) string {
	details, err := s.reader.GetMyDetails(ctx, caller)
	if err != nil || !details.Exists {
		return ""
	}
	return details.Username
}
