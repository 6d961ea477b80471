package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OxBryte/onchain-linktree/config"
	"github.com/OxBryte/onchain-linktree/eventlog"
	"github.com/OxBryte/onchain-linktree/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// fakeChain implements chain.Reader and chain.Writer in memory.
type fakeChain struct {
	users        map[string]model.User   // address -> details
	links        map[string][]model.Link // address -> links
	order        []string                // getAllUsers order
	writeErr     error
	allUsersHits int
}

func (f *fakeChain) GetAllUsers(ctx context.Context) ([]string, error) {
	f.allUsersHits++
	return f.order, nil
}

func (f *fakeChain) GetUserDetails(ctx context.Context, address string) (model.User, error) {
	return f.users[address], nil
}

func (f *fakeChain) GetMyDetails(ctx context.Context, caller string) (model.User, error) {
	return f.users[caller], nil
}

func (f *fakeChain) GetUserDataArray(ctx context.Context, address string) ([]model.Link, error) {
	return f.links[address], nil
}

func (f *fakeChain) GetMyDataArray(ctx context.Context, caller string) ([]model.Link, error) {
	return f.links[caller], nil
}

func (f *fakeChain) UserExists(ctx context.Context, address string) (bool, error) {
	return f.users[address].Exists, nil
}

func (f *fakeChain) RegisterUser(ctx context.Context, caller, username string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.users[caller] = model.User{Address: caller, Username: username, Exists: true}
	f.order = append(f.order, caller)
	return nil
}

func (f *fakeChain) AddUserData(ctx context.Context, caller, key, value string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.links[caller] = append(f.links[caller], model.Link{Key: key, Value: value})
	return nil
}

func (f *fakeChain) AddMultipleUserData(ctx context.Context, caller string, keys, values []string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for i := range keys {
		f.links[caller] = append(f.links[caller], model.Link{Key: keys[i], Value: values[i]})
	}
	return nil
}

func setupService(t *testing.T) (*Service, *fakeChain, *eventlog.Log) {
	t.Helper()

	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	events := eventlog.New(client, config.AnalyticsConfig{
		StorageKey: "analytics:events",
		Capacity:   100,
	}, 5*time.Second)

	fake := &fakeChain{
		users: map[string]model.User{
			"0xA": {Address: "0xA", Username: "alice", Exists: true, CreatedAt: 1700000000},
			"0xB": {Address: "0xB", Username: "bob", Exists: true, CreatedAt: 1700001000},
		},
		links: map[string][]model.Link{
			"0xA": {{Key: "twitter", Value: "https://x.com/a"}},
			"0xB": {{Key: "github", Value: "https://github.com/b"}},
		},
		order: []string{"0xA", "0xB"},
	}

	return NewService(fake, fake, events), fake, events
}

func TestLoad_OwnerBypassesResolver(t *testing.T) {
	svc, fake, events := setupService(t)
	ctx := context.Background()

	loaded, err := svc.Load(ctx, "Alice", "0xA")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.Found || !loaded.IsOwner {
		t.Errorf("Expected found owner profile, got %+v", loaded)
	}
	if loaded.DisplayAddress != "0xA" {
		t.Errorf("Expected viewer address displayed, got %s", loaded.DisplayAddress)
	}
	if fake.allUsersHits != 0 {
		t.Errorf("Expected resolver bypassed for owner, getAllUsers called %d times", fake.allUsersHits)
	}

	views := events.Query(ctx, model.KindProfileView)
	if len(views) != 1 {
		t.Fatalf("Expected exactly one profile-view event, got %d", len(views))
	}
	if views[0].Username != "alice" {
		t.Errorf("Expected view recorded under registered username, got %q", views[0].Username)
	}
}

func TestLoad_VisitorResolvesAddress(t *testing.T) {
	svc, fake, events := setupService(t)
	ctx := context.Background()

	loaded, err := svc.Load(ctx, "bob", "0xA")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !loaded.Found || loaded.IsOwner {
		t.Errorf("Expected found non-owner profile, got %+v", loaded)
	}
	if loaded.DisplayAddress != "0xB" {
		t.Errorf("Expected resolved address 0xB, got %s", loaded.DisplayAddress)
	}
	if len(loaded.Links) != 1 || loaded.Links[0].Key != "github" {
		t.Errorf("Expected bob's links, got %+v", loaded.Links)
	}
	if fake.allUsersHits != 1 {
		t.Errorf("Expected one candidate-list read, got %d", fake.allUsersHits)
	}
	if views := events.Query(ctx, model.KindProfileView); len(views) != 1 {
		t.Errorf("Expected one profile-view event, got %d", len(views))
	}
}

func TestLoad_AnonymousVisitor(t *testing.T) {
	svc, _, _ := setupService(t)

	loaded, err := svc.Load(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Found || loaded.IsOwner {
		t.Errorf("Expected found non-owner profile, got %+v", loaded)
	}
}

func TestLoad_NotFoundIsTerminalNotError(t *testing.T) {
	svc, _, events := setupService(t)
	ctx := context.Background()

	loaded, err := svc.Load(ctx, "nobody", "")
	if err != nil {
		t.Fatalf("Expected not-found to be a non-error outcome, got %v", err)
	}
	if loaded.Found {
		t.Error("Expected Found == false for unknown username")
	}
	if views := events.Query(ctx, model.KindProfileView); len(views) != 0 {
		t.Errorf("Expected no view event for a failed load, got %d", len(views))
	}
}

func TestRegister_RecordsEvent(t *testing.T) {
	svc, fake, events := setupService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "0xC", "carol"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if !fake.users["0xC"].Exists {
		t.Error("Expected registration written to the contract")
	}
	regs := events.Query(ctx, model.KindUserRegistered)
	if len(regs) != 1 {
		t.Fatalf("Expected one registration event, got %d", len(regs))
	}
	if regs[0].Username != "carol" || regs[0].Address != "0xC" {
		t.Errorf("Unexpected registration event: %+v", regs[0])
	}
}

func TestRegister_WriteErrorPassesThroughVerbatim(t *testing.T) {
	svc, fake, events := setupService(t)
	fake.writeErr = errors.New("execution reverted: username taken")

	err := svc.Register(context.Background(), "0xC", "carol")
	if err == nil || err.Error() != "execution reverted: username taken" {
		t.Fatalf("Expected verbatim provider error, got %v", err)
	}
	if regs := events.Query(context.Background(), model.KindUserRegistered); len(regs) != 0 {
		t.Errorf("Expected no event for a rejected write, got %d", len(regs))
	}
}

func TestAddLink_RecordsEventAndRereads(t *testing.T) {
	svc, _, events := setupService(t)
	ctx := context.Background()

	links, err := svc.AddLink(ctx, "0xA", "blog", "https://alice.blog")
	if err != nil {
		t.Fatalf("AddLink failed: %v", err)
	}

	if len(links) != 2 {
		t.Fatalf("Expected re-read to include the new link, got %+v", links)
	}
	added := events.Query(ctx, model.KindLinkAdded)
	if len(added) != 1 {
		t.Fatalf("Expected one link-added event, got %d", len(added))
	}
	if added[0].Username != "alice" || added[0].LinkKey != "blog" {
		t.Errorf("Unexpected link-added event: %+v", added[0])
	}
}

func TestAddLinks_BatchRecordsOneEventPerKey(t *testing.T) {
	svc, _, events := setupService(t)
	ctx := context.Background()

	links, err := svc.AddLinks(ctx, "0xB", []string{"blog", "shop"}, []string{"https://b.blog", "https://b.shop"})
	if err != nil {
		t.Fatalf("AddLinks failed: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("Expected 3 links after batch add, got %d", len(links))
	}
	if added := events.Query(ctx, model.KindLinkAdded); len(added) != 2 {
		t.Errorf("Expected 2 link-added events, got %d", len(added))
	}
}

func TestAddLinks_LengthMismatchRejected(t *testing.T) {
	svc, _, _ := setupService(t)

	if _, err := svc.AddLinks(context.Background(), "0xB", []string{"a", "b"}, []string{"x"}); err == nil {
		t.Fatal("Expected length mismatch to be rejected")
	}
}

func TestRecordLinkClick(t *testing.T) {
	svc, _, events := setupService(t)
	ctx := context.Background()

	svc.RecordLinkClick(ctx, "alice", "twitter", "https://x.com/a")

	clicks := events.Query(ctx, model.KindLinkClick)
	if len(clicks) != 1 {
		t.Fatalf("Expected one link-click event, got %d", len(clicks))
	}
	if clicks[0].LinkKey != "twitter" || clicks[0].LinkURL != "https://x.com/a" {
		t.Errorf("Unexpected link-click event: %+v", clicks[0])
	}
}
