package netatmo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Account ties the client and the capability model together and holds the
// most recent catalog snapshot. Snapshots are replaced wholesale on every
// refresh; readers holding a previous snapshot keep a consistent, immutable
// graph.
type Account struct {
	client *Client
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *CatalogSnapshot
}

// AccountOption configures an Account.
type AccountOption func(*Account)

// WithAccountLogger sets a structured logger for ingestion warnings.
func WithAccountLogger(logger *slog.Logger) AccountOption {
	return func(a *Account) {
		a.logger = logger
	}
}

// NewAccount creates an account view over the given client.
func NewAccount(client *Client, opts ...AccountOption) *Account {
	a := &Account{client: client}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = client.logger
	}
	return a
}

// UpdateTopology fetches the full catalog topology and rebuilds the snapshot
// from scratch. Returns the new snapshot.
func (a *Account) UpdateTopology(ctx context.Context) (*CatalogSnapshot, error) {
	raw, err := a.client.GetHomesData(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := Ingest(raw, a.logger)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()
	return snap, nil
}

// UpdateStatus fetches dynamic state for one home and overlays it onto a
// copy of the current snapshot, which then replaces it. UpdateTopology must
// have succeeded at least once first.
func (a *Account) UpdateStatus(ctx context.Context, homeID string) (*CatalogSnapshot, error) {
	a.mu.RLock()
	current := a.snapshot
	a.mu.RUnlock()
	if current == nil {
		return nil, &MalformedCatalogError{Reason: "no topology ingested yet"}
	}

	status, err := a.client.GetHomeStatus(ctx, homeID)
	if err != nil {
		return nil, err
	}

	next := current.withStatus(status, a.logger)

	a.mu.Lock()
	a.snapshot = next
	a.mu.Unlock()
	return next, nil
}

// UpdateAll refreshes topology and then the status of every home.
func (a *Account) UpdateAll(ctx context.Context) (*CatalogSnapshot, error) {
	snap, err := a.UpdateTopology(ctx)
	if err != nil {
		return nil, err
	}
	for _, home := range snap.Homes {
		if snap, err = a.UpdateStatus(ctx, home.ID); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Snapshot returns the most recent catalog snapshot, or nil before the first
// successful UpdateTopology.
func (a *Account) Snapshot() *CatalogSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// SwitchSchedule activates a schedule after checking it exists in the home,
// so a stale or mistyped id never reaches the backend.
func (a *Account) SwitchSchedule(ctx context.Context, homeID, scheduleID string) error {
	snap := a.Snapshot()
	if snap == nil {
		return ErrNotFound
	}
	home := snap.Home(homeID)
	if home == nil {
		return fmt.Errorf("%w: home %q", ErrNotFound, homeID)
	}
	if !home.HasSchedule(scheduleID) {
		return fmt.Errorf("%w: schedule %q in home %q", ErrNotFound, scheduleID, homeID)
	}
	return a.client.SwitchHomeSchedule(ctx, homeID, scheduleID)
}

// SetAttribute validates and executes a state change in one step using the
// current snapshot.
func (a *Account) SetAttribute(ctx context.Context, moduleID, attribute string, value any) error {
	snap := a.Snapshot()
	if snap == nil {
		return ErrNotFound
	}
	req, err := snap.SetAttribute(moduleID, attribute, value)
	if err != nil {
		return err
	}
	return a.client.SetState(ctx, req)
}
