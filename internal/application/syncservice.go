// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/ericfisherdev/pulldeck/internal/domain/port/driven"
)

// Auto-refresh interval bounds in seconds. Configured intervals are clamped
// into this range.
const (
	minRefreshInterval = 60 * time.Second
	maxRefreshInterval = 600 * time.Second
)

var (
	// ErrTabNotFound means the given tab ID is not present in the snapshot.
	ErrTabNotFound = errors.New("tab not found")

	// ErrItemNotFound means the given item ID is not in the tab's list.
	ErrItemNotFound = errors.New("item not found")
)

// tabOutcome is one tab's result from a refresh fan-out.
type tabOutcome struct {
	tab   model.TabConfig
	items []model.PullRequestItem
	err   error
}

// SyncService orchestrates pull-request synchronization: concurrent per-tab
// searches, filter and sort application, snapshot merging with partial-failure
// isolation, lazy detail hydration, cost assessment, cache persistence, and
// the periodic auto-refresh loop.
//
// All snapshot mutation happens under one mutex; readers receive copies. A
// failing tab never disturbs sibling tabs, and a round in which every tab
// failed leaves the previous snapshot untouched.
type SyncService struct {
	creds      *CredentialCache
	newClient  driven.GitHubClientFactory
	cacheStore driven.CacheStore

	mu           sync.Mutex
	snapshot     model.Snapshot
	lastError    string
	lastSyncedAt time.Time
	hintCount    int
	inFlight     int

	loadOnce sync.Once

	loopMu     sync.Mutex
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// NewSyncService creates a SyncService with all required dependencies.
func NewSyncService(creds *CredentialCache, factory driven.GitHubClientFactory, cacheStore driven.CacheStore) *SyncService {
	return &SyncService{
		creds:      creds,
		newClient:  factory,
		cacheStore: cacheStore,
		snapshot:   model.Snapshot{ByTabID: map[string][]model.PullRequestItem{}},
	}
}

// Configure is the startup entry point: it loads the cached snapshot,
// recomputes notification hints, and starts the auto-refresh loop. Calling it
// again restarts the loop with the new settings.
func (s *SyncService) Configure(ctx context.Context, settings model.Settings) {
	s.LoadCachedIfNeeded(ctx)
	s.UpdateNotificationHints(settings)
	s.RestartAutoRefresh(settings)
}

// LoadCachedIfNeeded loads the persisted snapshot into memory exactly once
// per process lifetime, before any network activity. Subsequent calls are
// no-ops, as is any call after a refresh has already landed.
func (s *SyncService) LoadCachedIfNeeded(ctx context.Context) {
	s.loadOnce.Do(func() {
		snap, err := s.cacheStore.Load(ctx)
		if err != nil {
			slog.Warn("cache load failed", "error", err)
			return
		}
		if snap == nil {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.lastSyncedAt.IsZero() {
			// A refresh finished first; its data is fresher.
			return
		}
		s.snapshot = *snap
		if s.snapshot.ByTabID == nil {
			s.snapshot.ByTabID = map[string][]model.PullRequestItem{}
		}
		slog.Info("cached snapshot loaded", "tabs", len(s.snapshot.ByTabID), "updated_at", s.snapshot.UpdatedAt)
	})
}

// RefreshAll runs one full refresh round across all enabled tabs.
//
// If a refresh is already in flight and force is false, the call is a no-op.
// Per-tab failures are isolated: failing tabs keep their previous items and
// contribute a "<title>: <message>" line to LastError, while successful tabs
// get fresh, filtered, sorted data. The snapshot is replaced as one unit only
// when at least one tab succeeded.
//
// RefreshAll returns an error only when the round made no progress at all
// (token resolution failed, or every tab failed); partial failures surface
// through LastError instead.
func (s *SyncService) RefreshAll(ctx context.Context, force bool, settings model.Settings) error {
	s.mu.Lock()
	if s.inFlight > 0 && !force {
		s.mu.Unlock()
		return nil
	}
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	tabs := settings.EnabledTabs()
	if len(tabs) == 0 {
		s.clearSnapshot(ctx)
		return nil
	}

	token, err := s.creds.Token(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = UserMessage(err)
		s.mu.Unlock()
		return fmt.Errorf("resolving token: %w", err)
	}

	start := time.Now()
	client := s.newClient(settings.GraphQLEndpoint, token)
	outcomes := s.fetchTabs(ctx, client, tabs, settings.SortOrder)

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string][]model.PullRequestItem, len(tabs))
	var errLines []string
	var succeeded int

	for _, out := range outcomes {
		if out.err != nil {
			errLines = append(errLines, out.tab.Title+": "+UserMessage(out.err))
			if prior, ok := s.snapshot.ByTabID[out.tab.ID]; ok {
				merged[out.tab.ID] = prior
			}
			continue
		}
		succeeded++
		merged[out.tab.ID] = out.items
	}

	s.lastError = strings.Join(errLines, "\n")

	if succeeded == 0 {
		slog.Error("refresh failed for every tab", "tabs", len(tabs))
		return errors.New(s.lastError)
	}

	now := time.Now().UTC()
	s.snapshot = model.Snapshot{UpdatedAt: now, ByTabID: merged}
	s.lastSyncedAt = now
	s.hintCount = countNotificationHints(s.snapshot, settings)
	s.persistLocked(ctx)

	slog.Info("refresh complete",
		"tabs", len(tabs),
		"failed", len(errLines),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// fetchTabs fans out one search per tab and waits for every outcome. A tab's
// error never cancels its siblings.
func (s *SyncService) fetchTabs(ctx context.Context, client driven.GitHubClient, tabs []model.TabConfig, order model.SortOrder) []tabOutcome {
	outcomes := make([]tabOutcome, len(tabs))

	var wg sync.WaitGroup
	for i, tab := range tabs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			items, err := client.SearchPullRequests(ctx, tab.EffectiveQuery())
			if err != nil {
				slog.Error("tab search failed", "tab", tab.ID, "error", err)
				outcomes[i] = tabOutcome{tab: tab, err: err}
				return
			}

			items = tab.ApplyFilters(items)
			model.SortItems(items, order)
			outcomes[i] = tabOutcome{tab: tab, items: items}
		}()
	}
	wg.Wait()

	return outcomes
}

// clearSnapshot handles the no-enabled-tabs case: empty snapshot, no error,
// zero hints.
func (s *SyncService) clearSnapshot(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = model.Snapshot{UpdatedAt: time.Now().UTC(), ByTabID: map[string][]model.PullRequestItem{}}
	s.lastError = ""
	s.hintCount = 0
	s.persistLocked(ctx)
}

// persistLocked writes the current snapshot to the cache store. Best effort;
// the caller must hold s.mu.
func (s *SyncService) persistLocked(ctx context.Context) {
	if err := s.cacheStore.Save(ctx, s.snapshot.Clone()); err != nil {
		slog.Warn("cache save failed", "error", err)
	}
}

// EnsureChecksLoaded hydrates the per-check detail list for one item, fetching
// only when the list is still empty. It returns the (possibly updated) item.
func (s *SyncService) EnsureChecksLoaded(ctx context.Context, tabID, itemID string, settings model.Settings) (model.PullRequestItem, error) {
	item, err := s.Item(tabID, itemID)
	if err != nil {
		return model.PullRequestItem{}, err
	}
	if len(item.Checks) > 0 {
		return item, nil
	}

	client, err := s.clientFor(ctx, settings)
	if err != nil {
		return model.PullRequestItem{}, err
	}

	checks, err := client.FetchChecks(ctx, itemID)
	if err != nil {
		return model.PullRequestItem{}, fmt.Errorf("fetching checks: %w", err)
	}

	return s.replaceItem(tabID, itemID, func(it model.PullRequestItem) model.PullRequestItem {
		return it.WithChecks(checks)
	})
}

// EnsureCommentsLoaded hydrates the comment-thread detail list for one item,
// fetching only when the list is still empty. It returns the (possibly
// updated) item.
func (s *SyncService) EnsureCommentsLoaded(ctx context.Context, tabID, itemID string, settings model.Settings) (model.PullRequestItem, error) {
	item, err := s.Item(tabID, itemID)
	if err != nil {
		return model.PullRequestItem{}, err
	}
	if len(item.CommentThreads) > 0 {
		return item, nil
	}

	client, err := s.clientFor(ctx, settings)
	if err != nil {
		return model.PullRequestItem{}, err
	}

	threads, err := client.FetchCommentThreads(ctx, itemID)
	if err != nil {
		return model.PullRequestItem{}, fmt.Errorf("fetching comment threads: %w", err)
	}

	return s.replaceItem(tabID, itemID, func(it model.PullRequestItem) model.PullRequestItem {
		return it.WithCommentThreads(threads)
	})
}

// EnsureReviewDetailsLoaded hydrates aggregated reviewer state for one item,
// fetching only when no detail has been loaded yet. It returns the (possibly
// updated) item.
func (s *SyncService) EnsureReviewDetailsLoaded(ctx context.Context, tabID, itemID string, settings model.Settings) (model.PullRequestItem, error) {
	item, err := s.Item(tabID, itemID)
	if err != nil {
		return model.PullRequestItem{}, err
	}
	if !item.ReviewDetails.IsEmpty() {
		return item, nil
	}

	client, err := s.clientFor(ctx, settings)
	if err != nil {
		return model.PullRequestItem{}, err
	}

	details, err := client.FetchReviewDetails(ctx, itemID)
	if err != nil {
		return model.PullRequestItem{}, fmt.Errorf("fetching review details: %w", err)
	}

	return s.replaceItem(tabID, itemID, func(it model.PullRequestItem) model.PullRequestItem {
		return it.WithReviewDetails(details)
	})
}

// clientFor resolves the token and builds a client for the settings' endpoint.
func (s *SyncService) clientFor(ctx context.Context, settings model.Settings) (driven.GitHubClient, error) {
	token, err := s.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.newClient(settings.GraphQLEndpoint, token), nil
}

// replaceItem swaps one item within one tab's list, leaving every other item
// and tab untouched. Serialized under the snapshot mutex so concurrent
// hydrations cannot lose updates.
func (s *SyncService) replaceItem(tabID, itemID string, mutate func(model.PullRequestItem) model.PullRequestItem) (model.PullRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.snapshot.ByTabID[tabID]
	if !ok {
		return model.PullRequestItem{}, ErrTabNotFound
	}
	for i, it := range items {
		if it.ID == itemID {
			updated := mutate(it)
			items[i] = updated
			return updated, nil
		}
	}
	return model.PullRequestItem{}, ErrItemNotFound
}

// AssessRefreshCost dry-runs the search cost for every enabled tab
// concurrently and classifies a warning level. A tab whose dry run fails is
// excluded from the total and carries its failure message in the breakdown;
// it does not abort the assessment or raise the level by itself.
func (s *SyncService) AssessRefreshCost(ctx context.Context, settings model.Settings) (model.CostAssessment, error) {
	tabs := settings.EnabledTabs()
	if len(tabs) == 0 {
		return model.CostAssessment{Warning: model.CostWarningNone}, nil
	}

	client, err := s.clientFor(ctx, settings)
	if err != nil {
		return model.CostAssessment{}, err
	}

	type costOutcome struct {
		estimate model.QueryCostEstimate
		err      error
	}
	outcomes := make([]costOutcome, len(tabs))

	var wg sync.WaitGroup
	for i, tab := range tabs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			est, err := client.EstimateQueryCost(ctx, tab.EffectiveQuery())
			outcomes[i] = costOutcome{estimate: est, err: err}
		}()
	}
	wg.Wait()

	assessment := model.CostAssessment{PerTab: make([]model.TabCost, 0, len(tabs))}
	for i, tab := range tabs {
		out := outcomes[i]
		if out.err != nil {
			assessment.PerTab = append(assessment.PerTab, model.TabCost{
				TabID: tab.ID,
				Title: tab.Title,
				Err:   UserMessage(out.err),
			})
			continue
		}

		assessment.PerTab = append(assessment.PerTab, model.TabCost{
			TabID: tab.ID,
			Title: tab.Title,
			Cost:  out.estimate.Cost,
		})
		assessment.TotalCost += out.estimate.Cost

		// The tightest remaining budget seen across tabs is the one that binds.
		if assessment.Limit == 0 || out.estimate.Remaining < assessment.Remaining {
			assessment.Remaining = out.estimate.Remaining
			assessment.Limit = out.estimate.Limit
		}
	}

	thresholds := settings.CostThresholds
	if thresholds == (model.CostThresholds{}) {
		thresholds = model.DefaultCostThresholds()
	}
	assessment.Warning = assessment.Classify(thresholds)

	return assessment, nil
}

// RestartAutoRefresh cancels any running periodic loop and starts a new one
// with the settings' interval, clamped to [60s, 600s]. The loop sleeps for
// the interval, then triggers a non-forced refresh, until cancelled. At most
// one loop is active at a time.
func (s *SyncService) RestartAutoRefresh(settings model.Settings) {
	interval := settings.RefreshInterval
	if interval < minRefreshInterval {
		interval = minRefreshInterval
	}
	if interval > maxRefreshInterval {
		interval = maxRefreshInterval
	}

	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	s.stopLoopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.loopCancel = cancel
	s.loopDone = done

	slog.Info("auto-refresh started", "interval", interval)

	go func() {
		defer close(done)
		for {
			if ctx.Err() != nil {
				return
			}

			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			if ctx.Err() != nil {
				return
			}

			// A cancellation mid-refresh only affects the next iteration;
			// the in-flight round runs to completion.
			if err := s.RefreshAll(context.WithoutCancel(ctx), false, settings); err != nil {
				slog.Error("scheduled refresh failed", "error", err)
			}
		}
	}()
}

// StopAutoRefresh cancels the periodic loop, interrupting its sleep promptly,
// and waits for the loop goroutine to exit.
func (s *SyncService) StopAutoRefresh() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	s.stopLoopLocked()
}

func (s *SyncService) stopLoopLocked() {
	if s.loopCancel == nil {
		return
	}
	s.loopCancel()
	<-s.loopDone
	s.loopCancel = nil
	s.loopDone = nil
	slog.Info("auto-refresh stopped")
}

// ApplySort re-sorts every tab's in-memory list per the settings' sort order,
// without refetching, and re-persists the cache.
func (s *SyncService) ApplySort(ctx context.Context, settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, items := range s.snapshot.ByTabID {
		model.SortItems(items, settings.SortOrder)
	}
	s.persistLocked(ctx)
}

// UpdateNotificationHints recomputes the derived hint count from the current
// snapshot.
func (s *SyncService) UpdateNotificationHints(settings model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hintCount = countNotificationHints(s.snapshot, settings)
}

// countNotificationHints derives the badge count: items awaiting the user's
// review, plus distinct PRs with unresolved threads, per the notification
// toggles.
func countNotificationHints(snap model.Snapshot, settings model.Settings) int {
	count := 0

	if settings.NotifyReviewRequests {
		count += len(snap.ByTabID[model.TabIDReviewRequested])
	}

	if settings.NotifyUnresolved {
		seen := map[string]bool{}
		for _, items := range snap.ByTabID {
			for _, item := range items {
				if item.UnresolvedThreads > 0 && !seen[item.ID] {
					seen[item.ID] = true
					count++
				}
			}
		}
	}

	return count
}

// Items returns a copy of one tab's current list.
func (s *SyncService) Items(tabID string) ([]model.PullRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.snapshot.ByTabID[tabID]
	if !ok {
		return nil, ErrTabNotFound
	}
	out := make([]model.PullRequestItem, len(items))
	copy(out, items)
	return out, nil
}

// Item returns a copy of one item.
func (s *SyncService) Item(tabID, itemID string) (model.PullRequestItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, ok := s.snapshot.ByTabID[tabID]
	if !ok {
		return model.PullRequestItem{}, ErrTabNotFound
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return model.PullRequestItem{}, ErrItemNotFound
}

// Snapshot returns a copy of the full current snapshot.
func (s *SyncService) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Clone()
}

// InFlight reports whether a refresh round is currently running.
func (s *SyncService) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// LastError returns the aggregated per-tab failure message from the most
// recent round, or "" when the round was clean.
func (s *SyncService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// LastSyncedAt returns the timestamp of the most recent round that produced
// data, or the zero time before any has.
func (s *SyncService) LastSyncedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSyncedAt
}

// NotificationCount returns the current derived hint count.
func (s *SyncService) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintCount
}
