package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	deliverycontext "assettrack/internal/delivery/context"
	"assettrack/internal/domain/entity"
	domainerrors "assettrack/internal/domain/errors"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// FallbackErrorMessage is stored when a failed call carries no message.
const FallbackErrorMessage = "An unexpected error occurred"

const listKey = "list"

// Params holds dependencies for the store, injected by Fx.
type Params struct {
	fx.In

	API       service.AssetAPI
	Publisher service.EventPublisher `optional:"true"`
	Logger    *slog.Logger
}

// Store owns the asset state. Dispatches are applied in lock order; subscribers
// are notified in the same order.
type Store struct {
	api       service.AssetAPI
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    State
	seq      uint64
	fences   map[string]uint64
	listDone uint64
	replay   []Action

	notifyMu    sync.Mutex
	subscribers map[uint64]func(State)
	nextSub     uint64
}

// NewStore creates the store for Fx.
func NewStore(params Params) *Store {
	return New(params.API, params.Publisher, params.Logger)
}

// New creates an empty store. publisher may be nil.
func New(api service.AssetAPI, publisher service.EventPublisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		api:         api,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
		state:       State{Assets: []entity.Asset{}},
		fences:      make(map[string]uint64),
		subscribers: make(map[uint64]func(State)),
	}
}

// Dispatch applies action unconditionally.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	snapshot := s.state.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Snapshot returns a copy of the current state that callers may keep.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Subscribe registers fn to receive every new state. Subscribers run
// synchronously and must not call back into the store.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.notifyMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.notifyMu.Unlock()

	return func() {
		s.notifyMu.Lock()
		delete(s.subscribers, id)
		s.notifyMu.Unlock()
	}
}

// notify must be called with notifyMu held; it releases it.
func (s *Store) notify(state State) {
	defer s.notifyMu.Unlock()
	for _, fn := range s.subscribers {
		fn(state)
	}
}

// Select marks the asset with id as selected. An empty id clears the selection.
func (s *Store) Select(id string) error {
	if id == "" {
		s.Dispatch(SetSelectedAsset(nil))

		return nil
	}

	s.mu.Lock()
	var found *entity.Asset
	for i := range s.state.Assets {
		if s.state.Assets[i].ID == id {
			a := s.state.Assets[i]
			found = &a

			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return domainerrors.ErrAssetNotFound
	}
	s.Dispatch(SetSelectedAsset(found))

	return nil
}

// ClearError dismisses the current error.
func (s *Store) ClearError() {
	s.Dispatch(ClearError())
}

// fence says which newer requests make a response stale.
type fence int

const (
	// fenceRefresh responses lose to a newer request for the same key and to
	// a newer list fetch.
	fenceRefresh fence = iota
	// fenceWrite responses lose only to a newer request for the same key.
	fenceWrite
	// fenceConfirmed responses are always applied.
	fenceConfirmed
)

// ticket fences one in-flight request. Generations come from one counter so a
// key can be forgotten once its newest request lands; a missing key makes
// every outstanding ticket for it stale.
type ticket struct {
	key     string
	gen     uint64
	listGen uint64
	fence   fence
}

func (s *Store) begin(key string, kind fence, loading bool) ticket {
	s.mu.Lock()
	s.seq++
	s.fences[key] = s.seq
	t := ticket{key: key, gen: s.seq, listGen: s.fences[listKey], fence: kind}
	if !loading {
		s.mu.Unlock()

		return t
	}
	s.state = Reduce(s.state, SetLoading(true))
	snapshot := s.state.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(snapshot)

	return t
}

// current must be called with mu held.
func (s *Store) current(t ticket) bool {
	switch t.fence {
	case fenceConfirmed:
		return true
	case fenceWrite:
		return s.fences[t.key] == t.gen
	default:
		return s.fences[t.key] == t.gen && (t.key == listKey || s.fences[listKey] == t.listGen)
	}
}

// listPending must be called with mu held.
func (s *Store) listPending() bool {
	return s.fences[listKey] != s.listDone
}

// commit applies action only when t is still current. A list fetch that is
// outstanding when a response lands may not include it, so the response is
// replayed on top of that list when it lands.
func (s *Store) commit(ctx context.Context, t ticket, action Action) bool {
	s.mu.Lock()
	if !s.current(t) {
		if t.key != listKey && s.fences[t.key] == t.gen {
			delete(s.fences, t.key)
		}
		s.mu.Unlock()
		s.loggerFor(ctx).Debug("Discarded stale response",
			slog.String("key", t.key),
			slog.String("action", string(action.Type)),
		)

		return false
	}

	s.state = Reduce(s.state, action)
	if t.key == listKey {
		s.listDone = t.gen
		if action.Type == ActionSetAssets {
			for _, replayed := range s.replay {
				s.state = Reduce(s.state, replayed)
			}
		}
		s.replay = nil
	} else {
		if s.fences[t.key] == t.gen || action.Type == ActionDeleteAsset {
			delete(s.fences, t.key)
		}
		if action.Type != ActionSetError && s.listPending() {
			replayed := action
			replayed.Asset = cloneAsset(action.Asset)
			s.replay = append(s.replay, replayed)
		}
	}
	snapshot := s.state.Clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(snapshot)

	return true
}

func (s *Store) fail(ctx context.Context, t ticket, err error) {
	s.loggerFor(ctx).Warn("Asset operation failed",
		slog.String("key", t.key),
		slog.Any("error", err),
	)
	s.commit(ctx, t, SetError(errors.MessageOf(err, FallbackErrorMessage)))
}

// run is the shape shared by every async operation: loading, call, then the
// mutation on success or SET_ERROR on failure.
func run[T any](ctx context.Context, s *Store, key string, kind fence, call func(context.Context) (T, error), mutate func(T) Action) (T, error) {
	t := s.begin(key, kind, true)

	result, err := call(ctx)
	if err != nil {
		s.fail(ctx, t, err)

		var zero T

		return zero, err
	}
	s.commit(ctx, t, mutate(result))

	return result, nil
}

// FetchAssets replaces the asset list with the backend's.
func (s *Store) FetchAssets(ctx context.Context) ([]entity.Asset, error) {
	return run(ctx, s, listKey, fenceRefresh, s.api.ListAssets, SetAssets)
}

// GetAsset refreshes one asset from the backend.
func (s *Store) GetAsset(ctx context.Context, id string) (*entity.Asset, error) {
	return run(ctx, s, id, fenceRefresh,
		func(ctx context.Context) (*entity.Asset, error) { return s.api.GetAsset(ctx, id) },
		func(a *entity.Asset) Action { return UpdateAsset(*a) },
	)
}

// CreateAsset creates an asset and appends the server's copy.
func (s *Store) CreateAsset(ctx context.Context, asset *entity.Asset) (*entity.Asset, error) {
	created, err := run(ctx, s, "new:"+uuid.NewString(), fenceConfirmed,
		func(ctx context.Context) (*entity.Asset, error) { return s.api.CreateAsset(ctx, asset) },
		func(a *entity.Asset) Action { return AddAsset(*a) },
	)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, service.EventAssetCreated, created)

	return created, nil
}

// UpdateAsset saves asset under id and replaces the stored copy.
func (s *Store) UpdateAsset(ctx context.Context, id string, asset *entity.Asset) (*entity.Asset, error) {
	updated, err := run(ctx, s, id, fenceWrite,
		func(ctx context.Context) (*entity.Asset, error) { return s.api.UpdateAsset(ctx, id, asset) },
		func(a *entity.Asset) Action { return UpdateAsset(*a) },
	)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, service.EventAssetUpdated, updated)

	return updated, nil
}

// DeleteAsset removes the asset on the backend, then from the store. A
// confirmed delete also makes every in-flight request for id stale.
func (s *Store) DeleteAsset(ctx context.Context, id string) error {
	_, err := run(ctx, s, id, fenceConfirmed,
		func(ctx context.Context) (struct{}, error) { return struct{}{}, s.api.DeleteAsset(ctx, id) },
		func(struct{}) Action { return DeleteAsset(id) },
	)
	if err != nil {
		return err
	}
	s.publish(ctx, service.EventAssetDeleted, &entity.Asset{ID: id})

	return nil
}

// ScanAsset records a scan and replaces the stored copy with the returned asset.
func (s *Store) ScanAsset(ctx context.Context, id string, req *service.ScanRequest) (*entity.Asset, error) {
	scanned, err := run(ctx, s, id, fenceWrite,
		func(ctx context.Context) (*entity.Asset, error) { return s.api.ScanAsset(ctx, id, req) },
		func(a *entity.Asset) Action { return UpdateAsset(*a) },
	)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, service.EventAssetScanned, scanned)

	return scanned, nil
}

// ApplyServerAsset replaces the stored copy with an asset the backend has
// already confirmed. It supersedes any in-flight request for that asset.
func (s *Store) ApplyServerAsset(ctx context.Context, asset *entity.Asset) bool {
	if asset == nil {
		return false
	}
	t := s.begin(asset.ID, fenceWrite, false)

	return s.commit(ctx, t, UpdateAsset(*asset))
}

// Find returns a copy of the stored asset with id.
func (s *Store) Find(id string) (*entity.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Assets {
		if s.state.Assets[i].ID == id {
			a := s.state.Assets[i].Clone()

			return &a, true
		}
	}

	return nil, false
}

// Publish sends an event for asset; failures are logged only.
func (s *Store) Publish(ctx context.Context, event *service.AssetEvent) {
	if s.publisher == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	if err := s.publisher.PublishAssetEvent(ctx, event); err != nil {
		s.loggerFor(ctx).Warn("Failed to publish asset event",
			slog.String("type", event.Type),
			slog.String("asset_id", event.AssetID),
			slog.Any("error", err),
		)
	}
}

func (s *Store) publish(ctx context.Context, eventType string, asset *entity.Asset) {
	s.Publish(ctx, &service.AssetEvent{
		Type:    eventType,
		AssetID: asset.ID,
		TagID:   asset.TagID,
	})
}

func (s *Store) loggerFor(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}
