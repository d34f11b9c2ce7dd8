package light

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier is told, fire and forget, that the set of registered devices
// changed. The homegraph package implements it against the voice
// platform's requestSync endpoint.
type Notifier interface {
	RequestSync(ctx context.Context) error
}

// StateListener observes cache mutations. Listeners run on a background
// goroutine per event with no ordering guarantee relative to subsequent
// registry calls; they must tolerate that.
type StateListener func(id, name string, st State)

// defaultCallTimeout bounds each capability call so a hung backend
// cannot hold a dispatch forever.
const defaultCallTimeout = 10 * time.Second

// notifyTimeout bounds the fire-and-forget sync notification.
const notifyTimeout = 30 * time.Second

// entry is a registry record: one Capability plus the cached last
// commanded state. The cache fields are mutated only under mu, and only
// by the Registry's dispatch operations.
type entry struct {
	id  string
	cap Capability

	mu         sync.Mutex
	power      PowerState
	brightness uint8
	color      Color
}

// snapshot returns a consistent copy of the cached state.
func (e *entry) snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{Power: e.power, Brightness: e.brightness, Color: e.color}
}

// Registry owns the mapping from identifier to light entry and is the
// single point of serialisation for cached-state mutations.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // insertion order, for stable enumeration

	callTimeout time.Duration
	logger      Logger
	notifier    Notifier

	listenerMu sync.RWMutex
	listeners  []StateListener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		callTimeout: defaultCallTimeout,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetNotifier sets the external sync notifier. May be nil (no
// notifications are sent).
func (r *Registry) SetNotifier(n Notifier) {
	r.notifier = n
}

// SetCallTimeout overrides the per-capability-call timeout.
func (r *Registry) SetCallTimeout(d time.Duration) {
	if d > 0 {
		r.callTimeout = d
	}
}

// AddStateListener registers a callback observing cache mutations.
func (r *Registry) AddStateListener(fn StateListener) {
	if fn == nil {
		return
	}
	r.listenerMu.Lock()
	r.listeners = append(r.listeners, fn)
	r.listenerMu.Unlock()
}

// Register admits a device to the registry.
//
// It calls the capability's UniqueID exactly once; on success a new entry
// is inserted with default cache values (off, brightness 0, daylight
// white) and the identifier is returned. On failure the device is dropped
// — an unidentifiable device cannot be addressed later — and the error is
// returned so the caller can log it; the process continues.
//
// Registering an identifier that already exists is a no-op returning the
// existing identifier: vendor scans may legitimately surface the same
// hardware twice.
//
// After a successful insert the sync notifier is invoked on a background
// goroutine; its result is not awaited.
func (r *Registry) Register(ctx context.Context, cap Capability) (string, error) {
	idCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	id, err := cap.UniqueID(idCtx)
	if err != nil {
		r.logger.Warn("dropping device without unique id", "name", cap.Name(), "error", err)
		return "", fmt.Errorf("%w: unique id for %q: %w", ErrBackendFailed, cap.Name(), err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: empty unique id for %q", ErrInvalidInput, cap.Name())
	}

	r.mu.Lock()
	if _, exists := r.entries[id]; exists {
		r.mu.Unlock()
		r.logger.Debug("device already registered", "id", id)
		return id, nil
	}
	r.entries[id] = &entry{
		id:         id,
		cap:        cap,
		power:      PowerOff,
		brightness: 0,
		color:      DefaultColor(),
	}
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.logger.Info("light registered", "id", id, "name", cap.Name())

	if r.notifier != nil {
		go func() {
			nctx, ncancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer ncancel()
			if err := r.notifier.RequestSync(nctx); err != nil {
				r.logger.Warn("sync request failed", "error", err)
			}
		}()
	}

	return id, nil
}

// Count returns the number of registered lights.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Has reports whether an identifier is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Get returns the snapshot for a single identifier.
func (r *Registry) Get(id string) (Snapshot, error) {
	e, err := r.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: e.id, Name: e.cap.Name(), State: e.snapshot()}, nil
}

// Enumerate returns a snapshot of every entry in registration order.
//
// The entry set is a consistent point-in-time view; individual cache
// fields may be concurrently mutated while the slice is built, which is
// acceptable for best-effort status reports.
func (r *Registry) Enumerate() []Snapshot {
	r.mu.RLock()
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, r.entries[id])
	}
	r.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(entries))
	for _, e := range entries {
		snaps = append(snaps, Snapshot{ID: e.id, Name: e.cap.Name(), State: e.snapshot()})
	}
	return snaps
}

// SetPower updates the cached power flag and dispatches the command to
// the backend. The cache is updated before the backend call and is not
// rolled back on failure (see package doc).
func (r *Registry) SetPower(ctx context.Context, id string, state PowerState) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.power = state
	e.mu.Unlock()
	r.publishState(e)

	cctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	if err := e.cap.SetPower(cctx, state); err != nil {
		return dispatchError("set power", id, err)
	}
	return nil
}

// SetBrightness updates the cached brightness (0-255) and dispatches the
// command to the backend. Symmetric with SetPower.
func (r *Registry) SetBrightness(ctx context.Context, id string, level uint8) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.brightness = level
	e.mu.Unlock()
	r.publishState(e)

	cctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	if err := e.cap.SetBrightness(cctx, level); err != nil {
		return dispatchError("set brightness", id, err)
	}
	return nil
}

// SetColor updates the cached colour and dispatches the command to the
// backend. Symmetric with SetPower.
func (r *Registry) SetColor(ctx context.Context, id string, color Color) error {
	if color.Mode != ColorModeRGB && color.Mode != ColorModeWhite {
		return fmt.Errorf("%w: unknown colour mode %q", ErrInvalidInput, color.Mode)
	}

	e, err := r.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.color = color
	e.mu.Unlock()
	r.publishState(e)

	cctx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	if err := e.cap.SetColor(cctx, color); err != nil {
		return dispatchError("set color", id, err)
	}
	return nil
}

// lookup resolves an identifier to its entry.
func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// publishState fans a fresh snapshot out to state listeners on a
// background goroutine.
func (r *Registry) publishState(e *entry) {
	r.listenerMu.RLock()
	if len(r.listeners) == 0 {
		r.listenerMu.RUnlock()
		return
	}
	listeners := make([]StateListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.listenerMu.RUnlock()

	id, name, st := e.id, e.cap.Name(), e.snapshot()
	go func() {
		for _, fn := range listeners {
			fn(id, name, st)
		}
	}()
}

// dispatchError wraps a backend failure. Unsupported operations keep
// their identity so callers can distinguish them from transport faults.
func dispatchError(op, id string, err error) error {
	return fmt.Errorf("%s on %s: %w: %w", op, id, ErrBackendFailed, err)
}
