package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ziadkadry99/sitekit/internal/logging"
)

// InitialPreference resolves the starting mode: the stored choice, else the
// system preference, else Light. Store failures are treated as "nothing
// stored" so the result is always a valid mode.
func InitialPreference(ctx context.Context, store Store, system SystemPreference) Mode {
	m, _ := initialPreference(ctx, store, system)
	return m
}

func initialPreference(ctx context.Context, store Store, system SystemPreference) (Mode, error) {
	var loadErr error
	if store != nil {
		m, ok, err := store.Load(ctx)
		if err == nil && ok && m.Valid() {
			return m, nil
		}
		loadErr = err
	}
	if system != nil {
		if m, ok := system(); ok && m.Valid() {
			return m, loadErr
		}
	}
	return Default, loadErr
}

// Manager is the observable current mode. Views read it with Current and
// follow it with Subscribe; only Toggle and Set change it.
type Manager struct {
	store  Store
	logger *slog.Logger

	// writeMu serializes changes so persistence and notification happen in
	// the same order as the changes themselves.
	writeMu sync.Mutex

	mu     sync.RWMutex
	mode   Mode
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(Mode)
}

// NewManager loads the initial mode and returns a manager around it. A nil
// store keeps the mode in memory only.
func NewManager(ctx context.Context, store Store, system SystemPreference, logger *slog.Logger) *Manager {
	logger = logging.OrDiscard(logger)
	if store == nil {
		store = NewMemoryStore()
	}
	mode, err := initialPreference(ctx, store, system)
	if err != nil {
		logger.Warn("Theme preference unavailable, using fallback", logging.Mode(mode.String()), logging.Error(err))
	}
	logger.Debug("Theme initialized", logging.Mode(mode.String()))
	return &Manager{store: store, logger: logger, mode: mode}
}

// Current returns the mode in effect.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Toggle flips the mode, persists it, and notifies subscribers before
// returning the new mode.
func (m *Manager) Toggle(ctx context.Context) Mode {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	next := m.Current().Opposite()
	m.apply(ctx, next)
	return next
}

// Set switches to mode. Setting the current mode or an unknown mode does
// nothing.
func (m *Manager) Set(ctx context.Context, mode Mode) {
	if !mode.Valid() {
		m.logger.Warn("Ignoring unknown theme mode", logging.Mode(string(mode)))
		return
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if mode == m.Current() {
		return
	}
	m.apply(ctx, mode)
}

// apply must be called with writeMu held.
func (m *Manager) apply(ctx context.Context, mode Mode) {
	m.mu.Lock()
	m.mode = mode
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if err := m.store.Save(ctx, mode); err != nil {
		// The in-memory value still changes; it just won't survive a reload.
		m.logger.Warn("Failed to persist theme preference", logging.Mode(mode.String()), logging.Error(err))
	}

	for _, s := range subs {
		s.fn(mode)
	}
}

// Subscribe registers fn to be called with every new mode, in registration
// order, on the goroutine that made the change. fn must not call Toggle or
// Set. The returned func unregisters it.
func (m *Manager) Subscribe(fn func(Mode)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Root is anything that renders the mode flag, such as the document root of
// a page or a websocket client mirroring it.
type Root interface {
	SetMode(Mode)
}

// BindRoot reflects the current mode onto root now and after every change,
// so the root never shows anything but the current value.
func (m *Manager) BindRoot(root Root) (cancel func()) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	root.SetMode(m.Current())
	return m.Subscribe(root.SetMode)
}
