package theme

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/sitekit/internal/db"
)

type failingStore struct {
	loads, saves int
}

func (s *failingStore) Load(context.Context) (Mode, bool, error) {
	s.loads++
	return "", false, errors.New("storage disabled")
}

func (s *failingStore) Save(context.Context, Mode) error {
	s.saves++
	return errors.New("storage disabled")
}

func system(m Mode) SystemPreference {
	return func() (Mode, bool) { return m, true }
}

func storeWith(t *testing.T, m Mode) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.Save(context.Background(), m))
	return s
}

type recordingRoot struct {
	modes []Mode
}

func (r *recordingRoot) SetMode(m Mode) { r.modes = append(r.modes, m) }

func TestParse(t *testing.T) {
	for in, want := range map[string]Mode{"light": Light, "DARK": Dark, " Dark ": Dark} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := Parse("sepia")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestOpposite(t *testing.T) {
	assert.Equal(t, Dark, Light.Opposite())
	assert.Equal(t, Light, Dark.Opposite())
	assert.Equal(t, "dark", Dark.Class())
	assert.Equal(t, "", Light.Class())
}

func TestInitialPreferencePriority(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		store  Store
		system SystemPreference
		want   Mode
	}{
		{"nothing stored, system dark", NewMemoryStore(), system(Dark), Dark},
		{"stored light beats system dark", storeWith(t, Light), system(Dark), Light},
		{"stored dark beats system light", storeWith(t, Dark), system(Light), Dark},
		{"no store, no system", nil, nil, Light},
		{"system silent", NewMemoryStore(), NoSystemPreference, Light},
		{"store broken, system dark", &failingStore{}, system(Dark), Dark},
		{"store broken, no system", &failingStore{}, nil, Light},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialPreference(ctx, tt.store, tt.system))
		})
	}
}

func TestToggleParity(t *testing.T) {
	ctx := context.Background()
	for _, start := range []Mode{Light, Dark} {
		for n := 0; n <= 7; n++ {
			m := NewManager(ctx, storeWith(t, start), nil, nil)
			for i := 0; i < n; i++ {
				m.Toggle(ctx)
			}
			want := start
			if n%2 == 1 {
				want = start.Opposite()
			}
			assert.Equal(t, want, m.Current(), "start=%s toggles=%d", start, n)
		}
	}
}

func TestThreeTogglesFromLightEndDark(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, storeWith(t, Light), nil, nil)
	m.Toggle(ctx)
	m.Toggle(ctx)
	assert.Equal(t, Dark, m.Toggle(ctx))
	assert.Equal(t, Dark, m.Current())
}

func TestTogglePersists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(ctx, store, system(Dark), nil)
	assert.Equal(t, Dark, m.Current())

	m.Toggle(ctx)
	saved, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Light, saved)

	// A fresh manager rehydrates the stored choice over the system default.
	again := NewManager(ctx, store, system(Dark), nil)
	assert.Equal(t, Light, again.Current())
}

func TestToggleWorksWhenPersistenceFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	m := NewManager(ctx, store, system(Light), nil)

	assert.Equal(t, Dark, m.Toggle(ctx))
	assert.Equal(t, Dark, m.Current())
	assert.Equal(t, 1, store.saves)

	// Reload falls back to the system default.
	reloaded := NewManager(ctx, store, system(Light), nil)
	assert.Equal(t, Light, reloaded.Current())
}

func TestSubscribersNotifiedInOrderBeforeToggleReturns(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, nil, nil, nil)

	var calls []string
	m.Subscribe(func(mode Mode) { calls = append(calls, "a:"+mode.String()) })
	cancel := m.Subscribe(func(mode Mode) {
		// Current is already updated when subscribers run.
		assert.Equal(t, mode, m.Current())
		calls = append(calls, "b:"+mode.String())
	})

	m.Toggle(ctx)
	assert.Equal(t, []string{"a:dark", "b:dark"}, calls)

	cancel()
	cancel()
	m.Toggle(ctx)
	assert.Equal(t, []string{"a:dark", "b:dark", "a:light"}, calls)
}

func TestSetSameModeIsNoop(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	m := NewManager(ctx, store, nil, nil)

	notified := 0
	m.Subscribe(func(Mode) { notified++ })

	m.Set(ctx, Light)
	assert.Equal(t, 0, notified)
	assert.Equal(t, 0, store.saves)

	m.Set(ctx, Dark)
	assert.Equal(t, 1, notified)
	assert.Equal(t, Dark, m.Current())
}

func TestSetIgnoresUnknownMode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(ctx, store, nil, nil)

	notified := 0
	m.Subscribe(func(Mode) { notified++ })

	for _, mode := range []Mode{"purple", ""} {
		m.Set(ctx, mode)
		assert.Equal(t, Light, m.Current(), "mode %q", mode)
	}
	assert.Equal(t, 0, notified)
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "nothing should be persisted")
}

func TestBindRootTracksCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ctx, storeWith(t, Dark), nil, nil)
	root := &recordingRoot{}

	cancel := m.BindRoot(root)
	require.Equal(t, []Mode{Dark}, root.modes)

	m.Toggle(ctx)
	m.Toggle(ctx)
	assert.Equal(t, []Mode{Dark, Light, Dark}, root.modes)
	assert.Equal(t, m.Current(), root.modes[len(root.modes)-1])

	cancel()
	m.Toggle(ctx)
	assert.Len(t, root.modes, 3)
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	database, err := db.OpenMemory()
	require.NoError(t, err)
	defer database.Close()

	store := NewSQLStore(database)
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, Dark))
	require.NoError(t, store.Save(ctx, Light))
	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Light, got)

	_, err = database.Exec(`UPDATE preferences SET value = 'purple' WHERE key = ?`, PreferenceKey)
	require.NoError(t, err)
	_, ok, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFromClientHint(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, ok := FromClientHint(r)()
	assert.False(t, ok)

	r.Header.Set(ClientHintHeader, `"dark"`)
	got, ok := FromClientHint(r)()
	assert.True(t, ok)
	assert.Equal(t, Dark, got)

	_, ok = FromClientHint(nil)()
	assert.False(t, ok)
}

func TestFromEnv(t *testing.T) {
	env := func(vals map[string]string) func(string) string {
		return func(k string) string { return vals[k] }
	}

	tests := []struct {
		name string
		vals map[string]string
		want Mode
		ok   bool
	}{
		{"explicit", map[string]string{"SITEKIT_COLOR_SCHEME": "Dark"}, Dark, true},
		{"explicit beats terminal", map[string]string{"SITEKIT_COLOR_SCHEME": "light", "COLORFGBG": "15;0"}, Light, true},
		{"dark terminal", map[string]string{"COLORFGBG": "15;0"}, Dark, true},
		{"light terminal", map[string]string{"COLORFGBG": "0;15"}, Light, true},
		{"three field form", map[string]string{"COLORFGBG": "15;default;0"}, Dark, true},
		{"garbage", map[string]string{"COLORFGBG": "x"}, "", false},
		{"nothing", map[string]string{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromEnv(env(tt.vals))()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstOf(t *testing.T) {
	got, ok := FirstOf(nil, NoSystemPreference, system(Dark), system(Light))()
	assert.True(t, ok)
	assert.Equal(t, Dark, got)

	_, ok = FirstOf()()
	assert.False(t, ok)
}
