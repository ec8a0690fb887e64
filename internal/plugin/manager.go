package plugin

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/SatinCake/skymp/internal/events"
	"github.com/SatinCake/skymp/internal/scripting"
)

// Manager owns the plugin lifecycle on top of the shared scripting runtime.
// All Lua work is routed through the executor so it lands on the script
// goroutine.
type Manager struct {
	mu sync.Mutex

	state  *scripting.State
	exec   *scripting.Executor
	api    *events.API
	loader *Loader
	logger *zap.Logger

	loaded    map[string]*Manifest
	loadOrder []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a plugin manager over the given runtime and plugin
// root directory.
func NewManager(state *scripting.State, exec *scripting.Executor, api *events.API, root string, opts ...Option) *Manager {
	m := &Manager{
		state:  state,
		exec:   exec,
		api:    api,
		loader: NewLoader(root),
		logger: zap.NewNop(),
		loaded: make(map[string]*Manifest),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bootstrap installs the events API into the Lua state. Must run before
// any plugin loads.
func (m *Manager) Bootstrap() error {
	return m.exec.Execute(func(L *lua.LState) error {
		m.api.Register(L)
		return nil
	})
}

// LoadAll discovers and loads every plugin under the root. Individual
// plugin failures are logged and skipped; discovery failure is returned.
func (m *Manager) LoadAll() error {
	infos, err := m.loader.Discover()
	if err != nil {
		return err
	}

	for _, info := range infos {
		if info.Err != nil {
			m.logger.Warn("skipping plugin",
				zap.String("plugin", info.Name),
				zap.Error(info.Err))
			continue
		}
		if err := m.Load(info); err != nil {
			m.logger.Error("plugin load failed",
				zap.String("plugin", info.Name),
				zap.Error(err))
		}
	}
	return nil
}

// Load runs one plugin's entry file on the script goroutine.
func (m *Manager) Load(info *Info) error {
	if info.Manifest == nil {
		return ErrNilManifest
	}

	m.mu.Lock()
	if _, ok := m.loaded[info.Name]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, info.Name)
	}
	m.mu.Unlock()

	err := m.exec.Execute(func(L *lua.LState) error {
		for _, cap := range info.Manifest.Capabilities {
			m.state.Sandbox().Grant(cap)
		}
		return m.state.DoFile(info.Manifest.EntryPath())
	})
	if err != nil {
		return fmt.Errorf("loading %s: %w", info.Name, err)
	}

	m.mu.Lock()
	m.loaded[info.Name] = info.Manifest
	m.loadOrder = append(m.loadOrder, info.Name)
	m.mu.Unlock()

	m.logger.Info("plugin loaded",
		zap.String("plugin", info.Name),
		zap.String("version", info.Manifest.Version))
	return nil
}

// ReloadAll clears all hook and callback registrations, wipes plugin
// globals, re-installs the events API and re-runs every plugin entry.
// This is the script-engine reload path.
func (m *Manager) ReloadAll() error {
	err := m.exec.Execute(func(L *lua.LState) error {
		m.api.Clear()
		if err := m.state.ResetGlobals(); err != nil {
			return err
		}
		m.api.Register(L)
		return nil
	})
	if err != nil {
		return fmt.Errorf("resetting script state: %w", err)
	}

	m.mu.Lock()
	m.loaded = make(map[string]*Manifest)
	m.loadOrder = nil
	m.mu.Unlock()

	m.logger.Info("reloading plugins")
	return m.LoadAll()
}

// Loaded returns the names of loaded plugins in load order.
func (m *Manager) Loaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.loadOrder...)
}

// Manifest returns a loaded plugin's manifest.
func (m *Manager) Manifest(name string) (*Manifest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mf, ok := m.loaded[name]
	return mf, ok
}
