// Package state holds the application state shared between the network
// backend and a presentation layer (tray icon, status window, etc.).
//
// Every field is independently readable and writable; no two fields ever
// need to be updated atomically together, so single-value atomics and a
// small mutex for the strings are sufficient. The presentation layer
// stages configuration changes (pending port, language) that only take
// effect after a restart, and requests shutdown through the quit flag.
package state

import (
	"sync"
	"sync/atomic"
)

// App is the per-process shared state. Construct it once with New and
// pass it to every component that needs it.
type App struct {
	connected   atomic.Bool
	port        atomic.Uint32
	pendingPort atomic.Uint32
	quit        atomic.Bool

	configPath string

	mu             sync.Mutex
	language       string
	trayQuitMenuID string
}

// New creates the shared state with the initial listen port, config file
// path, and display language.
func New(port uint16, configPath, language string) *App {
	a := &App{
		configPath: configPath,
		language:   language,
	}
	a.port.Store(uint32(port))
	return a
}

// Connected reports whether the overlay client has bootstrapped.
func (a *App) Connected() bool {
	return a.connected.Load()
}

// SetConnected is called by the backend once bootstrap completes.
func (a *App) SetConnected(v bool) {
	a.connected.Store(v)
}

// Port returns the SOCKS5 listen port the backend was started with.
func (a *App) Port() uint16 {
	return uint16(a.port.Load())
}

// PendingPort returns the staged listen port, or 0 if no change is
// queued. A nonzero value means a restart is required to apply it.
func (a *App) PendingPort() uint16 {
	return uint16(a.pendingPort.Load())
}

func (a *App) SetPendingPort(port uint16) {
	a.pendingPort.Store(uint32(port))
}

// ShouldQuit reports whether shutdown has been requested. The flag is
// never cleared once set.
func (a *App) ShouldQuit() bool {
	return a.quit.Load()
}

// RequestQuit asks the backend to stop accepting connections and exit.
func (a *App) RequestQuit() {
	a.quit.Store(true)
}

// ConfigPath is the configuration file location, fixed at startup.
func (a *App) ConfigPath() string {
	return a.configPath
}

func (a *App) Language() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

func (a *App) SetLanguage(lang string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.language = lang
}

// TrayQuitMenuID correlates the presentation layer's quit menu item so a
// status window can handle tray events while it is open. Stored as a
// string for portability across tray toolkits.
func (a *App) TrayQuitMenuID() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trayQuitMenuID, a.trayQuitMenuID != ""
}

func (a *App) SetTrayQuitMenuID(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trayQuitMenuID = id
}
