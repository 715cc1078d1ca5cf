// package session implements the authentication gate and the idle sign-out watcher
package session

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/services"
)

// DefaultIdleTimeout signs the account out after this long without a detected interaction.
const DefaultIdleTimeout = 30 * time.Minute

// Gate guards the main view: it resolves the current session on entry and
// watches for sign-out, so the host can redirect to the login view. Enter and
// Leave give it an explicit lifecycle.
type Gate struct {
	auth services.Authenticator

	mu          sync.Mutex
	unsubscribe func()
}

// NewGate creates a gate over the auth collaborator.
func NewGate(auth services.Authenticator) *Gate {
	return &Gate{auth: auth}
}

// Enter resolves the current session and subscribes to session changes.
// onSignOut fires when the collaborator reports the session ended; the host
// redirects to login. Returns the session, or an error when none exists (the
// caller treats that as "redirect to login", not a failure).
func (g *Gate) Enter(ctx context.Context, onSignOut func()) (*models.Session, error) {
	session, err := g.auth.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
	g.unsubscribe = g.auth.OnAuthChange(func(s *models.Session) {
		if s == nil && onSignOut != nil {
			onSignOut()
		}
	})

	return session, nil
}

// Leave unsubscribes from session changes. Safe to call repeatedly.
func (g *Gate) Leave() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// IdleWatcher proactively ends the session after a period without user
// interaction. The host calls Touch on every observed pointer, key, scroll,
// or click event; the timeout fires the sign-out callback once.
type IdleWatcher struct {
	timeout  time.Duration
	onExpire func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewIdleWatcher creates a stopped watcher. A zero timeout uses DefaultIdleTimeout.
func NewIdleWatcher(timeout time.Duration, onExpire func()) *IdleWatcher {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &IdleWatcher{timeout: timeout, onExpire: onExpire, stopped: true}
}

// Start arms the watcher. A running watcher is re-armed.
func (w *IdleWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = false
	w.armLocked()
}

// Touch records a user interaction, pushing the timeout window forward.
// Touches on a stopped watcher are ignored.
func (w *IdleWatcher) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.armLocked()
}

// Stop disarms the watcher. Safe to call on every exit path.
func (w *IdleWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *IdleWatcher) armLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.timeout, func() {
		w.mu.Lock()
		expired := !w.stopped
		w.stopped = true
		w.mu.Unlock()
		if expired && w.onExpire != nil {
			w.onExpire()
		}
	})
}
