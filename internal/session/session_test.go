package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	tu "github.com/desertthunder/afterthoughts/internal/testing"
)

func TestGate(t *testing.T) {
	ctx := context.Background()

	t.Run("enter resolves the current session", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(&models.Session{UserID: "u1", Email: "a@b.com"})
		gate := NewGate(auth)

		session, err := gate.Enter(ctx, nil)
		if err != nil {
			t.Fatalf("Enter failed: %v", err)
		}
		if session.UserID != "u1" {
			t.Errorf("UserID = %q, want u1", session.UserID)
		}
	})

	t.Run("enter without a session redirects", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(nil)
		gate := NewGate(auth)

		if _, err := gate.Enter(ctx, nil); err == nil {
			t.Fatal("expected error for missing session")
		}
	})

	t.Run("sign-out fires the callback", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(&models.Session{UserID: "u1"})
		gate := NewGate(auth)

		var fired atomic.Int32
		if _, err := gate.Enter(ctx, func() { fired.Add(1) }); err != nil {
			t.Fatalf("Enter failed: %v", err)
		}

		auth.Broadcast(nil)
		if fired.Load() != 1 {
			t.Errorf("callback fired %d times, want 1", fired.Load())
		}
	})

	t.Run("session refresh is not a sign-out", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(&models.Session{UserID: "u1"})
		gate := NewGate(auth)

		var fired atomic.Int32
		if _, err := gate.Enter(ctx, func() { fired.Add(1) }); err != nil {
			t.Fatalf("Enter failed: %v", err)
		}

		auth.Broadcast(&models.Session{UserID: "u1"})
		if fired.Load() != 0 {
			t.Errorf("callback fired %d times, want 0", fired.Load())
		}
	})

	t.Run("leave unsubscribes", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(&models.Session{UserID: "u1"})
		gate := NewGate(auth)

		var fired atomic.Int32
		if _, err := gate.Enter(ctx, func() { fired.Add(1) }); err != nil {
			t.Fatalf("Enter failed: %v", err)
		}

		gate.Leave()
		gate.Leave() // idempotent

		auth.Broadcast(nil)
		if fired.Load() != 0 {
			t.Errorf("callback fired %d times after Leave, want 0", fired.Load())
		}
	})

	t.Run("re-enter replaces the old subscription", func(t *testing.T) {
		auth := tu.NewMockAuthenticator(&models.Session{UserID: "u1"})
		gate := NewGate(auth)

		var fired atomic.Int32
		onSignOut := func() { fired.Add(1) }
		if _, err := gate.Enter(ctx, onSignOut); err != nil {
			t.Fatalf("Enter failed: %v", err)
		}
		if _, err := gate.Enter(ctx, onSignOut); err != nil {
			t.Fatalf("re-Enter failed: %v", err)
		}

		auth.Broadcast(nil)
		if fired.Load() != 1 {
			t.Errorf("callback fired %d times, want exactly 1", fired.Load())
		}
	})
}

func TestIdleWatcher(t *testing.T) {
	waitFor := func(t *testing.T, cond func() bool, msg string) {
		t.Helper()
		deadline := time.After(time.Second)
		for !cond() {
			select {
			case <-deadline:
				t.Fatal(msg)
			case <-time.After(5 * time.Millisecond):
			}
		}
	}

	t.Run("expires once after the timeout", func(t *testing.T) {
		var fired atomic.Int32
		w := NewIdleWatcher(20*time.Millisecond, func() { fired.Add(1) })
		w.Start()

		waitFor(t, func() bool { return fired.Load() == 1 }, "watcher never expired")

		time.Sleep(50 * time.Millisecond)
		if fired.Load() != 1 {
			t.Errorf("fired %d times, want exactly 1", fired.Load())
		}
	})

	t.Run("touch pushes the window forward", func(t *testing.T) {
		var fired atomic.Int32
		w := NewIdleWatcher(60*time.Millisecond, func() { fired.Add(1) })
		w.Start()

		for i := 0; i < 4; i++ {
			time.Sleep(30 * time.Millisecond)
			w.Touch()
			if fired.Load() != 0 {
				t.Fatal("watcher expired despite interactions")
			}
		}

		waitFor(t, func() bool { return fired.Load() == 1 }, "watcher never expired after interactions stopped")
	})

	t.Run("stop disarms", func(t *testing.T) {
		var fired atomic.Int32
		w := NewIdleWatcher(20*time.Millisecond, func() { fired.Add(1) })
		w.Start()
		w.Stop()

		time.Sleep(50 * time.Millisecond)
		if fired.Load() != 0 {
			t.Errorf("fired %d times after Stop, want 0", fired.Load())
		}
	})

	t.Run("touch on a stopped watcher stays disarmed", func(t *testing.T) {
		var fired atomic.Int32
		w := NewIdleWatcher(20*time.Millisecond, func() { fired.Add(1) })
		w.Touch()

		time.Sleep(50 * time.Millisecond)
		if fired.Load() != 0 {
			t.Errorf("fired %d times without Start, want 0", fired.Load())
		}
	})

	t.Run("restart re-arms after expiry", func(t *testing.T) {
		var fired atomic.Int32
		w := NewIdleWatcher(20*time.Millisecond, func() { fired.Add(1) })
		w.Start()
		waitFor(t, func() bool { return fired.Load() == 1 }, "first expiry never fired")

		w.Start()
		waitFor(t, func() bool { return fired.Load() == 2 }, "second expiry never fired")
	})
}
