package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
	tu "github.com/desertthunder/afterthoughts/internal/testing"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			speech := &tu.MockSpeechProvider{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Speech: speech,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.speech != speech {
				t.Error("expected speech provider to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln wraps the line in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "diary", "entry", "export", "cache", "tui"} {
			if !names[want] {
				t.Errorf("missing %q command", want)
			}
		}
	})

	t.Run("session persistence", func(t *testing.T) {
		setHome := func(t *testing.T) {
			t.Helper()
			t.Setenv("HOME", t.TempDir())
		}

		t.Run("round trip", func(t *testing.T) {
			setHome(t)

			session := &models.Session{
				UserID: "u1",
				Email:  "a@b.com",
				Token: &oauth2.Token{
					AccessToken:  "access",
					RefreshToken: "refresh",
					Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
				},
			}

			if err := saveSession(session); err != nil {
				t.Fatalf("saveSession failed: %v", err)
			}

			path, err := sessionFilePath()
			if err != nil {
				t.Fatalf("sessionFilePath failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("session file missing: %v", err)
			}
			if info.Mode().Perm() != 0600 {
				t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
			}

			loaded := loadSession()
			if loaded == nil {
				t.Fatal("loadSession returned nil")
			}
			if loaded.UserID != "u1" || loaded.Token.RefreshToken != "refresh" {
				t.Errorf("loaded session = %+v", loaded)
			}
		})

		t.Run("load without a file", func(t *testing.T) {
			setHome(t)

			if session := loadSession(); session != nil {
				t.Errorf("loadSession = %+v, want nil", session)
			}
		})

		t.Run("load with a corrupt file", func(t *testing.T) {
			setHome(t)

			path, err := sessionFilePath()
			if err != nil {
				t.Fatalf("sessionFilePath failed: %v", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
				t.Fatal(err)
			}

			if session := loadSession(); session != nil {
				t.Errorf("loadSession = %+v, want nil for corrupt file", session)
			}
		})

		t.Run("clear removes the file", func(t *testing.T) {
			setHome(t)

			if err := saveSession(&models.Session{UserID: "u1"}); err != nil {
				t.Fatalf("saveSession failed: %v", err)
			}
			clearSession()

			if session := loadSession(); session != nil {
				t.Error("session survived clearSession")
			}
		})
	})
}
