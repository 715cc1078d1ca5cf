package voice

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/afterthoughts/internal/services"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultDebounce ignores start/stop actions within a second of the previous one.
	DefaultDebounce = time.Second

	// DefaultInactivity closes the connection after this long without a finalized token.
	DefaultInactivity = 30 * time.Second

	// DefaultErrorClear removes a surfaced error message after this long.
	DefaultErrorClear = 5 * time.Second
)

// State identifies where the recorder is in its connection lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRecording:
		return "recording"
	default:
		return "idle"
	}
}

// Opts configures a [Recorder].
type Opts struct {
	Debounce   time.Duration // start/stop debounce window, DefaultDebounce when zero
	Inactivity time.Duration // auto-stop-on-silence window, DefaultInactivity when zero
	ErrorClear time.Duration // error message lifetime, DefaultErrorClear when zero

	// OnTranscript republishes "prefix + buffer" to the host editor on
	// every batch of finalized tokens.
	OnTranscript func(content string)

	// OnStateChange notifies the host when the lifecycle state moves.
	OnStateChange func(State)

	// OnError surfaces a transient, dismissible message; a second call
	// with "" clears it.
	OnError func(message string)
}

// Recorder adapts a [services.SpeechProvider] into the editor's dictation control.
type Recorder struct {
	provider services.SpeechProvider
	opts     Opts
	limiter  *rate.Limiter

	mu         sync.Mutex
	state      State
	session    services.SpeechSession
	prefix     string
	buffer     strings.Builder
	inactivity *time.Timer
	errTimer   *time.Timer
	generation int // invalidates callbacks from torn-down sessions
}

// NewRecorder creates an idle recorder bound to a speech provider.
func NewRecorder(provider services.SpeechProvider, opts Opts) *Recorder {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Inactivity <= 0 {
		opts.Inactivity = DefaultInactivity
	}
	if opts.ErrorClear <= 0 {
		opts.ErrorClear = DefaultErrorClear
	}
	return &Recorder{
		provider: provider,
		opts:     opts,
		// One shared limiter debounces start and stop together, matching
		// the single last-click timestamp of the reference behavior.
		limiter: rate.NewLimiter(rate.Every(opts.Debounce), 1),
	}
}

// State returns the recorder's current lifecycle state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Transcript returns the accumulated finalized-token buffer.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffer.String()
}

// Start opens a streaming session. The current editor content is captured as
// a prefix preserved ahead of the live transcript. Rapid repeat actions are
// debounced and re-entrant starts are rejected.
func (r *Recorder) Start(ctx context.Context, currentContent string) error {
	if !r.limiter.Allow() {
		return shared.ErrDebounced
	}

	r.mu.Lock()
	if r.state != StateIdle || r.session != nil {
		r.mu.Unlock()
		return shared.ErrRecorderBusy
	}
	r.state = StateStarting
	r.prefix = currentContent
	r.buffer.Reset()
	r.generation++
	gen := r.generation
	r.mu.Unlock()
	r.notifyState(StateStarting)

	key, err := r.provider.TemporaryKey(ctx)
	if err != nil {
		r.fail(gen, fmt.Errorf("failed to start recording: %w", err))
		return err
	}

	handler := services.SessionHandler{
		OnStarted:  func() { r.onStarted(gen) },
		OnResult:   func(res services.Result) { r.onResult(gen, res) },
		OnFinished: func() { r.stopSession(gen) },
		OnError:    func(err error) { r.fail(gen, err) },
	}

	session, err := r.provider.Dial(ctx, key, handler)
	if err != nil {
		r.fail(gen, fmt.Errorf("failed to start recording: %w", err))
		return err
	}

	r.mu.Lock()
	if r.generation != gen {
		// torn down while dialing; release the fresh session
		r.mu.Unlock()
		session.Cancel()
		return shared.ErrStreamClosed
	}
	r.session = session
	r.mu.Unlock()

	return nil
}

// Stop ends the session deterministically: the inactivity timer is
// cancelled, the stream is asked to stop, and the handle is released so no
// further callbacks can reach the host. Debounced like Start.
func (r *Recorder) Stop() error {
	if !r.limiter.Allow() {
		return shared.ErrDebounced
	}

	r.mu.Lock()
	gen := r.generation
	r.mu.Unlock()
	r.stopSession(gen)
	return nil
}

// Teardown cancels (not gracefully stops) any open session and clears
// timers. Called on host unmount to avoid leaking a live connection.
func (r *Recorder) Teardown() {
	r.mu.Lock()
	r.generation++
	session := r.session
	r.session = nil
	r.state = StateIdle
	r.clearTimersLocked()
	r.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
}

// onStarted moves the recorder into the recording state and arms the inactivity window.
func (r *Recorder) onStarted(gen int) {
	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return
	}
	r.state = StateRecording
	r.armInactivityLocked(gen)
	r.mu.Unlock()
	r.notifyState(StateRecording)
}

// onResult accumulates finalized tokens and republishes the live content.
// Every received result re-arms the inactivity window, finalized or not.
func (r *Recorder) onResult(gen int, res services.Result) {
	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return
	}
	r.armInactivityLocked(gen)

	var finalized strings.Builder
	for _, token := range res.Tokens {
		if token.IsFinal {
			finalized.WriteString(token.Text)
		}
	}
	if finalized.Len() == 0 {
		r.mu.Unlock()
		return
	}

	r.buffer.WriteString(finalized.String())
	content := r.liveContentLocked()
	publish := r.opts.OnTranscript
	r.mu.Unlock()

	if publish != nil {
		publish(content)
	}
}

// liveContentLocked joins the preserved prefix and the transcript buffer.
func (r *Recorder) liveContentLocked() string {
	if r.prefix == "" {
		return r.buffer.String()
	}
	return r.prefix + " " + r.buffer.String()
}

// stopSession closes the connection and returns to idle. Used by explicit
// stop, the inactivity timeout, and graceful stream completion alike.
func (r *Recorder) stopSession(gen int) {
	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return
	}
	r.generation++
	session := r.session
	r.session = nil
	r.state = StateIdle
	r.clearTimersLocked()
	r.mu.Unlock()

	if session != nil {
		session.Stop()
		session.Cancel()
	}
	r.notifyState(StateIdle)
}

// fail tears the connection down, surfaces a transient message, and arms its auto-clear.
func (r *Recorder) fail(gen int, err error) {
	r.mu.Lock()
	if r.generation != gen {
		r.mu.Unlock()
		return
	}
	r.generation++
	next := r.generation
	session := r.session
	r.session = nil
	r.state = StateIdle
	r.clearTimersLocked()

	onError := r.opts.OnError
	if onError != nil {
		r.errTimer = time.AfterFunc(r.opts.ErrorClear, func() {
			r.mu.Lock()
			stale := r.generation != next
			r.mu.Unlock()
			if !stale {
				onError("")
			}
		})
	}
	r.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
	if onError != nil {
		onError(fmt.Sprintf("Recording error: %v", err))
	}
	r.notifyState(StateIdle)
}

// armInactivityLocked resets the silence window; expiry closes the session.
func (r *Recorder) armInactivityLocked(gen int) {
	if r.inactivity != nil {
		r.inactivity.Stop()
	}
	r.inactivity = time.AfterFunc(r.opts.Inactivity, func() {
		r.stopSession(gen)
	})
}

func (r *Recorder) clearTimersLocked() {
	if r.inactivity != nil {
		r.inactivity.Stop()
		r.inactivity = nil
	}
	if r.errTimer != nil {
		r.errTimer.Stop()
		r.errTimer = nil
	}
}

func (r *Recorder) notifyState(s State) {
	if r.opts.OnStateChange != nil {
		r.opts.OnStateChange(s)
	}
}
