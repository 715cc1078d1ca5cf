// Soniox implementation of [SpeechProvider]
//
// Temporary-key issuance goes over HTTPS with the static service credential;
// transcription runs over a websocket session that the voice adapter drives.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	sonioxKeyURL    = "https://api.soniox.com/v1/auth/temporary-api-key"
	sonioxStreamURL = "wss://stt-rt.soniox.com/transcribe-websocket"

	// Temporary keys only need to outlive the websocket handshake.
	temporaryKeyTTLSeconds = 60

	keepAliveInterval = 5 * time.Second
)

// SonioxService implements [SpeechProvider] for the Soniox realtime API.
type SonioxService struct {
	apiKey        string
	model         string
	languageHints []string
	httpClient    *http.Client
	dialer        *websocket.Dialer
	keyURL        string
	streamURL     string
}

var _ SpeechProvider = (*SonioxService)(nil)

// NewSonioxService creates a new Soniox client from the given credentials.
// Requires an "api_key" entry; "model" defaults to stt-rt-preview.
func NewSonioxService(credentials map[string]string, languageHints []string) (*SonioxService, error) {
	apiKey, ok := credentials["api_key"]
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("%w: missing api_key in credentials", shared.ErrNoSpeechConfig)
	}

	model := credentials["model"]
	if model == "" {
		model = "stt-rt-preview"
	}
	if len(languageHints) == 0 {
		languageHints = []string{"en"}
	}

	return &SonioxService{
		apiKey:        apiKey,
		model:         model,
		languageHints: languageHints,
		httpClient:    http.DefaultClient,
		dialer:        websocket.DefaultDialer,
		keyURL:        sonioxKeyURL,
		streamURL:     sonioxStreamURL,
	}, nil
}

// SetEndpoints overrides the key and stream endpoints (used by tests).
func (s *SonioxService) SetEndpoints(keyURL, streamURL string) {
	if keyURL != "" {
		s.keyURL = keyURL
	}
	if streamURL != "" {
		s.streamURL = streamURL
	}
}

// SetHTTPClient replaces the underlying HTTP client (used by tests).
func (s *SonioxService) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

func (s *SonioxService) Name() string {
	return "Soniox"
}

// TemporaryKey obtains a short-lived websocket credential using the static service key.
func (s *SonioxService) TemporaryKey(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"usage_type":         "transcribe_websocket",
		"expires_in_seconds": temporaryKeyTTLSeconds,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.keyURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return "", fmt.Errorf("%w: %s", shared.ErrAPIRequest, apiErr.Message)
		}
		return "", fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var body struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.APIKey == "" {
		return "", fmt.Errorf("%w: empty temporary key", shared.ErrAPIRequest)
	}

	return body.APIKey, nil
}

// streamConfig is the first message sent on a new websocket session.
type streamConfig struct {
	APIKey                       string   `json:"api_key"`
	Model                        string   `json:"model"`
	LanguageHints                []string `json:"language_hints,omitempty"`
	EnableLanguageIdentification bool     `json:"enable_language_identification"`
}

// streamResult is a server frame: partial tokens, an error, or the finished marker.
type streamResult struct {
	Tokens       []Token `json:"tokens"`
	Finished     bool    `json:"finished"`
	ErrorCode    int     `json:"error_code"`
	ErrorMessage string  `json:"error_message"`
}

// Dial opens a streaming session, sends the configuration frame, and starts
// the read and keepalive loops. Callbacks fire on the session's reader goroutine.
func (s *SonioxService) Dial(ctx context.Context, apiKey string, handler SessionHandler) (SpeechSession, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	cfg := streamConfig{
		APIKey:                       apiKey,
		Model:                        s.model,
		LanguageHints:                s.languageHints,
		EnableLanguageIdentification: true,
	}
	if err := conn.WriteJSON(cfg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send stream config: %w", err)
	}

	sess := &sonioxSession{
		conn:    conn,
		handler: handler,
		done:    make(chan struct{}),
	}

	go sess.readLoop()
	go sess.keepAlive()

	if handler.OnStarted != nil {
		handler.OnStarted()
	}

	return sess, nil
}

// sonioxSession is a live websocket transcription connection.
type sonioxSession struct {
	conn    *websocket.Conn
	handler SessionHandler

	writeMu sync.Mutex
	once    sync.Once
	done    chan struct{}
}

var _ SpeechSession = (*sonioxSession)(nil)

// readLoop delivers server frames to the handler until the stream ends.
func (s *sonioxSession) readLoop() {
	for {
		var result streamResult
		if err := s.conn.ReadJSON(&result); err != nil {
			select {
			case <-s.done:
				// closed by Stop/Cancel, not an error
			default:
				s.close()
				if s.handler.OnError != nil {
					s.handler.OnError(fmt.Errorf("%w: %v", shared.ErrStreamClosed, err))
				}
			}
			return
		}

		if result.ErrorMessage != "" {
			s.close()
			if s.handler.OnError != nil {
				s.handler.OnError(fmt.Errorf("%w: %s", shared.ErrStreamClosed, result.ErrorMessage))
			}
			return
		}

		if len(result.Tokens) > 0 && s.handler.OnResult != nil {
			s.handler.OnResult(Result{Tokens: result.Tokens})
		}

		if result.Finished {
			s.close()
			if s.handler.OnFinished != nil {
				s.handler.OnFinished()
			}
			return
		}
	}
}

// keepAlive pings the collaborator so pauses in speech do not drop the connection.
func (s *sonioxSession) keepAlive() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteJSON(map[string]string{"type": "keepalive"})
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Stop requests graceful finalization by sending the end-of-audio marker.
// The server answers with a finished frame, which closes the session.
func (s *sonioxSession) Stop() error {
	s.writeMu.Lock()
	err := s.conn.WriteMessage(websocket.TextMessage, []byte(""))
	s.writeMu.Unlock()
	if err != nil {
		s.close()
		return fmt.Errorf("failed to finalize stream: %w", err)
	}
	return nil
}

// Cancel tears the connection down immediately.
func (s *sonioxSession) Cancel() error {
	s.close()
	return nil
}

func (s *sonioxSession) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}
