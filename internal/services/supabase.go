// Supabase implementation of [Authenticator] and [JournalStore]
//
// Auth endpoints follow the GoTrue password grant flow; row operations go
// through the PostgREST interface with row-level security enforced by the
// hosted project.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"golang.org/x/oauth2"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"
)

// SupabaseService implements [Authenticator] and [JournalStore] against a hosted Supabase project.
//
// The service holds the current session; concurrent readers are guarded by a
// mutex because the TUI's command goroutines share one instance.
type SupabaseService struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client

	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	nextID    int
}

var (
	_ Authenticator = (*SupabaseService)(nil)
	_ JournalStore  = (*SupabaseService)(nil)
)

// NewSupabaseService creates a new Supabase client from the given credentials.
// Requires "url" and "anon_key" entries.
func NewSupabaseService(credentials map[string]string) (*SupabaseService, error) {
	baseURL, ok := credentials["url"]
	if !ok || baseURL == "" {
		return nil, fmt.Errorf("missing url in credentials")
	}

	anonKey, ok := credentials["anon_key"]
	if !ok || anonKey == "" {
		return nil, fmt.Errorf("missing anon_key in credentials")
	}

	return &SupabaseService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: http.DefaultClient,
		listeners:  map[int]func(*models.Session){},
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client (used by tests).
func (s *SupabaseService) SetHTTPClient(client *http.Client) {
	if client != nil {
		s.httpClient = client
	}
}

func (s *SupabaseService) Name() string {
	return "Supabase"
}

// tokenResponse is the GoTrue token grant response.
type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         supabaseUser `json:"user"`
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// errorResponse is GoTrue's error envelope; older deployments use "msg",
// newer ones "message" or "error_description".
type errorResponse struct {
	Msg         string `json:"msg"`
	Message     string `json:"message"`
	Description string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, m := range []string{e.Msg, e.Message, e.Description} {
		if m != "" {
			return m
		}
	}
	return ""
}

// doRequest performs an HTTP request against the project, decoding a JSON response into result when non-nil.
//
// The apikey header always carries the anonymous key; the bearer token is the
// session's access token when one is held, falling back to the anonymous key.
func (s *SupabaseService) doRequest(ctx context.Context, method, path string, body any, result any, headers map[string]string) error {
	apiURL := s.baseURL + path

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.bearerToken())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.text() != "" {
			return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiErr.text())
		}
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

func (s *SupabaseService) bearerToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.Token != nil && s.session.Token.AccessToken != "" {
		return s.session.Token.AccessToken
	}
	return s.anonKey
}

// SignIn exchanges email/password credentials for a session via the password grant.
func (s *SupabaseService) SignIn(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var grant tokenResponse
	payload := map[string]string{"email": creds.Email, "password": creds.Password}
	if err := s.doRequest(ctx, http.MethodPost, authPath+"/token?grant_type=password", payload, &grant, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	session := s.sessionFromGrant(grant)
	s.setSession(session)
	return session, nil
}

// SignUp creates an account and writes profile metadata when the collaborator
// returns an immediate session. Errors that merely indicate a pending email
// confirmation are treated as success.
func (s *SupabaseService) SignUp(ctx context.Context, form models.SignupForm) error {
	if err := form.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	var grant tokenResponse
	payload := map[string]string{"email": form.Email, "password": form.Password}
	err := s.doRequest(ctx, http.MethodPost, authPath+"/signup", payload, &grant, nil)
	if err != nil {
		// Confirmation-pending responses mention the email flow; the
		// account exists, so the signup is reported as successful.
		if strings.Contains(strings.ToLower(err.Error()), "email") {
			return nil
		}
		return err
	}

	// Auto-confirm deployments return a usable session; store the profile
	// metadata while the token is in hand.
	if grant.AccessToken != "" {
		s.setSession(s.sessionFromGrant(grant))
		if err := s.UpdateProfile(ctx, form.Profile()); err != nil {
			return fmt.Errorf("account created, profile update failed: %w", err)
		}
	}

	return nil
}

// SignOut revokes the session with the collaborator and clears local state.
func (s *SupabaseService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	hasSession := s.session != nil
	s.mu.Unlock()
	if !hasSession {
		return nil
	}

	err := s.doRequest(ctx, http.MethodPost, authPath+"/logout", nil, nil, nil)
	s.setSession(nil)
	if err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	return nil
}

// CurrentSession returns the held session, refreshing it first when the
// access token has expired.
func (s *SupabaseService) CurrentSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil || session.Token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	if session.Valid() {
		return session, nil
	}
	return s.RefreshSession(ctx)
}

// RefreshSession exchanges the refresh token for a new access token.
func (s *SupabaseService) RefreshSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	var refresh string
	if s.session != nil && s.session.Token != nil {
		refresh = s.session.Token.RefreshToken
	}
	s.mu.Unlock()

	if refresh == "" {
		return nil, shared.ErrNoRefreshToken
	}

	var grant tokenResponse
	payload := map[string]string{"refresh_token": refresh}
	if err := s.doRequest(ctx, http.MethodPost, authPath+"/token?grant_type=refresh_token", payload, &grant, nil); err != nil {
		s.setSession(nil)
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	session := s.sessionFromGrant(grant)
	s.setSession(session)
	return session, nil
}

// UpdateProfile writes first/last name into the account's user metadata.
func (s *SupabaseService) UpdateProfile(ctx context.Context, profile models.Profile) error {
	payload := map[string]any{"data": profile}
	if err := s.doRequest(ctx, http.MethodPut, authPath+"/user", payload, nil, nil); err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}
	return nil
}

// OnAuthChange registers a session-change listener and returns its unsubscribe function.
func (s *SupabaseService) OnAuthChange(fn func(*models.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// RestoreSession installs a session persisted by an earlier run. An expired
// token is fine; the next CurrentSession call refreshes it.
func (s *SupabaseService) RestoreSession(session *models.Session) {
	s.setSession(session)
}

func (s *SupabaseService) sessionFromGrant(grant tokenResponse) *models.Session {
	return &models.Session{
		UserID: grant.User.ID,
		Email:  grant.User.Email,
		Token: &oauth2.Token{
			AccessToken:  grant.AccessToken,
			RefreshToken: grant.RefreshToken,
			Expiry:       time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
		},
	}
}

// setSession swaps the held session and notifies listeners outside the lock.
func (s *SupabaseService) setSession(session *models.Session) {
	s.mu.Lock()
	s.session = session
	fns := make([]func(*models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}

// returning asks PostgREST to echo the affected rows back.
var returning = map[string]string{"Prefer": "return=representation"}

// ListDiaries retrieves the account's diaries ordered by creation time descending.
func (s *SupabaseService) ListDiaries(ctx context.Context, userID string) ([]models.Diary, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	q.Set("order", "created_at.desc")

	var diaries []models.Diary
	if err := s.doRequest(ctx, http.MethodGet, restPath+"/diaries?"+q.Encode(), nil, &diaries, nil); err != nil {
		return nil, err
	}
	return diaries, nil
}

// CreateDiary inserts a diary row and returns the stored representation.
func (s *SupabaseService) CreateDiary(ctx context.Context, userID, title string) (*models.Diary, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrEmptyTitle
	}

	payload := []map[string]any{{"id": shared.GenerateID(), "user_id": userID, "title": title}}
	var rows []models.Diary
	if err := s.doRequest(ctx, http.MethodPost, restPath+"/diaries", payload, &rows, returning); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no rows", shared.ErrAPIRequest)
	}
	return &rows[0], nil
}

// RenameDiary updates a diary's title.
func (s *SupabaseService) RenameDiary(ctx context.Context, diaryID, title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.ErrEmptyTitle
	}

	q := url.Values{}
	q.Set("id", "eq."+diaryID)
	return s.doRequest(ctx, http.MethodPatch, restPath+"/diaries?"+q.Encode(), map[string]string{"title": title}, nil, nil)
}

// DeleteDiary removes a diary row. Child entries must already be gone; the
// tasks engine owns the children-before-parent ordering.
func (s *SupabaseService) DeleteDiary(ctx context.Context, diaryID string) error {
	q := url.Values{}
	q.Set("id", "eq."+diaryID)
	return s.doRequest(ctx, http.MethodDelete, restPath+"/diaries?"+q.Encode(), nil, nil, nil)
}

// ListEntries retrieves a diary's entries ordered by creation time descending.
func (s *SupabaseService) ListEntries(ctx context.Context, diaryID string) ([]models.Entry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("diary_id", "eq."+diaryID)
	q.Set("order", "created_at.desc")

	var entries []models.Entry
	if err := s.doRequest(ctx, http.MethodGet, restPath+"/entries?"+q.Encode(), nil, &entries, nil); err != nil {
		return nil, err
	}
	return entries, nil
}

// LatestDraft returns the most recently updated draft for a diary, or nil when none exists.
func (s *SupabaseService) LatestDraft(ctx context.Context, diaryID string) (*models.Entry, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("diary_id", "eq."+diaryID)
	q.Set("is_draft", "eq.true")
	q.Set("order", "updated_at.desc")
	q.Set("limit", "1")

	var entries []models.Entry
	if err := s.doRequest(ctx, http.MethodGet, restPath+"/entries?"+q.Encode(), nil, &entries, nil); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// CreateEntry inserts an entry row and returns the stored representation.
func (s *SupabaseService) CreateEntry(ctx context.Context, diaryID, title, content string, draft bool) (*models.Entry, error) {
	payload := []map[string]any{{
		"id":       shared.GenerateID(),
		"diary_id": diaryID,
		"title":    title,
		"content":  content,
		"is_draft": draft,
	}}

	var rows []models.Entry
	if err := s.doRequest(ctx, http.MethodPost, restPath+"/entries", payload, &rows, returning); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert returned no rows", shared.ErrAPIRequest)
	}
	return &rows[0], nil
}

// UpdateEntry rewrites an entry's title and content without touching its draft flag.
func (s *SupabaseService) UpdateEntry(ctx context.Context, entryID, title, content string) error {
	q := url.Values{}
	q.Set("id", "eq."+entryID)
	payload := map[string]any{"title": title, "content": content, "updated_at": time.Now().UTC()}
	return s.doRequest(ctx, http.MethodPatch, restPath+"/entries?"+q.Encode(), payload, nil, nil)
}

// PublishEntry rewrites an entry and clears its draft flag.
func (s *SupabaseService) PublishEntry(ctx context.Context, entryID, title, content string) error {
	q := url.Values{}
	q.Set("id", "eq."+entryID)
	payload := map[string]any{"title": title, "content": content, "is_draft": false, "updated_at": time.Now().UTC()}
	return s.doRequest(ctx, http.MethodPatch, restPath+"/entries?"+q.Encode(), payload, nil, nil)
}

// DeleteEntry removes an entry row.
func (s *SupabaseService) DeleteEntry(ctx context.Context, entryID string) error {
	q := url.Values{}
	q.Set("id", "eq."+entryID)
	return s.doRequest(ctx, http.MethodDelete, restPath+"/entries?"+q.Encode(), nil, nil, nil)
}
