package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")
	ErrRefreshFailed    = fmt.Errorf("session refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrDiaryNotFound      = fmt.Errorf("diary not found")
	ErrEntryNotFound      = fmt.Errorf("entry not found")

	// Editor errors
	ErrSaveInFlight = fmt.Errorf("a save is already in progress")

	// Voice capture errors
	ErrRecorderBusy   = fmt.Errorf("recording already in progress")
	ErrStreamClosed   = fmt.Errorf("transcription stream closed")
	ErrDebounced      = fmt.Errorf("action debounced")
	ErrNoSpeechConfig = fmt.Errorf("speech service not configured")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrEmptyTitle      = fmt.Errorf("title cannot be empty")
	ErrEmptyContent    = fmt.Errorf("content cannot be empty")
)
