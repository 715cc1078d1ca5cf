package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/afterthoughts/internal/models"
	"github.com/desertthunder/afterthoughts/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with email and password and persists the session tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.supabase == nil {
		return fmt.Errorf("%w: backend not configured, check config.toml", shared.ErrServiceUnavailable)
	}

	password := cmd.String("password")
	if password == "" {
		r.writePlain("Password: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	creds := models.Credentials{
		Email:    cmd.String("email"),
		Password: password,
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	r.logger.Info("signing in", "email", creds.Email)

	session, err := r.supabase.SignIn(ctx, creds)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	if err := saveSession(session); err != nil {
		r.logger.Warnf("failed to persist session: %v", err)
	}

	return r.writePlain("✓ Signed in as %s\n", session.Email)
}

// AuthSignup creates an account. A response that only asks for email
// confirmation still counts as success.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	if r.supabase == nil {
		return fmt.Errorf("%w: backend not configured, check config.toml", shared.ErrServiceUnavailable)
	}

	form := models.SignupForm{
		FirstName:       cmd.String("first-name"),
		LastName:        cmd.String("last-name"),
		Email:           cmd.String("email"),
		Password:        cmd.String("password"),
		ConfirmPassword: cmd.String("password"),
		AgreedToTerms:   cmd.Bool("accept-terms"),
	}
	if err := form.Validate(); err != nil {
		return err
	}

	r.logger.Info("creating account", "email", form.Email)

	if err := r.supabase.SignUp(ctx, form); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlain("✓ Account created\n")
	return r.writePlain("Check your email for a confirmation link, then run 'afterthoughts auth login'.\n")
}

// AuthLogout revokes the session and removes the persisted tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.supabase == nil {
		return fmt.Errorf("%w: backend not configured, check config.toml", shared.ErrServiceUnavailable)
	}

	if stored := loadSession(); stored != nil {
		r.supabase.RestoreSession(stored)
		if err := r.supabase.SignOut(ctx); err != nil {
			r.logger.Warnf("remote sign-out failed: %v", err)
		}
	}

	clearSession()
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami shows the signed-in account.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if r.supabase == nil {
		return fmt.Errorf("%w: backend not configured, check config.toml", shared.ErrServiceUnavailable)
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"user_id": session.UserID, "email": session.Email}, true)
	}

	r.writePlain("Email: %s\n", session.Email)
	return r.writePlain("User ID: %s\n", session.UserID)
}
