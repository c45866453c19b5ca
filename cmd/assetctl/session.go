package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"assettrack/internal/errors"
	"assettrack/internal/usecase"
)

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login", "-token <jwt> [-remember]")
	token := fs.String("token", os.Getenv("ASSETTRACK_TOKEN"), "Bearer token (defaults to $ASSETTRACK_TOKEN)")
	remember := fs.Bool("remember", false, "Persist the token to the session file")
	_ = fs.Parse(args)

	if *token == "" {
		return errors.New("-token is required")
	}

	status, err := a.sessions.Login(ctx, *token, *remember)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged in.")
	printSession(a, status)

	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("logout", "")
	_ = fs.Parse(args)

	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")

	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("whoami", "")
	_ = fs.Parse(args)

	status, err := a.sessions.Status(ctx)
	if err != nil {
		return err
	}
	printSession(a, status)

	return nil
}

func printSession(a *app, status *usecase.SessionStatus) {
	switch {
	case status.Expired:
		fmt.Fprintln(a.out, "Session expired, please login again.")
	case !status.Authenticated:
		fmt.Fprintln(a.out, "Not logged in.")
	default:
		fmt.Fprintf(a.out, "Authenticated against %s\n", a.cfg.API.BaseURL)
		if status.ExpiresAt != nil {
			fmt.Fprintf(a.out, "Expires: %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
		}
		if status.RememberMe {
			fmt.Fprintf(a.out, "Remembered in %s\n", a.cfg.Session.File)
		}
	}
}
