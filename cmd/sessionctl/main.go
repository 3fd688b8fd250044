// Command sessionctl is a minimal terminal client for the session layer.
// It wires the full stack the way an application would — file-backed
// credential slot, interceptor chain, REST client, controller, gate — and
// drives it from the command line.
//
// Configuration comes from the environment (API_BASE_URL, CREDENTIAL_FILE,
// LOG_LEVEL, ...; see authsession.FromEnv).
//
// Usage:
//
//	sessionctl status
//	sessionctl login -email a@b.com -password secret
//	sessionctl whoami
//	sessionctl check -roles admin,creator
//	sessionctl logout
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	authsession "github.com/streamvault/authsession"
	"github.com/streamvault/authsession/api"
	"github.com/streamvault/authsession/guard"
	"github.com/streamvault/authsession/transport"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sessionctl <status|login|whoami|check|logout> [flags]")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := authsession.FromEnv(ctx)
	if err != nil {
		fatal("load config: %v", err)
	}
	if cfg.API.BaseURL == "" {
		fatal("API_BASE_URL is required")
	}

	log := newLogger(cfg.Log)

	chain := transport.New(nil, transport.Handlers{})
	httpClient := &http.Client{Transport: chain, Timeout: cfg.API.Timeout}
	client := api.New(cfg.API.BaseURL, httpClient)

	ctrl, err := authsession.New().
		WithConfig(cfg).
		WithAuthenticator(client).
		WithTransport(chain).
		WithLogger(log).
		Build()
	if err != nil {
		fatal("build session controller: %v", err)
	}

	switch os.Args[1] {
	case "status":
		ctrl.Hydrate(ctx)
		printSnapshot(ctrl.Snapshot())

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(os.Args[2:])
		if *email == "" || *password == "" {
			fatal("login requires -email and -password")
		}

		if err := ctrl.Login(ctx, *email, *password); err != nil {
			fatal("login: %v", err)
		}
		printSnapshot(ctrl.Snapshot())

	case "whoami":
		ctrl.Hydrate(ctx)
		snap := ctrl.Snapshot()
		if snap.Identity == nil {
			fatal("not logged in")
		}
		fmt.Printf("%s <%s> role=%s\n", snap.Identity.Username, snap.Identity.Email, snap.Role)

	case "check":
		fs := flag.NewFlagSet("check", flag.ExitOnError)
		roles := fs.String("roles", "", "comma-separated allowed roles (empty: any authenticated)")
		fs.Parse(os.Args[2:])

		gate := guard.Gate{}
		for _, r := range strings.Split(*roles, ",") {
			if r = strings.TrimSpace(r); r != "" {
				gate.Roles = append(gate.Roles, authsession.Role(r))
			}
		}

		ctrl.Hydrate(ctx)
		d := gate.Evaluate(ctrl.Snapshot(), "sessionctl check")
		fmt.Println("decision:", d.Action)
		if d.Action == guard.Deny {
			fmt.Printf("requires %v, your role: %s\n", d.Required, d.Actual)
			os.Exit(1)
		}
		if d.Action != guard.Allow {
			os.Exit(1)
		}

	case "logout":
		ctrl.Logout()
		fmt.Println("logged out")

	default:
		fatal("unknown command %q", os.Args[1])
	}
}

func newLogger(cfg authsession.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printSnapshot(snap authsession.Snapshot) {
	fmt.Printf("ready=%v authenticated=%v role=%s\n", snap.Ready, snap.Authenticated, snap.Role)
	if snap.Identity != nil {
		fmt.Printf("identity: %s <%s> (id %d)\n", snap.Identity.Username, snap.Identity.Email, snap.Identity.ID)
	}
}
