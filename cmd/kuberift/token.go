package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/odvcencio/kuberift/pkg/identity"
	"github.com/odvcencio/kuberift/pkg/terminal"
)

func runTokenCommand(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a config file")
	subject := fs.String("sub", "", "User the token names")
	email := fs.String("email", "", "Email claim")
	var groups []string
	fs.Var(&stringListValue{target: &groups}, "group", "Group to impersonate (repeatable or comma-separated)")
	ttl := fs.Duration("ttl", 0, "Token lifetime (default auth.token_ttl)")
	if err := fs.Parse(args); err != nil {
		return withExitCode(err, exitUsage)
	}
	if strings.TrimSpace(*subject) == "" && strings.TrimSpace(*email) == "" {
		return withExitCode(errors.New("token requires --sub or --email"), exitUsage)
	}

	cfg, err := loadConfigFn(*configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.Secret == "" {
		return withExitCode(errors.New("auth.secret is not set (config file or KUBERIFT_AUTH_SECRET)"), exitConfig)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	tm := identity.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Claim)
	token, err := tm.Mint(strings.TrimSpace(*subject), strings.TrimSpace(*email), groups, lifetime)
	if err != nil {
		return err
	}
	principal, err := tm.Authenticate(token)
	if err != nil {
		return withExitCode(fmt.Errorf("minted token does not name a user for claim %q: %w", cfg.Auth.Claim, err), exitUsage)
	}
	fmt.Fprintln(stdout, token)
	terminal.NewWithOutput(stderr).Success("token for %s expires in %s", principal.User, lifetime)
	return nil
}
