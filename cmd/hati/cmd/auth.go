package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hatidata/hati/pkg/config"
	"github.com/hatidata/hati/pkg/consts"
	"github.com/hatidata/hati/pkg/project"
	"github.com/hatidata/hati/pkg/sync"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// auth returns the `hati auth` command group: login, signup, status, logout,
// and upgrade.
func auth() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage HatiData authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in with email and password",
				Action: authLogin,
			},
			{
				Name:   "signup",
				Usage:  "Sign up for a free account",
				Action: authSignup,
			},
			{
				Name:   "status",
				Usage:  "Show authentication status",
				Action: authStatus,
			},
			{
				Name:   "logout",
				Usage:  "Remove the local session",
				Action: authLogout,
			},
			{
				Name:   "upgrade",
				Usage:  "Open the billing page to upgrade your tier",
				Action: authUpgrade,
			},
		},
	}
}

func authLogin(ctx context.Context, cmd *cli.Command) error {
	hatiDir, cfg, err := locateProject()
	if err != nil {
		return err
	}

	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}

	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	client := sync.NewUnauthenticated(cfg.CloudEndpoint)
	fmt.Printf("\n%s Logging in...\n", glyphStep)

	resp, err := client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	session := &config.Session{Token: resp.Token, Email: email, ExpiresAt: resp.ExpiresAt}
	if err := session.Save(project.SessionPath(hatiDir)); err != nil {
		return err
	}

	fmt.Printf("%s Logged in as %s\n", glyphOK, bold(email))
	return nil
}

func authSignup(ctx context.Context, cmd *cli.Command) error {
	hatiDir, cfg, err := locateProject()
	if err != nil {
		return err
	}

	name, err := promptLine("Your name: ")
	if err != nil {
		return err
	}
	email, err := promptLine("Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	company, err := promptLine("Company/org name: ")
	if err != nil {
		return err
	}

	client := sync.NewUnauthenticated(cfg.CloudEndpoint)
	fmt.Printf("\n%s Creating your account...\n", glyphStep)

	resp, err := client.Signup(ctx, sync.SignupRequest{
		Name:     name,
		Email:    email,
		Password: password,
		OrgName:  company,
		Tier:     "free",
	})
	if err != nil {
		fmt.Printf("%s Signup failed. You can try again with %s\n", glyphWarn, cyan("hati auth signup"))
		return err
	}

	cfg.OrgID = resp.OrgID
	if err := cfg.Save(project.ConfigPath(hatiDir)); err != nil {
		return err
	}

	if resp.Token != "" {
		session := &config.Session{Token: resp.Token, Email: email}
		if err := session.Save(project.SessionPath(hatiDir)); err != nil {
			return err
		}
	}

	fmt.Printf("%s Account created! Organization: %s\n", glyphOK, dimmed(resp.OrgID))
	return nil
}

func authStatus(ctx context.Context, cmd *cli.Command) error {
	hatiDir, cfg, err := locateProject()
	if err != nil {
		return err
	}

	fmt.Printf("%s Auth Status\n", glyphStep)
	fmt.Println()
	fmt.Printf("  %-16s %s\n", dimmed("Endpoint:"), cfg.CloudEndpoint)
	fmt.Printf("  %-16s %s\n", dimmed("Org ID:"), orNotSet(cfg.OrgID))

	if cfg.APIKey == "" {
		fmt.Printf("  %-16s (not set)\n", dimmed("API Key:"))
	} else {
		fmt.Printf("  %-16s %s\n", dimmed("API Key:"), config.MaskAPIKey(cfg.APIKey))

		// Verify the key against the control plane. Network failures fall
		// back to the local view; the key may still be valid.
		client := sync.New(cfg.CloudEndpoint, cfg.APIKey)
		if id, err := client.Me(ctx); err != nil {
			fmt.Printf("  %-16s %s\n", dimmed("Verified:"), "no (control plane unreachable)")
		} else {
			fmt.Printf("  %-16s yes, as %s (org: %s)\n", dimmed("Verified:"), bold(id.Email), dimmed(id.OrgID))
		}
	}

	session, err := config.LoadSession(project.SessionPath(hatiDir))
	if err != nil {
		fmt.Printf("  %-16s none\n", dimmed("Session:"))
		return nil
	}

	fmt.Printf("  %-16s %s\n", dimmed("Email:"), session.Email)
	fmt.Printf("  %-16s active\n", dimmed("Session:"))
	if session.ExpiresAt != "" {
		fmt.Printf("  %-16s %s\n", dimmed("Expires:"), session.ExpiresAt)
	}

	return nil
}

func authLogout(ctx context.Context, cmd *cli.Command) error {
	hatiDir, err := project.FindFromWd()
	if err != nil {
		return err
	}

	if err := config.RemoveSession(project.SessionPath(hatiDir)); err != nil {
		return err
	}

	fmt.Printf("%s Logged out.\n", glyphOK)
	return nil
}

func authUpgrade(ctx context.Context, cmd *cli.Command) error {
	fmt.Printf("%s Opening billing page: %s\n", glyphStep, cyan(consts.BillingURL))
	if err := browser.OpenURL(consts.BillingURL); err != nil {
		fmt.Printf("%s Could not open browser. Visit: %s\n", glyphWarn, consts.BillingURL)
	}
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "failed to read input")
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}
	return string(password), nil
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
