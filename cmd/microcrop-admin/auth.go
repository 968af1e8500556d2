package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the MicroCrop backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if email == "" {
				email = promptLine("Email: ")
			}
			if password == "" {
				password = promptPassword("Password: ")
			}

			resp, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			a.store.LoginWithResponse(resp)

			u := a.store.User()
			fmt.Printf("Logged in as %s %s (%s)\n", u.FirstName, u.LastName, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.store.Logout()
			if err := a.store.Reset(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if !a.store.IsAuthenticated() {
				return fmt.Errorf("not logged in")
			}
			// Verify against the backend rather than trusting the local file.
			user, err := a.client.Me(ctx)
			if err != nil {
				return err
			}
			a.store.SetUser(user)
			return a.printResult(user)
		},
	}
}

func promptLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo when stdin is a terminal; piped input
// falls back to a plain line read.
func promptPassword(prompt string) string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(prompt)
	}
	fmt.Print(prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
