package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/service"
)

func newSignInCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptMissing(
				promptField{title: "Email", value: &email},
				promptField{title: "Password", value: &password, secret: true},
			); err != nil {
				return err
			}
			m, err := a.sessions(cmd.Context())
			if err != nil {
				return err
			}
			user, err := m.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Signed in", fmt.Sprintf("Welcome back, %s", displayName(user)))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newSignUpCmd(a *app) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := promptMissing(
				promptField{title: "Name", value: &name},
				promptField{title: "Email", value: &email},
				promptField{title: "Password", value: &password, secret: true},
			); err != nil {
				return err
			}
			m, err := a.sessions(cmd.Context())
			if err != nil {
				return err
			}
			user, err := m.SignUp(cmd.Context(), email, password, name)
			var suErr *service.SignUpError
			if errors.As(err, &suErr) && suErr.AccountCreated {
				printWarn(a.out, "Account created, but signing in failed. Try `soundgate signin`.")
			}
			if err != nil {
				return err
			}
			printSuccess(a.out, "Account created", fmt.Sprintf("Signed in as %s", displayName(user)))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func newSignOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out everywhere",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.sessions(cmd.Context())
			if err != nil {
				return err
			}
			if err := m.SignOut(cmd.Context()); err != nil {
				printWarn(a.out, "Signed out locally; the backend could not be reached.")
				return err
			}
			printSuccess(a.out, "Signed out", "")
			return nil
		},
	}
}

func newWhoAmICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.sessions(cmd.Context())
			if err != nil {
				return err
			}
			st := m.State()
			if !st.SignedIn() {
				printWarn(a.out, "Not signed in.")
				return nil
			}
			table(a.out, []string{"ID", "NAME", "EMAIL", "SESSION"},
				[][]string{{st.User.ID, st.User.Name, st.User.Email, st.Session.ID}})
			return nil
		},
	}
}

func displayName(u *domain.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
