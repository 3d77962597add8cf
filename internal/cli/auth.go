package cli

import (
	"fmt"

	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/session"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Log in, register and inspect the stored session.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored token",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE:  runWhoami,
}

var tokenCmd = &cobra.Command{
	Use:   "token [token]",
	Short: "Print the stored token, or adopt one issued elsewhere",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runToken,
}

var (
	authName     string
	authEmail    string
	authPassword string
	authConfirm  string
)

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(tokenCmd)

	loginCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&authName, "name", "n", "", "Display name")
	registerCmd.Flags().StringVarP(&authEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&authConfirm, "confirm-password", "", "Password confirmation (defaults to --password)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	email := authEmail
	if email == "" {
		var err error
		if email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	password := authPassword
	if password == "" {
		var err error
		if password, err = p.password("Password: "); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "🔄 Logging in...")
	res, err := application.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", errorMessage(err))
	}

	fmt.Fprintf(out, "✅ Logged in as %s <%s>\n", res.Profile.Name, res.Profile.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	restored, err := application.Start(cmd.Context())
	if err != nil {
		return err
	}
	if !restored {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	application.Logout()
	fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	form := session.RegisterForm{
		Name:            authName,
		Email:           authEmail,
		Password:        authPassword,
		ConfirmPassword: authConfirm,
	}

	var err error
	if form.Name == "" {
		if form.Name, err = p.line("Name: "); err != nil {
			return err
		}
	}
	if form.Email == "" {
		if form.Email, err = p.line("Email: "); err != nil {
			return err
		}
	}
	if form.Password == "" {
		if form.Password, err = p.password("Password: "); err != nil {
			return err
		}
		if form.ConfirmPassword, err = p.password("Confirm Password: "); err != nil {
			return err
		}
	} else if form.ConfirmPassword == "" {
		form.ConfirmPassword = form.Password
	}

	fmt.Fprintln(out, "🔄 Creating account...")
	user, err := application.Session.Register(cmd.Context(), form)
	if err != nil {
		return fmt.Errorf("registration failed: %s", errorMessage(err))
	}

	fmt.Fprintf(out, "✅ Account created for %s. Log in with: taskboard auth login --email %s\n", user.Name, user.Email)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}

	u := application.Session.Snapshot().Profile
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:      %d\n", u.ID)
	fmt.Fprintf(out, "Name:    %s\n", u.Name)
	fmt.Fprintf(out, "Email:   %s\n", u.Email)
	if t := u.Created(); !t.IsZero() {
		fmt.Fprintf(out, "Joined:  %s\n", t.Format("Jan 2, 2006"))
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 0 {
		restored, err := application.Start(ctx)
		if err != nil {
			return err
		}
		if !restored {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		fmt.Fprintln(out, application.Session.Token())
		return nil
	}

	if err := application.Session.SetTokenAndPersist(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if _, err := authorize(cmd, app.ProjectsPath); err != nil {
		return err
	}
	u := application.Session.Snapshot().Profile
	fmt.Fprintf(out, "✅ Token accepted for %s <%s>\n", u.Name, u.Email)
	return nil
}
