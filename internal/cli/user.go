package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user credentials",
	}
	cmd.AddCommand(newUserRegisterCommand(opts))
	cmd.AddCommand(newUserLoginCommand(opts))
	return cmd
}

func newUserRegisterCommand(opts *options) *cobra.Command {
	var password, confirm string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				confirm = password
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.auth.Register(cmd.Context(), args[0], password, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for the new user")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation (defaults to --password)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// newUserLoginCommand checks credentials. Sessions live in the serving
// process, so the token printed here is only useful for scripting checks.
func newUserLoginCommand(opts *options) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Verify a user's credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			defer a.auth.Logout(cmd.Context(), sess.Token)
			fmt.Fprintf(cmd.OutOrStdout(), "credentials valid for %s (%s)\n", sess.Username, sess.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to verify")
	return cmd
}
