package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd(g *Globals) *cobra.Command {
	var email, otp, password string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password",
		Long: `Reset a forgotten password in two steps.

  $ pixelshop reset-password --email ada@example.com
  $ pixelshop reset-password --email ada@example.com --otp 123456`,
		Args: cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runResetPassword(ctx, a, email, otp, password)
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&otp, "otp", "", "One-time code from the reset email")
	cmd.Flags().StringVar(&password, "password", "", "New password (will prompt if not provided)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runResetPassword(ctx context.Context, a *app, email, otp, password string) error {
	email = strings.TrimSpace(email)

	if otp == "" {
		if err := validate.Struct(client.SendOTPRequest{Email: email}); err != nil {
			return err
		}
		if err := a.api.SendResetPasswordOTP(ctx, email); err != nil {
			return fmt.Errorf("failed to send reset code: %w", err)
		}
		fmt.Fprintf(a.out, "✓ Reset code sent to %s\n", email)
		fmt.Fprintf(a.out, "\nFinish with:\n  pixelshop reset-password --email %s --otp <code>\n", email)
		return nil
	}

	req := client.ResetPasswordRequest{
		Email:           email,
		OTP:             strings.TrimSpace(otp),
		NewPassword:     password,
		ConfirmPassword: password,
	}
	if password == "" {
		newPassword, err := a.readSecret("New password")
		if err != nil {
			return err
		}
		confirm, err := a.readSecret("Confirm password")
		if err != nil {
			return err
		}
		req.NewPassword = newPassword
		req.ConfirmPassword = confirm
	}

	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := a.api.ResetPassword(ctx, req)
	if err != nil {
		return fmt.Errorf("password reset failed: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Password updated. Signed in as %s\n", user.Username)
	return nil
}
