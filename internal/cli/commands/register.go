package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
	"github.com/pixelshop-dev/pixelshop/internal/cli/validate"
)

type registerOptions struct {
	email    string
	otp      string
	username string
	fullName string
	password string
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(g *Globals) *cobra.Command {
	var opts registerOptions

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a marketplace account",
		Long: `Create a marketplace account in two steps.

Run once with --email to receive a one-time code, then again with the code:

  $ pixelshop register --email ada@example.com
  $ pixelshop register --email ada@example.com --otp 123456 --username ada --name "Ada Lovelace"`,
		Args: cobra.NoArgs,
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runRegister(ctx, a, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.email, "email", "", "Email address")
	cmd.Flags().StringVar(&opts.otp, "otp", "", "One-time code from the verification email")
	cmd.Flags().StringVar(&opts.username, "username", "", "Username (letters, numbers, underscore, hyphen)")
	cmd.Flags().StringVar(&opts.fullName, "name", "", "Full name")
	cmd.Flags().StringVar(&opts.password, "password", "", "Password (will prompt if not provided)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runRegister(ctx context.Context, a *app, opts registerOptions) error {
	email := strings.TrimSpace(opts.email)

	if opts.otp == "" {
		if err := validate.Struct(client.SendOTPRequest{Email: email}); err != nil {
			return err
		}
		if err := a.api.SendRegistrationOTP(ctx, email); err != nil {
			return fmt.Errorf("failed to send verification code: %w", err)
		}
		fmt.Fprintf(a.out, "✓ Verification code sent to %s\n", email)
		fmt.Fprintln(a.out, "\nFinish with:")
		fmt.Fprintf(a.out, "  pixelshop register --email %s --otp <code> --username <username> --name <full name>\n", email)
		return nil
	}

	req := client.RegisterRequest{
		Email:    email,
		OTP:      strings.TrimSpace(opts.otp),
		Username: strings.TrimSpace(opts.username),
		FullName: strings.TrimSpace(opts.fullName),
		Password: opts.password,
	}
	if req.Password == "" {
		password, err := a.readSecret("Password")
		if err != nil {
			return err
		}
		confirm, err := a.readSecret("Confirm password")
		if err != nil {
			return err
		}
		req.Password = password
		req.ConfirmPassword = confirm
	} else {
		req.ConfirmPassword = req.Password
	}

	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := a.api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Welcome, %s! You are now signed in.\n", user.Username)
	return nil
}
