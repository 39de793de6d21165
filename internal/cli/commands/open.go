package commands

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command
func NewOpenCmd(g *Globals) *cobra.Command {
	var pack bool

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a sprite or asset pack image in the browser",
		Example: `  $ pixelshop open 2f1e6b8e-9d0c-4a57-9a8e-3b8c1d2e4f50
  $ pixelshop open --pack 7c0d2a4e-1b3f-4e5a-8c9d-0e1f2a3b4c5d`,
		Args: cobra.ExactArgs(1),
		RunE: g.withApp(func(ctx context.Context, a *app, args []string) error {
			return runOpen(ctx, a, args[0], pack)
		}),
	}

	cmd.Flags().BoolVar(&pack, "pack", false, "Open an asset pack cover instead of a sprite")

	return cmd
}

func runOpen(ctx context.Context, a *app, id string, pack bool) error {
	var name, imageURL string
	if pack {
		p, err := a.api.GetAssetPack(ctx, id)
		if err != nil {
			return sessionHint(err)
		}
		name, imageURL = p.Name, p.ImageURL
	} else {
		s, err := a.api.GetSprite(ctx, id)
		if err != nil {
			return sessionHint(err)
		}
		name, imageURL = s.Name, s.ImageURL
	}

	if imageURL == "" {
		return fmt.Errorf("%s has no image", name)
	}
	target, err := resolveImageURL(a.api.BaseURL(), imageURL)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Opening %s...\n", name)
	fmt.Fprintf(a.out, "URL: %s\n", target)

	if err := a.openURL(target); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, target)
	}
	return nil
}

// resolveImageURL makes server-relative image paths absolute
func resolveImageURL(base, image string) (string, error) {
	ref, err := url.Parse(image)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", image, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
