package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pixelshop-dev/pixelshop/internal/cli/client"
)

// batchLimit caps concurrent requests for multi-ID commands
const batchLimit = 4

// forEachID runs fn for every id with bounded concurrency. An expired session
// stops the batch; other failures are collected and reported together.
func forEachID(ctx context.Context, a *app, ids []string, fn func(ctx context.Context, id string) (string, error)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit)

	var mu sync.Mutex
	var errs []error
	for _, id := range ids {
		g.Go(func() error {
			msg, err := fn(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if client.IsSessionExpired(err) {
					return err
				}
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				return nil
			}
			fmt.Fprintln(a.out, msg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sessionHint(err)
	}
	return errors.Join(errs...)
}

// resolveCategories turns category names, slugs or IDs into IDs
func resolveCategories(ctx context.Context, a *app, refs []string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	categories, err := a.api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", sessionHint(err))
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		found := false
		for _, category := range categories {
			if strings.EqualFold(category.ID, ref) || strings.EqualFold(category.Name, ref) || category.Slug == ref {
				ids = append(ids, category.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown category %q (run 'pixelshop categories ls')", ref)
		}
	}
	return ids, nil
}
