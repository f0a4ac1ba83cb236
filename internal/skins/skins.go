// Package skins installs template packs from git repositories into the
// configured skin directory.
package skins

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Install shallow-clones a skin repository into skinDir. When name is
// empty it is derived from the repository URL. The destination must not
// already exist. Returns the installed skin path.
func Install(ctx context.Context, url, name, skinDir string) (string, error) {
	if name == "" {
		name = strings.TrimSuffix(path.Base(url), ".git")
	}
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("cannot derive skin name from %q", url)
	}

	dest := filepath.Join(skinDir, name)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("skin already installed: %s", dest)
	}
	if err := os.MkdirAll(skinDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create skin directory: %w", err)
	}

	slog.Debug("Cloning skin repository", "url", url, "path", dest)
	repo, err := git.PlainCloneContext(ctx, dest, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("failed to clone skin repository: %w", err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Skin installed", "name", name, "path", dest,
			"commit", ref.Hash().String()[:8])
	} else {
		slog.Info("Skin installed", "name", name, "path", dest)
	}
	return dest, nil
}
