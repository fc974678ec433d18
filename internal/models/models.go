// Package models fetches pretrained model artifacts into the models
// directory. The bundled-wheels install layer depends on these artifacts
// being in place.
package models

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"synthctl/internal/config"
	"synthctl/internal/executil"
	"synthctl/internal/provision"
)

// Fetch clones each configured model repository into dir. Repositories
// already present are fast-forwarded instead. Failures abort the fetch;
// partially downloaded model sets are not useful.
func Fetch(ctx context.Context, repos []config.ModelRepo, dir string, log zerolog.Logger) error {
	if len(repos) == 0 {
		log.Info().Msg("no model repositories configured")
		return nil
	}
	if !executil.Have("git") {
		return provision.ErrMissingTool("git")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, repo := range repos {
		target := filepath.Join(dir, repo.Name)
		if _, err := os.Stat(target); os.IsNotExist(err) {
			log.Info().Str("model", repo.Name).Str("url", repo.URL).Msg("cloning model repository")
			if err := executil.Run(ctx, executil.Cmd{Path: "git", Args: []string{"clone", repo.URL, target}}); err != nil {
				return err
			}
			continue
		}
		log.Info().Str("model", repo.Name).Msg("updating model repository")
		if err := executil.Run(ctx, executil.Cmd{Path: "git", Args: []string{"-C", target, "pull", "--ff-only"}}); err != nil {
			return err
		}
	}
	return nil
}
