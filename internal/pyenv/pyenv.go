// Package pyenv implements provision.Backend on top of the uv package
// manager. It owns the venv directory and the dependency lock file for the
// duration of a run.
package pyenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"synthctl/internal/config"
	"synthctl/internal/executil"
	"synthctl/internal/platform"
	"synthctl/internal/provision"
	"synthctl/internal/wheels"
)

// Env is the uv-backed environment backend.
type Env struct {
	cfg     config.Config
	profile platform.Profile
	log     zerolog.Logger
}

// New builds an Env for cfg on the given host profile.
func New(cfg config.Config, profile platform.Profile, log zerolog.Logger) *Env {
	return &Env{cfg: cfg, profile: profile, log: log}
}

// Inspect reports the environment as found on disk. An environment whose
// interpreter cannot be probed is reported with an empty version so the
// provisioner resets it.
func (e *Env) Inspect(ctx context.Context) (provision.EnvState, error) {
	if _, err := os.Stat(e.cfg.EnvDir); err != nil {
		if os.IsNotExist(err) {
			return provision.EnvState{}, nil
		}
		return provision.EnvState{}, err
	}
	v, err := e.Version(ctx)
	if err != nil {
		e.log.Warn().Str("env", e.cfg.EnvDir).Err(err).Msg("environment present but interpreter unreadable")
		return provision.EnvState{Exists: true}, nil
	}
	return provision.EnvState{Exists: true, Version: v}, nil
}

// Remove tears down the venv directory and the lock file together.
func (e *Env) Remove(ctx context.Context) error {
	if err := os.RemoveAll(e.cfg.EnvDir); err != nil {
		return err
	}
	if err := os.Remove(e.cfg.LockFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Create constructs a fresh venv pinned to version via uv.
func (e *Env) Create(ctx context.Context, version string) error {
	if !executil.Have("uv") {
		return provision.ErrMissingTool("uv")
	}
	return executil.Run(ctx, executil.Cmd{
		Path: "uv",
		Args: []string{"venv", "--python", version, e.cfg.EnvDir},
	})
}

// Version probes the environment's interpreter.
func (e *Env) Version(ctx context.Context) (string, error) {
	py := filepath.Join(e.cfg.EnvDir, "bin", "python")
	out, err := executil.Output(ctx, executil.Cmd{Path: py, Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	return ParseInterpreterVersion(out)
}

// ParseInterpreterVersion extracts the bare version from interpreter
// output like "Python 3.10.14".
func ParseInterpreterVersion(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Python" {
		return "", fmt.Errorf("unrecognized interpreter version output: %q", out)
	}
	return fields[1], nil
}

// Install applies one dependency layer.
func (e *Env) Install(ctx context.Context, layer provision.Layer) (provision.Status, error) {
	switch layer {
	case provision.LayerCore:
		return e.installCore(ctx)
	case provision.LayerGpu:
		return e.installPackages(ctx, e.cfg.Layers.Gpu)
	case provision.LayerVllm:
		return e.installPackages(ctx, e.cfg.Layers.Vllm)
	case provision.LayerWheels:
		return e.installWheels(ctx)
	}
	return provision.StatusFailed, fmt.Errorf("no installer for layer %s", layer)
}

// installCore syncs the project's lock-file driven dependency set into the
// venv. The macOS path exports compiler flags for the one dependency that
// builds a native extension from source.
func (e *Env) installCore(ctx context.Context) (provision.Status, error) {
	env := map[string]string{"UV_PROJECT_ENVIRONMENT": e.cfg.EnvDir}
	if e.profile.OS == platform.Darwin && os.Getenv("CXXFLAGS") == "" {
		// operator-provided flags win; the configured default only fills in
		env["CXXFLAGS"] = e.cfg.DarwinCXXFlags
	}
	if err := executil.Run(ctx, executil.Cmd{Path: "uv", Args: []string{"sync"}, Env: env}); err != nil {
		return provision.StatusFailed, err
	}
	return provision.StatusSuccess, nil
}

func (e *Env) installPackages(ctx context.Context, pkgs []string) (provision.Status, error) {
	if len(pkgs) == 0 {
		return provision.StatusSkipped, nil
	}
	args := append([]string{"pip", "install"}, pkgs...)
	err := executil.Run(ctx, executil.Cmd{
		Path: "uv",
		Args: args,
		Env:  map[string]string{"VIRTUAL_ENV": e.cfg.EnvDir},
	})
	if err != nil {
		return provision.StatusFailed, err
	}
	return provision.StatusSuccess, nil
}

// installWheels unpacks the bundled resource archive in place and installs
// the local wheel files it contains. The archive is part of a pretrained
// model the operator fetches separately; its absence is not recoverable
// here.
func (e *Env) installWheels(ctx context.Context) (provision.Status, error) {
	if len(e.cfg.Wheels.Files) == 0 {
		return provision.StatusSkipped, nil
	}
	archive := filepath.Join(e.cfg.ModelsDir, e.cfg.Wheels.Archive)
	if _, err := os.Stat(archive); err != nil {
		return provision.StatusFailed, provision.ErrMissingArtifact(archive)
	}
	e.log.Info().Str("archive", archive).Msg("unpacking bundled wheels")
	if err := wheels.Unpack(archive, filepath.Dir(archive)); err != nil {
		return provision.StatusFailed, err
	}
	files := make([]string, 0, len(e.cfg.Wheels.Files))
	for _, f := range e.cfg.Wheels.Files {
		p := filepath.Join(e.cfg.ModelsDir, f)
		if _, err := os.Stat(p); err != nil {
			return provision.StatusFailed, provision.ErrMissingArtifact(p)
		}
		files = append(files, p)
	}
	return e.installPackages(ctx, files)
}
