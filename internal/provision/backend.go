package provision

import "context"

// Backend is the isolated-environment implementation the provisioner
// drives. The real backend shells out to the package manager; tests use a
// fake. All methods block until the underlying invocation completes.
type Backend interface {
	// Inspect reports the environment as found on disk.
	Inspect(ctx context.Context) (EnvState, error)
	// Remove tears down the environment directory and the dependency
	// lock file. Resolution done under one interpreter must never be
	// reused under another.
	Remove(ctx context.Context) error
	// Create constructs a fresh environment pinned to version.
	Create(ctx context.Context, version string) error
	// Version reads back the interpreter version of the environment.
	Version(ctx context.Context) (string, error)
	// Install applies one dependency layer. It returns StatusSkipped when
	// the layer has nothing to install.
	Install(ctx context.Context, layer Layer) (Status, error)
}
