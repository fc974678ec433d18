// Package provision implements the environment provisioner: it validates
// the requested dependency layers against the host profile, resets stale
// isolated environments, and installs layers in order with fail-fast
// semantics.
package provision

import (
	"fmt"
	"time"

	"synthctl/internal/platform"
)

// Layer is a named, ordered group of external dependencies installed as
// one unit.
type Layer string

const (
	// LayerCore is the lock-file driven base dependency set. Always first.
	LayerCore Layer = "core"
	// LayerGpu adds the CUDA inference runtimes. Linux only.
	LayerGpu Layer = "gpu"
	// LayerVllm adds the large-model acceleration runtime. Requires gpu.
	LayerVllm Layer = "vllm"
	// LayerWheels installs the bundled local wheel packages unpacked from
	// a pretrained-model resource archive. Requires gpu.
	LayerWheels Layer = "wheels"
)

func (l Layer) String() string { return string(l) }

// ParseLayer maps a user-supplied name onto a Layer.
func ParseLayer(s string) (Layer, error) {
	switch Layer(s) {
	case LayerCore, LayerGpu, LayerVllm, LayerWheels:
		return Layer(s), nil
	}
	return "", fmt.Errorf("unknown layer: %q", s)
}

// Status is the terminal result of one layer install.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome records the terminal result of one requested layer. Err is only
// set when Status is StatusFailed.
type Outcome struct {
	Layer    Layer
	Status   Status
	Duration time.Duration
	Err      error
}

// Plan is a validated, ordered sequence of layers bound to the host profile
// it was validated against.
type Plan struct {
	Profile platform.Profile
	Layers  []Layer
}

// EnvState describes the isolated environment as found on disk. Version is
// empty when the environment exists but its interpreter cannot be probed;
// such environments are treated as stale.
type EnvState struct {
	Exists  bool
	Version string
}
