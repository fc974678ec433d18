package provision

import (
	"fmt"

	"synthctl/internal/platform"
)

// Tier is the interactive installation tier offered on GPU hosts.
type Tier int

const (
	// TierStandard installs core plus GPU acceleration.
	TierStandard Tier = 1
	// TierFull additionally installs the vLLM runtime and the bundled
	// wheel packages.
	TierFull Tier = 2
)

// PlanForTier maps an installation tier onto a validated plan. The macOS
// variant has exactly one shape (core only), so tier is ignored there.
func PlanForTier(profile platform.Profile, tier Tier) (Plan, error) {
	if profile.OS == platform.Darwin {
		return BuildPlan(profile, []Layer{LayerCore})
	}
	switch tier {
	case TierStandard:
		return BuildPlan(profile, []Layer{LayerCore, LayerGpu})
	case TierFull:
		return BuildPlan(profile, []Layer{LayerCore, LayerGpu, LayerVllm, LayerWheels})
	}
	return Plan{}, ErrInvalidSelection(fmt.Sprintf("unknown tier %d (choose 1 or 2)", tier))
}

// BuildPlan validates the selected layers against the host profile before
// any filesystem mutation happens. Invariants: core first, no duplicates,
// gpu only on linux, vllm and wheels only after gpu.
func BuildPlan(profile platform.Profile, layers []Layer) (Plan, error) {
	if len(layers) == 0 {
		return Plan{}, ErrInvalidSelection("no layers selected")
	}
	if layers[0] != LayerCore {
		return Plan{}, ErrInvalidSelection("core must be the first layer")
	}
	seen := map[Layer]bool{}
	gpuSelected := false
	for _, l := range layers {
		switch l {
		case LayerCore, LayerGpu, LayerVllm, LayerWheels:
		default:
			return Plan{}, ErrInvalidSelection(fmt.Sprintf("unknown layer %q", l))
		}
		if seen[l] {
			return Plan{}, ErrInvalidSelection(fmt.Sprintf("layer %s selected twice", l))
		}
		seen[l] = true
		switch l {
		case LayerGpu:
			if profile.OS != platform.Linux {
				return Plan{}, ErrWrongPlatform(l, string(profile.OS))
			}
			gpuSelected = true
		case LayerVllm, LayerWheels:
			if !gpuSelected {
				return Plan{}, ErrInvalidSelection(fmt.Sprintf("layer %s requires gpu earlier in the selection", l))
			}
		}
	}
	return Plan{Profile: profile, Layers: append([]Layer(nil), layers...)}, nil
}
