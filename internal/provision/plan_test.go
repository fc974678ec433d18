package provision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"synthctl/internal/platform"
)

var (
	darwinHost = platform.Profile{OS: platform.Darwin, Arch: "arm64"}
	linuxHost  = platform.Profile{OS: platform.Linux, Arch: "amd64", HasGPU: true, DriverPresent: true}
)

func TestBuildPlanInvariants(t *testing.T) {
	cases := []struct {
		name    string
		profile platform.Profile
		layers  []Layer
		wantErr func(error) bool
	}{
		{"empty selection", linuxHost, nil, IsInvalidSelection},
		{"core not first", linuxHost, []Layer{LayerGpu, LayerCore}, IsInvalidSelection},
		{"duplicate layer", linuxHost, []Layer{LayerCore, LayerGpu, LayerGpu}, IsInvalidSelection},
		{"unknown layer", linuxHost, []Layer{LayerCore, Layer("cuda")}, IsInvalidSelection},
		{"gpu on darwin", darwinHost, []Layer{LayerCore, LayerGpu}, IsWrongPlatform},
		{"vllm without gpu", linuxHost, []Layer{LayerCore, LayerVllm}, IsInvalidSelection},
		{"wheels without gpu", linuxHost, []Layer{LayerCore, LayerWheels}, IsInvalidSelection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildPlan(tc.profile, tc.layers)
			require.Error(t, err)
			require.True(t, tc.wantErr(err), "unexpected error kind: %v", err)
		})
	}
}

func TestBuildPlanAcceptsValidSelections(t *testing.T) {
	for _, layers := range [][]Layer{
		{LayerCore},
		{LayerCore, LayerGpu},
		{LayerCore, LayerGpu, LayerVllm},
		{LayerCore, LayerGpu, LayerVllm, LayerWheels},
		{LayerCore, LayerGpu, LayerWheels},
	} {
		plan, err := BuildPlan(linuxHost, layers)
		require.NoError(t, err)
		require.Equal(t, layers, plan.Layers)
	}

	plan, err := BuildPlan(darwinHost, []Layer{LayerCore})
	require.NoError(t, err)
	require.Equal(t, []Layer{LayerCore}, plan.Layers)
}

func TestBuildPlanCopiesInput(t *testing.T) {
	layers := []Layer{LayerCore, LayerGpu}
	plan, err := BuildPlan(linuxHost, layers)
	require.NoError(t, err)
	layers[1] = LayerVllm
	require.Equal(t, LayerGpu, plan.Layers[1])
}

func TestPlanForTier(t *testing.T) {
	plan, err := PlanForTier(linuxHost, TierStandard)
	require.NoError(t, err)
	require.Equal(t, []Layer{LayerCore, LayerGpu}, plan.Layers)

	plan, err = PlanForTier(linuxHost, TierFull)
	require.NoError(t, err)
	require.Equal(t, []Layer{LayerCore, LayerGpu, LayerVllm, LayerWheels}, plan.Layers)

	_, err = PlanForTier(linuxHost, Tier(7))
	require.Error(t, err)
	require.True(t, IsInvalidSelection(err))
}

func TestPlanForTierDarwinIgnoresTier(t *testing.T) {
	for _, tier := range []Tier{0, TierStandard, TierFull, 9} {
		plan, err := PlanForTier(darwinHost, tier)
		require.NoError(t, err)
		require.Equal(t, []Layer{LayerCore}, plan.Layers)
	}
}

func TestParseLayer(t *testing.T) {
	for _, name := range []string{"core", "gpu", "vllm", "wheels"} {
		l, err := ParseLayer(name)
		require.NoError(t, err)
		require.Equal(t, name, l.String())
	}
	_, err := ParseLayer("webui")
	require.Error(t, err)
}
