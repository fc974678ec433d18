package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"synthctl/internal/platform"
	"synthctl/internal/provision"
)

var (
	darwinHost = platform.Profile{OS: platform.Darwin, Arch: "arm64"}
	linuxHost  = platform.Profile{OS: platform.Linux, Arch: "amd64", HasGPU: true, DriverPresent: true}
)

func TestResolvePlanExplicitLayers(t *testing.T) {
	a := &app{}
	plan, err := a.resolvePlan(linuxHost, []string{"core", "gpu", "vllm"}, 0, true)
	require.NoError(t, err)
	require.Equal(t, []provision.Layer{provision.LayerCore, provision.LayerGpu, provision.LayerVllm}, plan.Layers)
}

func TestResolvePlanUnknownLayerName(t *testing.T) {
	a := &app{}
	_, err := a.resolvePlan(linuxHost, []string{"core", "webui"}, 0, true)
	require.Error(t, err)
	require.True(t, provision.IsInvalidSelection(err))
}

func TestResolvePlanGpuLayersRejectedOnDarwin(t *testing.T) {
	// Rejected during planning, before any install step could run.
	a := &app{}
	_, err := a.resolvePlan(darwinHost, []string{"core", "gpu"}, 0, true)
	require.Error(t, err)
	require.True(t, provision.IsWrongPlatform(err))
}

func TestResolvePlanDarwinNeverPrompts(t *testing.T) {
	a := &app{}
	plan, err := a.resolvePlan(darwinHost, nil, 0, false)
	require.NoError(t, err)
	require.Equal(t, []provision.Layer{provision.LayerCore}, plan.Layers)
}

func TestResolvePlanNonInteractiveRequiresTier(t *testing.T) {
	a := &app{}
	_, err := a.resolvePlan(linuxHost, nil, 0, true)
	require.Error(t, err)
	require.True(t, provision.IsInvalidSelection(err))
}

func TestResolvePlanTiers(t *testing.T) {
	a := &app{}
	plan, err := a.resolvePlan(linuxHost, nil, 1, true)
	require.NoError(t, err)
	require.Equal(t, []provision.Layer{provision.LayerCore, provision.LayerGpu}, plan.Layers)

	plan, err = a.resolvePlan(linuxHost, nil, 2, true)
	require.NoError(t, err)
	require.Equal(t, []provision.Layer{
		provision.LayerCore, provision.LayerGpu, provision.LayerVllm, provision.LayerWheels,
	}, plan.Layers)

	_, err = a.resolvePlan(linuxHost, nil, 3, true)
	require.Error(t, err)
	require.True(t, provision.IsInvalidSelection(err))
}

func TestPrintOutcomes(t *testing.T) {
	var buf bytes.Buffer
	printOutcomes(&buf, []provision.Outcome{
		{Layer: provision.LayerCore, Status: provision.StatusSuccess, Duration: 90 * time.Second},
		{Layer: provision.LayerGpu, Status: provision.StatusFailed, Duration: time.Second, Err: errors.New("resolver exploded")},
	})
	out := buf.String()
	require.Contains(t, out, "core")
	require.Contains(t, out, "success")
	require.Contains(t, out, "failed")
	require.Contains(t, out, "resolver exploded")
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Contains(t, names, "provision")
	require.Contains(t, names, "doctor")
	require.Contains(t, names, "models")
	require.Contains(t, names, "version")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Contains(t, buf.String(), "synthctl")
}
