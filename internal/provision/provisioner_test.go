package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"synthctl/internal/platform"
)

// fakeBackend records calls and simulates environment state transitions
// without touching the filesystem.
type fakeBackend struct {
	state         EnvState
	verifyVersion string // interpreter version reported after Create
	createErr     error
	installErr    map[Layer]error
	installStatus map[Layer]Status

	calls []string
}

func (f *fakeBackend) Inspect(ctx context.Context) (EnvState, error) {
	f.calls = append(f.calls, "inspect")
	return f.state, nil
}

func (f *fakeBackend) Remove(ctx context.Context) error {
	f.calls = append(f.calls, "remove")
	f.state = EnvState{}
	return nil
}

func (f *fakeBackend) Create(ctx context.Context, version string) error {
	f.calls = append(f.calls, "create "+version)
	if f.createErr != nil {
		return f.createErr
	}
	f.state = EnvState{Exists: true, Version: f.verifyVersion}
	return nil
}

func (f *fakeBackend) Version(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "version")
	return f.verifyVersion, nil
}

func (f *fakeBackend) Install(ctx context.Context, layer Layer) (Status, error) {
	f.calls = append(f.calls, "install "+layer.String())
	if err := f.installErr[layer]; err != nil {
		return StatusFailed, err
	}
	if st, ok := f.installStatus[layer]; ok {
		return st, nil
	}
	return StatusSuccess, nil
}

func newTestProvisioner(t *testing.T, be Backend, version string) *Provisioner {
	t.Helper()
	p, err := New(be, version, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func linuxPlan(t *testing.T, layers ...Layer) Plan {
	t.Helper()
	profile := platform.Profile{OS: platform.Linux, Arch: "amd64", HasGPU: true, DriverPresent: true}
	plan, err := BuildPlan(profile, layers)
	require.NoError(t, err)
	return plan
}

func TestProvisionFreshEnvironment(t *testing.T) {
	be := &fakeBackend{verifyVersion: "3.10.14"}
	p := newTestProvisioner(t, be, "3.10")

	outcomes, err := p.Provision(context.Background(), linuxPlan(t, LayerCore))
	require.NoError(t, err)
	require.Equal(t, []Outcome{{Layer: LayerCore, Status: StatusSuccess, Duration: outcomes[0].Duration}}, outcomes)
	require.Equal(t, []string{"inspect", "create 3.10", "version", "install core"}, be.calls)
}

func TestProvisionStaleEnvironmentIsTornDown(t *testing.T) {
	be := &fakeBackend{
		state:         EnvState{Exists: true, Version: "3.12.4"},
		verifyVersion: "3.10.14",
	}
	p := newTestProvisioner(t, be, "3.10")

	outcomes, err := p.Provision(context.Background(), linuxPlan(t, LayerCore))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, StatusSuccess, outcomes[0].Status)
	require.Equal(t, []string{"inspect", "remove", "create 3.10", "version", "install core"}, be.calls)
}

func TestProvisionReusesMatchingEnvironment(t *testing.T) {
	be := &fakeBackend{
		state:         EnvState{Exists: true, Version: "3.10.14"},
		verifyVersion: "3.10.14",
	}
	p := newTestProvisioner(t, be, "3.10")

	_, err := p.Provision(context.Background(), linuxPlan(t, LayerCore))
	require.NoError(t, err)
	require.NotContains(t, be.calls, "remove")
	require.NotContains(t, be.calls, "create 3.10")
}

func TestProvisionUnreadableInterpreterIsStale(t *testing.T) {
	// Environment exists but its interpreter cannot be probed; it must be
	// reset rather than reused.
	be := &fakeBackend{
		state:         EnvState{Exists: true, Version: ""},
		verifyVersion: "3.10.14",
	}
	p := newTestProvisioner(t, be, "3.10")

	_, err := p.Provision(context.Background(), linuxPlan(t, LayerCore))
	require.NoError(t, err)
	require.Contains(t, be.calls, "remove")
}

func TestProvisionVerificationMismatchIsFatal(t *testing.T) {
	// The package manager substituted another interpreter: no layer may run.
	be := &fakeBackend{verifyVersion: "3.11.9"}
	p := newTestProvisioner(t, be, "3.10")

	outcomes, err := p.Provision(context.Background(), linuxPlan(t, LayerCore, LayerGpu))
	require.Error(t, err)
	require.True(t, IsVersionMismatch(err))
	require.Nil(t, outcomes)
	require.NotContains(t, be.calls, "install core")
	require.NotContains(t, be.calls, "install gpu")
}

func TestProvisionFailFastStopsAtFailingLayer(t *testing.T) {
	be := &fakeBackend{
		verifyVersion: "3.10.14",
		installErr:    map[Layer]error{LayerGpu: errors.New("wheel build blew up")},
	}
	p := newTestProvisioner(t, be, "3.10")

	outcomes, err := p.Provision(context.Background(), linuxPlan(t, LayerCore, LayerGpu, LayerVllm))
	require.Error(t, err)
	layer, ok := FailedLayer(err)
	require.True(t, ok)
	require.Equal(t, LayerGpu, layer)

	require.Len(t, outcomes, 2)
	require.Equal(t, StatusSuccess, outcomes[0].Status)
	require.Equal(t, StatusFailed, outcomes[1].Status)
	require.Error(t, outcomes[1].Err)
	require.NotContains(t, be.calls, "install vllm")
}

func TestProvisionSkippedLayer(t *testing.T) {
	be := &fakeBackend{
		verifyVersion: "3.10.14",
		installStatus: map[Layer]Status{LayerVllm: StatusSkipped},
	}
	p := newTestProvisioner(t, be, "3.10")

	outcomes, err := p.Provision(context.Background(), linuxPlan(t, LayerCore, LayerGpu, LayerVllm))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	require.Equal(t, StatusSkipped, outcomes[2].Status)
}

func TestProvisionIsIdempotent(t *testing.T) {
	be := &fakeBackend{verifyVersion: "3.10.14"}
	p := newTestProvisioner(t, be, "3.10")
	plan := linuxPlan(t, LayerCore, LayerGpu)

	first, err := p.Provision(context.Background(), plan)
	require.NoError(t, err)
	second, err := p.Provision(context.Background(), plan)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Layer, second[i].Layer)
		require.Equal(t, first[i].Status, second[i].Status)
	}
	// The second run found a matching environment and reused it.
	require.Equal(t, 1, countCalls(be.calls, "create 3.10"))
}

func TestNewRejectsUnparsableVersion(t *testing.T) {
	_, err := New(&fakeBackend{}, "three-dot-ten", zerolog.Nop())
	require.Error(t, err)
	require.True(t, IsInvalidSelection(err))
}

func countCalls(calls []string, want string) int {
	n := 0
	for _, c := range calls {
		if c == want {
			n++
		}
	}
	return n
}
