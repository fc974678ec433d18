package provision

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Provisioner ensures a clean, correctly-versioned environment exists and
// installs the planned layers in order. Strictly sequential; a single
// failure aborts the run.
type Provisioner struct {
	backend  Backend
	required *semver.Version
	log      zerolog.Logger
	metrics  *Metrics
}

// New builds a Provisioner pinned to requiredVersion (e.g. "3.10").
func New(backend Backend, requiredVersion string, log zerolog.Logger) (*Provisioner, error) {
	v, err := semver.NewVersion(requiredVersion)
	if err != nil {
		return nil, ErrInvalidSelection("unparsable python version " + requiredVersion)
	}
	return &Provisioner{backend: backend, required: v, log: log}, nil
}

// SetMetrics installs an optional metrics sink.
func (p *Provisioner) SetMetrics(m *Metrics) { p.metrics = m }

// Provision runs the full workflow for plan: detect, validate/reset,
// create, verify, then install each layer in request order.
//
// On success it returns one Outcome per requested layer, all Success or
// Skipped. On a layer failure it returns the outcomes for completed layers
// plus one Failed outcome, and the layers after the failure point are never
// attempted. Environment-stage failures return before any outcome exists.
func (p *Provisioner) Provision(ctx context.Context, plan Plan) ([]Outcome, error) {
	log := p.log.With().Str("run_id", uuid.NewString()).Logger()

	if err := p.ensureEnvironment(ctx, log); err != nil {
		p.countRun("fatal")
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(plan.Layers))
	for _, layer := range plan.Layers {
		log.Info().Str("layer", layer.String()).Msg("installing layer")
		start := time.Now()
		status, err := p.backend.Install(ctx, layer)
		elapsed := time.Since(start)
		if err != nil {
			out := Outcome{Layer: layer, Status: StatusFailed, Duration: elapsed, Err: err}
			outcomes = append(outcomes, out)
			p.observe(out)
			p.countRun("failed")
			log.Error().Str("layer", layer.String()).Dur("dur", elapsed).Err(err).Msg("layer install failed, aborting")
			return outcomes, ErrLayerFailed(layer, err)
		}
		out := Outcome{Layer: layer, Status: status, Duration: elapsed}
		outcomes = append(outcomes, out)
		p.observe(out)
		log.Info().Str("layer", layer.String()).Str("status", status.String()).Dur("dur", elapsed).Msg("layer done")
	}
	p.countRun("success")
	return outcomes, nil
}

// ensureEnvironment walks Absent -> Creating -> Verifying -> Ready. A stale
// interpreter tears the environment down before recreation; a verification
// mismatch is fatal and no layers run.
func (p *Provisioner) ensureEnvironment(ctx context.Context, log zerolog.Logger) error {
	st, err := p.backend.Inspect(ctx)
	if err != nil {
		return err
	}
	if st.Exists {
		if p.matches(st.Version) {
			log.Info().Str("version", st.Version).Msg("environment up to date, reusing")
			return nil
		}
		log.Warn().
			Str("detected", st.Version).
			Str("required", p.required.Original()).
			Msg("stale environment, removing it and the lock file")
		if err := p.backend.Remove(ctx); err != nil {
			return err
		}
	}

	log.Info().Str("version", p.required.Original()).Msg("creating environment")
	if err := p.backend.Create(ctx, p.required.Original()); err != nil {
		return err
	}

	got, err := p.backend.Version(ctx)
	if err != nil {
		return err
	}
	if !p.matches(got) {
		// The package manager substituted another interpreter. Abort
		// before any resolution happens under it.
		return ErrVersionMismatch(p.required.Original(), got)
	}
	log.Info().Str("version", got).Msg("environment verified")
	return nil
}

// matches compares on major.minor: the docs pin "3.10" while interpreters
// report "3.10.x".
func (p *Provisioner) matches(detected string) bool {
	v, err := semver.NewVersion(detected)
	if err != nil {
		return false
	}
	return v.Major() == p.required.Major() && v.Minor() == p.required.Minor()
}

func (p *Provisioner) observe(o Outcome) {
	if p.metrics != nil {
		p.metrics.ObserveLayer(o)
	}
}

func (p *Provisioner) countRun(result string) {
	if p.metrics != nil {
		p.metrics.CountRun(result)
	}
}
