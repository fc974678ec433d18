package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"synthctl/internal/platform"
	"synthctl/internal/provision"
	"synthctl/internal/pyenv"
)

func newProvisionCmd(a *app) *cobra.Command {
	var (
		tier           int
		layerNames     []string
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Ensure the environment exists and install dependency layers",
		Example: "  synthctl provision                 # prompt for a tier on GPU hosts\n" +
			"  synthctl provision --tier 2        # scripted full install\n" +
			"  synthctl provision --layers core,gpu,vllm",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := platform.Detect()
			if err != nil {
				return err
			}
			a.log.Info().
				Str("os", string(profile.OS)).
				Str("arch", profile.Arch).
				Bool("gpu", profile.HasGPU).
				Bool("driver", profile.DriverPresent).
				Msg("host profile")

			plan, err := a.resolvePlan(profile, layerNames, tier, nonInteractive)
			if err != nil {
				return err
			}

			backend := pyenv.New(a.cfg, profile, a.log)
			prov, err := provision.New(backend, a.cfg.PythonVersion, a.log)
			if err != nil {
				return err
			}
			var metrics *provision.Metrics
			if a.cfg.MetricsFile != "" {
				metrics = provision.NewMetrics()
				prov.SetMetrics(metrics)
			}

			outcomes, runErr := prov.Provision(cmd.Context(), plan)
			printOutcomes(cmd.OutOrStdout(), outcomes)
			if metrics != nil {
				if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
					a.log.Warn().Str("path", a.cfg.MetricsFile).Err(err).Msg("could not write metrics textfile")
				}
			}
			return runErr
		},
	}
	cmd.Flags().IntVar(&tier, "tier", 0, "Installation tier on GPU hosts: 1 (standard) or 2 (full)")
	cmd.Flags().StringSliceVar(&layerNames, "layers", nil, "Explicit layer list (core,gpu,vllm,wheels); overrides --tier")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; requires --tier or --layers on GPU hosts")
	return cmd
}

// resolvePlan turns the flag/prompt inputs into a validated plan. Explicit
// layers win over tiers; macOS has a single plan shape and never prompts.
func (a *app) resolvePlan(profile platform.Profile, layerNames []string, tier int, nonInteractive bool) (provision.Plan, error) {
	if len(layerNames) > 0 {
		layers := make([]provision.Layer, 0, len(layerNames))
		for _, name := range layerNames {
			l, err := provision.ParseLayer(name)
			if err != nil {
				return provision.Plan{}, provision.ErrInvalidSelection(err.Error())
			}
			layers = append(layers, l)
		}
		return provision.BuildPlan(profile, layers)
	}
	if profile.OS == platform.Darwin {
		return provision.PlanForTier(profile, provision.TierStandard)
	}
	if tier == 0 {
		if nonInteractive {
			return provision.Plan{}, provision.ErrInvalidSelection("tier required in non-interactive mode (--tier 1|2)")
		}
		t, err := promptTier()
		if err != nil {
			return provision.Plan{}, err
		}
		tier = t
	}
	return provision.PlanForTier(profile, provision.Tier(tier))
}

func promptTier() (int, error) {
	tier := int(provision.TierStandard)
	err := huh.NewSelect[int]().
		Title("Select installation tier").
		Options(
			huh.NewOption("1) Standard: core + GPU acceleration", int(provision.TierStandard)),
			huh.NewOption("2) Full: core + GPU + vLLM + bundled wheels", int(provision.TierFull)),
		).
		Value(&tier).
		Run()
	return tier, err
}

const roundTo = 10 * time.Millisecond

func printOutcomes(w io.Writer, outcomes []provision.Outcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%-7s %-8s %s (%v)\n", o.Layer, o.Status, o.Duration.Round(roundTo), o.Err)
			continue
		}
		fmt.Fprintf(w, "%-7s %-8s %s\n", o.Layer, o.Status, o.Duration.Round(roundTo))
	}
}
