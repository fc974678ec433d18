package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"synthctl/internal/executil"
	"synthctl/internal/platform"
	"synthctl/internal/pyenv"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report host capabilities, tool availability, and environment state",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			profile, err := platform.Detect()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "host:    %s/%s\n", profile.OS, profile.Arch)
			fmt.Fprintf(out, "gpu:     present=%v driver=%v capable=%v\n", profile.HasGPU, profile.DriverPresent, profile.GPUCapable())

			for _, tool := range []string{"uv", "git"} {
				fmt.Fprintf(out, "tool:    %-4s %s\n", tool, presence(executil.Have(tool)))
			}

			env := pyenv.New(a.cfg, profile, a.log)
			st, err := env.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case !st.Exists:
				fmt.Fprintf(out, "env:     %s absent\n", a.cfg.EnvDir)
			case st.Version == "":
				fmt.Fprintf(out, "env:     %s present, interpreter unreadable (will be recreated)\n", a.cfg.EnvDir)
			default:
				fmt.Fprintf(out, "env:     %s python %s (required %s)\n", a.cfg.EnvDir, st.Version, a.cfg.PythonVersion)
			}
			return nil
		},
	}
}

func presence(ok bool) string {
	if ok {
		return "found"
	}
	return "MISSING"
}
