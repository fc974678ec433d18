// Package cli wires the cobra command tree for synthctl.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"synthctl/internal/config"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	log zerolog.Logger
	cfg config.Config
}

// Main executes the CLI and returns the process exit code: 0 on full
// success, 1 on any configuration or installation error.
func Main(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "synthctl:", err.Error())
		return 1
	}
	return 0
}

// NewRootCmd constructs the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "synthctl",
		Short:         "Provision the speech-synthesis runtime environment",
		Long:          "synthctl bootstraps an isolated Python environment, installs the platform-appropriate dependency layers, and fetches pretrained model artifacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (.yaml/.toml/.json); built-in defaults when omitted")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		lvl, err := zerolog.ParseLevel(a.logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q", a.logLevel)
		}
		a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(lvl).With().Timestamp().Logger()
		cfg, err := config.LoadOrDefault(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	root.AddCommand(newProvisionCmd(a), newDoctorCmd(a), newModelsCmd(a), newVersionCmd())
	return root
}
