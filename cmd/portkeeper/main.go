// Portkeeper audits and rebuilds access-port configuration on Cisco IOS and
// DmOS switches.
//
//	portkeeper audit [--switches FILE] [--interfaces FILE] [--workers N]
//	portkeeper modify --switch NAME --template FILE [--interfaces FILE] [--write]
//	portkeeper history [--limit N] [--run ID]
//
// Changes are simulated unless --write is given.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/infrastructure/config"
	"github.com/carlosrabelo/portkeeper/infrastructure/logging"
	"github.com/carlosrabelo/portkeeper/platform"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// app holds state shared by the subcommands once the root has run.
type app struct {
	configPath string
	verbosity  int
	write      bool

	cfg    *config.Config
	log    *logrus.Logger
	out    io.Writer
	getenv func(string) string
	prompt config.Prompter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout, getenv: os.Getenv}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "portkeeper",
		Short:             "Access-port compliance audit and reconfiguration",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Long: `Portkeeper checks switch access ports against a baseline profile and
rebuilds them from a template while keeping description, access VLAN and
port-security maximum.

Changes are simulated by default. Use --write to apply them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.init()
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (default: search ./, ~/.config/portkeeper/, /etc/portkeeper/)")
	root.PersistentFlags().IntVarP(&a.verbosity, "verbose", "v", 0, "Verbosity level: 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output")
	root.PersistentFlags().BoolVarP(&a.write, "write", "w", false, "Apply changes (disables sandbox mode)")

	root.AddCommand(newAuditCmd(a), newModifyCmd(a), newHistoryCmd(a), newVersionCmd(a))
	return root
}

// init loads configuration and sets up logging.
func (a *app) init() error {
	if a.verbosity < 0 || a.verbosity > 3 {
		return fmt.Errorf("--verbose must be 0, 1, 2, or 3")
	}
	path, err := config.Locate(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path, a.verbosity)
	if err != nil {
		return err
	}
	log, err := logging.Setup(cfg.Log, a.verbosity)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if path == "" {
		log.Warnf("no %s found, using defaults", config.FileName)
	} else {
		log.Debugf("configuration file found at %s", path)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) mode() entities.RunMode {
	if a.write {
		return entities.ModeApply
	}
	return entities.ModeSimulate
}

func (a *app) prompter() config.Prompter {
	if a.prompt != nil {
		return a.prompt
	}
	return config.NewTermPrompter()
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "portkeeper %s (built %s)\n", version, buildTime)
			var names []string
			for _, driver := range platform.Available() {
				names = append(names, driver.Name())
			}
			fmt.Fprintf(out, "platforms: %s\n", strings.Join(names, ", "))
		},
	}
}
