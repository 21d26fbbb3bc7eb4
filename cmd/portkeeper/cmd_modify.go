package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carlosrabelo/portkeeper/application/services"
	"github.com/carlosrabelo/portkeeper/infrastructure/config"
	"github.com/carlosrabelo/portkeeper/infrastructure/resolver"
	"github.com/carlosrabelo/portkeeper/infrastructure/transport"
)

type modifyOptions struct {
	switchName     string
	templateFile   string
	interfacesFile string
	increment      int
}

func newModifyCmd(a *app) *cobra.Command {
	opts := &modifyOptions{}
	cmd := &cobra.Command{
		Use:   "modify",
		Short: "Rebuild access ports from a template",
		Long: `Modify reads each listed interface, keeps its description, access VLAN and
port-security maximum (raised by --increment), and rebuilds it from the
template. The configuration is saved once when at least one port changed.

Without --write the commands are only printed as SANDBOX lines.

Examples:
  portkeeper modify -s sw-2f.example.net -t template.txt -i ports.txt
  portkeeper modify -s sw-2f.example.net -t template.txt -i ports.txt --write`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("increment") {
				opts.increment = a.cfg.MaxMACIncrement()
			}
			return a.runModify(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.switchName, "switch", "s", "", "Switch target (required)")
	cmd.Flags().StringVarP(&opts.templateFile, "template", "t", "", "Template file, one command per line (required)")
	cmd.Flags().StringVarP(&opts.interfacesFile, "interfaces", "i", "", "File listing interfaces, one per line (default: discover)")
	cmd.Flags().IntVar(&opts.increment, "increment", config.DefaultIncrement, "Added to the preserved port-security maximum")
	_ = cmd.MarkFlagRequired("switch")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) runModify(cmd *cobra.Command, opts *modifyOptions) error {
	if opts.increment < 0 {
		return fmt.Errorf("--increment must not be negative")
	}
	template, err := config.ReadLines(opts.templateFile)
	if err != nil {
		return err
	}
	if len(template) == 0 {
		return fmt.Errorf("template %s has no commands", opts.templateFile)
	}
	var interfaces []string
	if opts.interfacesFile != "" {
		if interfaces, err = config.ReadList(opts.interfacesFile); err != nil {
			return err
		}
	}

	if err := a.cfg.ResolveCredentials(a.getenv, a.prompter()); err != nil {
		return err
	}
	switches := a.cfg.Select([]string{opts.switchName})

	run := services.RunConfig{
		Mode:       a.mode(),
		Template:   template,
		Interfaces: interfaces,
		Increment:  opts.increment,
		Workers:    1,
		Timeout:    a.cfg.Timeout,
	}

	opener := transport.NewOpener()
	defer opener.Close()
	orch := services.NewOrchestrator(opener, resolver.NewDNS(), nil, a.log)
	result := orch.Reconfigure(cmd.Context(), switches, run)
	printReconfigure(a.out, result)

	if failed := result.Summary().FailedSwitches; failed > 0 {
		return fmt.Errorf("%d of %d switches failed", failed, len(switches))
	}
	return nil
}
