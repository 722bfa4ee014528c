package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "headinject",
		Short:         "Inject the Browser SDK snippet into HTML documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if c.verbose {
				c.log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(c.checkConfCmd(), c.injectCmd())
	return cmd
}
