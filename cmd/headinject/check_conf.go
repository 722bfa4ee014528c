package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) checkConfCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check-conf <file>",
		Short: "Validate a configuration and print its snippet",
		Long: `Validate a configuration file and print the snippet it produces.

The format is taken from the file extension (.json, .yaml, .yml, .msgpack,
.mp, .bson) unless --format is given. On failure the error code is logged:
1 parse, 2 major version, 3 site, 4 rate, 5 mandatory setting.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := c.loadSnippet(args[0], format)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), snippet.String())
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "configuration format: json, yaml, msgpack or bson")

	return cmd
}
