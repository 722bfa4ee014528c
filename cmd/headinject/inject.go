package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zoobzio/headinject"
)

func (c *cli) injectCmd() *cobra.Command {
	var (
		config string
		format string
		in     string
		out    string
		buffer int
	)

	cmd := &cobra.Command{
		Use:   "inject --config <file>",
		Short: "Inject the snippet into an HTML document",
		Long: `Copy an HTML document, inserting the configured snippet before its first
</head> tag. Documents without the tag are padded with spaces so the output
is always longer than the input by the snippet length.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snippet, err := c.loadSnippet(config, format)
			if err != nil {
				return err
			}

			src := cmd.InOrStdin()
			if in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}

			dst := cmd.OutOrStdout()
			var file *os.File
			if out != "-" {
				file, err = os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				dst = file
			}

			written, err := headinject.Inject(cmd.Context(), dst, src, snippet.Bytes(), headinject.WithBufferSize(buffer))
			if err != nil {
				return err
			}
			if file != nil {
				if err := file.Close(); err != nil {
					return err
				}
			}

			c.log.WithFields(logrus.Fields{
				"bytes_out":      written,
				"snippet_length": snippet.Length(),
			}).Info("Injected document")
			return nil
		},
	}

	cmd.Flags().StringVarP(&config, "config", "c", "", "configuration file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "configuration format: json, yaml, msgpack or bson")
	cmd.Flags().StringVarP(&in, "in", "i", "-", "input document, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output document, - for stdout")
	cmd.Flags().IntVar(&buffer, "buffer", headinject.DefaultBufferSize, "read buffer size in bytes")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
