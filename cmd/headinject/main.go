// Command headinject checks snippet configurations and injects snippets into
// HTML documents.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/zoobzio/headinject"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newCLI(stderr)
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}

	entry := c.log.WithField("command", cmd.Name()).WithError(err)
	var ce *headinject.ConfigError
	if errors.As(err, &ce) {
		entry = entry.WithField("code", ce.Code())
	}
	entry.Error("command failed")
	return 1
}

// cli holds state shared by the commands.
type cli struct {
	log     *logrus.Logger
	verbose bool
}

func newCLI(stderr io.Writer) *cli {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &cli{log: logger}
}
