// Package cli implements the mld-iroha command line interface: proving
// and testing guarded changes against a local sqlite ledger, inspecting
// committed records, and validating declaration config.
package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Ledger  string // sqlite ledger path
	Account string // ledger domain account

	log logrus.FieldLogger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mld-iroha CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mld-iroha",
		Short: "Agreement proofs for replicated guarded changes",
		Long: `mld-iroha proves guarded changes by committing their canonical
post-change snapshot to an append-only ledger, and tests changes arriving
at other replicas against that commitment.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.log = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Ledger, "ledger", "ledger.db", "sqlite ledger path")
	cmd.PersistentFlags().StringVar(&opts.Account, "account", "", "ledger domain account (defaults to the protocol account)")

	cmd.AddCommand(NewProveCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// newLogger builds the diagnostic logger. Logs go to stderr so JSON
// output on stdout stays parseable.
func newLogger(w io.Writer, verbose bool) logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(w)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
