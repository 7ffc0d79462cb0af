package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/proof"
)

// ProveResult is the JSON payload of a successful prove.
type ProveResult struct {
	Token   string `json:"token"`
	Account string `json:"account"`
}

// NewProveCommand creates the prove command.
func NewProveCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		statePath string
		deltaPath string
		principal string
		keyHex    string
	)

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove a guarded change and print its proof token",
		Long: `Prove builds the canonical post-change snapshot of the entities a
change touched, commits it to the ledger under a fresh token, and prints
the token. Attach the token to the change as its proof value before
propagating it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd.OutOrStdout())

			rs, err := LoadStateFixture(statePath)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "load state", Err: err}
			}
			delta, err := LoadDeltaFixture(deltaPath)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "load delta", Err: err}
			}
			p, err := ParsePrincipal(principal, keyHex)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "principal", Err: err}
			}

			proto, client, err := openProtocol(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open ledger", Err: err}
			}
			defer client.Close()

			token, err := proto.Prove(cmd.Context(), rs, delta, p)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "prove", Err: err}
			}

			rootOpts.log.WithField("token", token).Debug("change proved")
			return f.Success(ProveResult{Token: token, Account: accountName(rootOpts)}, token)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "replica state fixture (YAML)")
	cmd.Flags().StringVar(&deltaPath, "delta", "", "guarded change fixture (YAML)")
	cmd.Flags().StringVar(&principal, "principal", "", "acting principal identity")
	cmd.Flags().StringVar(&keyHex, "key", "", "hex ed25519 seed or private key")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("delta")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

// openProtocol opens the sqlite ledger named by the global flags and
// wraps it in a protocol instance.
func openProtocol(opts *RootOptions) (*proof.Protocol, *ledger.SQLiteClient, error) {
	client, err := ledger.OpenSQLite(opts.Ledger, ledger.WithLogger(opts.log))
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", opts.Ledger, err)
	}
	var protoOpts []proof.Option
	if opts.Account != "" {
		protoOpts = append(protoOpts, proof.WithAccount(opts.Account))
	}
	return proof.New(client, protoOpts...), client, nil
}

func accountName(opts *RootOptions) string {
	if opts.Account != "" {
		return opts.Account
	}
	return proof.DefaultAccount
}
