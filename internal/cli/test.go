package cli

import (
	"github.com/spf13/cobra"

	"github.com/m-ld/m-ld-iroha/internal/state"
)

// TestResult is the JSON payload of a test run.
type TestResult struct {
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Passed    bool   `json:"passed"`
	Retryable bool   `json:"retryable"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		statePath string
		deltaPath string
		token     string
		principal string
	)

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test an incoming guarded change against its ledger commitment",
		Long: `Test re-derives the post-change snapshot from this replica's state,
fetches the commitment the prover wrote under the change's proof token,
and checks that the committed principal matches and that every locally
observed fact is corroborated.

Exit code 0 means the change agreed, 1 a terminal failure, 2 a retryable
outcome (the proof may not have reached the ledger yet).`,
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

			proto, client, err := openProtocol(rootOpts)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open ledger", Err: err}
			}
			defer client.Close()

			var pv state.ProofValue
			if token != "" {
				pv = state.TokenValue(token)
			}
			outcome := proto.Test(cmd.Context(), rs, delta, pv, state.Principal{ID: principal})

			result := TestResult{
				Code:      string(outcome.Code),
				Reason:    outcome.Reason,
				Passed:    outcome.Passed(),
				Retryable: outcome.Retryable(),
			}
			if err := f.Success(result, outcome.String()); err != nil {
				return err
			}
			// The outcome is already on stdout; the error only carries
			// the exit code.
			switch {
			case outcome.Passed():
				return nil
			case outcome.Retryable():
				return &ExitError{Code: ExitCommandError}
			default:
				return &ExitError{Code: ExitFailure}
			}
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "replica state fixture (YAML)")
	cmd.Flags().StringVar(&deltaPath, "delta", "", "guarded change fixture (YAML)")
	cmd.Flags().StringVar(&token, "proof", "", "proof token carried by the change")
	cmd.Flags().StringVar(&principal, "principal", "", "principal the change is attributed to")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("delta")

	return cmd
}
