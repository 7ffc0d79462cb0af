package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-ld/m-ld-iroha/internal/ledger"
	"github.com/m-ld/m-ld-iroha/internal/proof"
	"github.com/m-ld/m-ld-iroha/internal/state"
)

// ShowResult is the JSON payload of a show.
type ShowResult struct {
	Token      string          `json:"token"`
	Account    string          `json:"account"`
	Principal  string          `json:"principal"`
	Commitment json.RawMessage `json:"commitment"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <token>",
		Short: "Decode and print the commitment stored under a proof token",
		Args:  cobra.ExactArgs(1),

		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd.OutOrStdout())
			token := args[0]
			if !state.IsToken(token) {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("%q is not a proof token", token)}
			}

			client, err := ledger.OpenSQLite(rootOpts.Ledger, ledger.WithLogger(rootOpts.log))
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "open ledger", Err: err}
			}
			defer client.Close()

			account := accountName(rootOpts)
			value, found, err := client.Query(cmd.Context(), account, token, ledger.Credential{})
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "query ledger", Err: err}
			}
			if !found {
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("no record under %s/%s", account, token)}
			}

			canonical, err := ledger.Decode(value)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "decode record", Err: err}
			}
			c, err := proof.UnmarshalCommitment(canonical)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "parse commitment", Err: err}
			}

			result := ShowResult{
				Token:      token,
				Account:    account,
				Principal:  c.PrincipalID,
				Commitment: json.RawMessage(canonical),
			}
			return f.Success(result, prettyCommitment(c, canonical))
		},
	}
	return cmd
}

// prettyCommitment renders a commitment for text output.
func prettyCommitment(c proof.Commitment, canonical []byte) string {
	var pretty any
	if err := json.Unmarshal(canonical, &pretty); err == nil {
		if out, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			return fmt.Sprintf("principal: %s\n%s", c.PrincipalID, out)
		}
	}
	return fmt.Sprintf("principal: %s\n%s", c.PrincipalID, canonical)
}
