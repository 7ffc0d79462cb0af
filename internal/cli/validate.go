package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m-ld/m-ld-iroha/internal/registry"
)

// ValidationResult holds declaration validation results.
type ValidationResult struct {
	Valid        bool                   `json:"valid"`
	Declarations []registry.Declaration `json:"declarations,omitempty"`
	Errors       []ValidationError      `json:"errors,omitempty"`
}

// ValidationError is one declaration load failure.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <declarations-dir>",
		Short: "Validate CUE agreement declarations",
		Long: `Validate loads the CUE declaration config in a directory, collects
every error, and reports which agreement extensions it declares.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := formatter(rootOpts, cmd.OutOrStdout())

			decls, errs := registry.LoadDeclarations(args[0], registry.LoadModeCollectAll)
			if len(errs) == 0 {
				text := fmt.Sprintf("✓ %d declaration(s) valid", len(decls))
				for _, d := range decls {
					text += fmt.Sprintf("\n  %s: %s/%s", d.ID, d.Module, d.Class)
				}
				return f.Success(ValidationResult{Valid: true, Declarations: decls}, text)
			}

			result := ValidationResult{Valid: false}
			for _, err := range errs {
				var loadErr *registry.LoadError
				if errors.As(err, &loadErr) {
					result.Errors = append(result.Errors, ValidationError{Code: loadErr.Code, Message: loadErr.Message})
				} else {
					result.Errors = append(result.Errors, ValidationError{Code: "D000", Message: err.Error()})
				}
			}
			if err := f.Error("invalid", fmt.Sprintf("%d error(s) in %s", len(errs), args[0]), result.Errors); err != nil {
				return err
			}
			return &ExitError{Code: ExitFailure}
		},
	}
	return cmd
}
