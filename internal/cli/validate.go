package cli

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/chanproto/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Interfaces []string                   `json:"interfaces,omitempty"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "validate <source>",
		Short: "Validate interface declarations without generating code",
		Long: `Validate interface declarations without generating code.

Reports every problem at once: invalid identifiers and types, duplicate
operations, and names that would collide once generated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], types, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&types, "type", nil, "interface names to validate (default: all marked with "+compiler.Directive+")")

	return cmd
}

func runValidate(opts *RootOptions, source string, types []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadSource(source, types)
	if err != nil {
		le := convertCompileError(err)
		return outputCommandError(formatter, le.Code, le.Detail())
	}

	var names []string
	for _, spec := range loaded.Interfaces {
		formatter.VerboseLog(logrus.Fields{"interface": spec.Name, "operations": len(spec.Operations)}, "validating interface")
		names = append(names, spec.Name)
	}

	if errs := compiler.ValidateSet(loaded.Interfaces); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}
	return outputValidateSuccess(formatter, names)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Interfaces: names})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d interface(s) valid\n", len(names))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
// Validation failures exit with code 1.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
