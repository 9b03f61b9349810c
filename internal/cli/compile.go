package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string   // IR output file path
	Types  []string // interfaces to compile; empty = directive-marked
}

// CompilationResult is the IR of every interface in one source.
type CompilationResult struct {
	IRVersion        string              `json:"ir_version"`
	GeneratorVersion string              `json:"generator_version"`
	Source           string              `json:"source"`
	Interfaces       []CompiledInterface `json:"interfaces"`
}

// CompiledInterface is an interface spec with its derived identity.
type CompiledInterface struct {
	ir.InterfaceSpec
	Kinds       []ir.SignatureKind `json:"kinds"`
	Fingerprint string             `json:"fingerprint"`
	ProtocolID  string             `json:"protocol_id"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <source>",
		Short: "Compile interface declarations to IR",
		Long: `Compile interface declarations from a Go file, Go package, CUE file or
CUE directory into IR.

Every operation is classified into its signature kind, and every interface
gets a fingerprint and protocol ID derived from its canonical form.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write IR JSON to this file")
	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "interface names to compile (default: all marked with "+compiler.Directive+")")

	return cmd
}

func runCompile(opts *CompileOptions, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadSource(source, opts.Types)
	if err != nil {
		le := convertCompileError(err)
		return outputCommandError(formatter, le.Code, le.Detail())
	}
	formatter.VerboseLog(logrus.Fields{"source": source, "front_end": loaded.Kind, "interfaces": len(loaded.Interfaces)}, "loaded declarations")

	if errs := compiler.ValidateSet(loaded.Interfaces); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result, err := buildCompilationResult(source, loaded.Interfaces)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	for _, iface := range result.Interfaces {
		formatter.VerboseLog(logrus.Fields{
			"interface":   iface.Name,
			"operations":  len(iface.Operations),
			"fingerprint": iface.Fingerprint,
		}, "compiled interface")
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog(logrus.Fields{"output": opts.Output}, "wrote IR")
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

func buildCompilationResult(source string, specs []ir.InterfaceSpec) (*CompilationResult, error) {
	result := &CompilationResult{IRVersion: ir.IRVersion, GeneratorVersion: ir.GeneratorVersion, Source: source}
	for i := range specs {
		spec := &specs[i]
		fp, err := ir.Fingerprint(spec)
		if err != nil {
			return nil, fmt.Errorf("fingerprinting %s: %w", spec.Name, err)
		}
		id, err := ir.ProtocolID(spec)
		if err != nil {
			return nil, fmt.Errorf("protocol ID of %s: %w", spec.Name, err)
		}
		kinds := make([]ir.SignatureKind, len(spec.Operations))
		for j, op := range spec.Operations {
			kinds[j] = ir.Classify(op)
		}
		result.Interfaces = append(result.Interfaces, CompiledInterface{
			InterfaceSpec: *spec,
			Kinds:         kinds,
			Fingerprint:   fp,
			ProtocolID:    id.String(),
		})
	}
	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d interface(s)\n\n", len(result.Interfaces))
	for _, iface := range result.Interfaces {
		fmt.Fprintf(w, "%s (package %s, %s): %d operation(s)\n",
			iface.Name, iface.Package, iface.Visibility, len(iface.Operations))
		for j, op := range iface.Operations {
			fmt.Fprintf(w, "  %-40s %s\n", signature(op), iface.Kinds[j])
		}
		fmt.Fprintf(w, "  fingerprint %s\n", iface.Fingerprint)
		fmt.Fprintf(w, "  protocol    %s\n\n", iface.ProtocolID)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote IR to %s\n", outputFile)
	}
	return nil
}

// signature renders an operation as it would be declared in Go.
func signature(op ir.OperationSpec) string {
	s := op.Name + "("
	for i, p := range op.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + " " + p.Type
	}
	s += ")"
	if op.HasReturn() {
		s += " " + op.Returns
	}
	return s
}

// outputCommandError outputs a single command error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writeIRToFile writes the compilation result as indented JSON.
// Canonical JSON is used only for fingerprints.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
