package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/chanproto/internal/codegen"
	"github.com/roach88/chanproto/internal/compiler"
	"github.com/roach88/chanproto/internal/config"
	"github.com/roach88/chanproto/internal/emit"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Types     []string
	Output    string // "-" writes to stdout
	Package   string
	Failure   string
	ReplyDrop string
	StateType string
	Stringers bool
	Check     bool
	Config    string
}

// GenerateResult describes one generated file.
type GenerateResult struct {
	Source     string   `json:"source"`
	Output     string   `json:"output"`
	Package    string   `json:"package"`
	Interfaces []string `json:"interfaces"`
	Unchanged  bool     `json:"unchanged"`
}

// generateJob is one source to generate, from flags or a manifest.
type generateJob struct {
	source  string
	types   []string
	output  string
	pkg     string
	options emit.Options
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}
	defaults := emit.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "generate [source]",
		Short: "Generate message types, client stub and handler contract",
		Long: `Generate the message types, client stub and handler contract for the
interfaces declared in a Go file, Go package, CUE file or CUE directory.

Typically run from a go:generate directive next to the declaration:

	//go:generate go run github.com/roach88/chanproto/cmd/chanproto generate counter.go

With --config, every job of a YAML manifest is generated instead. With
--check, nothing is written and the command fails if a generated file is
out of date.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.Types, "type", nil, "interface names to generate (default: all marked with "+compiler.Directive+")")
	f.StringVarP(&opts.Output, "output", "o", "", "output file, - for stdout (default: <source>_chanproto.go)")
	f.StringVar(&opts.Package, "package", "", "package name of the generated file (default: the declaration's)")
	f.StringVar(&opts.Failure, "failure", string(defaults.Failure), "how generated code reports channel failures (panic|error)")
	f.StringVar(&opts.ReplyDrop, "reply-drop", string(defaults.ReplyDrop), "what dispatch does when a reply cannot be delivered (fatal|ignore)")
	f.StringVar(&opts.StateType, "state-type", "", "handler state type (default: generic type parameter)")
	f.BoolVar(&opts.Stringers, "stringer", defaults.Stringers, "generate a diagnostic String method per variant")
	f.BoolVar(&opts.Check, "check", false, "fail if a generated file is missing or out of date instead of writing it")
	f.StringVar(&opts.Config, "config", "", "YAML manifest of generate jobs")

	return cmd
}

func runGenerate(opts *GenerateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	jobs, err := generateJobs(opts, args, cmd)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_ = formatter.Error(ErrCodeBadFlag, exitErr.Message, nil)
			return exitErr
		}
		le := convertCompileError(err)
		return outputCommandError(formatter, le.Code, le.Detail())
	}

	var results []GenerateResult
	for _, job := range jobs {
		res, err := runGenerateJob(formatter, job, opts.Check)
		if err != nil {
			return err
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return outputGenerateSuccess(formatter, results, opts.Check)
}

// generateJobs builds the job list from a manifest or from flags.
func generateJobs(opts *GenerateOptions, args []string, cmd *cobra.Command) ([]generateJob, error) {
	if opts.Config != "" {
		if len(args) > 0 {
			return nil, NewExitError(ExitCommandError, "a source argument cannot be combined with --config")
		}
		for _, name := range []string{"type", "output", "package", "failure", "reply-drop", "state-type", "stringer"} {
			if cmd.Flags().Changed(name) {
				return nil, NewExitError(ExitCommandError, fmt.Sprintf("--%s cannot be combined with --config; set it in the manifest", name))
			}
		}
		m, err := config.LoadManifest(opts.Config)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeBadFlag, Message: err.Error()}
		}
		jobs := make([]generateJob, len(m.Jobs))
		for i, j := range m.Jobs {
			o, err := m.Options(j)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("jobs[%d]: %v", i, err)}
			}
			jobs[i] = generateJob{source: j.Source, types: j.Types, output: j.Output, pkg: m.Package(j), options: o}
		}
		return jobs, nil
	}

	if len(args) == 0 {
		return nil, NewExitError(ExitCommandError, "generate needs a source argument or --config")
	}
	o := emit.Options{
		Failure:   emit.FailureMode(opts.Failure),
		ReplyDrop: emit.ReplyDrop(opts.ReplyDrop),
		StateType: opts.StateType,
		Stringers: opts.Stringers,
	}
	if err := o.Validate(); err != nil {
		return nil, NewExitError(ExitCommandError, err.Error())
	}
	return []generateJob{{
		source:  args[0],
		types:   opts.Types,
		output:  opts.Output,
		pkg:     opts.Package,
		options: o,
	}}, nil
}

// runGenerateJob generates one file. It returns nil, nil when the source
// was written to stdout.
func runGenerateJob(formatter *OutputFormatter, job generateJob, check bool) (*GenerateResult, error) {
	loaded, err := LoadSource(job.source, job.types)
	if err != nil {
		le := convertCompileError(err)
		return nil, outputCommandError(formatter, le.Code, le.Detail())
	}
	if job.pkg != "" {
		for i := range loaded.Interfaces {
			loaded.Interfaces[i].Package = job.pkg
		}
	}

	gen, err := codegen.Generate(loaded.Interfaces, job.options)
	if err != nil {
		var diag *codegen.DiagnosticsError
		if errors.As(err, &diag) {
			return nil, outputValidationErrors(formatter, diag.Errors)
		}
		return nil, outputCommandError(formatter, ErrCodeBuildFailed, err.Error())
	}

	output := job.output
	if output == "" {
		output = DefaultOutput(loaded, gen.Package)
	}
	log := logrus.Fields{"source": job.source, "interfaces": strings.Join(gen.Interfaces, ","), "output": output}
	formatter.VerboseLog(log, "generated")

	if output == "-" {
		if check {
			formatter.Warn(log, "--check has nothing to compare against when writing to stdout")
		}
		if _, err := formatter.Writer.Write(gen.Source); err != nil {
			return nil, outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
		}
		return nil, nil
	}

	res := &GenerateResult{
		Source:     job.source,
		Output:     output,
		Package:    gen.Package,
		Interfaces: gen.Interfaces,
	}
	existing, err := os.ReadFile(output)
	if err != nil && !os.IsNotExist(err) {
		return nil, outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("reading %s: %v", output, err))
	}
	res.Unchanged = err == nil && bytes.Equal(existing, gen.Source)

	switch {
	case res.Unchanged:
		formatter.VerboseLog(log, "output up to date")
	case check:
		_ = formatter.Error(ErrCodeStale, fmt.Sprintf("%s is out of date; run chanproto generate", output), nil)
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%s is out of date", output))
	default:
		if err := os.WriteFile(output, gen.Source, 0o644); err != nil {
			return nil, outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", output, err))
		}
	}
	return res, nil
}

// DefaultOutput is the generated file for a source: next to a declaration
// file as <name>_chanproto.go, or inside a declaration directory as
// <package>_chanproto.go.
func DefaultOutput(loaded *LoadResult, pkg string) string {
	if loaded.IsDir {
		return filepath.Join(loaded.Path, pkg+"_chanproto.go")
	}
	base := strings.TrimSuffix(loaded.Path, filepath.Ext(loaded.Path))
	return base + "_chanproto.go"
}

// outputGenerateSuccess outputs the generated files.
func outputGenerateSuccess(formatter *OutputFormatter, results []GenerateResult, check bool) error {
	if formatter.Format == "json" {
		if results == nil {
			return nil
		}
		return formatter.Success(results)
	}

	for _, res := range results {
		switch {
		case check:
			fmt.Fprintf(formatter.Writer, "✓ %s up to date\n", res.Output)
		case res.Unchanged:
			fmt.Fprintf(formatter.Writer, "✓ %s unchanged (%s)\n", res.Output, strings.Join(res.Interfaces, ", "))
		default:
			fmt.Fprintf(formatter.Writer, "✓ Generated %s (%s)\n", res.Output, strings.Join(res.Interfaces, ", "))
		}
	}
	return nil
}
