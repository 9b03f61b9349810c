// Package config loads generation manifests: YAML files listing several
// generate jobs so one go:generate line can regenerate a whole module.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chanproto/internal/emit"
)

// Manifest is a list of generate jobs.
type Manifest struct {
	// Defaults apply to every job that leaves a setting empty.
	Defaults Settings `yaml:"defaults,omitempty"`

	Jobs []Job `yaml:"jobs"`
}

// Job generates one file from one declaration source.
type Job struct {
	// Source is a Go file, a Go package directory, or a CUE file or
	// directory. Relative to the manifest.
	Source string `yaml:"source"`

	// Types selects interfaces by name. Empty selects every interface
	// marked with the //chanproto:protocol directive, or every CUE
	// interface.
	Types []string `yaml:"types,omitempty"`

	// Output is the generated file. Relative to the manifest. Empty derives
	// it from Source.
	Output string `yaml:"output,omitempty"`

	Settings `yaml:",inline"`
}

// Settings are the code shape options a job or the defaults may set.
type Settings struct {
	Package   string `yaml:"package,omitempty"`
	Failure   string `yaml:"failure,omitempty"`
	ReplyDrop string `yaml:"reply_drop,omitempty"`
	StateType string `yaml:"state_type,omitempty"`
	Stringers *bool  `yaml:"stringers,omitempty"`
}

// LoadManifest reads a manifest, rejecting unknown fields, and resolves job
// paths relative to the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i := range m.Jobs {
		job := &m.Jobs[i]
		if job.Source != "" && !filepath.IsAbs(job.Source) {
			job.Source = filepath.Join(base, job.Source)
		}
		if job.Output != "" && !filepath.IsAbs(job.Output) {
			job.Output = filepath.Join(base, job.Output)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Jobs) == 0 {
		return fmt.Errorf("jobs list is required and must be non-empty")
	}
	if _, err := m.Defaults.apply(emit.DefaultOptions()); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	outputs := make(map[string]int)
	for i, job := range m.Jobs {
		if job.Source == "" {
			return fmt.Errorf("jobs[%d]: source is required", i)
		}
		if _, err := m.Options(job); err != nil {
			return fmt.Errorf("jobs[%d]: %w", i, err)
		}
		if job.Output == "" {
			continue
		}
		if prev, ok := outputs[job.Output]; ok {
			return fmt.Errorf("jobs[%d]: output %s is also written by jobs[%d]", i, job.Output, prev)
		}
		outputs[job.Output] = i
	}
	return nil
}

// Options resolves the emit options of job: job settings over manifest
// defaults over emit.DefaultOptions.
func (m *Manifest) Options(job Job) (emit.Options, error) {
	opts, err := m.Defaults.apply(emit.DefaultOptions())
	if err != nil {
		return opts, err
	}
	return job.Settings.apply(opts)
}

// Package returns the package override for job, or "".
func (m *Manifest) Package(job Job) string {
	if job.Package != "" {
		return job.Package
	}
	return m.Defaults.Package
}

func (s Settings) apply(opts emit.Options) (emit.Options, error) {
	if s.Failure != "" {
		opts.Failure = emit.FailureMode(s.Failure)
	}
	if s.ReplyDrop != "" {
		opts.ReplyDrop = emit.ReplyDrop(s.ReplyDrop)
	}
	if s.StateType != "" {
		opts.StateType = s.StateType
	}
	if s.Stringers != nil {
		opts.Stringers = *s.Stringers
	}
	return opts, opts.Validate()
}
