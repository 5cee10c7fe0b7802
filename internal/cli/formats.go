package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hunterchen7/tracediff/internal/trace"
)

// FormatConfig is the result of loading a formats file: one descriptor
// per trace side, plus an optional lookahead override (0 means "not
// set").
type FormatConfig struct {
	Reference trace.Format
	Candidate trace.Format
	Lookahead int
}

// FormatsError represents an error in the formats file.
type FormatsError struct {
	Code    string
	Message string
}

func (e *FormatsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// formatSpec is one side's descriptor in the YAML file. Omitted fields
// fall back to the built-in descriptor for that side.
type formatSpec struct {
	Tag        string `yaml:"tag"`
	CounterKey string `yaml:"counter_key"`
	PCKey      string `yaml:"pc_key"`
}

// formatsFile is the YAML document layout:
//
//	reference:
//	  tag: "[inst]"
//	  counter_key: i
//	  pc_key: PC
//	candidate:
//	  tag: "[snapshot]"
//	  counter_key: step
//	  pc_key: PC
//	lookahead: 2
type formatsFile struct {
	Reference *formatSpec `yaml:"reference"`
	Candidate *formatSpec `yaml:"candidate"`
	Lookahead int         `yaml:"lookahead"`
}

// LoadFormats reads a YAML format-descriptor file. Omitted sections and
// fields keep the built-in values, so a file may override as little as
// a single tag.
func LoadFormats(path string) (FormatConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FormatConfig{}, &FormatsError{Code: ErrCodeFormatsFile, Message: fmt.Sprintf("reading formats file: %v", err)}
	}

	var file formatsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return FormatConfig{}, &FormatsError{Code: ErrCodeFormatsFile, Message: fmt.Sprintf("parsing formats file: %v", err)}
	}

	if file.Lookahead < 0 {
		return FormatConfig{}, &FormatsError{Code: ErrCodeFormatsFile, Message: fmt.Sprintf("lookahead must be positive, got %d", file.Lookahead)}
	}

	cfg := FormatConfig{
		Reference: trace.Reference,
		Candidate: trace.Candidate,
		Lookahead: file.Lookahead,
	}

	if file.Reference != nil {
		cfg.Reference, err = buildFormat(trace.Reference, file.Reference)
		if err != nil {
			return FormatConfig{}, &FormatsError{Code: ErrCodeFormatsFile, Message: err.Error()}
		}
	}
	if file.Candidate != nil {
		cfg.Candidate, err = buildFormat(trace.Candidate, file.Candidate)
		if err != nil {
			return FormatConfig{}, &FormatsError{Code: ErrCodeFormatsFile, Message: err.Error()}
		}
	}

	return cfg, nil
}

// buildFormat merges a YAML descriptor over the built-in defaults for
// that side.
func buildFormat(defaults trace.Format, spec *formatSpec) (trace.Format, error) {
	tag := spec.Tag
	if tag == "" {
		tag = defaults.Tag
	}
	counterKey := spec.CounterKey
	if counterKey == "" {
		counterKey = defaults.CounterKey
	}
	pcKey := spec.PCKey
	if pcKey == "" {
		pcKey = defaults.PCKey
	}

	return trace.NewFormat(defaults.Name, tag, counterKey, pcKey)
}
