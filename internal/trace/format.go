package trace

import (
	"fmt"
	"regexp"
)

// Format describes one trace source's line format: a fixed line-start tag
// plus the key names of the instruction-counter and program-counter fields.
// Fields are matched as individual whitespace-separated key=value tokens,
// so they do not have to be adjacent on the line.
type Format struct {
	Name       string // "reference" or "candidate" for the built-ins
	Tag        string // literal prefix identifying instruction lines
	CounterKey string // key of the decimal instruction counter
	PCKey      string // key of the hexadecimal program counter

	counterRe *regexp.Regexp
	pcRe      *regexp.Regexp
}

// NewFormat builds a Format and compiles its field patterns.
// All four parts are required.
func NewFormat(name, tag, counterKey, pcKey string) (Format, error) {
	if name == "" || tag == "" || counterKey == "" || pcKey == "" {
		return Format{}, fmt.Errorf("format %q: name, tag, counter key and pc key are all required", name)
	}

	f := Format{
		Name:       name,
		Tag:        tag,
		CounterKey: counterKey,
		PCKey:      pcKey,
	}

	var err error
	f.counterRe, err = regexp.Compile(`(?:^|\s)` + regexp.QuoteMeta(counterKey) + `=(\d+)`)
	if err != nil {
		return Format{}, fmt.Errorf("format %q: counter pattern: %w", name, err)
	}
	f.pcRe, err = regexp.Compile(`(?:^|\s)` + regexp.QuoteMeta(pcKey) + `=([0-9A-Fa-f]+)`)
	if err != nil {
		return Format{}, fmt.Errorf("format %q: pc pattern: %w", name, err)
	}

	return f, nil
}

// MustFormat is NewFormat for the package-level built-ins.
func MustFormat(name, tag, counterKey, pcKey string) Format {
	f, err := NewFormat(name, tag, counterKey, pcKey)
	if err != nil {
		panic(err)
	}
	return f
}

// Built-in descriptors for the two known trace sources.
//
// The reference emulator logs every instruction boundary it sees,
// including prefix bytes, as "[inst] ... i=<n> ... PC=<hex> ...".
// The candidate emulator fuses prefix bytes into the following opcode
// and logs "[snapshot] ... step=<n> ... PC=<hex> ...".
var (
	Reference = MustFormat("reference", "[inst]", "i", "PC")
	Candidate = MustFormat("candidate", "[snapshot]", "step", "PC")
)
