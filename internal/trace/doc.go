// Package trace turns raw emulator trace logs into ordered records.
//
// A trace file is a plain text log in which only some lines describe
// executed instructions. Each instruction line starts with a fixed tag
// and carries an instruction counter and a program counter as
// whitespace-separated key=value tokens. Everything else on the line,
// and every line without the tag, is noise and is skipped silently.
//
// The two supported sources use different tags and counter keys but are
// otherwise identical, so extraction is driven by a Format descriptor
// rather than duplicated per source.
package trace
