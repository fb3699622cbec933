package compatibility

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Baseline is a set of previously accepted findings, keyed by kind and
// location. Its text form has one "Kind location" pair per line; blank
// lines and lines starting with // are ignored.
type Baseline struct {
	entries map[string]bool
}

func baselineKey(k Kind, location string) string {
	return k.String() + " " + location
}

// NewBaseline accepts every finding that is not informational.
func NewBaseline(findings []Incompatibility) *Baseline {
	b := &Baseline{entries: make(map[string]bool)}
	for _, f := range findings {
		if f.Kind.IsInformational() {
			continue
		}
		b.entries[baselineKey(f.Kind, f.Location)] = true
	}
	return b
}

// ParseBaseline reads the text form of a baseline.
func ParseBaseline(r io.Reader) (*Baseline, error) {
	b := &Baseline{entries: make(map[string]bool)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		kindText, location, ok := strings.Cut(line, " ")
		if !ok || strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("baseline line %d: expected 'Kind location'", lineNo)
		}
		k, err := ParseKind(kindText)
		if err != nil {
			return nil, fmt.Errorf("baseline line %d: %w", lineNo, err)
		}
		b.entries[baselineKey(k, strings.TrimSpace(location))] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

// LoadBaseline reads a baseline file.
func LoadBaseline(path string) (*Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBaseline(f)
}

// Contains reports whether the finding was accepted.
func (b *Baseline) Contains(f Incompatibility) bool {
	return b.entries[baselineKey(f.Kind, f.Location)]
}

// Len returns the number of accepted findings.
func (b *Baseline) Len() int {
	return len(b.entries)
}

// WriteTo writes the baseline in sorted text form.
func (b *Baseline) WriteTo(w io.Writer) (int64, error) {
	lines := make([]string, 0, len(b.entries))
	for key := range b.entries {
		lines = append(lines, key)
	}
	sort.Strings(lines)

	bw := bufio.NewWriter(w)
	var n int64
	written, _ := bw.WriteString("// Accepted API incompatibilities. One 'Kind location' per line.\n")
	n += int64(written)
	for _, line := range lines {
		written, _ = bw.WriteString(line + "\n")
		n += int64(written)
	}
	return n, bw.Flush()
}
