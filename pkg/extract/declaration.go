package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// separator splits the project name from its dependency list.
	separator = ":"

	// listSeparator splits individual dependency names.
	listSeparator = ","

	// maxLineSize bounds a single declaration line. Large trees produce long
	// RUNTIME_DEPS lists, so this is well above bufio's 64 KiB default.
	maxLineSize = 4 << 20
)

// Declaration is a single project's name and the names it depends on,
// in the order the build configuration listed them.
type Declaration struct {
	Project      string
	Dependencies []string
}

// String renders the declaration in the evaluator's line format.
func (d Declaration) String() string {
	return d.Project + separator + strings.Join(d.Dependencies, listSeparator+" ")
}

// Parse reads evaluator output from r, one declaration per line.
// Blank lines and lines without a separator are skipped.
func Parse(r io.Reader) ([]Declaration, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []Declaration
	for sc.Scan() {
		if d, ok := parseLine(sc.Text()); ok {
			out = append(out, d)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan declarations: %w", err)
	}
	return out, nil
}

func parseLine(line string) (Declaration, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Declaration{}, false
	}
	name, rest, ok := strings.Cut(line, separator)
	if !ok {
		return Declaration{}, false
	}

	var deps []string
	for _, tok := range strings.Split(rest, listSeparator) {
		if tok = strings.TrimSpace(tok); tok != "" {
			deps = append(deps, tok)
		}
	}
	return Declaration{Project: strings.TrimSpace(name), Dependencies: deps}, true
}

// ParseFile opens path and parses it with [Parse].
func ParseFile(path string) ([]Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Write serializes declarations in the evaluator's line format so a later
// run can read them back through [FileSource].
func Write(w io.Writer, decls []Declaration) error {
	bw := bufio.NewWriter(w)
	for _, d := range decls {
		if _, err := bw.WriteString(d.String() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Marshal returns the serialized form of decls.
func Marshal(decls []Declaration) []byte {
	var buf bytes.Buffer
	_ = Write(&buf, decls)
	return buf.Bytes()
}

// CountExternal returns how many dependency references across decls carry the
// external marker prefix. Repeated references are counted each time.
func CountExternal(decls []Declaration, prefix string) int {
	if prefix == "" {
		return 0
	}
	n := 0
	for _, d := range decls {
		for _, dep := range d.Dependencies {
			if strings.HasPrefix(dep, prefix) {
				n++
			}
		}
	}
	return n
}
