// Package stub builds a shared library exposing the same C symbols as the
// real OpenAL library, each implemented as an infinite loop.
//
// Symbol names come from a textual scan of the public headers, not a parse.
// A declaration is recognised only when its line starts, at column zero,
// with one of the API macros; the name is whatever sits between the first
// "_APIENTRY" and the first "(" on that line.
package stub

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prefixes are the declaration markers of the two public API families.
var Prefixes = []string{"ALC_API ", "AL_API "}

// NameMarker precedes the function name on a declaration line.
const NameMarker = "_APIENTRY"

var (
	ErrNoMarker  = errors.New("missing " + NameMarker)
	ErrNoParen   = errors.New("missing '(' after " + NameMarker)
	ErrEmptyName = errors.New("empty function name")
)

// ExtractError reports a declaration line whose name cannot be located.
// It means the header format changed and is never skipped.
type ExtractError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.File, e.Line, e.Err, e.Text)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Symbols is an insertion-ordered set of function names.
type Symbols struct {
	names []string
	seen  map[string]bool
}

// Add inserts name and reports whether it was new.
func (s *Symbols) Add(name string) bool {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[name] {
		return false
	}
	s.seen[name] = true
	s.names = append(s.names, name)
	return true
}

// Names returns the names in first-seen order.
func (s *Symbols) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of distinct names.
func (s *Symbols) Len() int {
	return len(s.names)
}

// IsDecl reports whether line is a candidate declaration.
func IsDecl(line string) bool {
	for _, p := range Prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ExtractName returns the function name declared on a candidate line.
func ExtractName(line string) (string, error) {
	i := strings.Index(line, NameMarker)
	if i < 0 {
		return "", ErrNoMarker
	}
	start := i + len(NameMarker)
	// the first '(' on the line must close the name
	end := strings.IndexByte(line, '(')
	if end < start {
		return "", ErrNoParen
	}
	name := strings.TrimSpace(line[start:end])
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// Scan reads header text from r and adds every declared name to syms.
// file is only used in error messages.
func Scan(r io.Reader, file string, syms *Symbols) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !IsDecl(line) {
			continue
		}
		name, err := ExtractName(line)
		if err != nil {
			return &ExtractError{File: file, Line: lineNo, Text: line, Err: err}
		}
		syms.Add(name)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	return nil
}

// ScanFiles scans the headers in order.
func ScanFiles(files []string) (*Symbols, error) {
	syms := &Symbols{}
	for _, file := range files {
		if err := scanFile(file, syms); err != nil {
			return nil, err
		}
	}
	return syms, nil
}

func scanFile(file string, syms *Symbols) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return Scan(f, file, syms)
}

// Render returns the C source defining every symbol as a no-op loop with C
// linkage. The output depends only on the names and their order.
func Render(syms *Symbols) []byte {
	var buf bytes.Buffer
	buf.WriteString("/* stub autogen start, DO NOT INCLUDE OR USE THIS FILE! */\n")
	buf.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif /* __cplusplus */\n\n")
	for _, name := range syms.names {
		fmt.Fprintf(&buf, "void %s() { for(;;); }\n", name)
	}
	buf.WriteString("/* stub autogen end */\n")
	buf.WriteString("#ifdef __cplusplus\n} /* extern \"C\" { */\n#endif /* __cplusplus */\n\n")
	return buf.Bytes()
}
