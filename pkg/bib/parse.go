package bib

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nickng/bibtex"
)

var (
	reEntryStart = regexp.MustCompile(`(?m)^[ \t]*@`)
	reIgnored    = regexp.MustCompile(`(?i)^@\s*(comment|preamble)\b`)
)

// Month abbreviations the bibtex package defines as implicit macros.
var monthMacros = map[string]bool{
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "oct": true, "nov": true, "dec": true,
}

// Load parses a BibTeX file. Malformed entries are skipped with a warning
// instead of failing the whole file.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// Parse reads BibTeX from r. The input is split into entries and every entry
// is checked against the grammar the bibtex package accepts before anything
// is handed to it: that parser keeps package-level state which a syntax
// error leaves corrupted, and it exits the process on an undefined @string
// macro. Entries failing the check are dropped with a warning. @comment and
// @preamble blocks are ignored.
func Parse(r io.Reader) ([]Entry, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	macros := make(map[string]bool)
	var clean strings.Builder
	kept, skipped := 0, 0
	for _, c := range splitEntries(string(content)) {
		if reIgnored.MatchString(c) {
			continue
		}
		sc := &entryScanner{s: c, macros: macros}
		n, macro, err := sc.scan()
		if err != nil {
			skipped++
			slog.Warn("Skipping malformed bibliography entry", "entry", firstLine(c), "error", err)
			continue
		}
		if macro != "" {
			macros[macro] = true
		}
		clean.WriteString(c[:n])
		clean.WriteString("\n")
		kept++
	}
	if skipped > 0 {
		slog.Info("Parsed bibliography tolerantly", "kept", kept, "skipped", skipped)
	}
	if kept == 0 {
		return nil, nil
	}

	parsed, err := bibtex.Parse(strings.NewReader(clean.String()))
	if err != nil {
		return nil, fmt.Errorf("parse bibliography: %w", err)
	}
	return convert(parsed), nil
}

func splitEntries(content string) []string {
	starts := reEntryStart.FindAllStringIndex(content, -1)
	chunks := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		chunks = append(chunks, strings.TrimSpace(content[loc[0]:end]))
	}
	return chunks
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// entryScanner walks a single @type{key, field = value, ...} or
// @string{name = value} block using the lexical rules of the bibtex package.
// Bare values must be numbers, month abbreviations or macros already defined.
type entryScanner struct {
	s      string
	i      int
	macros map[string]bool
}

// scan returns the length of the block at the start of s and, for an
// @string definition, the name it defines. Text after the closing brace is
// not part of the block.
func (sc *entryScanner) scan() (int, string, error) {
	if err := sc.expect('@'); err != nil {
		return 0, "", err
	}
	typ, err := sc.bare()
	if err != nil {
		return 0, "", err
	}
	if err := sc.expect('{'); err != nil {
		return 0, "", err
	}

	if strings.EqualFold(typ, "string") {
		name, err := sc.ident()
		if err != nil {
			return 0, "", err
		}
		if err := sc.expect('='); err != nil {
			return 0, "", err
		}
		if err := sc.value(); err != nil {
			return 0, "", err
		}
		if err := sc.expect('}'); err != nil {
			return 0, "", err
		}
		return sc.i, name, nil
	}

	if _, err := sc.ident(); err != nil {
		return 0, "", fmt.Errorf("citation key: %w", err)
	}
	if err := sc.expect(','); err != nil {
		return 0, "", err
	}
	for {
		sc.skipSpace()
		switch sc.peek() {
		case '}':
			sc.i++
			return sc.i, "", nil
		case ',':
			sc.i++
			continue
		}
		name, err := sc.ident()
		if err != nil {
			return 0, "", fmt.Errorf("field name: %w", err)
		}
		if err := sc.expect('='); err != nil {
			return 0, "", fmt.Errorf("field %s: %w", name, err)
		}
		if err := sc.value(); err != nil {
			return 0, "", fmt.Errorf("field %s: %w", name, err)
		}
		sc.skipSpace()
		if c := sc.peek(); c != ',' && c != '}' {
			return 0, "", sc.errorf("expected ',' or '}' after field %s", name)
		}
	}
}

// value consumes a value made of braced, quoted or bare parts joined by '#'.
func (sc *entryScanner) value() error {
	for {
		sc.skipSpace()
		switch sc.peek() {
		case '{':
			if err := sc.braced(); err != nil {
				return err
			}
		case '"':
			if err := sc.quoted(); err != nil {
				return err
			}
		default:
			w, err := sc.bare()
			if err != nil {
				return err
			}
			if _, err := strconv.Atoi(w); err != nil && !sc.macros[w] && !monthMacros[w] {
				return sc.errorf("undefined macro %q", w)
			}
		}
		sc.skipSpace()
		if sc.peek() != '#' {
			return nil
		}
		sc.i++
	}
}

// braced consumes {...} with nested braces. An '@' is only allowed inside a
// TeX control sequence.
func (sc *entryScanner) braced() error {
	start := sc.i
	sc.i++
	depth, control := 1, false
	for ; sc.i < len(sc.s); sc.i++ {
		switch c := sc.s[sc.i]; {
		case c == '\\':
			control = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			control = false
			if depth == 0 {
				sc.i++
				return nil
			}
		case c == '@' && !control:
			return sc.errorf("unexpected '@' in braced value")
		case isSpace(c):
			control = false
		}
	}
	sc.i = start
	return sc.errorf("unbalanced braces")
}

// quoted consumes "..."; a quote inside braces does not close the value.
func (sc *entryScanner) quoted() error {
	start := sc.i
	sc.i++
	depth := 0
	for ; sc.i < len(sc.s); sc.i++ {
		switch sc.s[sc.i] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				sc.i++
				return nil
			}
		}
	}
	sc.i = start
	return sc.errorf("unterminated quoted value")
}

func (sc *entryScanner) bare() (string, error) {
	sc.skipSpace()
	start := sc.i
	if sc.i >= len(sc.s) || !isAlphanum(sc.s[sc.i]) {
		return "", sc.errorf("expected identifier")
	}
	for sc.i < len(sc.s) && (isAlphanum(sc.s[sc.i]) || strings.IndexByte("-_:./+", sc.s[sc.i]) >= 0) {
		sc.i++
	}
	return sc.s[start:sc.i], nil
}

// ident is a bare word that is not one of the bibtex keywords.
func (sc *entryScanner) ident() (string, error) {
	w, err := sc.bare()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(w) {
	case "comment", "preamble", "string":
		return "", sc.errorf("reserved word %q", w)
	}
	return w, nil
}

func (sc *entryScanner) expect(c byte) error {
	sc.skipSpace()
	if sc.peek() != c {
		return sc.errorf("expected %q", c)
	}
	sc.i++
	return nil
}

func (sc *entryScanner) skipSpace() {
	for sc.i < len(sc.s) && isSpace(sc.s[sc.i]) {
		sc.i++
	}
}

func (sc *entryScanner) peek() byte {
	if sc.i < len(sc.s) {
		return sc.s[sc.i]
	}
	return 0
}

func (sc *entryScanner) errorf(format string, args ...any) error {
	line := 1 + strings.Count(sc.s[:sc.i], "\n")
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isAlphanum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func convert(b *bibtex.BibTex) []Entry {
	entries := make([]Entry, 0, len(b.Entries))
	for _, be := range b.Entries {
		e := Entry{
			ID:     strings.TrimSpace(be.CiteName),
			Type:   strings.ToLower(strings.TrimSpace(be.Type)),
			Fields: make(map[string]string, len(be.Fields)),
		}
		for name, value := range be.Fields {
			if value == nil {
				continue
			}
			e.Fields[strings.ToLower(name)] = strings.TrimSpace(value.String())
		}
		entries = append(entries, e)
	}
	return entries
}
