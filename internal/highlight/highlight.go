// Package highlight renders Java sources, build files and decompiled class
// contents with Chroma, and derives the UI palette from the same theme.
package highlight

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultTheme is used when no syntax theme is configured.
const DefaultTheme = "vulcan"

// Lexer picks the lexer for a file. Class files are shown as the Java source
// the server decompiles them to.
func Lexer(path string) chroma.Lexer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".class", ".java":
		return lexers.Get("java")
	case ".gradle":
		return lexers.Get("groovy")
	case ".mf":
		return lexers.Get("properties")
	}
	if l := lexers.Match(filepath.Base(path)); l != nil {
		return l
	}
	return lexers.Fallback
}

// Highlight returns text colored for a terminal. The theme background is
// re-applied after every reset so it never drops out mid-line.
func Highlight(text, path, theme string) string {
	lex := chroma.Coalesce(Lexer(path))
	sty := styles.Get(theme)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, sty, it); err != nil {
		return text
	}
	out := strings.TrimRight(buf.String(), "\n")

	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return out
	}
	seq := fmt.Sprintf("\x1b[48;2;%d;%d;%dm", bg.Red(), bg.Green(), bg.Blue())
	return seq + strings.ReplaceAll(out, "\x1b[0m", "\x1b[0m"+seq)
}

// Source highlights text and prefixes each line with its 1-based number.
// Every returned line carries the color state it starts in.
func Source(text, path, theme string) []string {
	lines := SplitLines(Highlight(text, path, theme))
	width := len(fmt.Sprint(len(lines)))
	numStyle := "\x1b[2m"
	for i, l := range lines {
		lines[i] = fmt.Sprintf("%s%*d\x1b[22m %s", numStyle, width, i+1, l)
	}
	return lines
}

// SplitLines splits a highlighted block into lines, carrying active SGR
// sequences over so each line renders on its own.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = activeSGR(line, active)
	}
	return lines
}

// activeSGR updates active with the SGR sequences found in line. A reset
// empties it.
func activeSGR(line string, active []string) []string {
	for {
		start := strings.Index(line, "\x1b[")
		if start < 0 {
			return active
		}
		end := strings.IndexByte(line[start:], 'm')
		if end < 0 {
			return active
		}
		seq := line[start : start+end+1]
		if params := seq[2 : len(seq)-1]; params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, seq)
		}
		line = line[start+end+1:]
	}
}
