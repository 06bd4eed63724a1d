// Package treesitter parses Java sources with tree-sitter for outlines and
// type name rewrites.
package treesitter

import (
	"fmt"
	"strings"
)

// SymbolKind classifies extracted symbols.
type SymbolKind int

const (
	KindPackage SymbolKind = iota
	KindImport
	KindClass
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
	KindConstructor
	KindMethod
	KindField
)

// Symbol represents a single extracted declaration.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Signature string // e.g. "void main(String[] args)"
	StartLine int    // 1-indexed
	EndLine   int    // 1-indexed
	Children  []Symbol
}

// Range is a byte span in the parsed source.
type Range struct {
	Start, End uint32
}

func (k SymbolKind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindImport:
		return "import"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotation:
		return "@interface"
	case KindConstructor:
		return "ctor"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// IsType reports whether k declares a type.
func (k SymbolKind) IsType() bool {
	return k >= KindClass && k <= KindAnnotation
}

// FormatOutline renders symbols one per line, members indented under their
// type. Imports are left out.
func FormatOutline(syms []Symbol) string {
	var b strings.Builder
	writeOutline(&b, syms, 0)
	return b.String()
}

func writeOutline(b *strings.Builder, syms []Symbol, depth int) {
	for _, s := range syms {
		if s.Kind == KindImport {
			continue
		}
		b.WriteString(strings.Repeat("  ", depth))
		switch {
		case s.Kind.IsType(), s.Kind == KindPackage:
			fmt.Fprintf(b, "%s %s", s.Kind, s.Name)
		case s.Signature != "":
			b.WriteString(s.Signature)
		default:
			b.WriteString(s.Name)
		}
		fmt.Fprintf(b, " :%d\n", s.StartLine)
		writeOutline(b, s.Children, depth+1)
	}
}
