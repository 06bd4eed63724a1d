package treesitter

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Supported returns true if the file is a Java source.
func Supported(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// ParseFile reads and parses a file, returning its top-level symbols.
func ParseFile(path string) ([]Symbol, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, src)
}

// ParseSource parses source bytes and returns top-level symbols. Files that
// are not Java yield nothing.
func ParseSource(path string, src []byte) ([]Symbol, error) {
	if !Supported(path) {
		return nil, nil
	}
	tree, err := parse(src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return extractMembers(tree.RootNode(), src), nil
}

// TypeReferences returns the spans in src that name the type name: its
// declarations, constructors, type uses and static member accesses.
func TypeReferences(src []byte, name string) ([]Range, error) {
	tree, err := parse(src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var refs []Range
	add := func(n *sitter.Node) {
		if n != nil && n.Content(src) == name {
			refs = append(refs, Range{Start: n.StartByte(), End: n.EndByte()})
		}
	}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch t := n.Type(); {
		case t == "type_identifier":
			add(n)
		case t == "constructor_declaration", t == "compact_constructor_declaration":
			add(n.ChildByFieldName("name"))
		case t == "method_invocation", t == "field_access":
			if obj := n.ChildByFieldName("object"); obj != nil && obj.Type() == "identifier" {
				add(obj)
			}
		case typeKind(t) >= 0:
			add(n.ChildByFieldName("name"))
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(tree.RootNode())

	slices.SortFunc(refs, func(a, b Range) int { return cmp.Compare(a.Start, b.Start) })
	return slices.Compact(refs), nil
}

func parse(src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())
	return parser.ParseCtx(context.Background(), nil, src)
}

// typeKind maps a declaration node type to its kind, or -1.
func typeKind(nodeType string) SymbolKind {
	switch nodeType {
	case "class_declaration":
		return KindClass
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	case "record_declaration":
		return KindRecord
	case "annotation_type_declaration":
		return KindAnnotation
	}
	return -1
}

// extractMembers collects the declarations directly inside node, which is
// the program root or a type body.
func extractMembers(node *sitter.Node, src []byte) []Symbol {
	var syms []Symbol
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch t := child.Type(); t {
		case "package_declaration":
			syms = append(syms, extractPackage(child, src))
		case "import_declaration":
			syms = append(syms, Symbol{
				Name:      strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(content(child, src), "import"), ";")),
				Kind:      KindImport,
				StartLine: line(child),
				EndLine:   endLine(child),
			})
		case "method_declaration", "annotation_type_element_declaration":
			syms = append(syms, extractCallable(child, src, KindMethod))
		case "constructor_declaration", "compact_constructor_declaration":
			syms = append(syms, extractCallable(child, src, KindConstructor))
		case "field_declaration", "constant_declaration":
			syms = append(syms, extractFields(child, src)...)
		case "enum_body_declarations":
			syms = append(syms, extractMembers(child, src)...)
		default:
			if k := typeKind(t); k >= 0 {
				syms = append(syms, extractType(child, src, k))
			}
		}
	}
	return syms
}

func extractPackage(node *sitter.Node, src []byte) Symbol {
	sym := Symbol{Kind: KindPackage, StartLine: line(node), EndLine: endLine(node)}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if nc := node.NamedChild(i); nc.Type() == "scoped_identifier" || nc.Type() == "identifier" {
			sym.Name = content(nc, src)
		}
	}
	return sym
}

func extractType(node *sitter.Node, src []byte, kind SymbolKind) Symbol {
	sym := Symbol{Kind: kind, StartLine: line(node), EndLine: endLine(node)}
	if name := node.ChildByFieldName("name"); name != nil {
		sym.Name = content(name, src)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		sym.Children = extractMembers(body, src)
	}
	return sym
}

func extractCallable(node *sitter.Node, src []byte, kind SymbolKind) Symbol {
	sym := Symbol{Kind: kind, StartLine: line(node), EndLine: endLine(node)}
	name := node.ChildByFieldName("name")
	if name == nil {
		return sym
	}
	sym.Name = content(name, src)

	start := name.StartByte()
	if typ := node.ChildByFieldName("type"); typ != nil {
		start = typ.StartByte()
	}
	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}
	sig := strings.TrimSuffix(strings.TrimSpace(string(src[start:end])), ";")
	sym.Signature = strings.Join(strings.Fields(sig), " ")
	return sym
}

func extractFields(node *sitter.Node, src []byte) []Symbol {
	var typ string
	if t := node.ChildByFieldName("type"); t != nil {
		typ = content(t, src)
	}
	var fields []Symbol
	for i := 0; i < int(node.NamedChildCount()); i++ {
		d := node.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		if name == nil {
			continue
		}
		f := Symbol{
			Name:      content(name, src),
			Kind:      KindField,
			StartLine: line(node),
			EndLine:   endLine(node),
		}
		if typ != "" {
			f.Signature = typ + " " + f.Name
		}
		fields = append(fields, f)
	}
	return fields
}

// helpers

func content(node *sitter.Node, src []byte) string {
	return node.Content(src)
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1 // 1-indexed
}

func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}
