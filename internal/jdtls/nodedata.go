package jdtls

import "strings"

// NodeKind is the kind tag of a NodeData as sent by the server.
type NodeKind int

const (
	KindWorkspace   NodeKind = 1
	KindProject     NodeKind = 2
	KindContainer   NodeKind = 3
	KindPackageRoot NodeKind = 4
	KindPackage     NodeKind = 5
	KindPrimaryType NodeKind = 6
	KindFolder      NodeKind = 7
	KindFile        NodeKind = 8

	// KindMember never comes from the server; members are document symbols.
	KindMember NodeKind = 100
)

var kindNames = map[NodeKind]string{
	KindWorkspace:   "workspace",
	KindProject:     "project",
	KindContainer:   "container",
	KindPackageRoot: "packageRoot",
	KindPackage:     "package",
	KindPrimaryType: "primaryType",
	KindFolder:      "folder",
	KindFile:        "file",
	KindMember:      "member",
}

func (k NodeKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Type kinds found under MetaKeyTypeKind in a primary type's metadata.
const (
	TypeKindClass     = 1
	TypeKindInterface = 2
	TypeKindEnum      = 3
)

// Metadata keys.
const (
	MetaKeyTypeKind  = "TypeKind"
	MetaKeyEntryKind = "EntryKind"
)

// Entry kinds of package roots.
const (
	EntryKindSource = 1
	EntryKindBinary = 2
)

// NodeData describes one element of the project model.
type NodeData struct {
	Name              string         `json:"name"`
	ModuleName        string         `json:"moduleName,omitempty"`
	Path              string         `json:"path,omitempty"`
	URI               string         `json:"uri,omitempty"`
	HandlerIdentifier string         `json:"handlerIdentifier,omitempty"`
	Kind              NodeKind       `json:"kind"`
	Children          []NodeData     `json:"children,omitempty"`
	MetaData          map[string]any `json:"metaData,omitempty"`
}

// MetaInt returns an integer metadata value. JSON numbers decode as float64.
func (d NodeData) MetaInt(key string) (int, bool) {
	switch v := d.MetaData[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// IsBinary reports whether a package root or type comes from a jar.
func (d NodeData) IsBinary() bool {
	if ek, ok := d.MetaInt(MetaKeyEntryKind); ok {
		return ek == EntryKindBinary
	}
	return strings.HasSuffix(strings.ToLower(d.Path), ".jar")
}

// MainClass is one class that declares a main method.
type MainClass struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SimpleName is the class name without its package.
func (m MainClass) SimpleName() string {
	if i := strings.LastIndex(m.Name, "."); i >= 0 {
		return m.Name[i+1:]
	}
	return m.Name
}

// ClasspathResult is the classpath of a project for one scope.
type ClasspathResult struct {
	ProjectRoot string   `json:"projectRoot"`
	Classpaths  []string `json:"classpaths"`
	Modulepaths []string `json:"modulepaths"`
}

// ExportResult is the outcome of a jar export. Older servers answer with a
// bare boolean.
type ExportResult struct {
	Result  bool   `json:"result"`
	Message string `json:"message,omitempty"`
}

// CompileStatus is the result of a workspace build.
type CompileStatus int

const (
	CompileFailed    CompileStatus = 0
	CompileSucceed   CompileStatus = 1
	CompileWithError CompileStatus = 2
	CompileCancelled CompileStatus = 3
)

func (s CompileStatus) String() string {
	switch s {
	case CompileFailed:
		return "failed"
	case CompileSucceed:
		return "succeed"
	case CompileWithError:
		return "with error"
	case CompileCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Symbol is a document symbol as returned by textDocument/documentSymbol.
type Symbol struct {
	Name     string   `json:"name"`
	Detail   string   `json:"detail,omitempty"`
	Kind     int      `json:"kind"`
	Range    Range    `json:"range"`
	Children []Symbol `json:"children,omitempty"`
}

// Range is a zero-based line/character span.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Position is a zero-based line/character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// LSP symbol kinds used by the explorer.
const (
	SymbolPackage     = 4
	SymbolClass       = 5
	SymbolMethod      = 6
	SymbolField       = 8
	SymbolConstructor = 9
	SymbolEnum        = 10
	SymbolInterface   = 11
	SymbolConstant    = 14
	SymbolEnumMember  = 22
)
