package explorer

import (
	"context"

	"github.com/xonecas/jpx/internal/jdtls"
)

// behavior is the capability set of one node variant.
type behavior struct {
	load func(ctx context.Context, n *Node) ([]*Node, error)
	item func(n *Node) TreeItem
}

var behaviors = map[Kind]behavior{
	KindWorkspace:   {load: loadWorkspace, item: containerItem("◈")},
	KindProject:     {load: loadPackageData(projectQuery), item: containerItem("■")},
	KindContainer:   {load: loadPackageData(containerQuery), item: containerItem("⧉")},
	KindPackageRoot: {load: loadPackageData(packageRootQuery), item: packageRootItem},
	KindPackage:     {load: loadPackageData(packageQuery), item: containerItem("▦")},
	KindFolder:      {load: loadPackageData(folderQuery), item: containerItem("▸")},
	KindPrimaryType: {load: loadMembers, item: primaryTypeItem},
	KindMember:      {load: loadSymbolChildren, item: memberItem},
	KindTypeRoot:    {load: loadNothing, item: leafItem("◇", "open")},
	KindFile:        {load: loadNothing, item: leafItem("·", "open")},
}

func behaviorOf(k Kind) behavior {
	if b, ok := behaviors[k]; ok {
		return b
	}
	return behavior{load: loadNothing, item: leafItem("?", "")}
}

func loadWorkspace(ctx context.Context, n *Node) ([]*Node, error) {
	projects, err := n.env.src.GetProjects(ctx, n.data.URI)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, 0, len(projects))
	for _, d := range projects {
		out = append(out, newNode(n.env, KindProject, d, n))
	}
	return out, nil
}

// loadPackageData builds the children from descriptors the server already
// attached, or asks java.getPackageData with the query for n.
func loadPackageData(query func(n *Node) jdtls.PackageQuery) func(context.Context, *Node) ([]*Node, error) {
	return func(ctx context.Context, n *Node) ([]*Node, error) {
		data := n.data.Children
		if len(data) == 0 {
			var err error
			data, err = n.env.src.GetPackageData(ctx, query(n))
			if err != nil {
				return nil, err
			}
		}
		out := make([]*Node, 0, len(data))
		for _, d := range data {
			out = append(out, newNode(n.env, kindOf(d), d, n))
		}
		return out, nil
	}
}

func projectQuery(n *Node) jdtls.PackageQuery {
	return jdtls.PackageQuery{Kind: jdtls.KindProject, ProjectURI: n.data.URI}
}

func containerQuery(n *Node) jdtls.PackageQuery {
	return jdtls.PackageQuery{Kind: jdtls.KindContainer, ProjectURI: n.projectURI(), Path: n.data.Path}
}

func packageRootQuery(n *Node) jdtls.PackageQuery {
	return jdtls.PackageQuery{
		Kind:              jdtls.KindPackageRoot,
		ProjectURI:        n.projectURI(),
		RootPath:          n.data.Path,
		HandlerIdentifier: n.data.HandlerIdentifier,
	}
}

func packageQuery(n *Node) jdtls.PackageQuery {
	q := jdtls.PackageQuery{
		Kind:              jdtls.KindPackage,
		ProjectURI:        n.projectURI(),
		Path:              n.data.Name,
		HandlerIdentifier: n.data.HandlerIdentifier,
	}
	if root := n.packageRoot(); root != nil {
		q.RootPath = root.data.Path
	}
	return q
}

func folderQuery(n *Node) jdtls.PackageQuery {
	q := jdtls.PackageQuery{
		Kind:              jdtls.KindFolder,
		ProjectURI:        n.projectURI(),
		Path:              n.data.Path,
		HandlerIdentifier: n.data.HandlerIdentifier,
	}
	if root := n.packageRoot(); root != nil {
		q.RootPath = root.data.Path
	}
	return q
}

func loadMembers(ctx context.Context, n *Node) ([]*Node, error) {
	if !n.env.showMembers() || n.data.URI == "" {
		return nil, nil
	}
	symbols, err := n.env.src.DocumentSymbols(ctx, n.data.URI)
	if err != nil {
		return nil, err
	}
	var out []*Node
	for _, s := range symbols {
		// The package declaration is not a member.
		if s.Kind == jdtls.SymbolPackage {
			continue
		}
		if s.Name != n.data.Name {
			continue
		}
		for _, child := range s.Children {
			out = append(out, newMemberNode(n.env, child, n))
		}
	}
	return out, nil
}

func loadSymbolChildren(_ context.Context, n *Node) ([]*Node, error) {
	if n.symbol == nil {
		return nil, nil
	}
	out := make([]*Node, 0, len(n.symbol.Children))
	for _, child := range n.symbol.Children {
		out = append(out, newMemberNode(n.env, child, n))
	}
	return out, nil
}

func loadNothing(context.Context, *Node) ([]*Node, error) {
	return nil, nil
}

func containerItem(icon string) func(*Node) TreeItem {
	return func(n *Node) TreeItem {
		return TreeItem{Label: n.data.Name, Icon: icon, Collapsible: true, URI: n.data.URI}
	}
}

func packageRootItem(n *Node) TreeItem {
	it := TreeItem{Label: n.data.Name, Icon: "▤", Collapsible: true, URI: n.data.URI}
	if n.data.ModuleName != "" {
		it.Description = n.data.ModuleName
	} else if n.data.IsBinary() {
		it.Description = n.data.Path
	}
	return it
}

func primaryTypeItem(n *Node) TreeItem {
	icon := "C"
	if tk, ok := n.data.MetaInt(jdtls.MetaKeyTypeKind); ok {
		switch tk {
		case jdtls.TypeKindInterface:
			icon = "I"
		case jdtls.TypeKindEnum:
			icon = "E"
		}
	}
	return TreeItem{
		Label:       n.data.Name,
		Icon:        icon,
		Collapsible: n.env.showMembers(),
		Command:     "open",
		URI:         n.data.URI,
	}
}

func memberItem(n *Node) TreeItem {
	it := TreeItem{Label: n.data.Name, Icon: "·", Command: "open", URI: n.data.URI}
	if s := n.symbol; s != nil {
		it.Description = s.Detail
		it.Line = s.Range.Start.Line
		it.Collapsible = len(s.Children) > 0
		switch s.Kind {
		case jdtls.SymbolMethod, jdtls.SymbolConstructor:
			it.Icon = "m"
		case jdtls.SymbolField, jdtls.SymbolConstant, jdtls.SymbolEnumMember:
			it.Icon = "f"
		case jdtls.SymbolClass, jdtls.SymbolInterface, jdtls.SymbolEnum:
			it.Icon = "C"
		}
	}
	return it
}

func leafItem(icon, command string) func(*Node) TreeItem {
	return func(n *Node) TreeItem {
		return TreeItem{Label: n.data.Name, Icon: icon, Command: command, URI: n.data.URI}
	}
}
