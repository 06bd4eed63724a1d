// Package rename renames source files and packages of a Java project on
// disk, rewriting references to a primary type inside its own file.
package rename

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/jpx/internal/jdtls"
	"github.com/xonecas/jpx/internal/store"
	"github.com/xonecas/jpx/internal/treesitter"
	"github.com/xonecas/jpx/internal/workspace"
)

var (
	ErrInvalidName = errors.New("rename: invalid name")
	ErrExists      = errors.New("rename: class/package already exists")
	ErrNotMutable  = errors.New("rename: element cannot be renamed")
)

var keywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true, "while": true,
	"true": true, "false": true, "null": true, "_": true,
}

// CheckQualifiedName reports whether name is a dot separated sequence of
// Java identifiers, none of them a reserved word.
func CheckQualifiedName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidName, name)
		}
		if keywords[part] {
			return fmt.Errorf("%w: %q is a reserved word", ErrInvalidName, part)
		}
		for i, r := range part {
			ok := r == '_' || r == '$' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))
			if !ok {
				return fmt.Errorf("%w: %q is not a valid Java identifier", ErrInvalidName, part)
			}
		}
	}
	return nil
}

// Validate checks newName for a node of the given kind. The extension, if
// any, is not part of the checked name.
func Validate(newName string, kind jdtls.NodeKind) error {
	name := newName
	if kind == jdtls.KindPrimaryType {
		name = strings.TrimSuffix(name, ".java")
	}
	if err := CheckQualifiedName(name); err != nil {
		return err
	}
	switch kind {
	case jdtls.KindPrimaryType:
		if r := []rune(name)[0]; !unicode.IsUpper(r) {
			return fmt.Errorf("%w: class name should start with upper case", ErrInvalidName)
		}
	case jdtls.KindPackage, jdtls.KindPackageRoot:
		if strings.ToLower(name) != name {
			return fmt.Errorf("%w: package name should be lower case only", ErrInvalidName)
		}
		if strings.Contains(name, ".") {
			return fmt.Errorf("%w: cross-level rename is not supported", ErrInvalidName)
		}
	}
	return nil
}

// Mutable reports whether d names something on disk that may be renamed.
func Mutable(d jdtls.NodeData) bool {
	if !strings.HasPrefix(d.URI, "file:") {
		return false
	}
	switch d.Kind {
	case jdtls.KindPrimaryType, jdtls.KindPackage, jdtls.KindFolder, jdtls.KindFile:
		return true
	}
	return false
}

// Prefill is the suggested input for renaming d.
func Prefill(d jdtls.NodeData) string {
	if d.Kind == jdtls.KindPrimaryType {
		return d.Name
	}
	return filepath.Base(workspace.URIToPath(d.URI))
}

// Change is a planned rename.
type Change struct {
	Kind    jdtls.NodeKind
	OldPath string
	NewPath string
	// OldContent and NewContent are set when the type declaration is
	// rewritten.
	OldContent []byte
	NewContent []byte
	// Diff is the unified diff of the declaration rewrite, empty otherwise.
	Diff string
}

// Plan validates newName and computes the rename of d. The old extension is
// kept when newName has none.
func Plan(d jdtls.NodeData, newName string) (*Change, error) {
	if !Mutable(d) {
		return nil, fmt.Errorf("%w: %s", ErrNotMutable, d.Name)
	}
	if err := Validate(newName, d.Kind); err != nil {
		return nil, err
	}
	oldPath := workspace.URIToPath(d.URI)
	newPath := renamedPath(oldPath, newName)
	if _, err := os.Stat(newPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, newPath)
	}

	c := &Change{Kind: d.Kind, OldPath: oldPath, NewPath: newPath}
	if d.Kind == jdtls.KindPrimaryType && filepath.Ext(oldPath) == ".java" {
		src, err := os.ReadFile(oldPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", oldPath, err)
		}
		oldType := strings.TrimSuffix(filepath.Base(oldPath), ".java")
		newType := strings.TrimSuffix(filepath.Base(newPath), filepath.Ext(newPath))
		out, err := rewriteType(src, oldType, newType)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", oldPath, err)
		}
		if string(out) != string(src) {
			c.OldContent = src
			c.NewContent = out
			edits := myers.ComputeEdits(span.URIFromPath(oldPath), string(src), string(out))
			c.Diff = fmt.Sprint(gotextdiff.ToUnified(oldPath, newPath, string(src), edits))
		}
	}
	return c, nil
}

// Journal records applied renames so they can be undone.
type Journal interface {
	RecordRename(ctx context.Context, rec store.RenameRecord) error
}

// Apply moves the file or directory and writes the rewritten declaration.
// journal may be nil.
func (c *Change) Apply(ctx context.Context, journal Journal) error {
	if _, err := os.Stat(c.NewPath); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, c.NewPath)
	}
	if err := os.Rename(c.OldPath, c.NewPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if c.NewContent != nil {
		if err := os.WriteFile(c.NewPath, c.NewContent, 0o644); err != nil {
			return fmt.Errorf("rename: write %s: %w", c.NewPath, err)
		}
	}
	log.Info().Str("from", c.OldPath).Str("to", c.NewPath).Msg("rename: applied")
	if journal != nil {
		if err := journal.RecordRename(ctx, store.RenameRecord{
			OldPath:    c.OldPath,
			NewPath:    c.NewPath,
			OldContent: c.OldContent,
		}); err != nil {
			log.Warn().Err(err).Msg("rename: not journaled")
		}
	}
	return nil
}

func renamedPath(oldPath, newName string) string {
	if filepath.Ext(newName) == "" {
		newName += filepath.Ext(oldPath)
	}
	return filepath.Join(filepath.Dir(oldPath), newName)
}

// rewriteType renames every reference to oldName inside its own source
// file. Other files keep the old name.
func rewriteType(src []byte, oldName, newName string) ([]byte, error) {
	refs, err := treesitter.TypeReferences(src, oldName)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	last := uint32(0)
	for _, r := range refs {
		b.Write(src[last:r.Start])
		b.WriteString(newName)
		last = r.End
	}
	b.Write(src[last:])
	return b.Bytes(), nil
}
