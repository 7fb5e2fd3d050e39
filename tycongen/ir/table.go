package ir

import "fmt"

// TypeDeclaration is a named type that generators emit once and refer to
// by name.
type TypeDeclaration struct {
	// Name is the declaration's identifier, unique within a TypeTable.
	Name string

	// Type is the declaration's shape: an ObjectType for structs, an
	// EnumType for string const groups, anything else for aliases.
	Type Type

	// Package is the Go import path the declaration came from.
	Package string

	Documentation Documentation
	Source        Source
}

// TypeTable maps names to declarations in insertion order.
//
// The table is filled by the type resolver while a package is loaded;
// parsers and generators only read from it.
type TypeTable struct {
	decls  []*TypeDeclaration
	byName map[string]*TypeDeclaration
}

// NewTypeTable returns an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{byName: make(map[string]*TypeDeclaration)}
}

// Add registers d. Adding a second declaration with the same name is an
// error unless it comes from the same package, in which case the existing
// declaration is kept.
func (t *TypeTable) Add(d *TypeDeclaration) error {
	if t.byName == nil {
		t.byName = make(map[string]*TypeDeclaration)
	}
	if prev, ok := t.byName[d.Name]; ok {
		if prev.Package == d.Package {
			return nil
		}
		return fmt.Errorf("type name %s declared in both %s and %s", d.Name, prev.Package, d.Package)
	}
	t.decls = append(t.decls, d)
	t.byName[d.Name] = d
	return nil
}

// Lookup returns the declaration with the given name.
func (t *TypeTable) Lookup(name string) (*TypeDeclaration, bool) {
	if t == nil {
		return nil, false
	}
	d, ok := t.byName[name]
	return d, ok
}

// All returns the declarations in insertion order.
func (t *TypeTable) All() []*TypeDeclaration {
	if t == nil {
		return nil
	}
	return t.decls
}

// Len returns the number of declarations.
func (t *TypeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.decls)
}

// Resolve follows references until it reaches a non-reference type.
// Dangling references and reference cycles resolve to nil.
func (t *TypeTable) Resolve(typ Type) Type {
	seen := make(map[string]bool)
	for {
		ref, ok := typ.(*ReferenceType)
		if !ok {
			return typ
		}
		if seen[ref.Name] {
			return nil
		}
		seen[ref.Name] = true
		d, ok := t.Lookup(ref.Name)
		if !ok {
			return nil
		}
		typ = d.Type
	}
}
