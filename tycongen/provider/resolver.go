package provider

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/broady/tycon/internal/annotation"
	"github.com/broady/tycon/tycongen/ir"
)

// TypeResolver converts go/types types into IR types. Named types are
// registered in the resolver's TypeTable the first time they are seen and
// returned as references.
type TypeResolver struct {
	table  *ir.TypeTable
	fset   *token.FileSet
	logger *slog.Logger

	// Syntax indexes keyed by the position of the declaring identifier.
	fieldDocs map[token.Pos]*ast.Field
	typeDocs  map[token.Pos]*ast.CommentGroup
}

// NewTypeResolver returns a resolver that registers named types in table.
// files are indexed for field and type documentation.
func NewTypeResolver(table *ir.TypeTable, fset *token.FileSet, files []*ast.File, logger *slog.Logger) *TypeResolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &TypeResolver{
		table:     table,
		fset:      fset,
		logger:    logger,
		fieldDocs: make(map[token.Pos]*ast.Field),
		typeDocs:  make(map[token.Pos]*ast.CommentGroup),
	}
	for _, f := range files {
		r.index(f)
	}
	return r
}

func (r *TypeResolver) index(file *ast.File) {
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GenDecl:
			for _, spec := range n.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := ts.Doc
				if doc == nil && len(n.Specs) == 1 {
					doc = n.Doc
				}
				r.typeDocs[ts.Name.Pos()] = doc
			}
		case *ast.StructType:
			for _, f := range n.Fields.List {
				for _, name := range f.Names {
					r.fieldDocs[name.Pos()] = f
				}
			}
		}
		return true
	})
}

// Resolve converts t.
func (r *TypeResolver) Resolve(t types.Type) (ir.Type, error) {
	if typ := r.special(t); typ != nil {
		return typ, nil
	}

	switch typ := t.(type) {
	case *types.Basic:
		return r.basic(typ)

	case *types.Alias:
		return r.Resolve(types.Unalias(typ))

	case *types.Named:
		return r.named(typ)

	case *types.Pointer:
		elem, err := r.Resolve(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Optional(elem), nil

	case *types.Slice:
		elem, err := r.Resolve(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem), nil

	case *types.Array:
		elem, err := r.Resolve(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Array(elem), nil

	case *types.Map:
		if !isValidMapKey(typ.Key()) {
			return nil, fmt.Errorf("unsupported map key type: %s", typ.Key())
		}
		value, err := r.Resolve(typ.Elem())
		if err != nil {
			return nil, err
		}
		return ir.Map(value), nil

	case *types.Interface:
		return ir.Unknown(), nil

	case *types.Struct:
		return r.object(typ)

	default:
		return nil, fmt.Errorf("unsupported type: %s", t)
	}
}

// special handles types whose JSON encoding differs from their Go shape.
func (r *TypeResolver) special(t types.Type) ir.Type {
	switch typ := t.(type) {
	case *types.Slice:
		if basic, ok := typ.Elem().(*types.Basic); ok && basic.Kind() == types.Uint8 {
			return ir.Base64()
		}
	case *types.Named:
		obj := typ.Obj()
		if obj.Pkg() == nil {
			return nil
		}
		switch obj.Pkg().Path() + "." + obj.Name() {
		case "time.Time":
			return ir.DateTime()
		case "time.Duration":
			return ir.Int64()
		case "encoding/json.RawMessage":
			return ir.Unknown()
		}
		if hasCustomMarshaler(typ) {
			r.logger.Warn("type implements a custom marshaler; mapped to unknown",
				slog.String("type", obj.Name()),
				slog.String("package", obj.Pkg().Path()))
			return ir.Unknown()
		}
	}
	return nil
}

func (r *TypeResolver) basic(b *types.Basic) (ir.Type, error) {
	switch b.Kind() {
	case types.Bool, types.UntypedBool:
		return ir.Boolean(), nil
	case types.String, types.UntypedString:
		return ir.String(), nil
	case types.Int8, types.Int16, types.Int32, types.Uint8, types.Uint16, types.UntypedRune:
		return ir.Int32(), nil
	case types.Int, types.Int64, types.Uint, types.Uint32, types.Uint64, types.Uintptr, types.UntypedInt:
		return ir.Int64(), nil
	case types.Float32:
		return ir.Float(), nil
	case types.Float64, types.UntypedFloat:
		return ir.Double(), nil
	default:
		return nil, fmt.Errorf("unsupported basic type: %s", b)
	}
}

// named registers a named type and returns a reference to it.
func (r *TypeResolver) named(n *types.Named) (ir.Type, error) {
	obj := n.Obj()
	if obj.Pkg() == nil {
		// Universe types such as error.
		return ir.Unknown(), nil
	}
	name, err := declName(n)
	if err != nil {
		return nil, err
	}
	pkgPath := obj.Pkg().Path()
	if d, ok := r.table.Lookup(name); ok && d.Package == pkgPath {
		return ir.Ref(name), nil
	}

	decl := &ir.TypeDeclaration{
		Name:          name,
		Package:       pkgPath,
		Documentation: r.typeDoc(obj),
		Source:        r.source(obj.Pos()),
	}
	// Registered before conversion so recursive types terminate.
	if err := r.table.Add(decl); err != nil {
		return nil, err
	}

	switch u := n.Underlying().(type) {
	case *types.Struct:
		decl.Type, err = r.object(u)
	case *types.Basic:
		if values := enumValues(n); len(values) > 0 {
			decl.Type = ir.Enum(values...)
		} else {
			decl.Type, err = r.basic(u)
		}
	default:
		decl.Type, err = r.Resolve(u)
	}
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", name, err)
	}
	return ir.Ref(name), nil
}

// object converts a struct into an inline object, flattening embedded
// structs without a json name the way encoding/json does.
func (r *TypeResolver) object(st *types.Struct) (*ir.ObjectType, error) {
	obj := &ir.ObjectType{Properties: []ir.Property{}}
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))

		jsonName, opts := splitJSONTag(tag)
		if jsonName == "-" && len(opts) == 0 {
			continue
		}

		if field.Embedded() && jsonName == "" {
			ft := field.Type()
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = ptr.Elem()
			}
			if inner, ok := ft.Underlying().(*types.Struct); ok {
				embedded, err := r.object(inner)
				if err != nil {
					return nil, err
				}
				obj.Properties = append(obj.Properties, embedded.Properties...)
				continue
			}
		}
		if !field.Exported() {
			continue
		}

		ft := field.Type()
		optional := slices.Contains(opts, "omitempty") || slices.Contains(opts, "omitzero")
		if ptr, ok := ft.(*types.Pointer); ok {
			optional = true
			ft = ptr.Elem()
		}
		typ, err := r.Resolve(ft)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name(), err)
		}

		name := jsonName
		if name == "" {
			name = field.Name()
		}
		obj.Properties = append(obj.Properties, ir.Property{
			Name:          name,
			Type:          typ,
			Optional:      optional,
			ValidateTag:   tag.Get("validate"),
			Documentation: r.fieldDoc(field),
		})
	}
	return obj, nil
}

func (r *TypeResolver) typeDoc(obj types.Object) ir.Documentation {
	c := annotation.Scan(r.typeDocs[obj.Pos()])
	return ir.Documentation{Summary: c.Summary(), Body: c.Description()}
}

func (r *TypeResolver) fieldDoc(v *types.Var) ir.Documentation {
	f, ok := r.fieldDocs[v.Pos()]
	if !ok {
		return ir.Documentation{}
	}
	c := annotation.Scan(f.Doc)
	if c.Description() == "" {
		c = annotation.Scan(f.Comment)
	}
	return ir.Documentation{Summary: c.Summary(), Body: c.Description()}
}

func (r *TypeResolver) source(pos token.Pos) ir.Source {
	if r.fset == nil || !pos.IsValid() {
		return ir.Source{}
	}
	p := r.fset.Position(pos)
	return ir.Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

// declName returns the table name for n. Generic instantiations get a
// synthetic name such as Page_User.
func declName(n *types.Named) (string, error) {
	name := n.Obj().Name()
	args := n.TypeArgs()
	if args == nil || args.Len() == 0 {
		if n.TypeParams().Len() > 0 {
			return "", fmt.Errorf("uninstantiated generic type %s", name)
		}
		return name, nil
	}
	parts := []string{name}
	for i := 0; i < args.Len(); i++ {
		parts = append(parts, typeArgName(args.At(i)))
	}
	return strings.Join(parts, "_"), nil
}

func typeArgName(t types.Type) string {
	switch t := types.Unalias(t).(type) {
	case *types.Named:
		if name, err := declName(t); err == nil {
			return name
		}
		return t.Obj().Name()
	case *types.Basic:
		return t.Name()
	case *types.Pointer:
		return typeArgName(t.Elem())
	case *types.Slice:
		return "List_" + typeArgName(t.Elem())
	case *types.Map:
		return "Map_" + typeArgName(t.Key()) + "_" + typeArgName(t.Elem())
	default:
		return "Any"
	}
}

// enumValues returns the string constants declared with type n, in
// declaration order. Non-string constant groups are not enums.
func enumValues(n *types.Named) []string {
	basic, ok := n.Underlying().(*types.Basic)
	if !ok || basic.Info()&types.IsString == 0 {
		return nil
	}
	pkg := n.Obj().Pkg()
	var consts []*types.Const
	for _, name := range pkg.Scope().Names() {
		c, ok := pkg.Scope().Lookup(name).(*types.Const)
		if ok && types.Identical(c.Type(), n) {
			consts = append(consts, c)
		}
	}
	slices.SortFunc(consts, func(a, b *types.Const) int {
		return int(a.Pos() - b.Pos())
	})
	values := make([]string, 0, len(consts))
	for _, c := range consts {
		if c.Val().Kind() == constant.String {
			values = append(values, constant.StringVal(c.Val()))
		}
	}
	return values
}

func splitJSONTag(tag reflect.StructTag) (name string, opts []string) {
	v, ok := tag.Lookup("json")
	if !ok {
		return "", nil
	}
	parts := strings.Split(v, ",")
	return parts[0], parts[1:]
}

// hasCustomMarshaler reports whether n declares MarshalJSON or MarshalText.
func hasCustomMarshaler(n *types.Named) bool {
	for i := 0; i < n.NumMethods(); i++ {
		m := n.Method(i)
		if m.Name() != "MarshalJSON" && m.Name() != "MarshalText" {
			continue
		}
		sig := m.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
			return true
		}
	}
	return false
}

func isValidMapKey(t types.Type) bool {
	switch typ := t.(type) {
	case *types.Basic:
		return typ.Info()&(types.IsString|types.IsInteger) != 0
	case *types.Named:
		return isValidMapKey(typ.Underlying())
	case *types.Alias:
		return isValidMapKey(types.Unalias(typ))
	default:
		return false
	}
}
