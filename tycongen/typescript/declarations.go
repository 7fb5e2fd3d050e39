package typescript

import (
	"bytes"
	"strings"

	"github.com/broady/tycon/tycongen/ir"
)

// Header is the banner written at the top of every generated module.
const Header = "Code generated by tycon. DO NOT EDIT."

// Config controls declaration output.
type Config struct {
	// EmitComments writes Go documentation as JSDoc.
	EmitComments bool

	// UseTypeAlias declares objects with `type X = {...}` instead of
	// interfaces.
	UseTypeAlias bool
}

// Emitter writes TypeScript declarations for named IR types.
type Emitter struct {
	Config Config
	indent string
}

// NewEmitter returns an Emitter using two-space indentation.
func NewEmitter(cfg Config) *Emitter {
	return &Emitter{Config: cfg, indent: "  "}
}

// EmitTypes renders every declaration in table, in table order, as a
// types.ts module.
func (e *Emitter) EmitTypes(table *ir.TypeTable) []byte {
	var buf bytes.Buffer
	buf.WriteString("// " + Header + "\n")
	for _, d := range table.All() {
		buf.WriteByte('\n')
		e.EmitDeclaration(&buf, d)
	}
	return buf.Bytes()
}

// EmitDeclaration writes one exported declaration.
func (e *Emitter) EmitDeclaration(buf *bytes.Buffer, d *ir.TypeDeclaration) {
	if e.Config.EmitComments {
		e.emitJSDoc(buf, "", d.Documentation)
	}
	if obj, ok := d.Type.(*ir.ObjectType); ok {
		e.emitObject(buf, d.Name, obj)
		return
	}
	buf.WriteString("export type ")
	buf.WriteString(d.Name)
	buf.WriteString(" = ")
	buf.WriteString(TypeString(d.Type))
	buf.WriteString(";\n")
}

func (e *Emitter) emitObject(buf *bytes.Buffer, name string, obj *ir.ObjectType) {
	if e.Config.UseTypeAlias {
		buf.WriteString("export type " + name + " = {\n")
	} else {
		buf.WriteString("export interface " + name + " {\n")
	}
	for _, p := range obj.Properties {
		if e.Config.EmitComments {
			e.emitJSDoc(buf, e.indent, p.Documentation)
		}
		buf.WriteString(e.indent)
		buf.WriteString(PropertyName(p.Name))
		buf.WriteString(optionalMark(p.Optional))
		buf.WriteString(": ")
		buf.WriteString(TypeString(p.Type))
		buf.WriteString(";\n")
	}
	if e.Config.UseTypeAlias {
		buf.WriteString("};\n")
	} else {
		buf.WriteString("}\n")
	}
}

func (e *Emitter) emitJSDoc(buf *bytes.Buffer, indent string, doc ir.Documentation) {
	if doc.IsZero() {
		return
	}
	text := doc.Body
	if text == "" {
		text = doc.Summary
	}
	// "*/" inside a comment would end it early.
	lines := strings.Split(strings.ReplaceAll(text, "*/", "*\\/"), "\n")
	if len(lines) == 1 {
		buf.WriteString(indent + "/** " + strings.TrimSpace(lines[0]) + " */\n")
		return
	}
	buf.WriteString(indent + "/**\n")
	for _, line := range lines {
		buf.WriteString(strings.TrimRight(indent+" * "+strings.TrimSpace(line), " "))
		buf.WriteByte('\n')
	}
	buf.WriteString(indent + " */\n")
}
