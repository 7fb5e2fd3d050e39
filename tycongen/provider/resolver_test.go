package provider

import (
	"go/ast"
	"log/slog"
	"testing"

	"github.com/broady/tycon/internal/testfixtures"
	"github.com/broady/tycon/tycongen/ir"
)

const resolverSource = `package p

import (
	"encoding/json"
	"time"
)

// Account is a customer account.
type Account struct {
	// ID is the primary key.
	ID      int64             ` + "`json:\"id\"`" + `
	Name    string            ` + "`json:\"name\" validate:\"required\"`" + `
	Nick    *string           ` + "`json:\"nick\"`" + `
	Email   string            ` + "`json:\"email,omitempty\"`" + `
	Created time.Time         ` + "`json:\"created\"`" + `
	TTL     time.Duration     ` + "`json:\"ttl\"`" + `
	Avatar  []byte            ` + "`json:\"avatar\"`" + `
	Labels  map[string]string ` + "`json:\"labels\"`" + `
	Raw     json.RawMessage   ` + "`json:\"raw\"`" + `
	Tier    Tier              ` + "`json:\"tier\"`" + `
	Parent  *Account          ` + "`json:\"parent\"`" + `
	Score   float32           ` + "`json:\"score\"`" + `
	Ratio   float64           ` + "`json:\"ratio\"`" + `
	Small   int16             ` + "`json:\"small\"`" + `
	Skip    string            ` + "`json:\"-\"`" + `
	private string
	Audit
}

// Audit is embedded without a json name.
type Audit struct {
	UpdatedBy string ` + "`json:\"updated_by\"`" + `
}

// Tier is a pricing tier.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

type Page[T any] struct {
	Items []T ` + "`json:\"items\"`" + `
}

type Accounts = Page[Account]

type Holder struct {
	P Accounts
}

type Priority int

const (
	Low Priority = iota
	High
)

type Stamp struct{}

func (Stamp) MarshalJSON() ([]byte, error) { return nil, nil }

type Weird struct {
	Ch chan int
}

type BadMap struct {
	M map[Stamp]int
}
`

func resolveNamed(t *testing.T, c *testfixtures.Checked, name string) (*TypeResolver, *ir.TypeTable, ir.Type, error) {
	t.Helper()
	table := ir.NewTypeTable()
	r := NewTypeResolver(table, c.Fset, []*ast.File{c.File}, slog.New(slog.DiscardHandler))
	obj := c.Pkg.Scope().Lookup(name)
	if obj == nil {
		t.Fatalf("type %s not found", name)
	}
	typ, err := r.Resolve(obj.Type())
	return r, table, typ, err
}

func TestTypeResolver_Struct(t *testing.T) {
	c := testfixtures.Check(t, resolverSource)
	_, table, typ, err := resolveNamed(t, c, "Account")
	if err != nil {
		t.Fatal(err)
	}
	if ref, ok := typ.(*ir.ReferenceType); !ok || ref.Name != "Account" {
		t.Fatalf("Resolve(Account) = %#v, want reference", typ)
	}

	decl, ok := table.Lookup("Account")
	if !ok {
		t.Fatal("Account not registered")
	}
	if decl.Documentation.Summary != "Account is a customer account." {
		t.Errorf("doc = %q", decl.Documentation.Summary)
	}
	obj := decl.Type.(*ir.ObjectType)
	props := make(map[string]ir.Property)
	for _, p := range obj.Properties {
		props[p.Name] = p
	}

	tests := []struct {
		name     string
		kind     ir.Kind
		prim     ir.PrimitiveKind
		optional bool
	}{
		{"id", ir.KindPrimitive, ir.PrimitiveInt64, false},
		{"name", ir.KindPrimitive, ir.PrimitiveString, false},
		{"nick", ir.KindPrimitive, ir.PrimitiveString, true},
		{"email", ir.KindPrimitive, ir.PrimitiveString, true},
		{"created", ir.KindPrimitive, ir.PrimitiveDateTime, false},
		{"ttl", ir.KindPrimitive, ir.PrimitiveInt64, false},
		{"avatar", ir.KindPrimitive, ir.PrimitiveBase64, false},
		{"labels", ir.KindMap, 0, false},
		{"raw", ir.KindUnknown, 0, false},
		{"tier", ir.KindReference, 0, false},
		{"parent", ir.KindReference, 0, true},
		{"score", ir.KindPrimitive, ir.PrimitiveFloat, false},
		{"ratio", ir.KindPrimitive, ir.PrimitiveDouble, false},
		{"small", ir.KindPrimitive, ir.PrimitiveInt32, false},
		{"updated_by", ir.KindPrimitive, ir.PrimitiveString, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := props[tt.name]
			if !ok {
				t.Fatalf("property %s missing", tt.name)
			}
			if p.Type.Kind() != tt.kind {
				t.Errorf("kind = %v, want %v", p.Type.Kind(), tt.kind)
			}
			if prim, ok := p.Type.(*ir.PrimitiveType); ok && prim.PrimitiveKind != tt.prim {
				t.Errorf("primitive = %v, want %v", prim.PrimitiveKind, tt.prim)
			}
			if p.Optional != tt.optional {
				t.Errorf("optional = %v, want %v", p.Optional, tt.optional)
			}
		})
	}

	for _, gone := range []string{"Skip", "-", "private", "Audit"} {
		if _, ok := props[gone]; ok {
			t.Errorf("property %s should be omitted", gone)
		}
	}
	if props["name"].ValidateTag != "required" {
		t.Errorf("validate tag = %q", props["name"].ValidateTag)
	}
	if props["id"].Documentation.Summary != "ID is the primary key." {
		t.Errorf("field doc = %q", props["id"].Documentation.Summary)
	}

	tier, ok := table.Lookup("Tier")
	if !ok {
		t.Fatal("Tier not registered")
	}
	enum, ok := tier.Type.(*ir.EnumType)
	if !ok || len(enum.Values) != 2 || enum.Values[0] != "free" || enum.Values[1] != "pro" {
		t.Errorf("Tier = %#v, want enum [free pro]", tier.Type)
	}
}

func TestTypeResolver_Named(t *testing.T) {
	c := testfixtures.Check(t, resolverSource)

	t.Run("generic instantiation", func(t *testing.T) {
		_, table, _, err := resolveNamed(t, c, "Holder")
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := table.Lookup("Page_Account"); !ok {
			t.Error("Page_Account not registered")
		}
	})

	t.Run("int consts are not enums", func(t *testing.T) {
		_, table, _, err := resolveNamed(t, c, "Priority")
		if err != nil {
			t.Fatal(err)
		}
		d, _ := table.Lookup("Priority")
		if prim, ok := d.Type.(*ir.PrimitiveType); !ok || prim.PrimitiveKind != ir.PrimitiveInt64 {
			t.Errorf("Priority = %#v, want INT64", d.Type)
		}
	})

	t.Run("custom marshaler", func(t *testing.T) {
		_, _, typ, err := resolveNamed(t, c, "Stamp")
		if err != nil {
			t.Fatal(err)
		}
		if typ.Kind() != ir.KindUnknown {
			t.Errorf("Stamp kind = %v, want Unknown", typ.Kind())
		}
	})

	t.Run("unsupported field", func(t *testing.T) {
		if _, _, _, err := resolveNamed(t, c, "Weird"); err == nil {
			t.Error("expected error for chan field")
		}
	})

	t.Run("unsupported map key", func(t *testing.T) {
		if _, _, _, err := resolveNamed(t, c, "BadMap"); err == nil {
			t.Error("expected error for struct map key")
		}
	})

	t.Run("uninstantiated generic", func(t *testing.T) {
		if _, _, _, err := resolveNamed(t, c, "Page"); err == nil {
			t.Error("expected error for generic type without arguments")
		}
	})
}
