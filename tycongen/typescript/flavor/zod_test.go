package flavor

import (
	"strings"
	"testing"

	"github.com/broady/tycon/tycongen/ir"
	"github.com/broady/tycon/tycongen/ir/irtest"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		flavor  string
		want    []string
		notWant []string
	}{
		{
			flavor: "zod",
			want: []string{
				"// Code generated by tycon. DO NOT EDIT.\n",
				`import { z } from "zod";`,
				"export const UserSchema = z.object({\n  id: z.int(),\n  email: z.string().min(1).email(),\n  nickname: z.string().optional(),\n  role: z.lazy(() => RoleSchema),\n});\n",
				`export const RoleSchema = z.enum(["admin", "member"]);`,
				"age: z.int32().gte(13).optional(),",
				"title: z.string().min(1).max(200),",
				"tags: z.array(z.string()),",
				"export const getUserParamIdValidator = z.coerce.number().pipe(z.int32());",
				"export const getUserHeaderRequestIDValidator = z.string();",
				"export const getUserHeaderLocaleValidator = z.string().optional();",
				"export const getUserResponseValidator = UserSchema;",
				"export const getUserCustomError404Validator = NotFoundErrorSchema;",
				"export const getUserDefaultErrorValidator = ApiErrorSchema;",
				"export const createUserRequestValidator = CreateUserRequestSchema;",
				"export const createUserCustomError409Validator = ApiErrorSchema;",
				"export const listPostsParamUserIdValidator = z.coerce.number().pipe(z.int());",
				`export const listPostsParamTagValidator = z.string().transform((s) => s.split(",")).pipe(z.array(z.string()));`,
				"export const listPostsResponseValidator = z.array(z.lazy(() => PostSchema));",
				"export const listPostsDefaultErrorValidator = z.unknown();",
			},
			notWant: []string{"getUserRequestValidator", "listPostsRequestValidator", "zod/mini"},
		},
		{
			flavor: "zod-mini",
			want: []string{
				`import * as z from "zod/mini";`,
				"email: z.string().check(z.minLength(1), z.email()),",
				"nickname: z.optional(z.string()),",
				"age: z.optional(z.int32().check(z.gte(13))),",
				"title: z.string().check(z.minLength(1), z.maxLength(200)),",
				"export const getUserParamIdValidator = z.pipe(z.coerce.number(), z.int32());",
				"export const getUserHeaderLocaleValidator = z.optional(z.string());",
				`export const listPostsParamTagValidator = z.pipe(z.pipe(z.string(), z.transform((s) => s.split(","))), z.array(z.string()));`,
			},
			notWant: []string{".optional()", ").pipe("},
		},
	}
	for _, tt := range tests {
		t.Run(tt.flavor, func(t *testing.T) {
			f, err := Get(tt.flavor)
			if err != nil {
				t.Fatal(err)
			}
			if f.Name() != tt.flavor {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.flavor)
			}
			ctx := &EmitContext{}
			got := string(Generate(f, ctx, irtest.Api(t)))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q\ngot:\n%s", w, got)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("output should not contain %q", nw)
				}
			}
			if len(ctx.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", ctx.Warnings)
			}
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := Get("yup"); err == nil {
		t.Error("expected error for unknown flavor")
	}
}

func TestZodFlavor_Constraints(t *testing.T) {
	tests := []struct {
		name     string
		prop     ir.Property
		want     string
		warnings []string
	}{
		{
			name: "numeric oneof",
			prop: ir.Property{Name: "n", Type: ir.Int32(), ValidateTag: "oneof=1 2"},
			want: "z.union([z.literal(1), z.literal(2)])",
		},
		{
			name: "string oneof",
			prop: ir.Property{Name: "s", Type: ir.String(), ValidateTag: "required,oneof=a b"},
			want: `z.enum(["a", "b"])`,
		},
		{
			name: "array length",
			prop: ir.Property{Name: "xs", Type: ir.Array(ir.String()), ValidateTag: "min=1,dive"},
			want: "z.array(z.string()).min(1)",
		},
		{
			name:     "unknown rule",
			prop:     ir.Property{Name: "s", Type: ir.String(), ValidateTag: "bogus"},
			want:     "z.string()",
			warnings: []string{"unknown_validator: bogus on T.s"},
		},
		{
			name:     "format on number",
			prop:     ir.Property{Name: "n", Type: ir.Int64(), ValidateTag: "email"},
			want:     "z.int()",
			warnings: []string{"unknown_validator: email on T.n"},
		},
		{
			name:     "rule on reference",
			prop:     ir.Property{Name: "r", Type: ir.Ref("Role"), ValidateTag: "required,min=1"},
			want:     "z.lazy(() => RoleSchema)",
			warnings: []string{"unsupported_validator: min on T.r"},
		},
		{
			name: "required keeps optional field required",
			prop: ir.Property{Name: "s", Type: ir.String(), Optional: true, ValidateTag: "required"},
			want: "z.string().min(1)",
		},
		{
			name: "string equality",
			prop: ir.Property{Name: "s", Type: ir.String(), ValidateTag: "eq=x"},
			want: `z.string().refine((v) => v === "x")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &EmitContext{Types: ir.NewTypeTable(), IndentStr: "  "}
			f := &ZodFlavor{}
			if got := f.property(ctx, "T", tt.prop); got != tt.want {
				t.Errorf("property() = %s, want %s", got, tt.want)
			}
			if len(ctx.Warnings) != len(tt.warnings) {
				t.Fatalf("warnings = %v, want %v", ctx.Warnings, tt.warnings)
			}
			for i, w := range tt.warnings {
				if !strings.HasPrefix(ctx.Warnings[i], w) {
					t.Errorf("warning %d = %q, want prefix %q", i, ctx.Warnings[i], w)
				}
			}
		})
	}
}

func TestParseRules(t *testing.T) {
	got := ParseRules(" required, min=8 ,,oneof=a b")
	want := []Rule{{Name: "required"}, {Name: "min", Param: "8"}, {Name: "oneof", Param: "a b"}}
	if len(got) != len(want) {
		t.Fatalf("ParseRules() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rule %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !HasRequired(got) {
		t.Error("HasRequired() = false")
	}
	if v := OneOf(got); len(v) != 2 || v[0] != "a" {
		t.Errorf("OneOf() = %v", v)
	}
	if ParseRules("") != nil {
		t.Error("ParseRules(\"\") should be nil")
	}
}
