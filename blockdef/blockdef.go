// Package blockdef loads block type declarations written in HCL:
//
//	block "get_var_block" {
//	  message = "%1"
//	  field "VAR" {
//	    kind           = "field_variable"
//	    variable       = "name1"
//	    variable_types = ["type1"]
//	    default_type   = "type1"
//	  }
//	}
//
// The result feeds workspace.WithBlockTypes.
package blockdef

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/tailored-agentic-units/varbind/workspace"
)

type fileRoot struct {
	Blocks []*blockDecl `hcl:"block,block"`
}

type blockDecl struct {
	Type    string         `hcl:"type,label"`
	Message hcl.Expression `hcl:"message,optional"`
	Fields  []*fieldDecl   `hcl:"field,block"`
}

type fieldDecl struct {
	Name          string         `hcl:"name,label"`
	Kind          string         `hcl:"kind"`
	Variable      string         `hcl:"variable,optional"`
	VariableTypes hcl.Expression `hcl:"variable_types,optional"`
	DefaultType   string         `hcl:"default_type,optional"`
}

var argRef = regexp.MustCompile(`%(\d+)`)

// Parse decodes the block types declared in src. filename only labels
// diagnostics.
func Parse(src []byte, filename string) ([]workspace.BlockType, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse block definitions %s: %w", filename, diags)
	}

	types, diags := decode(file, make(map[string]bool))
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode block definitions %s: %w", filename, diags)
	}
	return types, nil
}

// LoadFiles parses each file in order. A block type declared twice, in the
// same file or across files, is an error.
func LoadFiles(paths ...string) ([]workspace.BlockType, error) {
	parser := hclparse.NewParser()
	seen := make(map[string]bool)

	var all []workspace.BlockType
	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse block definitions %s: %w", path, diags)
		}

		types, diags := decode(file, seen)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode block definitions %s: %w", path, diags)
		}
		all = append(all, types...)
	}
	return all, nil
}

func decode(file *hcl.File, seen map[string]bool) ([]workspace.BlockType, hcl.Diagnostics) {
	var root fileRoot
	diags := gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, diags
	}

	types := make([]workspace.BlockType, 0, len(root.Blocks))
	for _, decl := range root.Blocks {
		if seen[decl.Type] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate block type",
				Detail:   fmt.Sprintf("Block type %q is already declared.", decl.Type),
			})
			continue
		}
		seen[decl.Type] = true

		bt, blockDiags := translate(decl)
		diags = append(diags, blockDiags...)
		if !blockDiags.HasErrors() {
			types = append(types, bt)
		}
	}
	return types, diags
}

func translate(decl *blockDecl) (workspace.BlockType, hcl.Diagnostics) {
	bt := workspace.BlockType{Type: decl.Type}

	message, diags := evalString(decl.Message)
	bt.Message = message

	names := make(map[string]bool)
	for _, fd := range decl.Fields {
		if names[fd.Name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate field",
				Detail:   fmt.Sprintf("Block type %q declares field %q more than once.", decl.Type, fd.Name),
			})
			continue
		}
		names[fd.Name] = true

		types, typeDiags := evalStrings(fd.VariableTypes)
		diags = append(diags, typeDiags...)

		bt.Fields = append(bt.Fields, workspace.FieldSpec{
			Kind:          fd.Kind,
			Name:          fd.Name,
			Variable:      fd.Variable,
			VariableTypes: types,
			DefaultType:   fd.DefaultType,
		})
	}

	if !diags.HasErrors() && bt.Message != "" {
		diags = append(diags, checkMessage(bt, decl.Message.Range())...)
	}
	return bt, diags
}

// checkMessage requires every %N in the message to name a declared field and
// every field to be referenced exactly once.
func checkMessage(bt workspace.BlockType, rng hcl.Range) hcl.Diagnostics {
	fields := len(bt.Fields)

	var diags hcl.Diagnostics
	used := make(map[int]int)
	for _, m := range argRef.FindAllStringSubmatch(bt.Message, -1) {
		n, _ := strconv.Atoi(m[1])
		if n < 1 || n > fields {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Message reference out of range",
				Detail:   fmt.Sprintf("Block type %q references %%%d but declares %d field(s).", bt.Type, n, fields),
				Subject:  rng.Ptr(),
			})
			continue
		}
		used[n]++
	}

	for i := 1; i <= fields; i++ {
		if used[i] != 1 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Message does not reference field exactly once",
				Detail:   fmt.Sprintf("Block type %q references %%%d %d time(s); want 1.", bt.Type, i, used[i]),
				Subject:  rng.Ptr(),
			})
		}
	}
	return diags
}

func evalString(expr hcl.Expression) (string, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.IsNull() {
		return "", diags
	}

	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid message",
			Detail:   fmt.Sprintf("A string is required: %s.", err),
			Subject:  expr.Range().Ptr(),
		})
	}
	return val.AsString(), diags
}

func evalStrings(expr hcl.Expression) ([]string, hcl.Diagnostics) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.IsNull() {
		return nil, diags
	}

	val, err := convert.Convert(val, cty.List(cty.String))
	if err == nil && !val.IsWhollyKnown() {
		err = errors.New("value must be known")
	}
	var out []string
	if err == nil {
		err = gocty.FromCtyValue(val, &out)
	}
	if err != nil {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid variable_types",
			Detail:   fmt.Sprintf("A list of strings is required: %s.", err),
			Subject:  expr.Range().Ptr(),
		})
	}
	return out, diags
}
