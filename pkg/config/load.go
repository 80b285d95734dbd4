package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a settings file and decodes it by extension: .yaml/.yml,
// .json or .hcl.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(path, data)
}

// Decode parses data using the format implied by name's extension.
func Decode(name string, data []byte) (map[string]any, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".yaml", ".yml":
		return decodeYAML(name, data)
	case ".json":
		return decodeJSON(name, data)
	case ".hcl":
		return decodeHCL(name, data)
	default:
		return nil, fmt.Errorf("config: unsupported file extension %q", ext)
	}
}

func decodeYAML(name string, data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: decode yaml %s: %w", name, err)
	}
	return normalize(out).(map[string]any), nil
}

func decodeJSON(name string, data []byte) (map[string]any, error) {
	out := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: decode json %s: %w", name, err)
	}
	return out, nil
}

func decodeHCL(name string, data []byte) (map[string]any, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse hcl %s: %w", name, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("config: unexpected hcl body in %s", name)
	}
	return hclBodyToMap(body)
}

// hclBodyToMap flattens attributes and blocks into nested maps. Labelled
// blocks nest one level per label: component "button" { ... } becomes
// {"component": {"button": {...}}}.
func hclBodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		child, err := hclBodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		target := out
		key := block.Type
		for _, label := range block.Labels {
			next, ok := target[key].(map[string]any)
			if !ok {
				next = make(map[string]any)
				target[key] = next
			}
			target = next
			key = label
		}
		if existing, ok := target[key].(map[string]any); ok {
			for k, v := range child {
				existing[k] = v
			}
			continue
		}
		target[key] = child
	}
	return out, nil
}

func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("convert number: %w", err)
		}
		return f, nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, native)
		}
		return list, nil
	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in %q: %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported hcl value of type %s", ty.FriendlyName())
	}
}

// normalize rewrites map[any]any values left by yaml into map[string]any.
func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		for key, item := range v {
			v[key] = normalize(item)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		for idx, item := range v {
			v[idx] = normalize(item)
		}
		return v
	default:
		return v
	}
}
