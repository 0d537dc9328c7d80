package adapter

import (
	"reflect"
	"strings"
)

func objectSchema(t reflect.Type) (map[string]interface{}, []string) {
	t = indirectType(t)
	switch t.Kind() {
	case reflect.Struct:
		props := map[string]interface{}{}
		required := []string{}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" || isInternal(f) {
				continue
			}
			name, omitempty := jsonName(f)
			if name == "-" || name == "" {
				continue
			}
			props[name] = schemaForType(f.Type, f)
			if !omitempty && f.Type.Kind() != reflect.Ptr {
				required = append(required, name)
			}
		}
		return props, required
	default:
		return map[string]interface{}{"value": schemaForType(t, reflect.StructField{})}, nil
	}
}

func schemaForType(t reflect.Type, f reflect.StructField) map[string]interface{} {
	t = indirectType(t)
	var out map[string]interface{}
	switch t.Kind() {
	case reflect.Struct:
		props, req := objectSchema(t)
		out = map[string]interface{}{"type": "object", "properties": props}
		if len(req) > 0 {
			out["required"] = req
		}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			out = map[string]interface{}{"type": "string"}
			break
		}
		out = map[string]interface{}{"type": "array", "items": schemaForType(t.Elem(), reflect.StructField{})}
	case reflect.String:
		out = map[string]interface{}{"type": "string"}
	case reflect.Bool:
		out = map[string]interface{}{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out = map[string]interface{}{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		out = map[string]interface{}{"type": "number"}
	default:
		out = map[string]interface{}{"type": "object"}
	}
	applyMeta(out, f)
	return out
}

func applyMeta(m map[string]interface{}, f reflect.StructField) {
	if d := f.Tag.Get("description"); d != "" {
		m["description"] = d
	}
	if values := f.Tag.Get("enum"); values != "" {
		m["enum"] = strings.Split(values, ",")
	}
}

func isInternal(f reflect.StructField) bool { return f.Tag.Get("internal") == "true" }

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func jsonName(f reflect.StructField) (name string, omitempty bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "-", false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "" {
		name = lowerFirst(f.Name)
	} else {
		name = parts[0]
	}
	for _, p := range parts[1:] {
		if strings.TrimSpace(p) == "omitempty" {
			omitempty = true
			break
		}
	}
	return name, omitempty
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = []rune(strings.ToLower(string(r[0])))[0]
	return string(r)
}
