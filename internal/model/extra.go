package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds the body members a record carries beyond its typed fields:
// unknown keys, and known keys whose value did not fit the field type.
// They are stored and echoed back untouched.
type Extra map[string]json.RawMessage

// Forget drops keys the server owns so they cannot shadow the typed value.
func (e Extra) Forget(keys ...string) {
	for _, k := range keys {
		delete(e, k)
	}
}

var fieldIndexes sync.Map // reflect.Type -> map[string]int

func jsonFields(t reflect.Type) map[string]int {
	if v, ok := fieldIndexes.Load(t); ok {
		return v.(map[string]int)
	}
	idx := make(map[string]int, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		idx[name] = i
	}
	fieldIndexes.Store(t, idx)
	return idx
}

// decodeLenient merges the JSON object b into the struct dst points at.
// Members that decode into their field are applied the way encoding/json
// would; the rest land in extra. Only a body that is not an object fails.
func decodeLenient(b []byte, dst any, extra *Extra) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(b, &members); err != nil {
		return err
	}
	if *extra == nil {
		*extra = Extra{}
	}
	rv := reflect.ValueOf(dst).Elem()
	fields := jsonFields(rv.Type())
	for key, raw := range members {
		i, ok := fields[key]
		if !ok {
			(*extra)[key] = raw
			continue
		}
		field := rv.Field(i)
		v := reflect.New(field.Type())
		v.Elem().Set(field)
		if err := json.Unmarshal(raw, v.Interface()); err != nil {
			(*extra)[key] = raw
			continue
		}
		field.Set(v.Elem())
		delete(*extra, key)
	}
	if len(*extra) == 0 {
		*extra = nil
	}
	return nil
}

// encodeWithExtra marshals v and lays the extra members over the result.
func encodeWithExtra(v any, extra Extra) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		out[k] = raw
	}
	return json.Marshal(out)
}
