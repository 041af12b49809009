package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// State tracks a generation draft through the orchestrator.
type State string

const (
	StatePending   State = "pending"
	StateToolPhase State = "tool_phase"
	StateDrafted   State = "drafted"
	StateValidated State = "validated"
	StateCoerced   State = "coerced"
	StateFailed    State = "failed"
)

// Schema describes the target type a generation must conform to.
// Description is the JSON shape text injected into the system prompt;
// Required lists the top-level fields a draft must carry; New returns a
// pointer to a fresh instance of the target type.
type Schema struct {
	Name        string
	Description string
	Required    []string
	New         func() interface{}
}

// SchemaError reports a draft that could not be validated or coerced into
// the target schema. RawPayload is kept for operator diagnosis.
type SchemaError struct {
	Schema     string
	Reason     string
	RawPayload string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("draft does not conform to %s schema: %s", e.Schema, e.Reason)
}

// conform runs the two-stage protocol against a draft payload: first a
// strict decode into the target type, then a field-by-field coercion from
// the untyped document. It reports which stage succeeded.
func (s Schema) conform(payload []byte) (interface{}, State, error) {
	payload = extractJSON(payload)

	var doc map[string]interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, StateFailed, &SchemaError{Schema: s.Name, Reason: "draft is not a JSON object", RawPayload: string(payload)}
	}

	if missing := s.missingFields(doc); len(missing) > 0 {
		return nil, StateFailed, &SchemaError{
			Schema:     s.Name,
			Reason:     "missing required fields: " + strings.Join(missing, ", "),
			RawPayload: string(payload),
		}
	}

	// Stage one: the draft may already be an instance of the schema.
	target := s.New()
	strict := json.NewDecoder(bytes.NewReader(payload))
	strict.DisallowUnknownFields()
	if err := strict.Decode(target); err == nil {
		return target, StateValidated, nil
	}

	// Stage two: coerce the untyped document field by field.
	target = s.New()
	coerced := coerceValue(doc, reflect.TypeOf(target).Elem())
	data, err := json.Marshal(coerced)
	if err == nil {
		if err := json.Unmarshal(data, target); err == nil {
			return target, StateCoerced, nil
		}
	}

	return nil, StateFailed, &SchemaError{Schema: s.Name, Reason: "coercion failed", RawPayload: string(payload)}
}

func (s Schema) missingFields(doc map[string]interface{}) []string {
	var missing []string
	for _, field := range s.Required {
		if value, ok := doc[field]; !ok || value == nil {
			missing = append(missing, field)
		}
	}
	return missing
}

// coerceValue reshapes an untyped JSON value to fit the target type:
// numeric strings become numbers, numbers become strings, scalars are
// wrapped into single-element slices, and unknown object keys are
// dropped. Values it cannot reconcile are passed through so the final
// decode reports the failure.
func coerceValue(value interface{}, target reflect.Type) interface{} {
	if value == nil {
		return nil
	}

	switch target.Kind() {
	case reflect.Ptr:
		return coerceValue(value, target.Elem())

	case reflect.Struct:
		doc, ok := value.(map[string]interface{})
		if !ok {
			return value
		}
		out := make(map[string]interface{}, len(doc))
		for name, fieldType := range jsonFields(target) {
			if raw, ok := doc[name]; ok {
				out[name] = coerceValue(raw, fieldType)
			}
		}
		return out

	case reflect.Slice:
		items, ok := value.([]interface{})
		if !ok {
			// A single value where a list is expected becomes a
			// one-element list.
			items = []interface{}{value}
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = coerceValue(item, target.Elem())
		}
		return out

	case reflect.Map:
		doc, ok := value.(map[string]interface{})
		if !ok {
			return value
		}
		out := make(map[string]interface{}, len(doc))
		for key, item := range doc {
			out[key] = coerceValue(item, target.Elem())
		}
		return out

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if s, ok := value.(string); ok {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n
			}
		}
		return value

	case reflect.String:
		switch v := value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
		return value

	default:
		return value
	}
}

// jsonFields maps a struct's JSON field names to their types, honoring
// tags and skipping unexported or omitted fields.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				name = parts[0]
			}
		}
		fields[name] = f.Type
	}
	return fields
}

// extractJSON strips markdown code fences and any surrounding prose so
// only the outermost JSON object remains.
func extractJSON(payload []byte) []byte {
	s := strings.TrimSpace(string(payload))

	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		s = s[start : end+1]
	}

	return []byte(strings.TrimSpace(s))
}
