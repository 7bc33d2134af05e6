// Package wire implements the message validation taxonomy shared by the
// ingest port (BusCoordinate frames) and the client port (newBounds
// frames): a registry of named schemas, each a list of
// (field, kind, human message) descriptors, producing one of three
// canonical Errors documents on failure. Modeled on the original
// implementation's is_coordinate_valid, generalized into reusable
// descriptor tables per a registry of named schemas rather than one
// hand-rolled check per message type.
package wire

import "encoding/json"

// Kind is the expected JSON scalar kind of one field.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindObject
)

// Field describes one required field of a schema: its JSON key, expected
// kind, and the human-readable message to report on a kind mismatch. For
// KindObject fields, Nested points at the schema validating the nested
// object.
type Field struct {
	Name    string
	Kind    Kind
	Message string
	Nested  *Schema
}

// Schema is a named, ordered set of required fields. A message validates
// against a Schema only if it decodes to a JSON object whose key set is
// exactly the schema's field names (extra or missing keys are a shape
// failure) and whose values match the declared kinds.
type Schema struct {
	Name   string
	Fields []Field
}

// Validate decodes message as JSON and checks it against the schema. On
// success it returns (true, nil, values) where values is the raw decoded
// field map. On failure it returns (false, errDoc, nil) with errDoc one of
// the three canonical Errors documents.
func (s Schema) Validate(message []byte) (ok bool, errDoc []byte, values map[string]any) {
	var decoded map[string]any
	if err := json.Unmarshal(message, &decoded); err != nil {
		return false, errInvalidJSONDoc, nil
	}
	if !sameKeys(decoded, s.Fields) {
		return false, errMissingShapeDoc, nil
	}
	for _, f := range s.Fields {
		v := decoded[f.Name]
		switch f.Kind {
		case KindString:
			if _, isString := v.(string); !isString {
				return false, errorsDoc(f.Message), nil
			}
		case KindFloat:
			if _, isFloat := v.(float64); !isFloat {
				return false, errorsDoc(f.Message), nil
			}
		case KindObject:
			obj, isObject := v.(map[string]any)
			if !isObject {
				return false, errorsDoc(f.Message), nil
			}
			if f.Nested != nil {
				nestedOk, nestedErr := validateValues(obj, *f.Nested)
				if !nestedOk {
					return false, nestedErr, nil
				}
			}
		}
	}
	return true, nil, decoded
}

// validateValues applies a schema to an already-decoded object (used for
// nested fields, e.g. newBounds' "data").
func validateValues(decoded map[string]any, s Schema) (bool, []byte) {
	if !sameKeys(decoded, s.Fields) {
		return false, errMissingShapeDoc
	}
	for _, f := range s.Fields {
		v := decoded[f.Name]
		switch f.Kind {
		case KindString:
			if _, isString := v.(string); !isString {
				return false, errorsDoc(f.Message)
			}
		case KindFloat:
			if _, isFloat := v.(float64); !isFloat {
				return false, errorsDoc(f.Message)
			}
		}
	}
	return true, nil
}

func sameKeys(decoded map[string]any, fields []Field) bool {
	if len(decoded) != len(fields) {
		return false
	}
	for _, f := range fields {
		if _, present := decoded[f.Name]; !present {
			return false
		}
	}
	return true
}
