package models

// IDField is the document member every synced record must carry.
// Its value is a non-empty string unique within the record's collection.
const IDField = "id"

// Document is a single schemaless record inside a collection.
//
// Records are plain JSON objects; the sync engine never interprets any
// member beyond [IDField]. Cross-collection references are stored as
// plain foreign-key strings (e.g. a price document carrying "storeId").
type Document map[string]any

// ID returns the document identifier, or "" when the member is missing
// or is not a string.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a deep copy of the document. Nested objects and arrays
// are copied recursively so mutations of the clone never leak into the
// original.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case Document:
		return cloneValue(map[string]any(typed))
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return typed
	}
}

// StripAbsent returns a copy of the document with every valueless member
// removed, recursively: a member whose value is nil (JSON null, or an
// optional field that was never set) is dropped from objects at any
// nesting depth, including objects inside arrays. The remote store
// rejects writes containing such members, so every record passes through
// here before transmission.
func StripAbsent(d Document) Document {
	if d == nil {
		return nil
	}
	return stripValue(map[string]any(d)).(map[string]any)
}

func stripValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			if inner == nil {
				continue
			}
			out[k] = stripValue(inner)
		}
		return out
	case Document:
		return stripValue(map[string]any(typed))
	case []any:
		out := make([]any, 0, len(typed))
		for _, inner := range typed {
			if inner == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, stripValue(inner))
		}
		return out
	default:
		return typed
	}
}
