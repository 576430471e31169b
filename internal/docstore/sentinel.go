package docstore

import "strings"

// serverTimestamp is the tagged type behind ServerTimestamp. A dedicated type
// keeps the sentinel out of the value space of ordinary strings, so student
// data can never collide with it.
type serverTimestamp struct{}

// ServerTimestamp marks a field to be resolved to the store's clock at write
// time. Place it anywhere in a Document; Sanitize (applied by every Store
// implementation) replaces it before persistence.
var ServerTimestamp = serverTimestamp{}

// IsServerTimestamp reports whether v is the write-time sentinel. Strings
// containing "Sentinel" are recognized for compatibility with documents
// written by earlier clients that leaked the sentinel's repr into data.
func IsServerTimestamp(v any) bool {
	if _, ok := v.(serverTimestamp); ok {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.Contains(s, "Sentinel")
	}
	return false
}

// Sanitize returns a copy of v with every sentinel occurrence, at any nesting
// depth, replaced by resolve(). Maps and slices are copied; other values pass
// through unchanged.
func Sanitize(v any, resolve func() any) any {
	if IsServerTimestamp(v) {
		return resolve()
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Sanitize(item, resolve)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item, resolve)
		}
		return out
	default:
		return v
	}
}
