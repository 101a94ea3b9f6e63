package memory

// copyValue deep copies JSON-like values so stored data cannot be mutated by callers
func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return copyFields(x)
	case []any:
		copied := make([]any, len(x))
		for i, item := range x {
			copied[i] = copyValue(item)
		}
		return copied
	case []string:
		return append([]string{}, x...)
	default:
		return v
	}
}

func copyFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = copyValue(v)
	}
	return copied
}
