package logger

import "strings"

// MaskPlate hides a license plate for log output, preserving the last two
// characters so operators can still correlate records.
func MaskPlate(plate string) string {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return ""
	}
	if len(plate) <= 2 {
		return "****"
	}
	return "****" + plate[len(plate)-2:]
}

// MaskJSON returns a deep-copied map with plate fields masked. Import
// metadata and request payloads pass through here before they are logged.
func MaskJSON(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		if isPlateKey(key) {
			if s, ok := value.(string); ok {
				out[key] = MaskPlate(s)
				continue
			}
			out[key] = "****"
			continue
		}
		out[key] = maskJSONValue(value)
	}
	return out
}

func maskJSONValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return MaskJSON(typed)
	case []any:
		items := make([]any, 0, len(typed))
		for _, entry := range typed {
			items = append(items, maskJSONValue(entry))
		}
		return items
	default:
		return value
	}
}

func isPlateKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Contains(key, "plate")
}
