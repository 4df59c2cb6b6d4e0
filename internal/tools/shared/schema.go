package shared

// ObjectSchema builds a JSON schema object with the given properties.
func ObjectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	if props == nil {
		props = map[string]interface{}{}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func StringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func NumberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func EnumProp(description string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description, "enum": values}
}

func StringListProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "array", "description": description, "items": map[string]interface{}{"type": "string"}}
}
