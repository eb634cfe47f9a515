package domain

// Ключи AttributeValue-представления (формат экспорта DynamoDB).
var attributeKeys = map[string]bool{
	"S":    true,
	"N":    true,
	"M":    true,
	"L":    true,
	"BOOL": true,
	"NULL": true,
}

// Normalize приводит документ в AttributeValue-форме к обычным значениям.
//
// Документ считается AttributeValue-формой, если хотя бы одно поле верхнего
// уровня похоже на {"S": ...}, {"N": ...}, {"M": ...} и т.п. В этом случае
// конвертируется весь документ. Обычные документы возвращаются как есть.
//
// Значения "N" остаются строками — вызывающий код сам приводит их к числу.
func Normalize(doc map[string]any) map[string]any {
	if !looksLikeAttributeItem(doc) {
		return doc
	}

	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = denormalize(v)
	}
	return out
}

func looksLikeAttributeItem(doc map[string]any) bool {
	for _, v := range doc {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k := range m {
			if attributeKeys[k] {
				return true
			}
		}
	}
	return false
}

func denormalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 1 {
			for key, inner := range val {
				switch key {
				case "S":
					return inner
				case "N":
					return Stringify(inner)
				case "BOOL":
					b, _ := inner.(bool)
					return b
				case "NULL":
					return nil
				case "L":
					items, _ := inner.([]any)
					out := make([]any, len(items))
					for i, item := range items {
						out[i] = denormalize(item)
					}
					return out
				case "M":
					fields, _ := inner.(map[string]any)
					out := make(map[string]any, len(fields))
					for k, item := range fields {
						out[k] = denormalize(item)
					}
					return out
				}
			}
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = denormalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = denormalize(item)
		}
		return out
	default:
		return val
	}
}
