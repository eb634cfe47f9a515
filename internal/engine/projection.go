package engine

// Shape — распознанная форма результата извлечения навыков.
type Shape int

const (
	// ShapeUnrecognized — форма не распознана, проекция пуста.
	ShapeUnrecognized Shape = iota

	// ShapeFlatList — плоский список строк ["Go", "SQL"].
	ShapeFlatList

	// ShapeCategorized — {"categories":[{"verticals":[{"skills":[...]}]}]},
	// возможно с дополнительным "skills_unclassified".
	ShapeCategorized

	// ShapeUnclassified — объект только с "skills_unclassified".
	ShapeUnclassified
)

// String возвращает имя формы (для логов).
func (s Shape) String() string {
	switch s {
	case ShapeFlatList:
		return "flat_list"
	case ShapeCategorized:
		return "categorized"
	case ShapeUnclassified:
		return "unclassified"
	default:
		return "unrecognized"
	}
}

// SkillItem — обязательный навык с контекстом из текста вакансии.
type SkillItem struct {
	Skill   string `json:"skill"`
	Context string `json:"jd_context"`
}

// ClassifySkills определяет форму результата извлечения навыков.
// Плоский список строк имеет приоритет над остальными формами.
func ClassifySkills(v any) Shape {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if _, ok := item.(string); !ok {
				return ShapeUnrecognized
			}
		}
		return ShapeFlatList
	case []string:
		return ShapeFlatList
	case map[string]any:
		if _, ok := val["categories"].([]any); ok {
			return ShapeCategorized
		}
		if _, ok := val["skills_unclassified"].([]any); ok {
			return ShapeUnclassified
		}
	}
	return ShapeUnrecognized
}

// RequiredItems возвращает имена обязательных навыков.
//
// Плоский список возвращается как есть. Для вложенной формы собираются
// навыки с "required": true и непустым "skill": сначала по категориям,
// затем из "skills_unclassified". Нераспознанная форма даёт пустой список.
func RequiredItems(v any) []string {
	switch ClassifySkills(v) {
	case ShapeFlatList:
		return flatItems(v)
	case ShapeCategorized, ShapeUnclassified:
		items := RequiredSkills(v)
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.Skill)
		}
		return names
	default:
		return []string{}
	}
}

// RequiredSkills возвращает обязательные навыки вложенной формы вместе
// с их контекстом. Для плоского списка и нераспознанных форм — пустой список.
func RequiredSkills(v any) []SkillItem {
	doc, ok := v.(map[string]any)
	if !ok {
		return []SkillItem{}
	}

	items := make([]SkillItem, 0)

	categories, _ := doc["categories"].([]any)
	for _, category := range categories {
		c, ok := category.(map[string]any)
		if !ok {
			continue
		}
		verticals, _ := c["verticals"].([]any)
		for _, vertical := range verticals {
			vm, ok := vertical.(map[string]any)
			if !ok {
				continue
			}
			skills, _ := vm["skills"].([]any)
			items = appendRequired(items, skills)
		}
	}

	unclassified, _ := doc["skills_unclassified"].([]any)
	items = appendRequired(items, unclassified)

	return items
}

func appendRequired(items []SkillItem, skills []any) []SkillItem {
	for _, s := range skills {
		skill, ok := s.(map[string]any)
		if !ok {
			continue
		}
		if required, _ := skill["required"].(bool); !required {
			continue
		}
		name, _ := skill["skill"].(string)
		if name == "" {
			continue
		}
		context, _ := skill["context"].(string)
		items = append(items, SkillItem{Skill: name, Context: context})
	}
	return items
}

func flatItems(v any) []string {
	switch val := v.(type) {
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, item.(string))
		}
		return out
	}
	return []string{}
}
