package engine

import (
	"encoding/json"
	"strings"

	"github.com/shaiso/Enricher/internal/domain"
)

// Значения по умолчанию для отсутствующих полей записи.
const (
	DefaultTitle   = "Unknown"
	DefaultUnknown = "unknown"
)

// Поля записей, из которых строятся входы операций.
const (
	FieldJobText          = "jd_text"
	FieldText             = "text"
	FieldResumeText       = "resume_text"
	FieldTitle            = "title"
	FieldYearsExperience  = "years_of_experience"
	FieldSeniorityLevel   = "seniority_level"
	FieldSkills           = "skills"
	FieldEducationDesired = "education_desired_experience"
)

// TextOrDefault возвращает поле записи как текст или значение по умолчанию.
// Числа приводятся к тексту. Пустые, нулевые (0, false) и отсутствующие
// значения заменяются def: 0 лет опыта в вакансии означает «не указано».
func TextOrDefault(r domain.Record, key, def string) string {
	if isZeroValue(r[key]) {
		return def
	}
	if s := r.String(key); strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// isZeroValue проверяет нулевые скаляры: 0 и false.
func isZeroValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return !val
	case float64:
		return val == 0
	case float32:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case int32:
		return val == 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

// JobText возвращает текст вакансии: jd_text, затем text.
func JobText(job domain.Record) string {
	return job.FirstString(FieldJobText, FieldText)
}

// SkillsWithContext возвращает обязательные навыки вакансии с контекстом.
// Навыки по категориям идут раньше неклассифицированных.
func SkillsWithContext(job domain.Record) []SkillItem {
	return RequiredSkills(job[FieldSkills])
}

// DesiredExperience возвращает формулировки желаемого опыта вакансии
// из education_desired_experience.desired_experience[].experience.
func DesiredExperience(job domain.Record) []any {
	return pluck(job.Map(FieldEducationDesired), "desired_experience", "experience")
}

// EducationPreferences возвращает требования к образованию вакансии
// из education_desired_experience.education_preference[].education.
func EducationPreferences(job domain.Record) []any {
	return pluck(job.Map(FieldEducationDesired), "education_preference", "education")
}

// pluck собирает непустые значения поля field из объектов списка doc[list].
func pluck(doc map[string]any, list, field string) []any {
	out := make([]any, 0)
	if doc == nil {
		return out
	}

	items, _ := doc[list].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if v := m[field]; truthy(v) {
			out = append(out, v)
		}
	}
	return out
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
