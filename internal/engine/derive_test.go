package engine

import (
	"reflect"
	"testing"

	"github.com/shaiso/Enricher/internal/domain"
)

func TestTextOrDefault(t *testing.T) {
	r := domain.Record{
		"title":               "Backend Engineer",
		"years_of_experience": float64(5),
		"seniority_level":     "",
	}

	if got := TextOrDefault(r, FieldTitle, DefaultTitle); got != "Backend Engineer" {
		t.Errorf("title = %q", got)
	}
	if got := TextOrDefault(r, FieldYearsExperience, DefaultUnknown); got != "5" {
		t.Errorf("years_of_experience = %q, want %q", got, "5")
	}
	if got := TextOrDefault(r, FieldSeniorityLevel, DefaultUnknown); got != "unknown" {
		t.Errorf("seniority_level = %q, want unknown", got)
	}
	if got := TextOrDefault(domain.Record{}, FieldTitle, DefaultTitle); got != "Unknown" {
		t.Errorf("missing title = %q, want Unknown", got)
	}
	zero := domain.Record{
		"years_of_experience": float64(0),
		"seniority_level":     false,
		"title":               "0",
	}
	if got := TextOrDefault(zero, FieldYearsExperience, DefaultUnknown); got != "unknown" {
		t.Errorf("zero years_of_experience = %q, want unknown", got)
	}
	if got := TextOrDefault(zero, FieldSeniorityLevel, DefaultUnknown); got != "unknown" {
		t.Errorf("false seniority_level = %q, want unknown", got)
	}
	if got := TextOrDefault(zero, FieldTitle, DefaultTitle); got != "0" {
		t.Errorf("string title = %q, want 0", got)
	}
}

func TestJobText(t *testing.T) {
	if got := JobText(domain.Record{"jd_text": "a", "text": "b"}); got != "a" {
		t.Errorf("got %q, want a", got)
	}
	if got := JobText(domain.Record{"jd_text": "", "text": "b"}); got != "b" {
		t.Errorf("got %q, want b", got)
	}
	if got := JobText(domain.Record{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestSkillsWithContext(t *testing.T) {
	job := domain.Record{"skills": categorized()}

	got := SkillsWithContext(job)
	want := []SkillItem{{Skill: "Go", Context: "backend services"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := SkillsWithContext(domain.Record{}); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestDesiredExperienceAndEducation(t *testing.T) {
	job := domain.Record{
		"education_desired_experience": map[string]any{
			"desired_experience": []any{
				map[string]any{"experience": "5 years with distributed systems"},
				map[string]any{"experience": ""},
				"junk",
			},
			"education_preference": []any{
				map[string]any{"education": "BSc Computer Science"},
				map[string]any{"level": "phd"},
			},
		},
	}

	exp := DesiredExperience(job)
	if !reflect.DeepEqual(exp, []any{"5 years with distributed systems"}) {
		t.Errorf("desired experience = %v", exp)
	}

	edu := EducationPreferences(job)
	if !reflect.DeepEqual(edu, []any{"BSc Computer Science"}) {
		t.Errorf("education = %v", edu)
	}

	if got := DesiredExperience(domain.Record{}); got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
