package orchestrator

import (
	"github.com/shaiso/Enricher/internal/domain"
	"github.com/shaiso/Enricher/internal/engine"
)

// Имена пайплайнов.
const (
	PipelineJob       = "job"
	PipelineCandidate = "candidate"
)

// Границы параллелизма зависимых стадий по умолчанию.
const (
	DefaultJobConcurrency       = 2
	DefaultCandidateConcurrency = 6
)

// Ключи операций пайплайна вакансий.
const (
	OpJobSkills           = "skills"
	OpJobResponsibilities = "responsibilities"
	OpJobEducationDesired = "education_desired_experience"
)

// Ключи операций пайплайна кандидатов.
const (
	OpCandidateSparse        = "sparse"
	OpCandidatePI            = "pi"
	OpCandidateSkills        = "skills"
	OpCandidateDesiredExp    = "desired_exp_eval"
	OpCandidateEducation     = "education_eval"
	OpCandidateResumeSummary = "resume_summary"
)

// Поля записи кандидата.
const (
	FieldJobID         = "job_id"
	FieldSparseResume  = "sparse_resume"
	FieldPIDetails     = "pi_details"
	FieldSkillsEval    = "skills_eval"
	FieldResumeSummary = "resume_summary"
)

// DefaultJobTools возвращает имена инструментов пайплайна вакансий по ключам операций.
func DefaultJobTools() map[string]string {
	return map[string]string{
		OpJobSkills:           "extractskills___jd_extract_jd_skills",
		OpJobResponsibilities: "responsibilities___jd_responsibility_extractor",
		OpJobEducationDesired: "desiredexperienceeducation___jd_desired_experience_education",
	}
}

// DefaultCandidateTools возвращает имена инструментов пайплайна кандидатов.
func DefaultCandidateTools() map[string]string {
	return map[string]string{
		OpCandidateSparse:        "sparsecheck___resume_sparse_checker",
		OpCandidatePI:            "pi___resume_pi_extractor",
		OpCandidateSkills:        "skillscorer___resume_skills_scorer",
		OpCandidateDesiredExp:    "desirediexpeval___resume_desired_experience_scorer",
		OpCandidateEducation:     "educationeval___resume_education_evaluator",
		OpCandidateResumeSummary: "summarizer___resume_summarizer",
	}
}

// toolName возвращает имя инструмента с учётом переопределений.
func toolName(overrides, defaults map[string]string, key string) string {
	if name := overrides[key]; name != "" {
		return name
	}
	return defaults[key]
}

// JobPipeline описывает обогащение вакансии.
//
// Seed извлекает навыки из текста; обязательные навыки передаются
// в извлечение обязанностей и желаемого опыта/образования.
func JobPipeline(tools map[string]string, concurrency int) *engine.Pipeline {
	defaults := DefaultJobTools()
	if concurrency < 1 {
		concurrency = DefaultJobConcurrency
	}

	return &engine.Pipeline{
		Name:       PipelineJob,
		Kind:       domain.KindJob,
		TextFields: []string{engine.FieldJobText, engine.FieldText},
		Seed: &engine.OperationSpec{
			Key:  OpJobSkills,
			Tool: toolName(tools, defaults, OpJobSkills),
			Build: func(in *engine.Inputs) map[string]any {
				return map[string]any{"jd": in.Text}
			},
			Field: engine.FieldSkills,
		},
		Dependents: []engine.OperationSpec{
			{
				Key:  OpJobResponsibilities,
				Tool: toolName(tools, defaults, OpJobResponsibilities),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"title":               engine.TextOrDefault(in.Record, engine.FieldTitle, engine.DefaultTitle),
						"years_of_experience": engine.TextOrDefault(in.Record, engine.FieldYearsExperience, engine.DefaultUnknown),
						"seniority_level":     engine.TextOrDefault(in.Record, engine.FieldSeniorityLevel, engine.DefaultUnknown),
						"jd":                  in.Text,
						"must_have_skills":    in.Required,
					}
				},
				Field:  "responsibilities",
				Unwrap: "responsibilities",
			},
			{
				Key:  OpJobEducationDesired,
				Tool: toolName(tools, defaults, OpJobEducationDesired),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"title":            engine.TextOrDefault(in.Record, engine.FieldTitle, engine.DefaultTitle),
						"jd":               in.Text,
						"must_have_skills": in.Required,
					}
				},
				Field: engine.FieldEducationDesired,
			},
		},
		Concurrency: concurrency,
	}
}

// CandidatePipeline описывает обогащение кандидата.
//
// Seed нет; все операции зависят только от резюме и вакансии (job_id).
func CandidatePipeline(tools map[string]string, concurrency int) *engine.Pipeline {
	defaults := DefaultCandidateTools()
	if concurrency < 1 {
		concurrency = DefaultCandidateConcurrency
	}

	resumeOnly := func(in *engine.Inputs) map[string]any {
		return map[string]any{"resume_text": in.Text}
	}

	return &engine.Pipeline{
		Name:       PipelineCandidate,
		Kind:       domain.KindCandidate,
		TextFields: []string{engine.FieldResumeText},
		Related:    &engine.Relation{Field: FieldJobID, Kind: domain.KindJob},
		Dependents: []engine.OperationSpec{
			{
				Key:    OpCandidateSparse,
				Tool:   toolName(tools, defaults, OpCandidateSparse),
				Build:  resumeOnly,
				Field:  FieldSparseResume,
				Unwrap: FieldSparseResume,
			},
			{
				Key:   OpCandidatePI,
				Tool:  toolName(tools, defaults, OpCandidatePI),
				Build: resumeOnly,
				Field: FieldPIDetails,
			},
			{
				Key:  OpCandidateSkills,
				Tool: toolName(tools, defaults, OpCandidateSkills),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"resume_text":         in.Text,
						"skills_with_context": engine.SkillsWithContext(in.Related),
					}
				},
				Field: FieldSkillsEval,
			},
			{
				Key:  OpCandidateDesiredExp,
				Tool: toolName(tools, defaults, OpCandidateDesiredExp),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"resume_text":        in.Text,
						"desired_experience": engine.DesiredExperience(in.Related),
					}
				},
				Field: OpCandidateDesiredExp,
			},
			{
				Key:  OpCandidateEducation,
				Tool: toolName(tools, defaults, OpCandidateEducation),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"jd_education_and_certifications": engine.EducationPreferences(in.Related),
						"resume_text":                     in.Text,
					}
				},
				Field: OpCandidateEducation,
			},
			{
				Key:  OpCandidateResumeSummary,
				Tool: toolName(tools, defaults, OpCandidateResumeSummary),
				Build: func(in *engine.Inputs) map[string]any {
					return map[string]any{
						"jd_text":     engine.JobText(in.Related),
						"resume_text": in.Text,
					}
				},
				Field: FieldResumeSummary,
			},
		},
		Concurrency: concurrency,
	}
}
