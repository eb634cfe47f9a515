package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shaiso/Enricher/internal/domain"
)

func echo(in *Inputs) map[string]any {
	return map[string]any{"text": in.Text}
}

func validPipeline() *Pipeline {
	return &Pipeline{
		Name:       "job",
		Kind:       domain.KindJob,
		TextFields: []string{"jd_text", "text"},
		Seed:       &OperationSpec{Key: "skills", Tool: "extract", Build: echo, Field: "skills"},
		Dependents: []OperationSpec{
			{Key: "responsibilities", Tool: "resp", Build: echo, Field: "responsibilities", Unwrap: "responsibilities"},
			{Key: "education", Tool: "edu", Build: echo, Field: "education_desired_experience"},
		},
		Concurrency: 2,
	}
}

func TestPipeline_Validate(t *testing.T) {
	if err := validPipeline().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		want   error
	}{
		{"no text fields", func(p *Pipeline) { p.TextFields = nil }, ErrNoTextFields},
		{"no dependents", func(p *Pipeline) { p.Dependents = nil }, ErrEmptyPipeline},
		{"zero concurrency", func(p *Pipeline) { p.Concurrency = 0 }, ErrInvalidConcurrency},
		{"empty key", func(p *Pipeline) { p.Dependents[0].Key = "" }, ErrEmptyOperationKey},
		{"duplicate key", func(p *Pipeline) { p.Dependents[1].Key = "skills" }, ErrDuplicateOperation},
		{"empty tool", func(p *Pipeline) { p.Seed.Tool = "" }, ErrEmptyToolName},
		{"no builder", func(p *Pipeline) { p.Dependents[1].Build = nil }, ErrMissingBuilder},
		{"no field", func(p *Pipeline) { p.Dependents[0].Field = "" }, ErrMissingField},
		{"duplicate field", func(p *Pipeline) { p.Dependents[1].Field = "skills" }, ErrDuplicateField},
		{"relation without field", func(p *Pipeline) { p.Related = &Relation{Kind: domain.KindJob} }, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)

			err := p.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestPipeline_ToolNames(t *testing.T) {
	got := validPipeline().ToolNames()
	want := []string{"extract", "resp", "edu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPipeline_Text(t *testing.T) {
	p := validPipeline()

	if got := p.Text(domain.Record{"jd_text": "  ", "text": "fallback"}); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
	if got := p.Text(domain.Record{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCalls(t *testing.T) {
	p := validPipeline()
	op := constOp("resp", `{}`)
	ops := map[string]Operation{"resp": op}

	calls := Calls(p.Dependents, &Inputs{Text: "jd"}, ops)
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Name != "responsibilities" || calls[0].Operation != op {
		t.Errorf("unexpected first call: %+v", calls[0])
	}
	if calls[1].Operation != nil {
		t.Errorf("expected unbound second call")
	}
	if calls[0].Payload["text"] != "jd" {
		t.Errorf("payload = %v", calls[0].Payload)
	}
}
