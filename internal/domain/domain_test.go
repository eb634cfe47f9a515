package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNormalize_AttributeValue(t *testing.T) {
	doc := map[string]any{
		"id":       map[string]any{"S": "c1"},
		"years":    map[string]any{"N": "5"},
		"remote":   map[string]any{"BOOL": true},
		"missing":  map[string]any{"NULL": true},
		"tags":     map[string]any{"L": []any{map[string]any{"S": "go"}, map[string]any{"N": "2"}}},
		"job":      map[string]any{"M": map[string]any{"title": map[string]any{"S": "Engineer"}}},
		"raw_text": "plain",
	}

	got := Normalize(doc)
	want := map[string]any{
		"id":       "c1",
		"years":    "5",
		"remote":   true,
		"missing":  nil,
		"tags":     []any{"go", "2"},
		"job":      map[string]any{"title": "Engineer"},
		"raw_text": "plain",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalize_PlainDocument(t *testing.T) {
	doc := map[string]any{
		"id":         "j1",
		"pi_details": map[string]any{"name": "Ann"},
	}

	got := Normalize(doc)
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("plain document changed: %#v", got)
	}
}

func TestDecodeRecord(t *testing.T) {
	r, err := DecodeRecord([]byte(`{"id": {"S": "c1"}, "resume_text": {"S": "Go"}}`))
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if r.ID() != "c1" || r.String("resume_text") != "Go" {
		t.Errorf("record = %#v", r)
	}

	r, err = DecodeRecord([]byte(`null`))
	if err != nil || r == nil || len(r) != 0 {
		t.Errorf("null document = %#v, %v", r, err)
	}

	if _, err := DecodeRecord([]byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object document")
	}
}

func TestRecord_Accessors(t *testing.T) {
	r := Record{
		"id":      "j1",
		"jd_text": "  ",
		"text":    "Go developer",
		"years":   float64(3),
		"nested":  map[string]any{"a": 1},
		"nothing": nil,
	}

	if got := r.FirstString("jd_text", "text"); got != "Go developer" {
		t.Errorf("FirstString() = %q", got)
	}
	if got := r.String("years"); got != "3" {
		t.Errorf("String(years) = %q", got)
	}
	if got := r.String("nested"); got != "" {
		t.Errorf("String(nested) = %q", got)
	}
	if r.Has("nothing") || r.Has("absent") || !r.Has("nested") {
		t.Error("Has() mismatch")
	}
	if r.Map("nested") == nil || r.Map("text") != nil {
		t.Error("Map() mismatch")
	}
}

func TestRecord_Clone(t *testing.T) {
	r := Record{"id": "c1", "skills": map[string]any{"list": []any{"Go"}}}
	c := r.Clone()

	c.Map("skills")["list"].([]any)[0] = "Rust"
	c["id"] = "c2"

	if r.ID() != "c1" {
		t.Error("clone shares top-level map")
	}
	if r.Map("skills")["list"].([]any)[0] != "Go" {
		t.Error("clone shares nested slice")
	}
	if Record(nil).Clone() != nil {
		t.Error("nil record clone must be nil")
	}
}

func TestKind_IsValid(t *testing.T) {
	if !KindJob.IsValid() || !KindCandidate.IsValid() || Kind("flow").IsValid() {
		t.Error("IsValid() mismatch")
	}
}

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse(errors.New("record not found"))
	if resp.Error != "record not found" {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestResponse_Status(t *testing.T) {
	tests := []struct {
		resp Response
		want RunStatus
	}{
		{Response{ID: "j1", Updated: true}, RunStatusSucceeded},
		{Response{ID: "j1", Errors: map[string]string{"skills": "boom"}}, RunStatusPartial},
		{ErrorResponse(errors.New("record not found")), RunStatusFailed},
	}

	for _, tt := range tests {
		if got := tt.resp.Status(); got != tt.want {
			t.Errorf("Status() = %v, want %v", got, tt.want)
		}
	}
}

func TestResponse_JSON(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "no errors",
			resp: Response{ID: "j1", Updated: true, Results: map[string]any{"skills": 1}, Errors: map[string]string{}},
			want: `{"id":"j1","updated":true,"results":{"skills":1},"errors":{}}`,
		},
		{
			name: "all failed",
			resp: Response{ID: "j1", Errors: map[string]string{"skills": "timeout"}},
			want: `{"id":"j1","updated":false,"results":{},"errors":{"skills":"timeout"}}`,
		},
		{
			name: "terminal error",
			resp: ErrorResponse(errors.New("record not found")),
			want: `{"error":"record not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestResponse_JSONNested(t *testing.T) {
	payload := struct {
		Response Response `json:"response"`
	}{Response{ID: "c1", Results: map[string]any{}}}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Response map[string]any `json:"response"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded.Response["errors"]; !ok {
		t.Errorf("errors key missing: %s", data)
	}
}
