package definitions_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/docketworks/docket/internal/definitions"
	"github.com/docketworks/docket/internal/steps"
)

const designerPayload = `[
	{"name": "Initial Upload", "type": "Upload", "description": "Attach the document", "props": {}, "order": 0},
	{"name": "Manager Review", "type": "Document Review", "props": {"reviewerRole": "manager"}, "order": 1},
	{"name": "Final Approval", "type": "Approve/Reject", "props": {}, "order": 2}
]`

func TestParse(t *testing.T) {
	id := uuid.New()
	def, err := definitions.Parse(id, "Expense Report", []byte(designerPayload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.ID != id {
		t.Errorf("id = %s, want %s", def.ID, id)
	}
	if def.Name != "Expense Report" {
		t.Errorf("name = %s", def.Name)
	}
	if def.StepCount() != 3 {
		t.Fatalf("StepCount() = %d, want 3", def.StepCount())
	}

	first := def.StepAt(0)
	if first.Kind() != steps.KindUpload || first.Name() != "Initial Upload" {
		t.Errorf("step 0 = %s %s", first.Kind(), first.Name())
	}
	if def.StepAt(2).Kind() != steps.KindApproval {
		t.Errorf("step 2 kind = %s", def.StepAt(2).Kind())
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "designer output"},
		{"object instead of array", `{"name": "Upload"}`},
		{"unknown step type", `[{"name": "Sign", "type": "Signature"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := definitions.Parse(uuid.New(), "Broken", []byte(tt.payload))
			if !errors.Is(err, definitions.ErrMalformedDefinition) {
				t.Errorf("Parse() error = %v, want ErrMalformedDefinition", err)
			}
		})
	}
}

func TestParseDuplicateStepNames(t *testing.T) {
	payload := `[
		{"name": "Review", "type": "Document Review", "order": 0},
		{"name": "Review", "type": "Document Review", "order": 1}
	]`

	_, err := definitions.Parse(uuid.New(), "Doubled", []byte(payload))
	if !errors.Is(err, definitions.ErrDuplicateStepName) {
		t.Errorf("Parse() error = %v, want ErrDuplicateStepName", err)
	}
}

func TestParseOrdersByExplicitOrder(t *testing.T) {
	payload := `[
		{"name": "Approval", "type": "Approve/Reject", "order": 2},
		{"name": "Upload", "type": "Upload", "order": 0},
		{"name": "Review", "type": "Document Review", "order": 1}
	]`

	def, err := definitions.Parse(uuid.New(), "Shuffled", []byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []steps.Kind{steps.KindUpload, steps.KindReview, steps.KindApproval}
	for i, kind := range want {
		if def.StepAt(i).Kind() != kind {
			t.Errorf("step %d kind = %s, want %s", i, def.StepAt(i).Kind(), kind)
		}
	}
}

func TestParseEmptyDefinition(t *testing.T) {
	def, err := definitions.Parse(uuid.New(), "Empty", []byte("[]"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.StepCount() != 0 {
		t.Errorf("StepCount() = %d, want 0", def.StepCount())
	}
	if def.StepAt(0) != nil {
		t.Error("StepAt(0) should be nil for empty definition")
	}
}

func TestStepAtOutOfRange(t *testing.T) {
	def, err := definitions.Parse(uuid.New(), "Single", []byte(`[{"name": "Upload", "type": "Upload"}]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if def.StepAt(-1) != nil {
		t.Error("StepAt(-1) should be nil")
	}
	if def.StepAt(1) != nil {
		t.Error("StepAt past the end should be nil")
	}
}

func TestFirstIndexOf(t *testing.T) {
	def, err := definitions.Parse(uuid.New(), "Flow", []byte(designerPayload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := def.FirstIndexOf(steps.KindUpload); got != 0 {
		t.Errorf("FirstIndexOf(Upload) = %d, want 0", got)
	}
	if got := def.FirstIndexOf(steps.KindApproval); got != 2 {
		t.Errorf("FirstIndexOf(Approval) = %d, want 2", got)
	}
	if got := def.FirstIndexOf(steps.KindCustomField); got != -1 {
		t.Errorf("FirstIndexOf(CustomField) = %d, want -1", got)
	}
}
