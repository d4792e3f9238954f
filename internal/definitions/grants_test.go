package definitions

import (
	"slices"
	"testing"

	"github.com/docketworks/docket/internal/steps"
)

func TestCompileGrantsFromStepRoles(t *testing.T) {
	records := []steps.Record{
		{Name: "Upload", Type: steps.KindUpload},
		{Name: "Review", Type: steps.KindReview, Props: map[string]string{"reviewerRole": "auditor"}},
		{Name: "Approval", Type: steps.KindApproval},
	}

	grants := compileGrants(records, nil)

	if !slices.Equal(grants["review"], []string{"auditor"}) {
		t.Errorf("review grants = %v, want [auditor]", grants["review"])
	}
	if !slices.Equal(grants["approve"], []string{"senior_manager"}) {
		t.Errorf("approve grants = %v, want [senior_manager]", grants["approve"])
	}
	if _, ok := grants["upload"]; ok {
		t.Error("upload must never be granted at workflow scope")
	}
}

func TestCompileGrantsUnionsExplicit(t *testing.T) {
	records := []steps.Record{
		{Name: "Review", Type: steps.KindReview},
	}
	explicit := map[string][]string{
		"review":  {"manager", "compliance"},
		"approve": {"director"},
	}

	grants := compileGrants(records, explicit)

	if !slices.Equal(grants["review"], []string{"manager", "compliance"}) {
		t.Errorf("review grants = %v", grants["review"])
	}
	if !slices.Equal(grants["approve"], []string{"director"}) {
		t.Errorf("approve grants = %v", grants["approve"])
	}
}

func TestCompileGrantsDeduplicates(t *testing.T) {
	records := []steps.Record{
		{Name: "First Review", Type: steps.KindReview},
		{Name: "Second Review", Type: steps.KindReview},
	}

	grants := compileGrants(records, map[string][]string{"review": {"manager"}})

	if !slices.Equal(grants["review"], []string{"manager"}) {
		t.Errorf("review grants = %v, want [manager] once", grants["review"])
	}
}

func TestCompileGrantsEmpty(t *testing.T) {
	grants := compileGrants([]steps.Record{
		{Name: "Upload", Type: steps.KindUpload},
		{Name: "Field", Type: steps.KindCustomField},
	}, nil)

	if len(grants) != 0 {
		t.Errorf("grants = %v, want empty", grants)
	}
}
