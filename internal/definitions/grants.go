package definitions

import (
	"slices"

	"github.com/docketworks/docket/internal/steps"
)

// compileGrants builds the action-to-roles grant map for a workflow's
// authorization policy. Review and approval steps contribute the roles
// configured on their properties; explicit grants are unioned in on top.
// Upload is never granted here since it is authorized per execution.
func compileGrants(records []steps.Record, explicit map[string][]string) map[string][]string {
	grants := make(map[string][]string)

	add := func(action, role string) {
		if role == "" || slices.Contains(grants[action], role) {
			return
		}
		grants[action] = append(grants[action], role)
	}

	for _, record := range records {
		step, err := steps.FromRecord(record)
		if err != nil {
			continue
		}

		switch s := step.(type) {
		case *steps.Review:
			add("review", s.ReviewerRole())
		case *steps.Approval:
			add("approve", s.ApproverRole())
		}
	}

	for action, roles := range explicit {
		for _, role := range roles {
			add(action, role)
		}
	}

	return grants
}
