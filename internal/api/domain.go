package api

import (
	"github.com/docketworks/docket/internal/config"
	"github.com/docketworks/docket/internal/definitions"
	"github.com/docketworks/docket/internal/engine"
	"github.com/docketworks/docket/internal/executions"
	"github.com/docketworks/docket/internal/policy"
	"github.com/docketworks/docket/internal/tenants"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Definitions definitions.System
	Executions  executions.System
	Policies    policy.System
	Tenants     tenants.System
	Engine      engine.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	policySystem := policy.New(cfg.Policy, runtime.Logger)

	tenantSystem := tenants.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	definitionSystem := definitions.New(
		runtime.Database.Connection(),
		policySystem,
		runtime.Logger,
		runtime.Pagination,
	)

	executionSystem := executions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	engineSystem := engine.New(
		definitionSystem,
		executionSystem,
		policySystem,
		tenantSystem,
		runtime.Logger,
	)

	return &Domain{
		Definitions: definitionSystem,
		Executions:  executionSystem,
		Policies:    policySystem,
		Tenants:     tenantSystem,
		Engine:      engineSystem,
	}
}
