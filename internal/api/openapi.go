package api

import (
	"github.com/docketworks/docket/internal/config"
	"github.com/docketworks/docket/internal/steps"
	"github.com/docketworks/docket/pkg/openapi"
)

// buildSpec generates the OpenAPI document for the API module's routes.
func buildSpec(cfg *config.Config) (*openapi.Spec, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"StepRecord": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":        {Type: "string", Description: "Step name, unique within the workflow"},
				"type":        {Type: "string", Enum: kindValues(), Description: "Step kind tag"},
				"description": {Type: "string"},
				"props":       {Type: "object", Description: "Step configuration properties"},
				"order":       {Type: "integer", Description: "Position within the workflow"},
			},
			Required: []string{"name", "type"},
		},
		"Workflow": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"name":       {Type: "string"},
				"steps":      {Type: "array", Items: openapi.SchemaRef("StepRecord")},
				"created_at": {Type: "string", Format: "date-time"},
				"updated_at": {Type: "string", Format: "date-time"},
			},
		},
		"WorkflowCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"name":   {Type: "string"},
				"steps":  {Type: "array", Items: openapi.SchemaRef("StepRecord")},
				"grants": {Type: "object", Description: "Policy action to granted roles"},
			},
			Required: []string{"name", "steps"},
		},
		"Execution": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"workflow_id":        {Type: "string", Format: "uuid"},
				"current_step_index": {Type: "integer"},
				"status":             {Type: "string", Enum: []any{"In Progress", "Completed", "Rejected"}},
				"step_statuses":      {Type: "object", Description: "Step name to step status"},
				"workflow_data":      {Type: "object", Description: "Accumulated step data"},
				"created_by":         {Type: "string"},
				"version":            {Type: "integer", Description: "Optimistic concurrency version"},
				"created_at":         {Type: "string", Format: "date-time"},
				"updated_at":         {Type: "string", Format: "date-time"},
			},
		},
		"ActionRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"action":  {Type: "string", Enum: actionValues(), Description: "Action against the current step"},
				"notes":   {Type: "string", Description: "Review or rejection notes"},
				"value":   {Type: "string", Description: "Custom field value"},
				"confirm": {Type: "boolean", Description: "Confirmation for destructive actions"},
			},
			Required: []string{"action"},
		},
		"ExecutionContext": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"execution_id":  {Type: "string", Format: "uuid"},
				"workflow_id":   {Type: "string", Format: "uuid"},
				"status":        {Type: "string"},
				"current_step":  {Type: "object", Description: "Current step with authorization verdict"},
				"step_statuses": {Type: "object"},
				"workflow_data": {Type: "object"},
				"finished":      {Type: "boolean"},
			},
		},
	})

	spec.Components.AddResponses(map[string]*openapi.Response{
		"Forbidden": {
			Description: "Authorization gate denied the action",
			Content: map[string]*openapi.MediaType{
				"application/json": {
					Schema: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"error": {Type: "string"},
						},
					},
				},
			},
		},
	})

	addWorkflowPaths(spec)
	addExecutionPaths(spec)

	return spec, nil
}

func addWorkflowPaths(spec *openapi.Spec) {
	spec.Paths["/workflows"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List workflow definitions",
			Tags:    []string{"workflows"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number", false),
				openapi.QueryParam("page_size", "integer", "Results per page", false),
				openapi.QueryParam("search", "string", "Name search", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated workflows", "Workflow"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create a workflow definition",
			Tags:        []string{"workflows"},
			RequestBody: openapi.RequestBodyJSON("WorkflowCommand", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Created workflow", "Workflow"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/workflows/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a workflow definition",
			Tags:       []string{"workflows"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Workflow id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Workflow", "Workflow"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Replace a workflow definition",
			Tags:        []string{"workflows"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Workflow id")},
			RequestBody: openapi.RequestBodyJSON("WorkflowCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated workflow", "Workflow"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a workflow definition",
			Tags:       []string{"workflows"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Workflow id")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/workflows/{id}/steps"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "List a workflow's parsed, ordered steps",
			Tags:       []string{"workflows"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Workflow id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Ordered steps", "StepRecord"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/workflows/kinds"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List valid step kinds",
			Tags:    []string{"workflows"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Step kind tags"},
			},
		},
	}

	spec.Paths["/workflows/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search workflow definitions",
			Tags:        []string{"workflows"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated workflows", "Workflow"),
			},
		},
	}

	spec.Paths["/workflows/{id}/executions"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Start an execution of a workflow",
			Tags:       []string{"executions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Workflow id")},
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Started execution", "Execution"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func addExecutionPaths(spec *openapi.Spec) {
	spec.Paths["/executions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List executions ordered by recency",
			Tags:    []string{"executions"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("status", "string", "Filter by aggregate status", false),
				openapi.QueryParam("workflow_id", "string", "Filter by workflow", false),
				openapi.QueryParam("created_by", "string", "Filter by initiator", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated executions", "Execution"),
			},
		},
	}

	spec.Paths["/executions/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search executions",
			Tags:        []string{"executions"},
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated executions", "Execution"),
			},
		},
	}

	spec.Paths["/executions/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find an execution",
			Tags:       []string{"executions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Execution id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Execution", "Execution"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete an execution and its stored document",
			Tags:       []string{"executions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Execution id")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/executions/{id}/document"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download the execution's attached document",
			Tags:       []string{"executions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Execution id")},
			Responses: map[int]*openapi.Response{
				200: {Description: "Document stream"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/executions/{id}/actions"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Apply a user action to the execution's current step",
			Description: "Accepts a JSON body, or multipart form data with a file part for upload submissions.",
			Tags:        []string{"executions"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Execution id")},
			RequestBody: openapi.RequestBodyJSON("ActionRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Advanced execution", "Execution"),
				400: openapi.ResponseRef("BadRequest"),
				403: openapi.ResponseRef("Forbidden"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/executions/{id}/context"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Render payload for the execution's current state",
			Tags:       []string{"executions"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Execution id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Execution context", "ExecutionContext"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}

func kindValues() []any {
	kinds := steps.Kinds()
	out := make([]any, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func actionValues() []any {
	return []any{"submit", "skip", "complete", "return", "approve", "reject", "save"}
}
