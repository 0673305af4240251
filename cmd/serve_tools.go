package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolInputs extracts a map-shaped argument (e.g. "inputs") from a tool
// call, defaulting to an empty map when absent — every execute/debug
// workflow call is valid with zero inputs.
func toolInputs(req mcpsdk.CallToolRequest, key string) map[string]interface{} {
	args := req.GetArguments()
	if raw, ok := args[key]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}

func jsonResult(v interface{}) (*mcpsdk.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpsdk.NewToolResultError(fmt.Sprintf("marshaling result: %v", err)), nil
	}
	return mcpsdk.NewToolResultText(string(data)), nil
}

func discoverWorkflowsHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		query := req.GetString("query", "")
		workflows, err := listSavedWorkflows(env.configDir)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}

		type summary struct {
			Name        string   `json:"name"`
			Description string   `json:"description,omitempty"`
			Keywords    []string `json:"search_keywords,omitempty"`
		}
		var out []summary
		for _, w := range workflows {
			if !matchesQuery(w, query) {
				continue
			}
			out = append(out, summary{Name: w.Name, Description: w.Description, Keywords: w.SearchKeywords})
		}
		return jsonResult(out)
	}
}

func validateWorkflowHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		resolved, err := resolveWorkflowRef(env.configDir, path)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		w, err := loadWorkflowFile(resolved)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}

		if _, compileErr := compileWorkflow(env, w); compileErr != nil {
			return mcpsdk.NewToolResultError(compileErr.Error()), nil
		}
		return mcpsdk.NewToolResultText(fmt.Sprintf("workflow %q is valid", w.Name)), nil
	}
}

func executeWorkflowHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		resolved, err := resolveWorkflowRef(env.configDir, path)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		w, err := loadWorkflowFile(resolved)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}

		result, err := compileAndRun(ctx, env, w, toolInputs(req, "inputs"))
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result.Outputs)
	}
}

func debugWorkflowHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		resolved, err := resolveWorkflowRef(env.configDir, path)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		w, err := loadWorkflowFile(resolved)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}

		result, runErr := compileAndRun(ctx, env, w, toolInputs(req, "inputs"))
		if result == nil {
			return mcpsdk.NewToolResultError(runErr.Error()), nil
		}
		return jsonResult(result.Trace)
	}
}

func exportWorkflowHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		path, err := req.RequireString("path")
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		resolved, err := resolveWorkflowRef(env.configDir, path)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		w, err := loadWorkflowFile(resolved)
		if err != nil {
			return mcpsdk.NewToolResultError(err.Error()), nil
		}
		return jsonResult(w)
	}
}

func browseNodesHandler(env *environment) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return jsonResult(env.registry.List())
		}
		return jsonResult(env.registry.Search(query))
	}
}
