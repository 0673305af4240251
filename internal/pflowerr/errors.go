// Package pflowerr defines the uniform error taxonomy used across the IR
// loader, compiler, and runtime, and the structured "repair surface" that
// lets an external repair agent decide what to retry versus regenerate.
//
// Grounded on the teacher's internal/api/errors.go family of typed,
// errors.As-friendly errors (NotFoundError and its per-resource
// constructors); generalized here to the fuller category set the
// specification requires.
package pflowerr

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies an error for repair-surface consumers.
type Category string

const (
	CategorySchema      Category = "schema"
	CategoryTemplate    Category = "template"
	CategoryReference   Category = "reference"
	CategoryNetwork     Category = "network"
	CategoryAuth        Category = "auth"
	CategoryRateLimit   Category = "rate_limit"
	CategoryTool        Category = "tool"
	CategoryRuntime     Category = "runtime"
	CategoryCompilation Category = "compilation"
)

// Code is a taxonomy code, distinct from Category: categories group codes
// for the repair surface, codes identify the precise failure for humans
// and logs.
type Code string

const (
	CodeIRSchemaError        Code = "IR_SCHEMA_ERROR"
	CodeIRReferenceError     Code = "IR_REFERENCE_ERROR"
	CodeIRCycleError         Code = "IR_CYCLE_ERROR"
	CodeRegistryMiss         Code = "REGISTRY_MISS"
	CodeCompileError         Code = "COMPILE_ERROR"
	CodeTemplateUnresolved   Code = "TEMPLATE_UNRESOLVED"
	CodeTemplateTypeMismatch Code = "TEMPLATE_TYPE_MISMATCH"
	CodeNodeRuntimeError     Code = "NODE_RUNTIME_ERROR"
	CodeNodeTimeout          Code = "NODE_TIMEOUT"
	CodeNodeAuthError        Code = "NODE_AUTH_ERROR"
	CodeNodeRateLimit        Code = "NODE_RATE_LIMIT"
	CodeToolError            Code = "TOOL_ERROR"
	CodeMCPProtocolError     Code = "MCP_PROTOCOL_ERROR"
	CodeCancelled            Code = "CANCELLED"
	CodeInternalError        Code = "INTERNAL_ERROR"
)

// Error is the base structured error type, returned directly or wrapped
// via fmt.Errorf("...: %w", err) by the loader, compiler and runtime.
// TemplateUnresolved embeds an *Error but is a distinct type, so
// errors.As to *Error does not match it; FromError checks for it
// separately.
type Error struct {
	Code     Code
	Category Category
	Message  string
	Hint     string // short suggestion shown to the user
	Pointer  string // JSON-pointer to the offending field, when applicable
	Cause    error
}

func (e *Error) Error() string {
	if e.Pointer != "" {
		return fmt.Sprintf("%s at %s: %s", e.Code, e.Pointer, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain *Error.
func New(code Code, category Category, message string) *Error {
	return &Error{Code: code, Category: category, Message: message}
}

// Wrap builds an *Error around cause, preserving it for errors.Unwrap/errors.Is.
func Wrap(code Code, category Category, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Category: category, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithHint attaches a suggestion and returns the receiver for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithPointer attaches a JSON pointer and returns the receiver for chaining.
func (e *Error) WithPointer(ptr string) *Error {
	e.Pointer = ptr
	return e
}

// Is reports whether err (or anything it wraps) is a pflowerr.Error with
// the given code, using the standard errors.As unwrap chain.
func Is(err error, code Code) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IRSchemaError constructs a schema-validation error with a JSON pointer.
func IRSchemaError(pointer, message string) *Error {
	return New(CodeIRSchemaError, CategorySchema, message).WithPointer(pointer)
}

// IRReferenceError constructs an unresolved-reference error (edge endpoint
// or template pointing at an undeclared id).
func IRReferenceError(message string) *Error {
	return New(CodeIRReferenceError, CategoryReference, message)
}

// IRCycleError constructs a cycle-detected error.
func IRCycleError(message string) *Error {
	return New(CodeIRCycleError, CategoryReference, message)
}

// RegistryMissError constructs a node-type-not-found error, optionally
// carrying fuzzy-match suggestions.
func RegistryMissError(typeID string, suggestions []string) *Error {
	e := New(CodeRegistryMiss, CategoryCompilation, fmt.Sprintf("node type %q not found in registry", typeID))
	if len(suggestions) > 0 {
		e.Hint = "did you mean: " + strings.Join(suggestions, ", ")
	}
	return e
}

// TemplateUnresolved carries the structured fields the specification
// requires for repair: the original template, the unresolved variable
// path, and the set of variables/fields that WERE available.
type TemplateUnresolved struct {
	*Error
	Template           string
	Variable           string
	AvailableVariables []string
	AvailableFields    []string
}

// NewTemplateUnresolved builds a TemplateUnresolved error.
func NewTemplateUnresolved(tmpl, variable string, available []string) *TemplateUnresolved {
	return &TemplateUnresolved{
		Error:              New(CodeTemplateUnresolved, CategoryTemplate, fmt.Sprintf("template variable %q not found", variable)),
		Template:           tmpl,
		Variable:           variable,
		AvailableVariables: available,
	}
}

// NodeError is the per-node failure record the runtime attaches to a
// failed execution, matching the specification's error-capture contract.
type NodeError struct {
	NodeID          string   `json:"node_id"`
	Type            Code     `json:"type"`
	Message         string   `json:"message"`
	Category        Category `json:"category"`
	RawResponse     string   `json:"raw_response,omitempty"`
	StatusCode      int      `json:"status_code,omitempty"`
	AvailableFields []string `json:"available_fields,omitempty"`
	MCPError        string   `json:"mcp_error,omitempty"`
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s failed (%s): %s", e.NodeID, e.Category, e.Message)
}

// FromError classifies a generic error into a NodeError for node nodeID,
// defaulting to the runtime category when no more specific classification
// is available.
func FromError(nodeID string, err error) *NodeError {
	var pe *Error
	if errors.As(err, &pe) {
		return &NodeError{NodeID: nodeID, Type: pe.Code, Message: pe.Message, Category: pe.Category}
	}
	var tu *TemplateUnresolved
	if errors.As(err, &tu) {
		return &NodeError{
			NodeID:          nodeID,
			Type:            CodeTemplateUnresolved,
			Message:         tu.Message,
			Category:        CategoryTemplate,
			AvailableFields: tu.AvailableFields,
		}
	}
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne
	}
	return &NodeError{NodeID: nodeID, Type: CodeNodeRuntimeError, Message: err.Error(), Category: CategoryRuntime}
}
