// internal/common/errors/errors.go

// Package errors provides standardized error handling for the command
// generation pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Grammar-authoring defects. All of these are fatal at load/validation time;
// generation never starts against an inconsistent grammar.
const (
	ErrCodeGrammarSyntax             ErrorCode = "GRAMMAR_SYNTAX_ERROR"
	ErrCodeUndeclaredSymbol          ErrorCode = "UNDECLARED_SYMBOL"
	ErrCodeDuplicateWildcardVariable ErrorCode = "DUPLICATE_WILDCARD_VARIABLE"
	ErrCodeUnresolvedVariable        ErrorCode = "UNRESOLVED_VARIABLE"
)

// Knowledge-base defects, fatal at load/validation time.
const (
	ErrCodeUnknownCategory        ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeKnowledgeSchemaInvalid ErrorCode = "KNOWLEDGE_SCHEMA_INVALID"
)

// Per-example transient failures. The example is skipped and counted; the
// rest of the batch continues.
const (
	ErrCodeGenerationExhausted ErrorCode = "GENERATION_EXHAUSTED"
	ErrCodeDuplicateUtterance  ErrorCode = "DUPLICATE_UTTERANCE"
)

// Operational errors.
const (
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeRegistryNotFound ErrorCode = "REGISTRY_NOT_FOUND"
	ErrCodeBundleNotFound   ErrorCode = "BUNDLE_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	other, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// CodeOf extracts the ErrorCode from err, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// ==========================
// 2. Error Constructors
// ==========================

// NewGrammarSyntaxError creates a fatal grammar parse error carrying the
// source name and line of the offending rule.
func NewGrammarSyntaxError(source string, line int, details string) *StandardError {
	return &StandardError{
		Code:    ErrCodeGrammarSyntax,
		Message: "Malformed grammar rule",
		Details: fmt.Sprintf("%s:%d: %s", source, line, details),
		Metadata: map[string]interface{}{
			"source": source,
			"line":   line,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUndeclaredSymbolError creates a fatal error for a referenced category
// with no productions.
func NewUndeclaredSymbolError(category string, line int) *StandardError {
	return &StandardError{
		Code:    ErrCodeUndeclaredSymbol,
		Message: "Production references a category with no productions",
		Details: fmt.Sprintf("category: $%s, line: %d", category, line),
		Metadata: map[string]interface{}{
			"category": category,
			"line":     line,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateWildcardVariableError creates a fatal error for a variable name
// bound to two different wildcard categories within one production.
func NewDuplicateWildcardVariableError(variable, firstCategory, secondCategory string, line int) *StandardError {
	return &StandardError{
		Code:    ErrCodeDuplicateWildcardVariable,
		Message: "Wildcard variable bound to two different categories in one production",
		Details: fmt.Sprintf("variable: ?%s, categories: %s vs %s, line: %d", variable, firstCategory, secondCategory, line),
		Metadata: map[string]interface{}{
			"variable": variable,
			"line":     line,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnresolvedVariableError creates a fatal error for a semantic template
// referencing a variable or child not bound anywhere in its own production.
func NewUnresolvedVariableError(reference string, category string, line int) *StandardError {
	return &StandardError{
		Code:    ErrCodeUnresolvedVariable,
		Message: "Semantic template references an unbound variable",
		Details: fmt.Sprintf("reference: %s, category: $%s, line: %d", reference, category, line),
		Metadata: map[string]interface{}{
			"reference": reference,
			"category":  category,
			"line":      line,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownCategoryError creates a fatal error for a wildcard category that
// is absent or empty in the knowledge base.
func NewUnknownCategoryError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCategory,
		Message:   "Knowledge base has no entities for category",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientEntitiesError creates a fatal error for a category that
// cannot fill all of a production's distinct wildcards with distinct entities.
func NewInsufficientEntitiesError(category string, required, available int) *StandardError {
	return &StandardError{
		Code:    ErrCodeUnknownCategory,
		Message: "Knowledge base has too few entities for distinct wildcards",
		Details: fmt.Sprintf("category: %s, required: %d, available: %d", category, required, available),
		Metadata: map[string]interface{}{
			"category":  category,
			"required":  required,
			"available": available,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewKnowledgeSchemaInvalidError creates a fatal error for a knowledge-base
// document that fails schema validation.
func NewKnowledgeSchemaInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeSchemaInvalid,
		Message:   "Knowledge-base document failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationExhaustedError creates a per-example error for a derivation
// that exceeded its depth/retry budget. The example is skipped, the batch
// continues.
func NewGenerationExhaustedError(category string, maxDepth, attempts int) *StandardError {
	return &StandardError{
		Code:    ErrCodeGenerationExhausted,
		Message: "Derivation attempts exhausted",
		Details: fmt.Sprintf("category: $%s, maxDepth: %d, attempts: %d", category, maxDepth, attempts),
		Metadata: map[string]interface{}{
			"category": category,
			"maxDepth": maxDepth,
			"attempts": attempts,
		},
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateUtteranceError creates a per-example error for an utterance
// already present in the batch when uniqueness mode is on.
func NewDuplicateUtteranceError(utterance string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateUtterance,
		Message:   "Duplicate utterance suppressed",
		Details:   fmt.Sprintf("utterance: %q", utterance),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError creates a fatal configuration error.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRegistryNotFoundError creates a fatal error for a missing bundle registry.
func NewRegistryNotFoundError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRegistryNotFound,
		Message:   "Grammar bundle registry could not be read",
		Details:   fmt.Sprintf("path: %s, error: %v", path, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBundleNotFoundError creates a fatal error for an unknown bundle id.
func NewBundleNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBundleNotFound,
		Message:   "Grammar bundle not found in registry",
		Details:   fmt.Sprintf("bundleId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Error Classification
// ==========================

// IsFatal reports whether err must abort the whole run (load/validation
// defects) rather than skip one example.
func IsFatal(err error) bool {
	switch CodeOf(err) {
	case ErrCodeGenerationExhausted, ErrCodeDuplicateUtterance:
		return false
	}
	return true
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeGrammarSyntax, ErrCodeUndeclaredSymbol, ErrCodeDuplicateWildcardVariable, ErrCodeUnresolvedVariable:
		return "grammar"
	case ErrCodeUnknownCategory, ErrCodeKnowledgeSchemaInvalid:
		return "knowledge"
	case ErrCodeGenerationExhausted, ErrCodeDuplicateUtterance:
		return "example"
	default:
		return "operational"
	}
}
