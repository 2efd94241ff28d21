// Package ai defines the opaque collaborators the persistence core hands
// payloads to: a code generator, a chat responder, and a code analyzer.
// The storage contract is unaffected by what these return.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codecanvas/projectdb/internal/analysis"
)

// GeneratedFile is one file produced by the code generator. Its fields map
// directly onto a file creation payload.
type GeneratedFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// CodeGeneration is the structured result of a generation request.
type CodeGeneration struct {
	Files       []GeneratedFile `json:"files"`
	Explanation string          `json:"explanation"`
}

// ChatMessage is one prior conversation turn passed as context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant is the collaborator contract consumed by the HTTP surface.
type Assistant interface {
	// Available reports whether the upstream service is configured.
	Available() bool
	// GenerateCode turns a prompt (plus optional existing files for context)
	// into a structured file list and an explanation.
	GenerateCode(ctx context.Context, prompt string, existing []GeneratedFile) (*CodeGeneration, error)
	// Chat answers a message given the prior conversation.
	Chat(ctx context.Context, message string, history []ChatMessage) (string, error)
	// AnalyzeCode runs one analysis type over a file and returns the raw
	// JSON result for boundary validation.
	AnalyzeCode(ctx context.Context, t analysis.Type, fileName, content string) (json.RawMessage, error)
}

// UpstreamError marks a failure of the AI collaborator so it surfaces as
// 503 rather than a generic failure.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("ai: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ErrUnavailable is returned when no API key is configured.
func ErrUnavailable() *UpstreamError {
	return &UpstreamError{Message: "AI service is not configured"}
}
