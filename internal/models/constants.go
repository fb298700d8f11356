// Package models contains data types and constants for the Gemini streaming API.
package models

import (
	"fmt"
	"time"
)

// EndpointStream is the streaming generation endpoint. Formatted with the
// model name; alt=sse selects server-sent-event framing.
const EndpointStream = "https://generativelanguage.googleapis.com/v1beta/models/%s:streamGenerateContent?alt=sse"

// ErrorReply is the fixed assistant message appended when an exchange faults
const ErrorReply = "I'm sorry, I encountered an error. Please try again."

// DefaultPersona describes the assistant when no persona is configured
const DefaultPersona = "You are a helpful and friendly assistant. " +
	"Answer clearly and concisely, and cite web sources when you use them."

// Model represents an available Gemini model
type Model struct {
	Name        string
	Description string
}

// Available models
var (
	// ModelUnspecified lets the server pick (invalid for the streaming endpoint)
	ModelUnspecified = Model{Name: ""}

	ModelFlash = Model{
		Name:        "gemini-2.5-flash",
		Description: "Fast general-purpose model",
	}

	ModelPro = Model{
		Name:        "gemini-2.5-pro",
		Description: "Strongest reasoning model",
	}

	ModelFlashLite = Model{
		Name:        "gemini-2.5-flash-lite",
		Description: "Cheapest, lowest latency",
	}

	// DefaultModel is the recommended default
	DefaultModel = ModelFlash
)

// AllModels returns a list of all available models
func AllModels() []Model {
	return []Model{ModelFlash, ModelPro, ModelFlashLite}
}

// ModelFromName looks up a model by name, accepting the short aliases
// used on the command line
func ModelFromName(name string) Model {
	switch name {
	case "flash", ModelFlash.Name:
		return ModelFlash
	case "pro", ModelPro.Name:
		return ModelPro
	case "flash-lite", "lite", ModelFlashLite.Name:
		return ModelFlashLite
	}
	return ModelUnspecified
}

// DefaultHeaders returns headers sent on every API request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	}
}

// SystemInstruction builds the system prompt for an exchange: the current
// wall-clock time (with timezone abbreviation) followed by the persona
// description.
func SystemInstruction(persona string, now time.Time) string {
	if persona == "" {
		persona = DefaultPersona
	}
	return fmt.Sprintf("The current time is %s.\n\n%s",
		now.Format("Monday, January 2, 2006 at 3:04 PM MST"), persona)
}
