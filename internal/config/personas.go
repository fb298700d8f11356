package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diogo/gemchat/internal/models"
)

// Persona represents a named assistant description embedded in the
// system instruction
type Persona struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PersonaConfig stores all personas
type PersonaConfig struct {
	Personas       []Persona `json:"personas"`
	DefaultPersona string    `json:"default_persona,omitempty"`
}

// DefaultPersonas returns pre-configured personas
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Name:        "default",
			Description: models.DefaultPersona,
		},
		{
			Name: "coder",
			Description: "You are an expert software engineer. Explain trade-offs, " +
				"prefer idiomatic solutions, and show runnable code examples.",
		},
		{
			Name: "writer",
			Description: "You are a creative writing assistant. Help with storytelling " +
				"and content creation, keep a consistent tone, and be concise but evocative.",
		},
		{
			Name: "researcher",
			Description: "You are a careful research assistant. Ground every claim in " +
				"web sources, cite them explicitly, and flag uncertainty.",
		},
	}
}

// GetPersonasPath returns the path to the personas file
func GetPersonasPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas.json"), nil
}

// LoadPersonas loads personas from disk, falling back to the defaults
func LoadPersonas() (PersonaConfig, error) {
	pc := PersonaConfig{Personas: DefaultPersonas()}

	path, err := GetPersonasPath()
	if err != nil {
		return pc, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pc, nil
		}
		return pc, fmt.Errorf("failed to read personas file: %w", err)
	}

	if err := json.Unmarshal(data, &pc); err != nil {
		return PersonaConfig{Personas: DefaultPersonas()}, fmt.Errorf("failed to parse personas file: %w", err)
	}

	return pc, nil
}

// SavePersonas saves personas to disk
func SavePersonas(pc PersonaConfig) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(pc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal personas: %w", err)
	}

	path := filepath.Join(configDir, "personas.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write personas file: %w", err)
	}

	return nil
}

// FindPersona looks up a persona by name. Empty name and unknown names
// resolve to an empty description, which callers treat as the default.
func (pc PersonaConfig) FindPersona(name string) Persona {
	if name == "" {
		name = pc.DefaultPersona
	}
	for _, p := range pc.Personas {
		if p.Name == name {
			return p
		}
	}
	return Persona{}
}
