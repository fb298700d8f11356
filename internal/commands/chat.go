package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with Gemini.

The chat maintains conversation context across messages and streams
responses in as they are generated. Type 'exit', 'quit', or press
Ctrl+C to end the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	cfg, _ := config.LoadConfig()

	apiKey, err := config.ResolveAPIKey()
	if err != nil {
		return fmt.Errorf("failed to resolve credentials: %w", err)
	}

	modelName := getModel()
	model := models.ModelFromName(modelName)
	persona := getPersona(cfg)

	client, err := api.NewClient(apiKey, api.WithModel(model))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	sessionOpts := []api.SessionOption{}
	if persona.Description != "" {
		sessionOpts = append(sessionOpts, api.WithPersona(persona.Description))
	}
	session := client.StartChat(sessionOpts...)

	// Surface the active persona name in the TUI header
	cfg.Persona = persona.Name

	return tui.RunChat(client, session, model.Name, cfg)
}
