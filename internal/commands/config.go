package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage gemchat settings",
	Long:  `Show and change gemchat settings stored in ~/.gemchat/config.json.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting. Available keys:

  model       Default model (flash, pro, flash-lite, or a full model name)
  persona     Default persona preset
  theme       TUI color theme (tokyonight, catppuccin-mocha, nord)
  style       Markdown style (dark, light, or path to a glamour theme)
  clipboard   Copy responses to clipboard (true/false)
  verbose     Verbose diagnostics (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("model:      %s\n", cfg.DefaultModel)
	fmt.Printf("persona:    %s\n", displayValue(cfg.Persona))
	fmt.Printf("theme:      %s\n", cfg.TUITheme)
	fmt.Printf("style:      %s\n", cfg.Markdown.Style)
	fmt.Printf("clipboard:  %t\n", cfg.CopyToClipboard)
	fmt.Printf("verbose:    %t\n", cfg.Verbose)
	fmt.Printf("transcripts: %s\n", cfg.TranscriptDir)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch key {
	case "model":
		cfg.DefaultModel = value
	case "persona":
		pc, err := config.LoadPersonas()
		if err == nil {
			if p := pc.FindPersona(value); p.Name == "" {
				return fmt.Errorf("persona '%s' not found", value)
			}
		}
		cfg.Persona = value
	case "theme":
		if !validTheme(value) {
			return fmt.Errorf("unknown theme '%s'", value)
		}
		cfg.TUITheme = value
	case "style":
		cfg.Markdown.Style = value
	case "clipboard":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("clipboard must be true or false")
		}
		cfg.CopyToClipboard = b
	case "verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false")
		}
		cfg.Verbose = b
	default:
		return fmt.Errorf("unknown key '%s'", key)
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s set to %s\n", key, value)
	return nil
}

func validTheme(name string) bool {
	for _, theme := range render.AllTUIThemes() {
		if theme.Name == name {
			return true
		}
	}
	return false
}

func displayValue(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
