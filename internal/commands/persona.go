package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/gemchat/internal/config"
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage chat personas",
	Long:  `View and manage personas embedded in the system instruction.`,
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	RunE:  runPersonaList,
}

var personaAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaAdd,
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaDelete,
}

var personaSetDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set default persona",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonaSetDefault,
}

func init() {
	personaCmd.AddCommand(personaListCmd)
	personaCmd.AddCommand(personaAddCmd)
	personaCmd.AddCommand(personaDeleteCmd)
	personaCmd.AddCommand(personaSetDefaultCmd)
}

func runPersonaList(cmd *cobra.Command, args []string) error {
	pc, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION\tDEFAULT")
	_, _ = fmt.Fprintln(w, "----\t-----------\t-------")

	for _, p := range pc.Personas {
		isDefault := ""
		if p.Name == pc.DefaultPersona {
			isDefault = "✓"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, truncate(p.Description, 60), isDefault)
	}

	return w.Flush()
}

func runPersonaAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	pc, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	for _, p := range pc.Personas {
		if p.Name == name {
			return fmt.Errorf("persona '%s' already exists", name)
		}
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter description: ")
	desc, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return fmt.Errorf("description cannot be empty")
	}

	pc.Personas = append(pc.Personas, config.Persona{Name: name, Description: desc})
	if err := config.SavePersonas(pc); err != nil {
		return err
	}

	fmt.Printf("Persona '%s' added\n", name)
	return nil
}

func runPersonaDelete(cmd *cobra.Command, args []string) error {
	name := args[0]

	pc, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	kept := pc.Personas[:0]
	found := false
	for _, p := range pc.Personas {
		if p.Name == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fmt.Errorf("persona '%s' not found", name)
	}

	pc.Personas = kept
	if pc.DefaultPersona == name {
		pc.DefaultPersona = ""
	}
	if err := config.SavePersonas(pc); err != nil {
		return err
	}

	fmt.Printf("Persona '%s' deleted\n", name)
	return nil
}

func runPersonaSetDefault(cmd *cobra.Command, args []string) error {
	name := args[0]

	pc, err := config.LoadPersonas()
	if err != nil {
		return fmt.Errorf("failed to load personas: %w", err)
	}

	if p := pc.FindPersona(name); p.Name == "" {
		return fmt.Errorf("persona '%s' not found", name)
	}

	pc.DefaultPersona = name
	if err := config.SavePersonas(pc); err != nil {
		return err
	}

	fmt.Printf("Default persona set to '%s'\n", name)
	return nil
}

// truncate shortens s to max runes, appending an ellipsis when cut
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
