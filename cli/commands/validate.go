package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema-path]",
	Short: "Validate a schema file",
	Long: `Validate a schema file.

This command will:
- Parse the file and check its version
- Resolve relations, parents and translations
- Display the models with their translated fields`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.SchemaPath = args[0]
	}

	ui.PrintHeader("mlquery", "Validate Schema")

	reg, err := loadRegistry()
	if err != nil {
		ui.PrintError("Schema validation failed:")
		return err
	}

	absPath, _ := filepath.Abs(cfg.SchemaPath)
	ui.PrintSuccess("Schema is valid: %s", absPath)

	fmt.Fprintln(ui.Out)
	ui.PrintSection("Schema Summary")
	summary := []string{
		fmt.Sprintf("%d language(s), default %s", reg.Languages().Len(), reg.Languages().Default().Code),
		fmt.Sprintf("%d model(s)", len(reg.Models())),
	}
	ui.PrintList(summary)

	fmt.Fprintln(ui.Out)
	ui.PrintSection("Models")
	return ui.PrintTable([]string{"Model", "Table", "Fields", "Translated", "Parents"}, modelRows(reg))
}

func modelRows(reg *schema.Registry) [][]string {
	var rows [][]string
	for _, m := range reg.Models() {
		parents := make([]string, 0, len(m.ParentModels()))
		for _, p := range m.ParentModels() {
			parents = append(parents, p.Name)
		}
		rows = append(rows, []string{
			m.Name,
			m.Table,
			fmt.Sprint(len(m.ConcreteFields())),
			strings.Join(m.TranslatedNames(), ", "),
			strings.Join(parents, ", "),
		})
	}
	return rows
}
