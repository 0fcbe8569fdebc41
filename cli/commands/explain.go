package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/multilingual-go/cli/internal/ui"
	"github.com/satishbabariya/multilingual-go/query/ast"
	"github.com/satishbabariya/multilingual-go/query/compiler"
	"github.com/satishbabariya/multilingual-go/query/optimizer"
	"github.com/satishbabariya/multilingual-go/query/sqlgen"
	"github.com/satishbabariya/multilingual-go/runtime/client"
	"github.com/satishbabariya/multilingual-go/schema"
)

var explainCmd = &cobra.Command{
	Use:   "explain [expression]",
	Short: "Show the SQL a filter expression compiles to",
	Long: `Compile a filter expression for a model and print the resulting SQL,
its arguments, the joins it needs and the indexes that would serve it.

Examples:
  mlquery explain -m Category 'name contains "kat"'
  mlquery explain -m Article -l pl -o category__name 'category__name_en = "x" or title = "y"'
  mlquery explain -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplain,
}

var (
	explainModel       string
	explainLang        string
	explainOrder       []string
	explainProvider    string
	explainInteractive bool
	explainAnalyze     bool
	explainMarkdown    bool
)

func init() {
	explainCmd.Flags().StringVarP(&explainModel, "model", "m", "", "Model to query")
	explainCmd.Flags().StringVarP(&explainLang, "lang", "l", "", "Language the query runs in (default: schema default)")
	explainCmd.Flags().StringArrayVarP(&explainOrder, "order", "o", nil, "Ordering term, repeatable (prefix with - for descending)")
	explainCmd.Flags().StringVarP(&explainProvider, "provider", "p", "", "SQL dialect: postgresql, mysql or sqlite")
	explainCmd.Flags().BoolVarP(&explainInteractive, "interactive", "i", false, "Pick model and language interactively")
	explainCmd.Flags().BoolVar(&explainAnalyze, "analyze", false, "Run EXPLAIN against the configured database")
	explainCmd.Flags().BoolVar(&explainMarkdown, "markdown", false, "Render the report as markdown")

	rootCmd.AddCommand(explainCmd)
}

type explainOptions struct {
	Model      string
	Language   string
	Ordering   []string
	Provider   string
	Expression string
}

type explainReport struct {
	Model    string
	Language string
	SQL      string
	Args     []any
	Joins    []sqlgen.Join
	Indexes  []string
	Plan     *optimizer.QueryPlan
}

func runExplain(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	opts := explainOptions{
		Model:    explainModel,
		Language: explainLang,
		Ordering: explainOrder,
		Provider: providerOrDefault(explainProvider),
	}
	if len(args) > 0 {
		opts.Expression = args[0]
	}
	if explainInteractive {
		if err := askExplain(reg, &opts); err != nil {
			return err
		}
	}
	if opts.Model == "" {
		return fmt.Errorf("a model is required (use --model or --interactive)")
	}

	report, q, err := buildExplain(reg, opts)
	if err != nil {
		return err
	}
	if explainAnalyze {
		if report.Plan, err = analyze(cmd.Context(), reg, opts.Provider, q); err != nil {
			return err
		}
	}
	printReport(report, explainMarkdown)
	return nil
}

// askExplain fills what the flags left out.
func askExplain(reg *schema.Registry, opts *explainOptions) error {
	var qs []*survey.Question
	if opts.Model == "" {
		qs = append(qs, &survey.Question{
			Name:     "model",
			Prompt:   &survey.Select{Message: "Model:", Options: modelNames(reg)},
			Validate: survey.Required,
		})
	}
	if opts.Language == "" {
		codes := []string{}
		for _, l := range reg.Languages().All() {
			codes = append(codes, l.Code)
		}
		qs = append(qs, &survey.Question{
			Name:   "language",
			Prompt: &survey.Select{Message: "Language:", Options: codes, Default: reg.Languages().Default().Code},
		})
	}
	if opts.Expression == "" {
		qs = append(qs, &survey.Question{
			Name:   "expression",
			Prompt: &survey.Input{Message: "Filter (empty for none):"},
		})
	}
	if len(qs) == 0 {
		return nil
	}

	answers := struct {
		Model      string
		Language   string
		Expression string
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	if answers.Model != "" {
		opts.Model = answers.Model
	}
	if answers.Language != "" {
		opts.Language = answers.Language
	}
	if answers.Expression != "" {
		opts.Expression = answers.Expression
	}
	return nil
}

// buildExplain compiles opts without touching a database.
func buildExplain(reg *schema.Registry, opts explainOptions) (*explainReport, *sqlgen.Query, error) {
	comp := compiler.NewCompiler(opts.Provider, reg)
	q, err := comp.Query(opts.Model)
	if err != nil {
		return nil, nil, err
	}
	if opts.Language != "" {
		if err := q.SetLanguage(opts.Language); err != nil {
			return nil, nil, err
		}
	}
	if strings.TrimSpace(opts.Expression) != "" {
		node, err := ast.ParseFilter(opts.Expression)
		if err != nil {
			return nil, nil, err
		}
		if err := q.AddFilter(node); err != nil {
			return nil, nil, err
		}
	}
	if len(opts.Ordering) > 0 {
		if err := q.AddOrdering(opts.Ordering...); err != nil {
			return nil, nil, err
		}
	}

	sel, err := q.Select()
	if err != nil {
		return nil, nil, err
	}
	rendered := comp.Generator().GenerateSelect(sel)
	lang, err := reg.Languages().ByID(q.ActiveLanguage())
	if err != nil {
		return nil, nil, err
	}
	return &explainReport{
		Model:    q.Model().Name,
		Language: lang.Code,
		SQL:      rendered.SQL,
		Args:     rendered.Args,
		Joins:    sel.Joins,
		Indexes:  optimizer.NewOptimizer(opts.Provider).SuggestIndexes(sel),
	}, rendered, nil
}

func analyze(ctx context.Context, reg *schema.Registry, provider string, q *sqlgen.Query) (*optimizer.QueryPlan, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("--analyze needs a database url (DATABASE_URL or database_url in config)")
	}
	c, err := client.NewClient(provider, cfg.DatabaseURL, reg)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	defer c.Disconnect(ctx)
	return optimizer.NewOptimizer(provider).AnalyzeQueryPlan(ctx, c.DB(), c.Compiler().Generator(), q)
}

func printReport(r *explainReport, markdown bool) {
	if markdown {
		ui.PrintMarkdown(r.Markdown())
		return
	}

	ui.PrintSection(fmt.Sprintf("%s (%s)", r.Model, r.Language))
	ui.PrintSQL(r.SQL)
	if len(r.Args) > 0 {
		ui.PrintInfo("args: %v", r.Args)
	}
	if len(r.Joins) > 0 {
		if err := ui.PrintTable([]string{"Type", "Table", "Alias", "On"}, joinRows(r.Joins)); err != nil {
			ui.PrintWarning("failed to render joins: %v", err)
		}
	}
	if len(r.Indexes) > 0 {
		ui.PrintSection("Suggested indexes")
		ui.PrintList(r.Indexes)
	}
	if r.Plan != nil {
		ui.PrintSection("Plan")
		ui.PrintList(r.Plan.Lines)
		for _, s := range r.Plan.Suggestions {
			ui.PrintWarning("%s", s)
		}
	}
}

func joinRows(joins []sqlgen.Join) [][]string {
	rows := make([][]string, 0, len(joins))
	for _, j := range joins {
		on := fmt.Sprintf("%s.%s = %s.%s", j.LeftAlias, j.LeftColumn, j.Name(), j.RightColumn)
		for _, e := range j.Extra {
			on += fmt.Sprintf(" AND %s %s %v", e.Field, e.Operator, e.Value)
		}
		rows = append(rows, []string{j.Type, j.Table, j.Name(), on})
	}
	return rows
}

// Markdown renders the report for glamour.
func (r *explainReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%s)\n\n", r.Model, r.Language)
	fmt.Fprintf(&b, "```sql\n%s\n```\n\n", ui.BreakSQL(r.SQL))
	if len(r.Args) > 0 {
		b.WriteString("| # | Argument |\n|---|---|\n")
		for i, a := range r.Args {
			fmt.Fprintf(&b, "| %d | `%v` |\n", i+1, a)
		}
		b.WriteString("\n")
	}
	if len(r.Joins) > 0 {
		b.WriteString("## Joins\n\n| Type | Table | Alias | On |\n|---|---|---|---|\n")
		for _, row := range joinRows(r.Joins) {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
		}
		b.WriteString("\n")
	}
	if len(r.Indexes) > 0 {
		b.WriteString("## Suggested indexes\n\n")
		for _, idx := range r.Indexes {
			fmt.Fprintf(&b, "- `%s`\n", idx)
		}
		b.WriteString("\n")
	}
	if r.Plan != nil {
		b.WriteString("## Plan\n\n")
		for _, l := range r.Plan.Lines {
			fmt.Fprintf(&b, "    %s\n", l)
		}
		for _, s := range r.Plan.Suggestions {
			fmt.Fprintf(&b, "\n> %s\n", s)
		}
	}
	return b.String()
}
