package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"companion/internal/catalog"
	"companion/internal/core"
	"companion/pkg/schema"
)

var (
	tplCategory   string
	tplEngine     string
	tplDifficulty string
	tplJSON       bool
)

var templatesCmd = &cobra.Command{
	Use:   "templates [id]",
	Short: "List starter templates or show one",
	Long: `Lists the template catalog, optionally filtered. With an id, shows the
template's details and documentation.

Examples:
  companion templates --engine pixi
  companion templates --category puzzle --difficulty beginner
  companion templates marble-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().StringVar(&tplCategory, "category", "", "Filter by category")
	templatesCmd.Flags().StringVar(&tplEngine, "engine", "", "Filter by engine (pixi, babylon, aframe)")
	templatesCmd.Flags().StringVar(&tplDifficulty, "difficulty", "", "Filter by difficulty (beginner, intermediate, advanced)")
	templatesCmd.Flags().BoolVar(&tplJSON, "json", false, "Print JSON")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		t, ok := cat.ByID(args[0])
		if !ok {
			return fmt.Errorf("template %q not found", args[0])
		}
		if tplJSON {
			return printJSON(cmd, t)
		}
		return showTemplate(cmd, t)
	}

	templates := cat.Find(catalog.Query{
		Category:   tplCategory,
		Engine:     schema.Engine(strings.ToLower(tplEngine)),
		Difficulty: schema.Difficulty(strings.ToLower(tplDifficulty)),
	})
	if tplJSON {
		return printJSON(cmd, templates)
	}
	if len(templates) == 0 {
		fmt.Fprintln(out, "No templates match.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tENGINE\tDIFFICULTY")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Category, t.Engine, t.Difficulty)
	}
	return tw.Flush()
}

func showTemplate(cmd *cobra.Command, t schema.Template) error {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n%s\n\n", t.Name, t.Description)
	fmt.Fprintf(&md, "**Engine:** %s  \n**Difficulty:** %s  \n**Category:** %s\n\n", t.Engine, t.Difficulty, t.Category)
	md.WriteString("## Features\n\n")
	for _, f := range t.Features {
		fmt.Fprintf(&md, "- %s\n", f)
	}
	settings := t.Project.Settings
	fmt.Fprintf(&md, "\n## Project\n\n- Scenes: %s\n- Resolution: %dx%d, %s\n",
		strings.Join(t.Project.Scenes, ", "), settings.Resolution.Width, settings.Resolution.Height, settings.Orientation)
	if settings.Physics != nil {
		fmt.Fprintf(&md, "- Physics: %s, gravity %g\n", settings.Physics.Engine, settings.Physics.Gravity)
	}
	if t.Documentation != "" {
		fmt.Fprintf(&md, "\n## Documentation\n\n%s\n", t.Documentation)
	}

	renderer, err := core.NewMarkdownRenderer("", 80)
	if err != nil {
		fmt.Fprint(cmd.OutOrStdout(), md.String())
		return nil
	}
	rendered, err := renderer.Render(md.String())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
