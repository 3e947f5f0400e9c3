package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kuntatinte/internal/autogen"
	"github.com/jmylchreest/kuntatinte/internal/config"
	"github.com/jmylchreest/kuntatinte/internal/plugin/output/template"
)

var (
	templateNames    []string
	templateForce    bool
	templateLocation string
)

// templatesCmd represents the templates command.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage integration templates",
	Long: `Manage the templates integrations render, including the autogen rules.

Templates can be customised by dumping them to ~/.config/kuntatinte/templates/{name}/
and editing them. Custom templates are used instead of the embedded ones.

Examples:
  kuntatinte templates list
  kuntatinte templates dump -n starship,ulauncher
  kuntatinte templates dump -n autogen_rules --force`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	Long: `List the embedded templates. Templates with an active override are marked
with an asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runTemplatesList,
}

var templatesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump embedded templates to files",
	Long: `Write the embedded templates to ~/.config/kuntatinte/templates/{name}/, or to
--location. Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runTemplatesDump,
}

func init() {
	templatesCmd.PersistentFlags().StringSliceVarP(&templateNames, "names", "n", nil, "comma-separated template sets (default: all)")
	templatesDumpCmd.Flags().BoolVarP(&templateForce, "force", "f", false, "overwrite existing custom templates")
	templatesDumpCmd.Flags().StringVarP(&templateLocation, "location", "l", "", "directory to dump to (default: ~/.config/kuntatinte/templates)")

	templatesCmd.AddCommand(templatesListCmd, templatesDumpCmd)
	rootCmd.AddCommand(templatesCmd)
}

// templateLoaders returns the loaders of every integration with templates
// plus the autogen rules, filtered by --names.
func templateLoaders(gen *autogen.Generator) (map[string]*template.Loader, error) {
	loaders := map[string]*template.Loader{autogen.RulesDir: gen.Loader()}
	for name, p := range appBackend.Plugins().Registry().All() {
		if provider, ok := p.(interface{ Loader() *template.Loader }); ok {
			loaders[name] = provider.Loader()
		}
	}
	if len(templateNames) == 0 {
		return loaders, nil
	}

	filtered := make(map[string]*template.Loader, len(templateNames))
	for _, name := range templateNames {
		l, ok := loaders[name]
		if !ok {
			return nil, fmt.Errorf("no templates for %q", name)
		}
		filtered[name] = l
	}
	return filtered, nil
}

func sortedNames(loaders map[string]*template.Loader) []string {
	names := make([]string, 0, len(loaders))
	for name := range loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runTemplatesList(cmd *cobra.Command, _ []string) error {
	loaders, err := templateLoaders(appBackend.Autogen())
	if err != nil {
		return err
	}

	hasCustom := false
	for _, name := range sortedNames(loaders) {
		loader := loaders[name]
		templates, err := loader.ListEmbeddedTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates for %s: %w", name, err)
		}
		printf(cmd, "%s (%s)\n", name, loader.CustomDir())
		for _, tmpl := range templates {
			if loader.GetInfo(tmpl).UsingCustom() {
				printf(cmd, "  - %s*\n", tmpl)
				hasCustom = true
				continue
			}
			printf(cmd, "  - %s\n", tmpl)
		}
	}
	if hasCustom {
		printf(cmd, "\nTemplates with active overrides are shown with an asterisk (*).\n")
	}
	return nil
}

func runTemplatesDump(cmd *cobra.Command, _ []string) error {
	loaders, err := templateLoaders(appBackend.Autogen())
	if err != nil {
		return err
	}
	if templateLocation != "" {
		base := config.ExpandPath(templateLocation)
		for name, l := range loaders {
			loaders[name] = l.WithCustomBase(base)
		}
		printf(cmd, "Dumping templates to %s\n", base)
	}

	total := 0
	for _, name := range sortedNames(loaders) {
		dumped, err := loaders[name].DumpAllTemplates(templateForce)
		for _, path := range dumped {
			printf(cmd, "  %s\n", path)
			total++
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, template.ErrTemplateExists) && !strings.Contains(err.Error(), template.ErrTemplateExists.Error()) {
			return fmt.Errorf("failed to dump templates for %s: %w", name, err)
		}
		for part := range strings.SplitSeq(err.Error(), "; ") {
			printf(cmd, "  skipped: %s\n", strings.TrimPrefix(part, template.ErrTemplateExists.Error()+": "))
		}
	}

	if total == 0 {
		fmt.Fprintln(os.Stderr, "No templates were dumped. Use --force to overwrite existing templates.")
		return nil
	}
	printf(cmd, "Dumped %d template(s)\n", total)
	return nil
}
