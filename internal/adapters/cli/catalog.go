package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmarrick/novaforge/internal/adapters/catalogfile"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/infrastructure/config"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the static production catalog",
		Long: `List the recipes, facilities, and extraction sites the engine
is configured with.

Examples:
  novaforge catalog recipes
  novaforge catalog facilities
  novaforge catalog sites`,
	}

	cmd.AddCommand(newCatalogRecipesCommand())
	cmd.AddCommand(newCatalogFacilitiesCommand())
	cmd.AddCommand(newCatalogSitesCommand())

	return cmd
}

// loadCatalog reads the configured catalog file without opening the database
func loadCatalog() (*catalog.Catalog, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return catalogfile.Load(cfg.Engine.CatalogPath)
}

func newCatalogRecipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List production recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RECIPE\tOUTPUT\tCATEGORY\tDURATION\tINPUTS")
			for _, id := range cat.RecipeIDs() {
				recipe, err := cat.Recipe(id)
				if err != nil {
					return err
				}
				var inputs []string
				for kind, qty := range recipe.Inputs() {
					inputs = append(inputs, fmt.Sprintf("%s:%d", kind, qty))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					recipe.ID(), recipe.OutputKind(), recipe.Category(),
					recipe.BaseDuration(), strings.Join(inputs, ","))
			}
			return w.Flush()
		},
	}
}

func newCatalogFacilitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "facilities",
		Short: "List production facilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FACILITY\tNAME\tSLOTS\tEFFICIENCY\tMAX QUALITY\tTAGS")
			for _, id := range cat.FacilityIDs() {
				facility, err := cat.Facility(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\t%s\n",
					facility.ID(), facility.Name(), facility.MaxSlots(),
					facility.Efficiency(), facility.MaxQuality(),
					strings.Join(facility.Tags(), ","))
			}
			return w.Flush()
		},
	}
}

func newCatalogSitesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List extraction sites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SITE\tNAME\tLEVEL\tDIFFICULTY\tABUNDANCE\tCLAIMS\tRESOURCES")
			for _, id := range cat.SiteIDs() {
				site, err := cat.Site(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d\t%s\n",
					site.ID(), site.Name(), site.Level(), site.Difficulty(),
					site.Abundance(), site.MaxClaims(),
					strings.Join(site.PrimaryResources(), ","))
			}
			return w.Flush()
		},
	}
}
