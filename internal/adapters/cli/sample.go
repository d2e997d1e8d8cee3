package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	samplecommands "github.com/dmarrick/novaforge/internal/application/samples/commands"
	samplequeries "github.com/dmarrick/novaforge/internal/application/samples/queries"
)

// NewSampleCommand creates the sample command with subcommands
func NewSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Ore sample operations",
		Long: `Inspect, appraise, sell, and refine extracted ore samples.

Samples are created by extraction jobs. Appraisal fixes a market value;
a later sale pays exactly that value. Refining converts unappraised ore
into refined material credited to the ledger.

Examples:
  novaforge sample list --owner-id 1
  novaforge sample appraise <sample-id> --owner-id 1
  novaforge sample sell <sample-id> --owner-id 1
  novaforge sample refine <sample-id> --owner-id 1 --refinery SMELTER-1 --quantity 10`,
	}

	cmd.AddCommand(newSampleListCommand())
	cmd.AddCommand(newSampleAppraiseCommand())
	cmd.AddCommand(newSampleSellCommand())
	cmd.AddCommand(newSampleRefineCommand())

	return cmd
}

func newSampleListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List an owner's samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.ListSamples(context.Background(), &samplequeries.ListSamplesQuery{OwnerID: owner})
			if err != nil {
				return err
			}
			if len(response.Samples) == 0 {
				fmt.Println("No samples found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SAMPLE\tKIND\tAMOUNT\tQUALITY\tSTATE\tVALUE\tEXTRACTED")
			for _, ore := range response.Samples {
				value := "-"
				if ore.AppraisedValue() > 0 {
					value = formatCredits(ore.AppraisedValue())
				}
				created := ore.CreatedAt()
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
					ore.ID(), ore.Kind(), ore.Amount(), ore.Quality(),
					ore.State(), value, formatTime(&created))
			}
			return w.Flush()
		},
	}
}

func newSampleAppraiseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "appraise <sample-id>",
		Short: "Appraise a sample's market value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.AppraiseSample(context.Background(), &samplecommands.AppraiseSampleCommand{
				OwnerID:  owner,
				SampleID: args[0],
			})
			if err != nil {
				return err
			}
			fmt.Printf("Sample %s (%d x %s) appraised at %s credits\n",
				response.SampleID, response.Amount, response.Kind, formatCredits(response.Value))
			return nil
		},
	}
}

func newSampleSellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sell <sample-id>",
		Short: "Sell an appraised sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.SellSample(context.Background(), &samplecommands.SellSampleCommand{
				OwnerID:  owner,
				SampleID: args[0],
			})
			if err != nil {
				return err
			}
			fmt.Printf("Sample %s sold for %s credits\n", response.SampleID, formatCredits(response.CreditsEarned))
			return nil
		},
	}
}

func newSampleRefineCommand() *cobra.Command {
	var (
		refineryID string
		quantity   int
	)

	cmd := &cobra.Command{
		Use:   "refine <sample-id>",
		Short: "Refine ore from a sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.RefineOre(context.Background(), &samplecommands.RefineOreCommand{
				OwnerID:    owner,
				SampleID:   args[0],
				RefineryID: refineryID,
				Quantity:   quantity,
			})
			if err != nil {
				return decorateCatalogError(err, s)
			}

			fmt.Printf("Refined %d units of %s\n", response.Output, response.RefinedKind)
			if response.CorruptionLoss > 0 {
				fmt.Printf("Lost %d units to third-party handling\n", response.CorruptionLoss)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&refineryID, "refinery", "", "Refinery facility ID [required]")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "Ore units to refine [required]")
	cmd.MarkFlagRequired("refinery")
	cmd.MarkFlagRequired("quantity")

	return cmd
}
