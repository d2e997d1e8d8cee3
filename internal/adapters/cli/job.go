package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	extractioncommands "github.com/dmarrick/novaforge/internal/application/extraction/commands"
	extractionqueries "github.com/dmarrick/novaforge/internal/application/extraction/queries"
	jobcommands "github.com/dmarrick/novaforge/internal/application/jobs/commands"
	jobqueries "github.com/dmarrick/novaforge/internal/application/jobs/queries"
	productioncommands "github.com/dmarrick/novaforge/internal/application/production/commands"
	"github.com/dmarrick/novaforge/internal/domain/catalog"
	"github.com/dmarrick/novaforge/internal/domain/job"
)

// NewJobCommand creates the job command with subcommands
func NewJobCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Production and extraction job operations",
		Long: `Start, inspect, and cancel scheduled jobs.

Examples:
  novaforge job start-production --owner-id 1 --facility FORGE-1 --recipe PLASMA_RIFLE --quantity 2
  novaforge job start-extraction --owner-id 1 --site ASTEROID-7 --resource IRON_ORE
  novaforge job status <job-id>
  novaforge job list --owner-id 1 --status ACTIVE
  novaforge job cancel <job-id>
  novaforge job history --owner-id 1
  novaforge job estimate --owner-id 1 --site ASTEROID-7`,
	}

	cmd.AddCommand(newStartProductionCommand())
	cmd.AddCommand(newStartExtractionCommand())
	cmd.AddCommand(newJobStatusCommand())
	cmd.AddCommand(newJobListCommand())
	cmd.AddCommand(newJobCancelCommand())
	cmd.AddCommand(newJobHistoryCommand())
	cmd.AddCommand(newEstimateSiteCommand())

	return cmd
}

func newStartProductionCommand() *cobra.Command {
	var (
		facilityID string
		recipeID   string
		quantity   int
		quality    string
	)

	cmd := &cobra.Command{
		Use:   "start-production",
		Short: "Start a production job",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}
			tier, err := catalog.ParseQualityTier(quality)
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.StartProduction(context.Background(), &productioncommands.StartProductionCommand{
				OwnerID:    owner,
				FacilityID: facilityID,
				RecipeID:   recipeID,
				Quantity:   quantity,
				Quality:    tier,
			})
			if err != nil {
				return decorateCatalogError(err, s)
			}

			fmt.Printf("Job %s started\n", response.JobID)
			fmt.Printf("Completes %s\n", formatTime(&response.Deadline))
			fmt.Println("Reserved materials:")
			for kind, qty := range response.Reserved {
				fmt.Printf("  %s: %d\n", kind, qty)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&facilityID, "facility", "", "Facility ID [required]")
	cmd.Flags().StringVar(&recipeID, "recipe", "", "Recipe ID [required]")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Units to produce")
	cmd.Flags().StringVar(&quality, "quality", "STANDARD", "Quality tier")
	cmd.MarkFlagRequired("facility")
	cmd.MarkFlagRequired("recipe")

	return cmd
}

func newStartExtractionCommand() *cobra.Command {
	var (
		siteID   string
		resource string
		cycles   int
	)

	cmd := &cobra.Command{
		Use:   "start-extraction",
		Short: "Start an extraction job",
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

			response, err := s.engine.StartExtraction(context.Background(), &extractioncommands.StartExtractionCommand{
				OwnerID:      owner,
				SiteID:       siteID,
				ResourceKind: resource,
				Quantity:     cycles,
			})
			if err != nil {
				return decorateCatalogError(err, s)
			}

			fmt.Printf("Job %s started\n", response.JobID)
			fmt.Printf("Completes %s\n", formatTime(&response.Deadline))
			return nil
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "Extraction site ID [required]")
	cmd.Flags().StringVar(&resource, "resource", "", "Resource kind to extract [required]")
	cmd.Flags().IntVar(&cycles, "cycles", 1, "Extraction cycles")
	cmd.MarkFlagRequired("site")
	cmd.MarkFlagRequired("resource")

	return cmd
}

func newJobStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			snapshot, err := s.engine.GetJobStatus(context.Background(), &jobqueries.GetJobStatusQuery{JobID: args[0]})
			if err != nil {
				return err
			}

			fmt.Printf("Job:       %s\n", snapshot.ID)
			fmt.Printf("Kind:      %s\n", snapshot.Kind)
			fmt.Printf("Status:    %s\n", snapshot.Status)
			fmt.Printf("Target:    %s\n", snapshot.TargetID)
			fmt.Printf("Host:      %s\n", snapshot.HostID)
			if snapshot.ResourceKind != "" {
				fmt.Printf("Resource:  %s\n", snapshot.ResourceKind)
			}
			fmt.Printf("Quantity:  %d\n", snapshot.Quantity)
			fmt.Printf("Quality:   %s\n", snapshot.Quality)
			fmt.Printf("Started:   %s\n", formatTime(snapshot.StartedAt))
			if snapshot.Deadline != nil && snapshot.Status == job.StatusActive {
				fmt.Printf("Remaining: %s\n", formatRemaining(snapshot.Remaining))
			}
			return nil
		},
	}
}

func newJobListCommand() *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an owner's jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := requireOwner()
			if err != nil {
				return err
			}

			query := &jobqueries.ListJobsQuery{OwnerID: owner}
			if statusFilter != "" {
				status := job.Status(statusFilter)
				query.Status = &status
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.ListJobs(context.Background(), query)
			if err != nil {
				return err
			}
			if len(response.Jobs) == 0 {
				fmt.Println("No jobs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "JOB\tKIND\tSTATUS\tTARGET\tQTY\tREMAINING")
			for _, snapshot := range response.Jobs {
				remaining := "-"
				if snapshot.Status == job.StatusActive {
					remaining = formatRemaining(snapshot.Remaining)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					snapshot.ID, snapshot.Kind, snapshot.Status,
					snapshot.TargetID, snapshot.Quantity, remaining)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (PENDING, ACTIVE, COMPLETED, CANCELLED)")
	return cmd
}

func newJobCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			response, err := s.engine.CancelJob(context.Background(), &jobcommands.CancelJobCommand{JobID: args[0]})
			if err != nil {
				return err
			}
			fmt.Printf("Job %s cancelled\n", response.JobID)
			return nil
		},
	}
}

func newJobHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show an owner's recent job outcomes",
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

			events, err := s.events.FindRecent(context.Background(), owner, limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("No finished jobs yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tJOB\tKIND\tSTATUS\tOUTPUT")
			for _, event := range events {
				output := "-"
				if len(event.Output) > 0 {
					parts := make([]string, 0, len(event.Output))
					for kind, qty := range event.Output {
						parts = append(parts, fmt.Sprintf("%s:%d", kind, qty))
					}
					sort.Strings(parts)
					output = strings.Join(parts, " ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					formatTime(&event.Timestamp), event.JobID, event.Kind, event.Status, output)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum events to show")
	return cmd
}

func newEstimateSiteCommand() *cobra.Command {
	var siteID string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Survey an extraction site",
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

			response, err := s.engine.EstimateSite(context.Background(), &extractionqueries.EstimateSiteQuery{
				OwnerID: owner,
				SiteID:  siteID,
			})
			if err != nil {
				return decorateCatalogError(err, s)
			}

			fmt.Printf("Site:        %s\n", response.SiteID)
			fmt.Printf("Estimated:   ~%d units per job\n", response.Estimated)
			fmt.Printf("Rare chance: %.1f%%\n", response.RareChance*100)
			fmt.Printf("Resources:   %v\n", response.Resources)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteID, "site", "", "Extraction site ID [required]")
	cmd.MarkFlagRequired("site")
	return cmd
}

// decorateCatalogError appends a "did you mean" hint to unknown-id errors
func decorateCatalogError(err error, s *session) error {
	var notFound *catalog.NotFoundError
	if errors.As(err, &notFound) {
		var candidates []string
		switch notFound.EntityKind {
		case "recipe":
			candidates = s.catalog.RecipeIDs()
		case "facility":
			candidates = s.catalog.FacilityIDs()
		case "extraction site":
			candidates = s.catalog.SiteIDs()
		}
		if hint := suggestionHint(notFound.ID, candidates); hint != "" {
			return fmt.Errorf("%w%s", err, hint)
		}
	}
	return err
}
