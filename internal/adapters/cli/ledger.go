package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ledgerqueries "github.com/dmarrick/novaforge/internal/application/ledger/queries"
	"github.com/dmarrick/novaforge/internal/domain/ledger"
)

// NewLedgerCommand creates the ledger command with subcommands
func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Material ledger operations",
		Long: `Inspect material and currency balances.

The ledger tracks every material an owner holds plus their credits.
Production reserves materials up front; completions, refunds, and
sales credit it back.

Examples:
  novaforge ledger balances --owner-id 1`,
	}

	cmd.AddCommand(newLedgerBalancesCommand())
	return cmd
}

func newLedgerBalancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show all non-zero balances",
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

			response, err := s.engine.GetBalances(context.Background(), &ledgerqueries.GetBalancesQuery{OwnerID: owner})
			if err != nil {
				return err
			}
			if len(response.Balances) == 0 {
				fmt.Println("No balances")
				return nil
			}

			kinds := make([]string, 0, len(response.Balances))
			for kind := range response.Balances {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tQUANTITY")
			for _, kind := range kinds {
				label := kind
				if kind == ledger.CurrencyKind {
					label = "CREDITS"
				}
				fmt.Fprintf(w, "%s\t%s\n", label, formatCredits(response.Balances[kind]))
			}
			return w.Flush()
		},
	}
}
