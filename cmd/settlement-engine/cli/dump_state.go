package cli

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/stakevault/stake-settlement/internal/db"
	"github.com/stakevault/stake-settlement/internal/ledger"
)

func DumpStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-state",
		Short: "Prints the persisted settlement state",
		Args:  cobra.ExactArgs(0),
		RunE:  dumpState,
	}

	cmd.Flags().String("account", "", "Only print the given account")
	cmd.Flags().Bool("all", false, "Print every account and receipt")

	return cmd
}

func dumpState(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.New(ctx, cfg.Db)
	if err != nil {
		return fmt.Errorf("error while creating db client: %w", err)
	}
	defer database.Close(ctx) //nolint:errcheck

	printer := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}

	accountID, _ := cmd.Flags().GetString("account")
	if accountID != "" {
		acc, err := database.GetAccount(ctx, ledger.AccountID(accountID))
		if err != nil {
			return err
		}
		printer.Fdump(cmd.OutOrStdout(), acc)
		return nil
	}

	all, _ := cmd.Flags().GetBool("all")
	if all {
		snap, err := database.LoadLedger(ctx)
		if err != nil {
			return err
		}
		printer.Fdump(cmd.OutOrStdout(), snap)
		return nil
	}

	state, err := database.GetContractState(ctx)
	if err != nil {
		return err
	}
	printer.Fdump(cmd.OutOrStdout(), state)
	return nil
}
