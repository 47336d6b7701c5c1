package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stakevault/stake-settlement/internal/observability/tracing"
)

func ReleaseLocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release-locks",
		Short: "Releases batch locks left behind by an interrupted run",
		Long: "Releases the stake lock and/or an unstaking redeem lock. Only use it once " +
			"the venue has been checked, since the engine must not be running at the same time. " +
			"A redeem batch pending withdrawal is never released.",
		Args: cobra.ExactArgs(0),
		RunE: releaseLocks,
	}

	cmd.Flags().Bool("stake", false, "Release the stake lock")
	cmd.Flags().Bool("unstaking", false, "Release the unstaking redeem lock")

	return cmd
}

func releaseLocks(cmd *cobra.Command, args []string) error {
	stake, _ := cmd.Flags().GetBool("stake")
	unstaking, _ := cmd.Flags().GetBool("unstaking")
	if !stake && !unstaking {
		return errors.New("nothing to release, pass --stake and/or --unstaking")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := tracing.InjectTraceID(cmd.Context())

	rt, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if stake {
		released, err := rt.service.ReleaseStakeLock(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stake lock released: %t\n", released)
	}
	if unstaking {
		released, err := rt.service.ReleaseUnstakingLock(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "unstaking lock released: %t\n", released)
	}
	log.Ctx(ctx).Info().Bool("stake", stake).Bool("unstaking", unstaking).Msg("release-locks finished")
	return nil
}
