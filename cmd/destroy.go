package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdv277/stratus/internal/deploy"
	"github.com/vietdv277/stratus/internal/ui"
)

var destroyForce bool

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down the deployed stack",
	Long: `Destroy every resource of the deployment in reverse dependency order:
load balancer first, then target group, instance, security groups, and
finally the SSH key pair. Resources already absent are skipped, so a
re-run after a partial teardown finishes the job.

Examples:
  stratus destroy            # Asks for confirmation first
  stratus destroy --force    # Skips the confirmation prompt`,

	RunE: runDestroy,
}

func init() {
	rootCmd.AddCommand(destroyCmd)

	destroyCmd.Flags().BoolVar(&destroyForce, "force", false, "Skip the confirmation prompt")
}

func runDestroy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStack(ctx)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)

	if !destroyForce {
		status, err := deploy.GatherStatus(ctx, st.names,
			st.keyPairs, st.securityGroups, st.instances, st.loadBalancers)
		if err != nil {
			return err
		}
		if status.Empty() {
			printer.Infof("No resources found.")
			return nil
		}

		printer.Infof("The following resources will be removed:")
		printer.Table(statusRows(status))

		ok, err := ui.Confirm(fmt.Sprintf("Destroy all %s resources?", st.cfg.TemplateName))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printer.Infof("Destroying %s in %s", st.cfg.TemplateName, regionLabel(st.cfg.Region))

	teardown := deploy.NewTeardown(deploy.TeardownParams{
		Config:        st.cfg,
		Names:         st.names,
		Credentials:   st.keyPairs,
		Firewalls:     st.securityGroups,
		Instances:     st.instances,
		LoadBalancers: st.loadBalancers,
		Escrow:        st.escrow,
		Outputs:       st.outputs,
		Reporter:      printer,
		Logger:        st.log,
	})

	if err := teardown.Destroy(ctx); err != nil {
		printer.Errorf("Teardown failed: %v", err)
		return fmt.Errorf("teardown failed: %w", err)
	}

	printer.Infof("")
	printer.Successf("All resources removed")
	return nil
}
