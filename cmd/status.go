package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdv277/stratus/internal/aws"
	"github.com/vietdv277/stratus/internal/deploy"
	"github.com/vietdv277/stratus/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which resources currently exist",
	Long: `Look up every resource of the deployment by name and show whether it
exists, along with the AWS identity the credentials resolve to.`,

	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStack(ctx)
	if err != nil {
		return err
	}

	identity, err := aws.WhoAmI(ctx, st.client.STS)
	if err != nil {
		return err
	}

	status, err := deploy.GatherStatus(ctx, st.names,
		st.keyPairs, st.securityGroups, st.instances, st.loadBalancers)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.Infof("Deployment %s as %s (account %s)", st.cfg.TemplateName, identity.ARN, identity.Account)
	printer.Infof("")

	if status.Empty() {
		printer.Infof("No resources found.")
		return nil
	}

	printer.Table(statusRows(status))
	return nil
}

func statusRows(status *deploy.Status) []ui.Row {
	return []ui.Row{
		resourceRow("Key pair", present(status.KeyPair != nil, func() string { return status.KeyPair.ID })),
		resourceRow("Instance SG", present(status.InstanceSG != nil, func() string { return status.InstanceSG.ID })),
		resourceRow("ALB SG", present(status.LoadBalancerSG != nil, func() string { return status.LoadBalancerSG.ID })),
		resourceRow("Instance", present(status.Instance != nil, func() string {
			return fmt.Sprintf("%s (%s)", status.Instance.ID, status.Instance.State)
		})),
		resourceRow("Target group", present(status.TargetGroup != nil, func() string { return status.TargetGroup.Name })),
		resourceRow("Load balancer", present(status.LoadBalancer != nil, func() string {
			return fmt.Sprintf("%s (%s)", status.LoadBalancer.DNSName, status.LoadBalancer.State)
		})),
	}
}

func resourceRow(label, value string) ui.Row {
	return ui.Row{Label: label, Value: value, Muted: value == "absent"}
}

func present(exists bool, detail func() string) string {
	if !exists {
		return "absent"
	}
	return detail()
}
