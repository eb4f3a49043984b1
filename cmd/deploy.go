package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietdv277/stratus/internal/deploy"
	"github.com/vietdv277/stratus/internal/netutil"
	"github.com/vietdv277/stratus/internal/ui"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Provision the full web stack",
	Long: `Provision the SSH key pair, security groups, EC2 instance, target
group, and application load balancer for the configured template.

The deploy is idempotent: resources that already exist under their
expected names are adopted as-is, so re-running after a partial failure
only creates what is still missing.

Examples:
  stratus deploy                     # Deploy with stratus.yaml or defaults
  stratus deploy -p myprofile -r eu-west-1
  stratus deploy -c staging.yaml`,

	RunE: runDeploy,
}

func init() {
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := newStack(ctx)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(os.Stdout)
	printer.Infof("Deploying %s in %s", st.cfg.TemplateName, regionLabel(st.cfg.Region))

	deployer := deploy.NewDeployer(deploy.DeployerParams{
		Config:        st.cfg,
		Names:         st.names,
		Credentials:   st.keyPairs,
		Firewalls:     st.securityGroups,
		Instances:     st.instances,
		Network:       st.network,
		LoadBalancers: st.loadBalancers,
		PublicIP:      netutil.PublicIP,
		Escrow:        st.escrow,
		Outputs:       st.outputs,
		Reporter:      printer,
		Logger:        st.log,
	})

	result, err := deployer.Deploy(ctx)
	if err != nil {
		printer.Errorf("Deploy failed: %v", err)
		return fmt.Errorf("deploy failed: %w", err)
	}

	keyFile := st.cfg.KeyFile
	if keyFile == "" {
		keyFile = st.names.KeyFile()
	}

	printer.Infof("")
	printer.Successf("Deployment complete")
	printer.Table([]ui.Row{
		{Label: "URL", Value: result.URL},
		{Label: "ALB DNS", Value: result.LoadBalancer.DNSName},
		{Label: "Instance", Value: result.Instance.ID},
		{Label: "Public IP", Value: result.Instance.PublicIP},
		{Label: "Image", Value: result.Image.ID, Muted: true},
		{Label: "Key file", Value: keyFile, Muted: true},
	})
	printer.Infof("The site may take a minute to pass health checks.")
	return nil
}

func regionLabel(region string) string {
	if region == "" {
		return "the default region"
	}
	return region
}
