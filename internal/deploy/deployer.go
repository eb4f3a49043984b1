// Package deploy orchestrates provisioning and teardown. Stages run in
// dependency order, each one reconciling toward the desired state, so a
// re-run after any failure resumes where the previous run stopped.
package deploy

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/config"
	"github.com/vietdv277/stratus/internal/naming"
	"github.com/vietdv277/stratus/internal/userdata"
	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

// Reporter receives progress events. The CLI renders them; tests and
// library callers can pass NopReporter.
type Reporter interface {
	Stage(name string)
	Resource(kind, name string, adopted bool)
}

// NopReporter discards all progress events.
type NopReporter struct{}

func (NopReporter) Stage(string)                  {}
func (NopReporter) Resource(string, string, bool) {}

// KeyEscrow stores private key material off-host.
type KeyEscrow interface {
	Put(ctx context.Context, name, material string) error
	Delete(ctx context.Context, name string) error
}

// OutputStore publishes deployment outputs for other tooling.
type OutputStore interface {
	Publish(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// Result collects every resource a deploy touched.
type Result struct {
	KeyPair        types.ReconciledResource
	InstanceSG     types.ReconciledResource
	LoadBalancerSG types.ReconciledResource
	Image          types.Image
	Instance       provider.ReconciledInstance
	TargetGroup    provider.ReconciledTargetGroup
	LoadBalancer   provider.ReconciledLoadBalancer
	Listener       provider.ReconciledListener
	URL            string
}

// Deployer provisions the full stack for one template.
type Deployer struct {
	cfg   *config.Config
	names *naming.Names

	credentials   provider.CredentialManager
	firewalls     provider.FirewallManager
	instances     provider.InstanceManager
	network       provider.NetworkAPI
	loadBalancers provider.LoadBalancerManager
	publicIP      provider.PublicIPFunc

	// escrow and outputs are optional; nil disables the feature.
	escrow  KeyEscrow
	outputs OutputStore

	report Reporter
	log    *zap.Logger
}

// DeployerParams wires a Deployer.
type DeployerParams struct {
	Config        *config.Config
	Names         *naming.Names
	Credentials   provider.CredentialManager
	Firewalls     provider.FirewallManager
	Instances     provider.InstanceManager
	Network       provider.NetworkAPI
	LoadBalancers provider.LoadBalancerManager
	PublicIP      provider.PublicIPFunc
	Escrow        KeyEscrow
	Outputs       OutputStore
	Reporter      Reporter
	Logger        *zap.Logger
}

// NewDeployer creates a new Deployer.
func NewDeployer(p DeployerParams) *Deployer {
	if p.Reporter == nil {
		p.Reporter = NopReporter{}
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &Deployer{
		cfg:           p.Config,
		names:         p.Names,
		credentials:   p.Credentials,
		firewalls:     p.Firewalls,
		instances:     p.Instances,
		network:       p.Network,
		loadBalancers: p.LoadBalancers,
		publicIP:      p.PublicIP,
		escrow:        p.Escrow,
		outputs:       p.Outputs,
		report:        p.Reporter,
		log:           p.Logger,
	}
}

// Deploy runs the provisioning stages in order and returns everything
// it reconciled. The first failing stage aborts the run; resources from
// completed stages stay in place and a re-run adopts them.
func (d *Deployer) Deploy(ctx context.Context) (*Result, error) {
	result := &Result{}

	stages := []struct {
		name string
		run  func(context.Context, *Result) error
	}{
		{"SSH key pair", d.stageCredential},
		{"Security groups", d.stageFirewalls},
		{"EC2 instance", d.stageInstance},
		{"Target group", d.stageTargetGroup},
		{"Load balancer", d.stageLoadBalancer},
	}

	for _, stage := range stages {
		d.report.Stage(stage.name)
		if err := stage.run(ctx, result); err != nil {
			return nil, fmt.Errorf("%s: %w", stage.name, err)
		}
	}

	result.URL = fmt.Sprintf("http://%s", result.LoadBalancer.DNSName)
	d.publishOutputs(ctx, result)
	return result, nil
}

func (d *Deployer) stageCredential(ctx context.Context, result *Result) error {
	keyFile := d.cfg.KeyFile
	if keyFile == "" {
		keyFile = d.names.KeyFile()
	}

	kp, err := d.credentials.EnsureExists(ctx, d.names.KeyPair(), keyFile)
	if err != nil {
		return err
	}
	result.KeyPair = kp
	d.report.Resource("key pair", kp.Name, kp.AlreadyExisted)

	if !kp.AlreadyExisted && d.cfg.EscrowKey && d.escrow != nil {
		material, err := os.ReadFile(keyFile)
		if err != nil {
			return fmt.Errorf("failed to read private key for escrow: %w", err)
		}
		if err := d.escrow.Put(ctx, d.names.KeySecret(), string(material)); err != nil {
			// The local .pem copy exists, so a failed escrow write
			// degrades to a warning instead of failing the deploy.
			d.log.Warn("key escrow failed", zap.Error(err))
		}
	}
	return nil
}

func (d *Deployer) stageFirewalls(ctx context.Context, result *Result) error {
	vpcID, err := d.network.DefaultVPC(ctx)
	if err != nil {
		return err
	}

	callerIP := ""
	if d.publicIP != nil {
		if ip, ok := d.publicIP(ctx); ok {
			callerIP = ip
		} else {
			d.log.Warn("public IP discovery failed, skipping IP-scoped rules")
		}
	}

	instSG, err := d.firewalls.EnsureExists(ctx, d.names.InstanceSecurityGroup(), "Instance security group", vpcID)
	if err != nil {
		return err
	}
	if err := d.firewalls.AddIngressRules(ctx, instSG.ID, ResolveRules(d.cfg.InstanceRules(), callerIP)); err != nil {
		return err
	}
	result.InstanceSG = instSG
	d.report.Resource("security group", instSG.Name, instSG.AlreadyExisted)

	albSG, err := d.firewalls.EnsureExists(ctx, d.names.LoadBalancerSecurityGroup(), "Load balancer security group", vpcID)
	if err != nil {
		return err
	}
	if err := d.firewalls.AddIngressRules(ctx, albSG.ID, ResolveRules(d.cfg.LoadBalancerRules(), callerIP)); err != nil {
		return err
	}
	result.LoadBalancerSG = albSG
	d.report.Resource("security group", albSG.Name, albSG.AlreadyExisted)

	return nil
}

func (d *Deployer) stageInstance(ctx context.Context, result *Result) error {
	image, err := d.instances.FindLatestImage(ctx, provider.ImageFilter{
		NamePattern:  d.cfg.AMINameFilter,
		Owner:        d.cfg.AMIOwner,
		Architecture: d.cfg.AMIArchitecture,
	})
	if err != nil {
		return err
	}
	result.Image = image
	d.log.Debug("using image", zap.String("id", image.ID), zap.String("name", image.Name))

	script, err := userdata.Render(userdata.Params{
		TemplateID:   d.cfg.TemplateID,
		TemplateName: d.cfg.TemplateName,
	})
	if err != nil {
		return err
	}

	inst, err := d.instances.EnsureExists(ctx, provider.InstanceSpec{
		Name:             d.names.Instance(),
		ImageID:          image.ID,
		InstanceType:     d.cfg.InstanceType,
		KeyName:          d.names.KeyPair(),
		SecurityGroupIDs: []string{result.InstanceSG.ID},
		UserData:         script,
		Tags:             d.cfg.Tags(),
	})
	if err != nil {
		return err
	}
	result.Instance = inst
	d.report.Resource("instance", inst.Name, inst.AlreadyExisted)
	return nil
}

func (d *Deployer) stageTargetGroup(ctx context.Context, result *Result) error {
	tg, err := d.loadBalancers.EnsureTargetGroup(ctx, d.names.TargetGroup(), result.Instance.VPCID, d.cfg.TargetPort)
	if err != nil {
		return err
	}
	result.TargetGroup = tg
	d.report.Resource("target group", tg.Name, tg.AlreadyExisted)

	return d.loadBalancers.RegisterTargets(ctx, tg.ARN, []string{result.Instance.ID})
}

func (d *Deployer) stageLoadBalancer(ctx context.Context, result *Result) error {
	subnets, err := d.network.ListSubnets(ctx, result.Instance.VPCID)
	if err != nil {
		return err
	}

	lb, err := d.loadBalancers.EnsureLoadBalancer(ctx, d.names.LoadBalancer(), []string{result.LoadBalancerSG.ID}, subnets)
	if err != nil {
		return err
	}
	result.LoadBalancer = lb
	d.report.Resource("load balancer", lb.Name, lb.AlreadyExisted)

	listener, err := d.loadBalancers.EnsureListener(ctx, lb.ARN, result.TargetGroup.ARN, d.cfg.ListenerPort)
	if err != nil {
		return err
	}
	result.Listener = listener
	return nil
}

// publishOutputs is best effort; the deploy already succeeded.
func (d *Deployer) publishOutputs(ctx context.Context, result *Result) {
	if !d.cfg.PublishOutputs || d.outputs == nil {
		return
	}

	outputs := map[string]string{
		"alb-dns":            result.LoadBalancer.DNSName,
		"instance-public-ip": result.Instance.PublicIP,
		"url":                result.URL,
	}
	for key, value := range outputs {
		if value == "" {
			continue
		}
		if err := d.outputs.Publish(ctx, d.names.OutputParameter(key), value); err != nil {
			d.log.Warn("failed to publish output", zap.String("key", key), zap.Error(err))
		}
	}
}
