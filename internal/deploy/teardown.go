package deploy

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/config"
	"github.com/vietdv277/stratus/internal/naming"
	"github.com/vietdv277/stratus/internal/retry"
	"github.com/vietdv277/stratus/pkg/provider"
)

// Teardown destroys the stack in reverse dependency order.
type Teardown struct {
	cfg   *config.Config
	names *naming.Names

	credentials   provider.CredentialManager
	firewalls     provider.FirewallManager
	instances     provider.InstanceManager
	loadBalancers provider.LoadBalancerManager

	escrow  KeyEscrow
	outputs OutputStore

	report Reporter
	log    *zap.Logger
}

// TeardownParams wires a Teardown.
type TeardownParams struct {
	Config        *config.Config
	Names         *naming.Names
	Credentials   provider.CredentialManager
	Firewalls     provider.FirewallManager
	Instances     provider.InstanceManager
	LoadBalancers provider.LoadBalancerManager
	Escrow        KeyEscrow
	Outputs       OutputStore
	Reporter      Reporter
	Logger        *zap.Logger
}

// NewTeardown creates a new Teardown.
func NewTeardown(p TeardownParams) *Teardown {
	if p.Reporter == nil {
		p.Reporter = NopReporter{}
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &Teardown{
		cfg:           p.Config,
		names:         p.Names,
		credentials:   p.Credentials,
		firewalls:     p.Firewalls,
		instances:     p.Instances,
		loadBalancers: p.LoadBalancers,
		escrow:        p.Escrow,
		outputs:       p.Outputs,
		report:        p.Reporter,
		log:           p.Logger,
	}
}

// Destroy removes every resource of the deployment, newest dependency
// first. Resources already absent are skipped, so a re-run after a
// partial teardown finishes the job. The first hard failure aborts:
// continuing would delete resources something still depends on.
func (t *Teardown) Destroy(ctx context.Context) error {
	timeouts := t.cfg.Timeouts

	t.report.Stage("Load balancer")
	if err := t.loadBalancers.DeleteLoadBalancer(ctx, t.names.LoadBalancer()); err != nil {
		return fmt.Errorf("load balancer: %w", err)
	}
	// The control plane reports the balancer gone before its network
	// interfaces release the target group and security group.
	if err := sleep(ctx, timeouts.LoadBalancerSettle.Std()); err != nil {
		return err
	}

	t.report.Stage("Target group")
	if err := retry.OnDependencyConflict(ctx, func() error {
		return t.loadBalancers.DeleteTargetGroup(ctx, t.names.TargetGroup())
	}, timeouts.DeleteRetryAttempts, timeouts.DeleteRetryStep.Std()); err != nil {
		return fmt.Errorf("target group: %w", err)
	}

	t.report.Stage("EC2 instance")
	if err := t.instances.Terminate(ctx, t.names.Instance()); err != nil {
		return fmt.Errorf("instance: %w", err)
	}
	// A terminated instance releases its network interfaces after a
	// delay; the security group deletes below need them gone.
	if err := sleep(ctx, timeouts.InstanceSettle.Std()); err != nil {
		return err
	}

	t.report.Stage("Security groups")
	for _, name := range []string{t.names.InstanceSecurityGroup(), t.names.LoadBalancerSecurityGroup()} {
		name := name
		if err := retry.OnDependencyConflict(ctx, func() error {
			return t.firewalls.Delete(ctx, name)
		}, timeouts.DeleteRetryAttempts, timeouts.DeleteRetryStep.Std()); err != nil {
			return fmt.Errorf("security group %s: %w", name, err)
		}
	}

	t.report.Stage("SSH key pair")
	if err := t.credentials.Delete(ctx, t.names.KeyPair()); err != nil {
		return fmt.Errorf("key pair: %w", err)
	}
	t.removeKeyFile()

	t.cleanupAuxiliary(ctx)
	return nil
}

func (t *Teardown) removeKeyFile() {
	keyFile := t.cfg.KeyFile
	if keyFile == "" {
		keyFile = t.names.KeyFile()
	}
	if err := os.Remove(keyFile); err != nil && !os.IsNotExist(err) {
		t.log.Warn("failed to remove private key file", zap.String("path", keyFile), zap.Error(err))
	}
}

// cleanupAuxiliary is best effort; the escrow secret and output
// parameters are record keeping, not infrastructure.
func (t *Teardown) cleanupAuxiliary(ctx context.Context) {
	if t.escrow != nil {
		if err := t.escrow.Delete(ctx, t.names.KeySecret()); err != nil {
			t.log.Warn("failed to delete key escrow secret", zap.Error(err))
		}
	}
	if t.outputs != nil {
		for _, key := range []string{"alb-dns", "instance-public-ip", "url"} {
			if err := t.outputs.Delete(ctx, t.names.OutputParameter(key)); err != nil {
				t.log.Warn("failed to delete output parameter", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
