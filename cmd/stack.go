package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/aws"
	"github.com/vietdv277/stratus/internal/config"
	"github.com/vietdv277/stratus/internal/naming"
)

// stack bundles the config with every manager a command might need.
type stack struct {
	cfg   *config.Config
	names *naming.Names

	client         *aws.Client
	keyPairs       *aws.KeyPairManager
	securityGroups *aws.SecurityGroupManager
	instances      *aws.InstanceManager
	network        *aws.Network
	loadBalancers  *aws.LoadBalancerManager
	escrow         *aws.KeySecretStore
	outputs        *aws.OutputPublisher

	log *zap.Logger
}

// newStack loads the config and wires the AWS managers.
func newStack(ctx context.Context) (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	client, err := aws.NewClient(ctx,
		aws.WithProfile(cfg.Profile),
		aws.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS client: %w", err)
	}

	log := newLogger()
	tags := cfg.Tags()
	timeouts := cfg.Timeouts

	return &stack{
		cfg:            cfg,
		names:          naming.New(cfg.TemplateName),
		client:         client,
		keyPairs:       aws.NewKeyPairManager(client.EC2, tags, log),
		securityGroups: aws.NewSecurityGroupManager(client.EC2, tags, log),
		instances: aws.NewInstanceManager(client.EC2, tags, aws.InstanceWaits{
			PollInterval:       timeouts.PollInterval.Std(),
			RunningDeadline:    timeouts.InstanceRunning.Std(),
			TerminatedDeadline: timeouts.InstanceTerminated.Std(),
		}, log),
		network: aws.NewNetwork(client.EC2),
		loadBalancers: aws.NewLoadBalancerManager(client.ELBv2, tags,
			aws.DefaultHealthCheck(cfg.HealthCheckPath),
			aws.LoadBalancerWaits{
				PollInterval:   timeouts.PollInterval.Std(),
				ActiveDeadline: timeouts.LoadBalancerActive.Std(),
			}, log),
		escrow:  aws.NewKeySecretStore(client.SecretsManager, tags, log),
		outputs: aws.NewOutputPublisher(client.SSM, log),
		log:     log,
	}, nil
}
