package deploy

import (
	"context"
	"fmt"

	"github.com/vietdv277/stratus/internal/naming"
	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

// Status reports which resources of a deployment currently exist.
// A nil field means the resource is absent.
type Status struct {
	KeyPair        *types.ReconciledResource
	InstanceSG     *types.ReconciledResource
	LoadBalancerSG *types.ReconciledResource
	Instance       *types.Instance
	TargetGroup    *types.TargetGroup
	LoadBalancer   *types.LoadBalancer
}

// Empty reports whether no resource of the deployment exists.
func (s *Status) Empty() bool {
	return s.KeyPair == nil && s.InstanceSG == nil && s.LoadBalancerSG == nil &&
		s.Instance == nil && s.TargetGroup == nil && s.LoadBalancer == nil
}

// GatherStatus looks up every resource of the deployment by name.
func GatherStatus(ctx context.Context, names *naming.Names,
	credentials provider.CredentialManager,
	firewalls provider.FirewallManager,
	instances provider.InstanceManager,
	loadBalancers provider.LoadBalancerManager,
) (*Status, error) {
	status := &Status{}
	var err error

	if status.KeyPair, err = credentials.Find(ctx, names.KeyPair()); err != nil {
		return nil, fmt.Errorf("key pair: %w", err)
	}
	if status.InstanceSG, err = firewalls.Find(ctx, names.InstanceSecurityGroup()); err != nil {
		return nil, fmt.Errorf("security group: %w", err)
	}
	if status.LoadBalancerSG, err = firewalls.Find(ctx, names.LoadBalancerSecurityGroup()); err != nil {
		return nil, fmt.Errorf("security group: %w", err)
	}
	if status.Instance, err = instances.Find(ctx, names.Instance()); err != nil {
		return nil, fmt.Errorf("instance: %w", err)
	}
	if status.TargetGroup, err = loadBalancers.FindTargetGroup(ctx, names.TargetGroup()); err != nil {
		return nil, fmt.Errorf("target group: %w", err)
	}
	if status.LoadBalancer, err = loadBalancers.FindLoadBalancer(ctx, names.LoadBalancer()); err != nil {
		return nil, fmt.Errorf("load balancer: %w", err)
	}

	return status, nil
}
