package provider

import (
	"context"

	"github.com/vietdv277/stratus/pkg/types"
)

// ImageFilter selects a machine image for instance launches.
type ImageFilter struct {
	NamePattern  string
	Owner        string
	Architecture string
}

// InstanceSpec is the desired state handed to the instance manager.
type InstanceSpec struct {
	Name             string
	ImageID          string
	InstanceType     string
	KeyName          string
	SecurityGroupIDs []string
	UserData         string
	Tags             map[string]string
}

// ReconciledInstance pairs an instance descriptor with the adopt flag.
type ReconciledInstance struct {
	types.Instance
	AlreadyExisted bool
}

// ReconciledTargetGroup pairs a target group descriptor with the adopt flag.
type ReconciledTargetGroup struct {
	types.TargetGroup
	AlreadyExisted bool
}

// ReconciledLoadBalancer pairs a load balancer descriptor with the adopt flag.
type ReconciledLoadBalancer struct {
	types.LoadBalancer
	AlreadyExisted bool
}

// ReconciledListener pairs a listener descriptor with the adopt flag.
type ReconciledListener struct {
	types.Listener
	AlreadyExisted bool
}

// CredentialManager manages SSH key pairs.
//
// EnsureExists writes freshly created private key material to keyFile
// (owner-read only) before returning; the material is never retrievable
// again. An adopted key pair produces no key material.
type CredentialManager interface {
	EnsureExists(ctx context.Context, name, keyFile string) (types.ReconciledResource, error)
	Find(ctx context.Context, name string) (*types.ReconciledResource, error)
	Delete(ctx context.Context, name string) error
}

// FirewallManager manages security groups and their ingress rules.
type FirewallManager interface {
	EnsureExists(ctx context.Context, name, description, vpcID string) (types.ReconciledResource, error)
	// AddIngressRules is append-only; rules already present are success.
	AddIngressRules(ctx context.Context, groupID string, rules []types.FirewallRule) error
	Find(ctx context.Context, name string) (*types.ReconciledResource, error)
	Delete(ctx context.Context, name string) error
}

// InstanceManager manages EC2 instances.
//
// EnsureExists blocks until a newly launched instance reaches the
// running state, then describes it back so server-assigned fields
// (public IP, subnet, VPC) are authoritative.
type InstanceManager interface {
	FindLatestImage(ctx context.Context, filter ImageFilter) (types.Image, error)
	EnsureExists(ctx context.Context, spec InstanceSpec) (ReconciledInstance, error)
	Find(ctx context.Context, name string) (*types.Instance, error)
	// Terminate resolves by name, terminates, and blocks until the
	// instance is gone. Absence is success.
	Terminate(ctx context.Context, name string) error
}

// NetworkAPI exposes the VPC lookups the orchestrator needs.
type NetworkAPI interface {
	DefaultVPC(ctx context.Context) (string, error)
	ListSubnets(ctx context.Context, vpcID string) ([]types.Subnet, error)
}

// LoadBalancerManager manages target groups, load balancers, and listeners.
type LoadBalancerManager interface {
	EnsureTargetGroup(ctx context.Context, name, vpcID string, port int32) (ReconciledTargetGroup, error)
	// RegisterTargets is idempotent and append-style; a target group with
	// zero registered targets is a valid state.
	RegisterTargets(ctx context.Context, targetGroupARN string, instanceIDs []string) error
	// EnsureLoadBalancer fails with ErrInsufficientSubnetDiversity before
	// issuing any create call when the subnets span fewer than two AZs,
	// and blocks until a newly created balancer is active.
	EnsureLoadBalancer(ctx context.Context, name string, securityGroupIDs []string, subnets []types.Subnet) (ReconciledLoadBalancer, error)
	EnsureListener(ctx context.Context, loadBalancerARN, targetGroupARN string, port int32) (ReconciledListener, error)
	FindLoadBalancer(ctx context.Context, name string) (*types.LoadBalancer, error)
	FindTargetGroup(ctx context.Context, name string) (*types.TargetGroup, error)
	DeleteLoadBalancer(ctx context.Context, name string) error
	DeleteTargetGroup(ctx context.Context, name string) error
}

// PublicIPFunc discovers the caller's public IP. Best effort: ok=false
// degrades firewall rule generation instead of failing the run.
type PublicIPFunc func(ctx context.Context) (ip string, ok bool)
