package aws

import (
	"context"
	"fmt"
	"time"

	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/wait"
	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

// LoadBalancerWaits bounds the blocking portion of balancer creation.
type LoadBalancerWaits struct {
	PollInterval   time.Duration
	ActiveDeadline time.Duration
}

// HealthCheck configures target group health checking.
type HealthCheck struct {
	Path               string
	IntervalSeconds    int32
	TimeoutSeconds     int32
	HealthyThreshold   int32
	UnhealthyThreshold int32
}

// DefaultHealthCheck returns the health check used when none is configured.
func DefaultHealthCheck(path string) HealthCheck {
	if path == "" {
		path = "/"
	}
	return HealthCheck{
		Path:               path,
		IntervalSeconds:    30,
		TimeoutSeconds:     5,
		HealthyThreshold:   2,
		UnhealthyThreshold: 2,
	}
}

// LoadBalancerManager manages target groups, application load
// balancers, and listeners.
type LoadBalancerManager struct {
	api    ELBAPI
	tags   map[string]string
	health HealthCheck
	waits  LoadBalancerWaits
	log    *zap.Logger
}

// NewLoadBalancerManager creates a new LoadBalancerManager.
func NewLoadBalancerManager(api ELBAPI, tags map[string]string, health HealthCheck, waits LoadBalancerWaits, log *zap.Logger) *LoadBalancerManager {
	return &LoadBalancerManager{api: api, tags: tags, health: health, waits: waits, log: log}
}

// FindTargetGroup returns the target group with the given name, or nil.
func (m *LoadBalancerManager) FindTargetGroup(ctx context.Context, name string) (*types.TargetGroup, error) {
	out, err := m.api.DescribeTargetGroups(ctx, &elbv2.DescribeTargetGroupsInput{
		Names: []string{name},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe target group %s: %w", name, err)
	}
	if len(out.TargetGroups) == 0 {
		return nil, nil
	}

	tg := toTargetGroup(out.TargetGroups[0])
	return &tg, nil
}

// EnsureTargetGroup returns the target group named name, creating it in
// vpcID if absent.
func (m *LoadBalancerManager) EnsureTargetGroup(ctx context.Context, name, vpcID string, port int32) (provider.ReconciledTargetGroup, error) {
	if existing, err := m.FindTargetGroup(ctx, name); err != nil {
		return provider.ReconciledTargetGroup{}, err
	} else if existing != nil {
		m.log.Debug("target group already exists", zap.String("name", name), zap.String("arn", existing.ARN))
		return provider.ReconciledTargetGroup{TargetGroup: *existing, AlreadyExisted: true}, nil
	}

	out, err := m.api.CreateTargetGroup(ctx, &elbv2.CreateTargetGroupInput{
		Name:                       &name,
		Protocol:                   elbv2types.ProtocolEnumHttp,
		Port:                       &port,
		VpcId:                      &vpcID,
		TargetType:                 elbv2types.TargetTypeEnumInstance,
		HealthCheckProtocol:        elbv2types.ProtocolEnumHttp,
		HealthCheckPath:            &m.health.Path,
		HealthCheckIntervalSeconds: &m.health.IntervalSeconds,
		HealthCheckTimeoutSeconds:  &m.health.TimeoutSeconds,
		HealthyThresholdCount:      &m.health.HealthyThreshold,
		UnhealthyThresholdCount:    &m.health.UnhealthyThreshold,
		Tags:                       elbTags(m.tags),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return m.adoptTargetGroup(ctx, name)
		}
		return provider.ReconciledTargetGroup{}, fmt.Errorf("failed to create target group %s: %w", name, err)
	}
	if len(out.TargetGroups) == 0 {
		return provider.ReconciledTargetGroup{}, fmt.Errorf("target group %s: %w", name, provider.ErrNotFoundAfterCreate)
	}

	found, err := describeBack(ctx, func(ctx context.Context) (*types.TargetGroup, error) {
		return m.FindTargetGroup(ctx, name)
	})
	if err != nil {
		return provider.ReconciledTargetGroup{}, fmt.Errorf("target group %s: %w", name, err)
	}

	m.log.Debug("created target group", zap.String("name", name), zap.String("arn", found.ARN))
	return provider.ReconciledTargetGroup{TargetGroup: *found}, nil
}

func (m *LoadBalancerManager) adoptTargetGroup(ctx context.Context, name string) (provider.ReconciledTargetGroup, error) {
	existing, err := m.FindTargetGroup(ctx, name)
	if err != nil {
		return provider.ReconciledTargetGroup{}, err
	}
	if existing == nil {
		return provider.ReconciledTargetGroup{}, fmt.Errorf("target group %s: %w", name, provider.ErrNotFoundAfterCreate)
	}
	return provider.ReconciledTargetGroup{TargetGroup: *existing, AlreadyExisted: true}, nil
}

// RegisterTargets registers instances with the target group. The call
// is append-style and idempotent; re-registering is success.
func (m *LoadBalancerManager) RegisterTargets(ctx context.Context, targetGroupARN string, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}

	targets := make([]elbv2types.TargetDescription, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		id := id
		targets = append(targets, elbv2types.TargetDescription{Id: &id})
	}

	_, err := m.api.RegisterTargets(ctx, &elbv2.RegisterTargetsInput{
		TargetGroupArn: &targetGroupARN,
		Targets:        targets,
	})
	if err != nil {
		return fmt.Errorf("failed to register targets: %w", err)
	}

	m.log.Debug("registered targets", zap.String("target_group", targetGroupARN), zap.Int("count", len(targets)))
	return nil
}

// FindLoadBalancer returns the load balancer with the given name, or nil.
func (m *LoadBalancerManager) FindLoadBalancer(ctx context.Context, name string) (*types.LoadBalancer, error) {
	out, err := m.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
		Names: []string{name},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe load balancer %s: %w", name, err)
	}
	if len(out.LoadBalancers) == 0 {
		return nil, nil
	}

	lb := toLoadBalancer(out.LoadBalancers[0])
	return &lb, nil
}

// EnsureLoadBalancer returns the internet-facing ALB named name,
// creating it across the given subnets if absent. The subnets must span
// at least two availability zones; that is checked before any create
// call is issued. Creation blocks until the balancer is active.
func (m *LoadBalancerManager) EnsureLoadBalancer(ctx context.Context, name string, securityGroupIDs []string, subnets []types.Subnet) (provider.ReconciledLoadBalancer, error) {
	if existing, err := m.FindLoadBalancer(ctx, name); err != nil {
		return provider.ReconciledLoadBalancer{}, err
	} else if existing != nil {
		m.log.Debug("load balancer already exists", zap.String("name", name), zap.String("arn", existing.ARN))
		return provider.ReconciledLoadBalancer{LoadBalancer: *existing, AlreadyExisted: true}, nil
	}

	zones := map[string]bool{}
	subnetIDs := make([]string, 0, len(subnets))
	for _, s := range subnets {
		zones[s.AZ] = true
		subnetIDs = append(subnetIDs, s.ID)
	}
	if len(zones) < 2 {
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("load balancer %s: %w", name, provider.ErrInsufficientSubnetDiversity)
	}

	out, err := m.api.CreateLoadBalancer(ctx, &elbv2.CreateLoadBalancerInput{
		Name:           &name,
		Subnets:        subnetIDs,
		SecurityGroups: securityGroupIDs,
		Scheme:         elbv2types.LoadBalancerSchemeEnumInternetFacing,
		Type:           elbv2types.LoadBalancerTypeEnumApplication,
		IpAddressType:  elbv2types.IpAddressTypeIpv4,
		Tags:           elbTags(m.tags),
	})
	if err != nil {
		if isAlreadyExists(err) {
			return m.adoptLoadBalancer(ctx, name)
		}
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("failed to create load balancer %s: %w", name, err)
	}
	if len(out.LoadBalancers) == 0 {
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("load balancer %s: %w", name, provider.ErrNotFoundAfterCreate)
	}

	arn := deref(out.LoadBalancers[0].LoadBalancerArn)
	if err := m.waitActive(ctx, arn); err != nil {
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("load balancer %s did not become active: %w", name, err)
	}

	found, err := describeBack(ctx, func(ctx context.Context) (*types.LoadBalancer, error) {
		return m.FindLoadBalancer(ctx, name)
	})
	if err != nil {
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("load balancer %s: %w", name, err)
	}

	m.log.Debug("created load balancer", zap.String("name", name), zap.String("dns", found.DNSName))
	return provider.ReconciledLoadBalancer{LoadBalancer: *found}, nil
}

func (m *LoadBalancerManager) adoptLoadBalancer(ctx context.Context, name string) (provider.ReconciledLoadBalancer, error) {
	existing, err := m.FindLoadBalancer(ctx, name)
	if err != nil {
		return provider.ReconciledLoadBalancer{}, err
	}
	if existing == nil {
		return provider.ReconciledLoadBalancer{}, fmt.Errorf("load balancer %s: %w", name, provider.ErrNotFoundAfterCreate)
	}
	return provider.ReconciledLoadBalancer{LoadBalancer: *existing, AlreadyExisted: true}, nil
}

func (m *LoadBalancerManager) waitActive(ctx context.Context, arn string) error {
	return wait.Until(ctx, func(ctx context.Context) (string, error) {
		out, err := m.api.DescribeLoadBalancers(ctx, &elbv2.DescribeLoadBalancersInput{
			LoadBalancerArns: []string{arn},
		})
		if err != nil {
			return "", err
		}
		if len(out.LoadBalancers) == 0 || out.LoadBalancers[0].State == nil {
			return "", nil
		}
		return string(out.LoadBalancers[0].State.Code), nil
	}, string(elbv2types.LoadBalancerStateEnumActive), m.waits.PollInterval, m.waits.ActiveDeadline)
}

// EnsureListener returns the listener on the given port, creating a
// forwarding listener to the target group if absent. An existing
// listener on the port is adopted as-is, whatever it forwards to.
func (m *LoadBalancerManager) EnsureListener(ctx context.Context, loadBalancerARN, targetGroupARN string, port int32) (provider.ReconciledListener, error) {
	out, err := m.api.DescribeListeners(ctx, &elbv2.DescribeListenersInput{
		LoadBalancerArn: &loadBalancerARN,
	})
	if err != nil && !isNotFound(err) {
		return provider.ReconciledListener{}, fmt.Errorf("failed to describe listeners: %w", err)
	}
	if out != nil {
		for _, l := range out.Listeners {
			if derefInt32(l.Port) == port {
				m.log.Debug("listener already exists", zap.Int32("port", port))
				return provider.ReconciledListener{Listener: toListener(l), AlreadyExisted: true}, nil
			}
		}
	}

	created, err := m.api.CreateListener(ctx, &elbv2.CreateListenerInput{
		LoadBalancerArn: &loadBalancerARN,
		Protocol:        elbv2types.ProtocolEnumHttp,
		Port:            &port,
		DefaultActions: []elbv2types.Action{{
			Type:           elbv2types.ActionTypeEnumForward,
			TargetGroupArn: &targetGroupARN,
		}},
	})
	if err != nil {
		return provider.ReconciledListener{}, fmt.Errorf("failed to create listener on port %d: %w", port, err)
	}
	if len(created.Listeners) == 0 {
		return provider.ReconciledListener{}, fmt.Errorf("listener on port %d: %w", port, provider.ErrNotFoundAfterCreate)
	}

	m.log.Debug("created listener", zap.Int32("port", port))
	return provider.ReconciledListener{Listener: toListener(created.Listeners[0])}, nil
}

// DeleteLoadBalancer removes the load balancer by name. Its listeners
// are removed with it. Absence is success.
func (m *LoadBalancerManager) DeleteLoadBalancer(ctx context.Context, name string) error {
	existing, err := m.FindLoadBalancer(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	_, err = m.api.DeleteLoadBalancer(ctx, &elbv2.DeleteLoadBalancerInput{
		LoadBalancerArn: &existing.ARN,
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete load balancer %s: %w", name, classifyDelete(err))
	}

	m.log.Debug("deleted load balancer", zap.String("name", name))
	return nil
}

// DeleteListener removes a single listener by ARN. Teardown normally
// relies on load balancer deletion cascading to its listeners; this is
// for replacing a listener without touching the balancer. Absence is
// success.
func (m *LoadBalancerManager) DeleteListener(ctx context.Context, listenerARN string) error {
	_, err := m.api.DeleteListener(ctx, &elbv2.DeleteListenerInput{
		ListenerArn: &listenerARN,
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete listener: %w", err)
	}

	m.log.Debug("deleted listener", zap.String("arn", listenerARN))
	return nil
}

// DeleteTargetGroup removes the target group by name. Absence is
// success; a delete rejected while a listener still forwards to the
// group surfaces as ErrDependencyStillAttached.
func (m *LoadBalancerManager) DeleteTargetGroup(ctx context.Context, name string) error {
	existing, err := m.FindTargetGroup(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	_, err = m.api.DeleteTargetGroup(ctx, &elbv2.DeleteTargetGroupInput{
		TargetGroupArn: &existing.ARN,
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete target group %s: %w", name, classifyDelete(err))
	}

	m.log.Debug("deleted target group", zap.String("name", name))
	return nil
}

// toLoadBalancer converts an ELBv2 LoadBalancer to our LoadBalancer type
func toLoadBalancer(lb elbv2types.LoadBalancer) types.LoadBalancer {
	result := types.LoadBalancer{
		Name:    deref(lb.LoadBalancerName),
		ARN:     deref(lb.LoadBalancerArn),
		DNSName: deref(lb.DNSName),
		Scheme:  string(lb.Scheme),
		VPCID:   deref(lb.VpcId),
	}

	if lb.State != nil {
		result.State = string(lb.State.Code)
	}
	for _, az := range lb.AvailabilityZones {
		if az.ZoneName != nil {
			result.AZs = append(result.AZs, *az.ZoneName)
		}
	}

	return result
}

// toTargetGroup converts an ELBv2 TargetGroup to our TargetGroup type
func toTargetGroup(tg elbv2types.TargetGroup) types.TargetGroup {
	return types.TargetGroup{
		Name:     deref(tg.TargetGroupName),
		ARN:      deref(tg.TargetGroupArn),
		Protocol: string(tg.Protocol),
		Port:     derefInt32(tg.Port),
		VPCID:    deref(tg.VpcId),
	}
}

// toListener converts an ELBv2 Listener to our Listener type
func toListener(l elbv2types.Listener) types.Listener {
	return types.Listener{
		ARN:      deref(l.ListenerArn),
		Port:     derefInt32(l.Port),
		Protocol: string(l.Protocol),
	}
}
