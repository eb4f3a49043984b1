package aws

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

var testLBWaits = LoadBalancerWaits{
	PollInterval:   time.Millisecond,
	ActiveDeadline: time.Second,
}

func newTestLBManager(api ELBAPI) *LoadBalancerManager {
	return NewLoadBalancerManager(api, testTags, DefaultHealthCheck("/"), testLBWaits, zap.NewNop())
}

func tgOutput(name, arn string) *elbv2.DescribeTargetGroupsOutput {
	return &elbv2.DescribeTargetGroupsOutput{TargetGroups: []elbv2types.TargetGroup{{
		TargetGroupName: awssdk.String(name),
		TargetGroupArn:  awssdk.String(arn),
		Protocol:        elbv2types.ProtocolEnumHttp,
		Port:            awssdk.Int32(80),
		VpcId:           awssdk.String("vpc-1"),
	}}}
}

func lbOutput(name, arn, state string) *elbv2.DescribeLoadBalancersOutput {
	return &elbv2.DescribeLoadBalancersOutput{LoadBalancers: []elbv2types.LoadBalancer{{
		LoadBalancerName: awssdk.String(name),
		LoadBalancerArn:  awssdk.String(arn),
		DNSName:          awssdk.String("demo-alb-123.eu-west-1.elb.amazonaws.com"),
		Scheme:           elbv2types.LoadBalancerSchemeEnumInternetFacing,
		State:            &elbv2types.LoadBalancerState{Code: elbv2types.LoadBalancerStateEnum(state)},
		VpcId:            awssdk.String("vpc-1"),
	}}}
}

func TestEnsureTargetGroup_AdoptsExisting(t *testing.T) {
	created := false
	api := &fakeELB{
		describeTGs: func(p *elbv2.DescribeTargetGroupsInput) (*elbv2.DescribeTargetGroupsOutput, error) {
			return tgOutput("demo-tg", "arn:tg-1"), nil
		},
		createTG: func(p *elbv2.CreateTargetGroupInput) (*elbv2.CreateTargetGroupOutput, error) {
			created = true
			return &elbv2.CreateTargetGroupOutput{}, nil
		},
	}

	m := newTestLBManager(api)
	tg, err := m.EnsureTargetGroup(context.Background(), "demo-tg", "vpc-1", 80)

	require.NoError(t, err)
	assert.True(t, tg.AlreadyExisted)
	assert.Equal(t, "arn:tg-1", tg.ARN)
	assert.False(t, created)
}

func TestEnsureTargetGroup_CreatesWithHealthCheck(t *testing.T) {
	existing := false
	api := &fakeELB{
		describeTGs: func(p *elbv2.DescribeTargetGroupsInput) (*elbv2.DescribeTargetGroupsOutput, error) {
			if !existing {
				return nil, apiError("TargetGroupNotFound")
			}
			return tgOutput("demo-tg", "arn:tg-2"), nil
		},
		createTG: func(p *elbv2.CreateTargetGroupInput) (*elbv2.CreateTargetGroupOutput, error) {
			existing = true
			assert.Equal(t, elbv2types.TargetTypeEnumInstance, p.TargetType)
			assert.Equal(t, "/", deref(p.HealthCheckPath))
			assert.Equal(t, int32(30), derefInt32(p.HealthCheckIntervalSeconds))
			assert.Equal(t, int32(2), derefInt32(p.HealthyThresholdCount))
			return &elbv2.CreateTargetGroupOutput{TargetGroups: tgOutput("demo-tg", "arn:tg-2").TargetGroups}, nil
		},
	}

	m := newTestLBManager(api)
	tg, err := m.EnsureTargetGroup(context.Background(), "demo-tg", "vpc-1", 80)

	require.NoError(t, err)
	assert.False(t, tg.AlreadyExisted)
	assert.Equal(t, "arn:tg-2", tg.ARN)
}

func TestEnsureLoadBalancer_RequiresTwoZones(t *testing.T) {
	created := false
	api := &fakeELB{
		describeLBs: func(p *elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error) {
			return nil, apiError("LoadBalancerNotFound")
		},
		createLB: func(p *elbv2.CreateLoadBalancerInput) (*elbv2.CreateLoadBalancerOutput, error) {
			created = true
			return &elbv2.CreateLoadBalancerOutput{}, nil
		},
	}

	m := newTestLBManager(api)
	_, err := m.EnsureLoadBalancer(context.Background(), "demo-alb", []string{"sg-1"}, []types.Subnet{
		{ID: "subnet-1", AZ: "eu-west-1a"},
		{ID: "subnet-2", AZ: "eu-west-1a"},
	})

	assert.ErrorIs(t, err, provider.ErrInsufficientSubnetDiversity)
	assert.False(t, created, "the diversity check must fail before any create call")
}

func TestEnsureLoadBalancer_CreatesAndWaitsForActive(t *testing.T) {
	existing := false
	describes := 0
	api := &fakeELB{
		describeLBs: func(p *elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error) {
			if len(p.LoadBalancerArns) > 0 {
				describes++
				if describes < 3 {
					return lbOutput("demo-alb", "arn:lb-1", "provisioning"), nil
				}
				return lbOutput("demo-alb", "arn:lb-1", "active"), nil
			}
			if !existing {
				return nil, apiError("LoadBalancerNotFound")
			}
			return lbOutput("demo-alb", "arn:lb-1", "active"), nil
		},
		createLB: func(p *elbv2.CreateLoadBalancerInput) (*elbv2.CreateLoadBalancerOutput, error) {
			existing = true
			assert.ElementsMatch(t, []string{"subnet-1", "subnet-2"}, p.Subnets)
			assert.Equal(t, elbv2types.LoadBalancerSchemeEnumInternetFacing, p.Scheme)
			assert.Equal(t, elbv2types.LoadBalancerTypeEnumApplication, p.Type)
			return &elbv2.CreateLoadBalancerOutput{LoadBalancers: lbOutput("demo-alb", "arn:lb-1", "provisioning").LoadBalancers}, nil
		},
	}

	m := newTestLBManager(api)
	lb, err := m.EnsureLoadBalancer(context.Background(), "demo-alb", []string{"sg-1"}, []types.Subnet{
		{ID: "subnet-1", AZ: "eu-west-1a"},
		{ID: "subnet-2", AZ: "eu-west-1b"},
	})

	require.NoError(t, err)
	assert.False(t, lb.AlreadyExisted)
	assert.Equal(t, "active", lb.State)
	assert.NotEmpty(t, lb.DNSName)
}

func TestEnsureListener_AdoptsSamePort(t *testing.T) {
	created := false
	api := &fakeELB{
		describeListeners: func(p *elbv2.DescribeListenersInput) (*elbv2.DescribeListenersOutput, error) {
			return &elbv2.DescribeListenersOutput{Listeners: []elbv2types.Listener{{
				ListenerArn: awssdk.String("arn:listener-1"),
				Port:        awssdk.Int32(80),
				Protocol:    elbv2types.ProtocolEnumHttp,
			}}}, nil
		},
		createListener: func(p *elbv2.CreateListenerInput) (*elbv2.CreateListenerOutput, error) {
			created = true
			return &elbv2.CreateListenerOutput{}, nil
		},
	}

	m := newTestLBManager(api)
	l, err := m.EnsureListener(context.Background(), "arn:lb-1", "arn:tg-1", 80)

	require.NoError(t, err)
	assert.True(t, l.AlreadyExisted)
	assert.Equal(t, "arn:listener-1", l.ARN)
	assert.False(t, created)
}

func TestEnsureListener_CreatesForwardAction(t *testing.T) {
	api := &fakeELB{
		describeListeners: func(p *elbv2.DescribeListenersInput) (*elbv2.DescribeListenersOutput, error) {
			return &elbv2.DescribeListenersOutput{}, nil
		},
		createListener: func(p *elbv2.CreateListenerInput) (*elbv2.CreateListenerOutput, error) {
			require.Len(t, p.DefaultActions, 1)
			assert.Equal(t, elbv2types.ActionTypeEnumForward, p.DefaultActions[0].Type)
			assert.Equal(t, "arn:tg-1", deref(p.DefaultActions[0].TargetGroupArn))
			return &elbv2.CreateListenerOutput{Listeners: []elbv2types.Listener{{
				ListenerArn: awssdk.String("arn:listener-2"),
				Port:        awssdk.Int32(80),
			}}}, nil
		},
	}

	m := newTestLBManager(api)
	l, err := m.EnsureListener(context.Background(), "arn:lb-1", "arn:tg-1", 80)

	require.NoError(t, err)
	assert.False(t, l.AlreadyExisted)
	assert.Equal(t, "arn:listener-2", l.ARN)
}

func TestDeleteTargetGroup_InUseIsRetryable(t *testing.T) {
	api := &fakeELB{
		describeTGs: func(p *elbv2.DescribeTargetGroupsInput) (*elbv2.DescribeTargetGroupsOutput, error) {
			return tgOutput("demo-tg", "arn:tg-1"), nil
		},
		deleteTG: func(p *elbv2.DeleteTargetGroupInput) (*elbv2.DeleteTargetGroupOutput, error) {
			return nil, apiError("ResourceInUse")
		},
	}

	m := newTestLBManager(api)
	err := m.DeleteTargetGroup(context.Background(), "demo-tg")

	assert.ErrorIs(t, err, provider.ErrDependencyStillAttached)
}

func TestDeleteLoadBalancer_AbsentIsSuccess(t *testing.T) {
	deleted := false
	api := &fakeELB{
		describeLBs: func(p *elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error) {
			return nil, apiError("LoadBalancerNotFound")
		},
		deleteLB: func(p *elbv2.DeleteLoadBalancerInput) (*elbv2.DeleteLoadBalancerOutput, error) {
			deleted = true
			return &elbv2.DeleteLoadBalancerOutput{}, nil
		},
	}

	m := newTestLBManager(api)
	require.NoError(t, m.DeleteLoadBalancer(context.Background(), "demo-alb"))
	assert.False(t, deleted)
}

func TestRegisterTargets_EmptyIsNoOp(t *testing.T) {
	called := false
	api := &fakeELB{
		registerTargets: func(p *elbv2.RegisterTargetsInput) (*elbv2.RegisterTargetsOutput, error) {
			called = true
			return &elbv2.RegisterTargetsOutput{}, nil
		},
	}

	m := newTestLBManager(api)
	require.NoError(t, m.RegisterTargets(context.Background(), "arn:tg-1", nil))
	assert.False(t, called)
}
