package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/smithy-go"
)

// apiError builds a service error with the given code, the shape the
// classifier inspects.
func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

// fakeEC2 implements EC2API with overridable behavior per call.
type fakeEC2 struct {
	describeKeyPairs  func(*ec2.DescribeKeyPairsInput) (*ec2.DescribeKeyPairsOutput, error)
	createKeyPair     func(*ec2.CreateKeyPairInput) (*ec2.CreateKeyPairOutput, error)
	deleteKeyPair     func(*ec2.DeleteKeyPairInput) (*ec2.DeleteKeyPairOutput, error)
	describeSGs       func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	createSG          func(*ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error)
	authorizeIngress  func(*ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	deleteSG          func(*ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error)
	describeImages    func(*ec2.DescribeImagesInput) (*ec2.DescribeImagesOutput, error)
	runInstances      func(*ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error)
	describeInstances func(*ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	terminate         func(*ec2.TerminateInstancesInput) (*ec2.TerminateInstancesOutput, error)
	describeVpcs      func(*ec2.DescribeVpcsInput) (*ec2.DescribeVpcsOutput, error)
	describeSubnets   func(*ec2.DescribeSubnetsInput) (*ec2.DescribeSubnetsOutput, error)
}

func (f *fakeEC2) DescribeKeyPairs(_ context.Context, p *ec2.DescribeKeyPairsInput, _ ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	if f.describeKeyPairs == nil {
		return &ec2.DescribeKeyPairsOutput{}, nil
	}
	return f.describeKeyPairs(p)
}

func (f *fakeEC2) CreateKeyPair(_ context.Context, p *ec2.CreateKeyPairInput, _ ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	if f.createKeyPair == nil {
		return &ec2.CreateKeyPairOutput{}, nil
	}
	return f.createKeyPair(p)
}

func (f *fakeEC2) DeleteKeyPair(_ context.Context, p *ec2.DeleteKeyPairInput, _ ...func(*ec2.Options)) (*ec2.DeleteKeyPairOutput, error) {
	if f.deleteKeyPair == nil {
		return &ec2.DeleteKeyPairOutput{}, nil
	}
	return f.deleteKeyPair(p)
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, p *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if f.describeSGs == nil {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}
	return f.describeSGs(p)
}

func (f *fakeEC2) CreateSecurityGroup(_ context.Context, p *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if f.createSG == nil {
		return &ec2.CreateSecurityGroupOutput{}, nil
	}
	return f.createSG(p)
}

func (f *fakeEC2) AuthorizeSecurityGroupIngress(_ context.Context, p *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	if f.authorizeIngress == nil {
		return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
	}
	return f.authorizeIngress(p)
}

func (f *fakeEC2) DeleteSecurityGroup(_ context.Context, p *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	if f.deleteSG == nil {
		return &ec2.DeleteSecurityGroupOutput{}, nil
	}
	return f.deleteSG(p)
}

func (f *fakeEC2) DescribeImages(_ context.Context, p *ec2.DescribeImagesInput, _ ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if f.describeImages == nil {
		return &ec2.DescribeImagesOutput{}, nil
	}
	return f.describeImages(p)
}

func (f *fakeEC2) RunInstances(_ context.Context, p *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	if f.runInstances == nil {
		return &ec2.RunInstancesOutput{}, nil
	}
	return f.runInstances(p)
}

func (f *fakeEC2) DescribeInstances(_ context.Context, p *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if f.describeInstances == nil {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	return f.describeInstances(p)
}

func (f *fakeEC2) TerminateInstances(_ context.Context, p *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	if f.terminate == nil {
		return &ec2.TerminateInstancesOutput{}, nil
	}
	return f.terminate(p)
}

func (f *fakeEC2) DescribeVpcs(_ context.Context, p *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if f.describeVpcs == nil {
		return &ec2.DescribeVpcsOutput{}, nil
	}
	return f.describeVpcs(p)
}

func (f *fakeEC2) DescribeSubnets(_ context.Context, p *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if f.describeSubnets == nil {
		return &ec2.DescribeSubnetsOutput{}, nil
	}
	return f.describeSubnets(p)
}

// fakeELB implements ELBAPI with overridable behavior per call.
type fakeELB struct {
	createTG          func(*elbv2.CreateTargetGroupInput) (*elbv2.CreateTargetGroupOutput, error)
	describeTGs       func(*elbv2.DescribeTargetGroupsInput) (*elbv2.DescribeTargetGroupsOutput, error)
	deleteTG          func(*elbv2.DeleteTargetGroupInput) (*elbv2.DeleteTargetGroupOutput, error)
	registerTargets   func(*elbv2.RegisterTargetsInput) (*elbv2.RegisterTargetsOutput, error)
	createLB          func(*elbv2.CreateLoadBalancerInput) (*elbv2.CreateLoadBalancerOutput, error)
	describeLBs       func(*elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error)
	deleteLB          func(*elbv2.DeleteLoadBalancerInput) (*elbv2.DeleteLoadBalancerOutput, error)
	createListener    func(*elbv2.CreateListenerInput) (*elbv2.CreateListenerOutput, error)
	describeListeners func(*elbv2.DescribeListenersInput) (*elbv2.DescribeListenersOutput, error)
	deleteListener    func(*elbv2.DeleteListenerInput) (*elbv2.DeleteListenerOutput, error)
}

func (f *fakeELB) CreateTargetGroup(_ context.Context, p *elbv2.CreateTargetGroupInput, _ ...func(*elbv2.Options)) (*elbv2.CreateTargetGroupOutput, error) {
	if f.createTG == nil {
		return &elbv2.CreateTargetGroupOutput{}, nil
	}
	return f.createTG(p)
}

func (f *fakeELB) DescribeTargetGroups(_ context.Context, p *elbv2.DescribeTargetGroupsInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeTargetGroupsOutput, error) {
	if f.describeTGs == nil {
		return &elbv2.DescribeTargetGroupsOutput{}, nil
	}
	return f.describeTGs(p)
}

func (f *fakeELB) DeleteTargetGroup(_ context.Context, p *elbv2.DeleteTargetGroupInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteTargetGroupOutput, error) {
	if f.deleteTG == nil {
		return &elbv2.DeleteTargetGroupOutput{}, nil
	}
	return f.deleteTG(p)
}

func (f *fakeELB) RegisterTargets(_ context.Context, p *elbv2.RegisterTargetsInput, _ ...func(*elbv2.Options)) (*elbv2.RegisterTargetsOutput, error) {
	if f.registerTargets == nil {
		return &elbv2.RegisterTargetsOutput{}, nil
	}
	return f.registerTargets(p)
}

func (f *fakeELB) CreateLoadBalancer(_ context.Context, p *elbv2.CreateLoadBalancerInput, _ ...func(*elbv2.Options)) (*elbv2.CreateLoadBalancerOutput, error) {
	if f.createLB == nil {
		return &elbv2.CreateLoadBalancerOutput{}, nil
	}
	return f.createLB(p)
}

func (f *fakeELB) DescribeLoadBalancers(_ context.Context, p *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	if f.describeLBs == nil {
		return &elbv2.DescribeLoadBalancersOutput{}, nil
	}
	return f.describeLBs(p)
}

func (f *fakeELB) DeleteLoadBalancer(_ context.Context, p *elbv2.DeleteLoadBalancerInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteLoadBalancerOutput, error) {
	if f.deleteLB == nil {
		return &elbv2.DeleteLoadBalancerOutput{}, nil
	}
	return f.deleteLB(p)
}

func (f *fakeELB) CreateListener(_ context.Context, p *elbv2.CreateListenerInput, _ ...func(*elbv2.Options)) (*elbv2.CreateListenerOutput, error) {
	if f.createListener == nil {
		return &elbv2.CreateListenerOutput{}, nil
	}
	return f.createListener(p)
}

func (f *fakeELB) DescribeListeners(_ context.Context, p *elbv2.DescribeListenersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeListenersOutput, error) {
	if f.describeListeners == nil {
		return &elbv2.DescribeListenersOutput{}, nil
	}
	return f.describeListeners(p)
}

func (f *fakeELB) DeleteListener(_ context.Context, p *elbv2.DeleteListenerInput, _ ...func(*elbv2.Options)) (*elbv2.DeleteListenerOutput, error) {
	if f.deleteListener == nil {
		return &elbv2.DeleteListenerOutput{}, nil
	}
	return f.deleteListener(p)
}
