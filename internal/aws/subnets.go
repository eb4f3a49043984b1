package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/vietdv277/stratus/pkg/types"
)

// Network answers the VPC lookups the orchestrator needs.
type Network struct {
	api EC2API
}

// NewNetwork creates a new Network.
func NewNetwork(api EC2API) *Network {
	return &Network{api: api}
}

// DefaultVPC returns the account's default VPC in the active region.
func (n *Network) DefaultVPC(ctx context.Context) (string, error) {
	out, err := n.api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("isDefault"), Values: []string{"true"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to describe VPCs: %w", err)
	}
	if len(out.Vpcs) == 0 {
		return "", fmt.Errorf("no default VPC found")
	}
	return deref(out.Vpcs[0].VpcId), nil
}

// ListSubnets returns all subnets in the VPC.
func (n *Network) ListSubnets(ctx context.Context, vpcID string) ([]types.Subnet, error) {
	out, err := n.api.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets in %s: %w", vpcID, err)
	}

	subnets := make([]types.Subnet, 0, len(out.Subnets))
	for _, s := range out.Subnets {
		subnets = append(subnets, types.Subnet{
			ID:    deref(s.SubnetId),
			VPCID: deref(s.VpcId),
			AZ:    deref(s.AvailabilityZone),
		})
	}
	return subnets, nil
}
