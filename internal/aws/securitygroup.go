package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

// SecurityGroupManager manages EC2 security groups.
type SecurityGroupManager struct {
	api  EC2API
	tags map[string]string
	log  *zap.Logger
}

// NewSecurityGroupManager creates a new SecurityGroupManager.
func NewSecurityGroupManager(api EC2API, tags map[string]string, log *zap.Logger) *SecurityGroupManager {
	return &SecurityGroupManager{api: api, tags: tags, log: log}
}

// Find returns the security group with the given name, or nil if absent.
// More than one match makes adoption ambiguous and is an error.
func (m *SecurityGroupManager) Find(ctx context.Context, name string) (*types.ReconciledResource, error) {
	return m.find(ctx, name, "")
}

// find looks the group up by name, scoped to vpcID when one is given so
// a same-named group in another VPC is never adopted.
func (m *SecurityGroupManager) find(ctx context.Context, name, vpcID string) (*types.ReconciledResource, error) {
	filters := []ec2types.Filter{
		{Name: awssdk.String("group-name"), Values: []string{name}},
	}
	if vpcID != "" {
		filters = append(filters, ec2types.Filter{
			Name: awssdk.String("vpc-id"), Values: []string{vpcID},
		})
	}
	out, err := m.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: filters,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe security group %s: %w", name, err)
	}

	switch len(out.SecurityGroups) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("security group %s: %w", name, provider.ErrAmbiguousCreate)
	}

	sg := out.SecurityGroups[0]
	return &types.ReconciledResource{
		ID:             deref(sg.GroupId),
		Name:           name,
		AlreadyExisted: true,
		Attributes: map[string]string{
			"vpc_id": deref(sg.VpcId),
		},
	}, nil
}

// EnsureExists returns the security group named name, creating it in
// vpcID if absent. An adopted group is trusted as-is; its rules are not
// reconciled against the desired set.
func (m *SecurityGroupManager) EnsureExists(ctx context.Context, name, description, vpcID string) (types.ReconciledResource, error) {
	if existing, err := m.find(ctx, name, vpcID); err != nil {
		return types.ReconciledResource{}, err
	} else if existing != nil {
		m.log.Debug("security group already exists", zap.String("name", name), zap.String("id", existing.ID))
		return *existing, nil
	}

	out, err := m.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   &name,
		Description: &description,
		VpcId:       &vpcID,
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeSecurityGroup,
			Tags:         ec2Tags(m.tags),
		}},
	})
	if err != nil {
		return types.ReconciledResource{}, fmt.Errorf("failed to create security group %s: %w", name, err)
	}

	groupID := deref(out.GroupId)
	found, err := describeBack(ctx, func(ctx context.Context) (*types.ReconciledResource, error) {
		out, err := m.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			GroupIds: []string{groupID},
		})
		if err != nil {
			return nil, err
		}
		if len(out.SecurityGroups) == 0 {
			return nil, nil
		}
		sg := out.SecurityGroups[0]
		return &types.ReconciledResource{
			ID:   deref(sg.GroupId),
			Name: name,
			Attributes: map[string]string{
				"vpc_id": deref(sg.VpcId),
			},
		}, nil
	})
	if err != nil {
		return types.ReconciledResource{}, fmt.Errorf("security group %s: %w", name, err)
	}

	m.log.Debug("created security group", zap.String("name", name), zap.String("id", found.ID))
	return *found, nil
}

// AddIngressRules appends rules to the group. Rules already present are
// success, not failure. An empty rule set is a no-op.
func (m *SecurityGroupManager) AddIngressRules(ctx context.Context, groupID string, rules []types.FirewallRule) error {
	if len(rules) == 0 {
		return nil
	}

	permissions := make([]ec2types.IpPermission, 0, len(rules))
	for _, rule := range rules {
		rule := rule
		permissions = append(permissions, ec2types.IpPermission{
			IpProtocol: &rule.Protocol,
			FromPort:   &rule.FromPort,
			ToPort:     &rule.ToPort,
			IpRanges: []ec2types.IpRange{{
				CidrIp:      &rule.SourceCIDR,
				Description: &rule.Description,
			}},
		})
	}

	_, err := m.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       &groupID,
		IpPermissions: permissions,
	})
	if err != nil {
		if isDuplicateRule(err) {
			m.log.Debug("ingress rules already present", zap.String("group", groupID))
			return nil
		}
		return fmt.Errorf("failed to add ingress rules to %s: %w", groupID, err)
	}

	m.log.Debug("added ingress rules", zap.String("group", groupID), zap.Int("count", len(permissions)))
	return nil
}

// Delete removes the security group by name. Absence is success; a
// delete rejected while a dependent still references the group surfaces
// as ErrDependencyStillAttached so the caller's retry policy can apply.
func (m *SecurityGroupManager) Delete(ctx context.Context, name string) error {
	existing, err := m.Find(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	_, err = m.api.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: &existing.ID,
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete security group %s: %w", name, classifyDelete(err))
	}

	m.log.Debug("deleted security group", zap.String("name", name), zap.String("id", existing.ID))
	return nil
}
