package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

func sgOutput(ids ...string) *ec2.DescribeSecurityGroupsOutput {
	out := &ec2.DescribeSecurityGroupsOutput{}
	for _, id := range ids {
		out.SecurityGroups = append(out.SecurityGroups, ec2types.SecurityGroup{
			GroupId: awssdk.String(id),
			VpcId:   awssdk.String("vpc-1"),
		})
	}
	return out
}

func TestSecurityGroupEnsureExists_AdoptsExisting(t *testing.T) {
	created := false
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return sgOutput("sg-111"), nil
		},
		createSG: func(p *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error) {
			created = true
			return &ec2.CreateSecurityGroupOutput{}, nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	sg, err := m.EnsureExists(context.Background(), "demo-sg", "desc", "vpc-1")

	require.NoError(t, err)
	assert.True(t, sg.AlreadyExisted)
	assert.Equal(t, "sg-111", sg.ID)
	assert.Equal(t, "vpc-1", sg.Attr("vpc_id"))
	assert.False(t, created)
}

func TestSecurityGroupEnsureExists_CreatesWhenAbsent(t *testing.T) {
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			if len(p.GroupIds) > 0 {
				return sgOutput("sg-222"), nil
			}
			return sgOutput(), nil
		},
		createSG: func(p *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error) {
			assert.Equal(t, "vpc-1", deref(p.VpcId))
			return &ec2.CreateSecurityGroupOutput{GroupId: awssdk.String("sg-222")}, nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	sg, err := m.EnsureExists(context.Background(), "demo-sg", "desc", "vpc-1")

	require.NoError(t, err)
	assert.False(t, sg.AlreadyExisted)
	assert.Equal(t, "sg-222", sg.ID)
}

func TestSecurityGroupEnsureExists_LookupScopedToVPC(t *testing.T) {
	created := false
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			filters := map[string][]string{}
			for _, f := range p.Filters {
				filters[deref(f.Name)] = f.Values
			}
			require.Equal(t, []string{"vpc-1"}, filters["vpc-id"])
			// The same-named group in vpc-2 is outside the filter.
			return sgOutput("sg-111"), nil
		},
		createSG: func(p *ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error) {
			created = true
			return &ec2.CreateSecurityGroupOutput{}, nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	sg, err := m.EnsureExists(context.Background(), "demo-sg", "desc", "vpc-1")

	require.NoError(t, err)
	assert.Equal(t, "vpc-1", sg.Attr("vpc_id"))
	assert.False(t, created)
}

func TestSecurityGroupFind_AmbiguousMatch(t *testing.T) {
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return sgOutput("sg-1", "sg-2"), nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	_, err := m.Find(context.Background(), "demo-sg")

	assert.ErrorIs(t, err, provider.ErrAmbiguousCreate)
}

func TestAddIngressRules_DuplicateIsSuccess(t *testing.T) {
	api := &fakeEC2{
		authorizeIngress: func(p *ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
			return nil, apiError("InvalidPermission.Duplicate")
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	err := m.AddIngressRules(context.Background(), "sg-1", []types.FirewallRule{
		{Protocol: "tcp", FromPort: 80, ToPort: 80, SourceCIDR: "0.0.0.0/0"},
	})

	assert.NoError(t, err)
}

func TestAddIngressRules_EmptySetIsNoOp(t *testing.T) {
	called := false
	api := &fakeEC2{
		authorizeIngress: func(p *ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
			called = true
			return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	require.NoError(t, m.AddIngressRules(context.Background(), "sg-1", nil))
	assert.False(t, called)
}

func TestSecurityGroupDelete_DependencyViolationIsRetryable(t *testing.T) {
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return sgOutput("sg-1"), nil
		},
		deleteSG: func(p *ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error) {
			return nil, apiError("DependencyViolation")
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	err := m.Delete(context.Background(), "demo-sg")

	assert.ErrorIs(t, err, provider.ErrDependencyStillAttached)
}

func TestSecurityGroupDelete_AbsentIsSuccess(t *testing.T) {
	deleted := false
	api := &fakeEC2{
		describeSGs: func(p *ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error) {
			return sgOutput(), nil
		},
		deleteSG: func(p *ec2.DeleteSecurityGroupInput) (*ec2.DeleteSecurityGroupOutput, error) {
			deleted = true
			return &ec2.DeleteSecurityGroupOutput{}, nil
		},
	}

	m := NewSecurityGroupManager(api, testTags, zap.NewNop())
	require.NoError(t, m.Delete(context.Background(), "demo-sg"))
	assert.False(t, deleted, "absent group must not issue a delete call")
}
