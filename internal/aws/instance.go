package aws

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/internal/wait"
	"github.com/vietdv277/stratus/pkg/provider"
	"github.com/vietdv277/stratus/pkg/types"
)

// liveStates are the instance states a name lookup resolves; terminated
// and shutting-down instances are treated as absent so a fresh deploy
// can reuse the name.
var liveStates = []string{"pending", "running", "stopping", "stopped"}

// InstanceWaits bounds the blocking portions of instance management.
type InstanceWaits struct {
	PollInterval       time.Duration
	RunningDeadline    time.Duration
	TerminatedDeadline time.Duration
}

// InstanceManager manages EC2 instances.
type InstanceManager struct {
	api   EC2API
	tags  map[string]string
	waits InstanceWaits
	log   *zap.Logger
}

// NewInstanceManager creates a new InstanceManager.
func NewInstanceManager(api EC2API, tags map[string]string, waits InstanceWaits, log *zap.Logger) *InstanceManager {
	return &InstanceManager{api: api, tags: tags, waits: waits, log: log}
}

// FindLatestImage returns the newest available image matching the
// filter, by creation date.
func (m *InstanceManager) FindLatestImage(ctx context.Context, filter provider.ImageFilter) (types.Image, error) {
	out, err := m.api.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{filter.Owner},
		Filters: []ec2types.Filter{
			{Name: awssdk.String("name"), Values: []string{filter.NamePattern}},
			{Name: awssdk.String("state"), Values: []string{"available"}},
			{Name: awssdk.String("architecture"), Values: []string{filter.Architecture}},
		},
	})
	if err != nil {
		return types.Image{}, fmt.Errorf("failed to describe images: %w", err)
	}
	if len(out.Images) == 0 {
		return types.Image{}, fmt.Errorf("filter %q: %w", filter.NamePattern, provider.ErrNoMatchingImage)
	}

	images := make([]types.Image, 0, len(out.Images))
	for _, img := range out.Images {
		images = append(images, types.Image{
			ID:           deref(img.ImageId),
			Name:         deref(img.Name),
			State:        string(img.State),
			Architecture: string(img.Architecture),
			CreationDate: deref(img.CreationDate),
		})
	}

	// CreationDate is RFC3339, so the lexicographic order is the
	// chronological order.
	sort.Slice(images, func(i, j int) bool {
		return images[i].CreationDate > images[j].CreationDate
	})

	m.log.Debug("selected image", zap.String("id", images[0].ID), zap.String("name", images[0].Name))
	return images[0], nil
}

// Find returns the live instance carrying the given Name tag, or nil.
// More than one live match makes adoption ambiguous and is an error.
func (m *InstanceManager) Find(ctx context.Context, name string) (*types.Instance, error) {
	out, err := m.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("tag:Name"), Values: []string{name}},
			{Name: awssdk.String("instance-state-name"), Values: liveStates},
		},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find instance %s: %w", name, err)
	}
	var matches []ec2types.Instance
	for _, reservation := range out.Reservations {
		matches = append(matches, reservation.Instances...)
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("instance %s: %w", name, provider.ErrAmbiguousCreate)
	}

	inst := toInstance(matches[0])
	return &inst, nil
}

// EnsureExists returns the instance named by spec.Name, launching it if
// absent. A launch blocks until the instance is running, then describes
// it back: the public IP is only assigned once the instance leaves
// pending.
func (m *InstanceManager) EnsureExists(ctx context.Context, spec provider.InstanceSpec) (provider.ReconciledInstance, error) {
	if existing, err := m.Find(ctx, spec.Name); err != nil {
		return provider.ReconciledInstance{}, err
	} else if existing != nil {
		m.log.Debug("instance already exists", zap.String("name", spec.Name), zap.String("id", existing.ID))
		return provider.ReconciledInstance{Instance: *existing, AlreadyExisted: true}, nil
	}

	tags := map[string]string{"Name": spec.Name}
	for k, v := range spec.Tags {
		tags[k] = v
	}

	out, err := m.api.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      &spec.ImageID,
		InstanceType: ec2types.InstanceType(spec.InstanceType),
		KeyName:      &spec.KeyName,
		UserData:     awssdk.String(base64.StdEncoding.EncodeToString([]byte(spec.UserData))),
		MinCount:     awssdk.Int32(1),
		MaxCount:     awssdk.Int32(1),
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeInstance,
			Tags:         ec2Tags(tags),
		}},
		NetworkInterfaces: []ec2types.InstanceNetworkInterfaceSpecification{{
			AssociatePublicIpAddress: awssdk.Bool(true),
			DeviceIndex:              awssdk.Int32(0),
			Groups:                   spec.SecurityGroupIDs,
		}},
	})
	if err != nil {
		return provider.ReconciledInstance{}, fmt.Errorf("failed to launch instance %s: %w", spec.Name, err)
	}
	if len(out.Instances) == 0 {
		return provider.ReconciledInstance{}, fmt.Errorf("instance %s: %w", spec.Name, provider.ErrNotFoundAfterCreate)
	}

	instanceID := deref(out.Instances[0].InstanceId)
	m.log.Debug("launched instance", zap.String("name", spec.Name), zap.String("id", instanceID))

	if err := m.waitState(ctx, instanceID, "running", m.waits.RunningDeadline); err != nil {
		return provider.ReconciledInstance{}, fmt.Errorf("instance %s did not reach running: %w", instanceID, err)
	}

	found, err := describeBack(ctx, func(ctx context.Context) (*types.Instance, error) {
		return m.describeByID(ctx, instanceID)
	})
	if err != nil {
		return provider.ReconciledInstance{}, fmt.Errorf("instance %s: %w", spec.Name, err)
	}
	return provider.ReconciledInstance{Instance: *found}, nil
}

// Terminate resolves the instance by name, terminates it, and blocks
// until it is gone. Absence is success.
func (m *InstanceManager) Terminate(ctx context.Context, name string) error {
	existing, err := m.Find(ctx, name)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	_, err = m.api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{existing.ID},
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to terminate instance %s: %w", existing.ID, err)
	}

	m.log.Debug("terminated instance", zap.String("name", name), zap.String("id", existing.ID))
	return wait.Until(ctx, func(ctx context.Context) (string, error) {
		inst, err := m.describeByID(ctx, existing.ID)
		if err != nil {
			if isNotFound(err) {
				return "terminated", nil
			}
			return "", err
		}
		if inst == nil {
			return "terminated", nil
		}
		return inst.State, nil
	}, "terminated", m.waits.PollInterval, m.waits.TerminatedDeadline)
}

func (m *InstanceManager) waitState(ctx context.Context, instanceID, target string, deadline time.Duration) error {
	return wait.Until(ctx, func(ctx context.Context) (string, error) {
		inst, err := m.describeByID(ctx, instanceID)
		if err != nil {
			return "", err
		}
		if inst == nil {
			return "", fmt.Errorf("instance %s: %w", instanceID, provider.ErrNotFound)
		}
		return inst.State, nil
	}, target, m.waits.PollInterval, deadline)
}

func (m *InstanceManager) describeByID(ctx context.Context, instanceID string) (*types.Instance, error) {
	out, err := m.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Reservations) == 0 || len(out.Reservations[0].Instances) == 0 {
		return nil, nil
	}
	inst := toInstance(out.Reservations[0].Instances[0])
	return &inst, nil
}

// toInstance converts an EC2 instance to our Instance type
func toInstance(i ec2types.Instance) types.Instance {
	inst := types.Instance{
		ID:        deref(i.InstanceId),
		Type:      string(i.InstanceType),
		PublicIP:  deref(i.PublicIpAddress),
		PrivateIP: deref(i.PrivateIpAddress),
		SubnetID:  deref(i.SubnetId),
		VPCID:     deref(i.VpcId),
	}

	if i.State != nil {
		inst.State = string(i.State.Name)
	}
	if i.Placement != nil {
		inst.AZ = deref(i.Placement.AvailabilityZone)
	}
	for _, tag := range i.Tags {
		if deref(tag.Key) == "Name" {
			inst.Name = deref(tag.Value)
			break
		}
	}

	return inst
}
