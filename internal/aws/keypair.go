package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/vietdv277/stratus/pkg/types"
)

// KeyPairManager manages EC2 SSH key pairs.
type KeyPairManager struct {
	api  EC2API
	tags map[string]string
	log  *zap.Logger
}

// NewKeyPairManager creates a new KeyPairManager.
func NewKeyPairManager(api EC2API, tags map[string]string, log *zap.Logger) *KeyPairManager {
	return &KeyPairManager{api: api, tags: tags, log: log}
}

// Find returns the key pair with the given name, or nil if absent.
func (m *KeyPairManager) Find(ctx context.Context, name string) (*types.ReconciledResource, error) {
	out, err := m.api.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []string{name},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to describe key pair %s: %w", name, err)
	}
	if len(out.KeyPairs) == 0 {
		return nil, nil
	}

	kp := out.KeyPairs[0]
	return &types.ReconciledResource{
		ID:             deref(kp.KeyPairId),
		Name:           name,
		AlreadyExisted: true,
		Attributes: map[string]string{
			"fingerprint": deref(kp.KeyFingerprint),
		},
	}, nil
}

// EnsureExists returns the key pair named name, creating it if absent.
// Freshly created key material is written to keyFile (owner-read only)
// before this method returns; the remote API never surfaces it again,
// and the manager keeps no copy.
func (m *KeyPairManager) EnsureExists(ctx context.Context, name, keyFile string) (types.ReconciledResource, error) {
	if existing, err := m.Find(ctx, name); err != nil {
		return types.ReconciledResource{}, err
	} else if existing != nil {
		m.log.Debug("key pair already exists", zap.String("name", name), zap.String("id", existing.ID))
		return *existing, nil
	}

	out, err := m.api.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: &name,
		TagSpecifications: []ec2types.TagSpecification{{
			ResourceType: ec2types.ResourceTypeKeyPair,
			Tags:         ec2Tags(m.tags),
		}},
	})
	if err != nil {
		return types.ReconciledResource{}, fmt.Errorf("failed to create key pair %s: %w", name, err)
	}

	if keyFile != "" {
		if err := os.WriteFile(keyFile, []byte(deref(out.KeyMaterial)), 0o400); err != nil {
			return types.ReconciledResource{}, fmt.Errorf("failed to save private key to %s: %w", keyFile, err)
		}
		m.log.Debug("saved private key", zap.String("path", keyFile))
	}

	id := deref(out.KeyPairId)
	found, err := describeBack(ctx, func(ctx context.Context) (*types.ReconciledResource, error) {
		out, err := m.api.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{
			KeyPairIds: []string{id},
		})
		if err != nil {
			return nil, err
		}
		if len(out.KeyPairs) == 0 {
			return nil, nil
		}
		kp := out.KeyPairs[0]
		return &types.ReconciledResource{
			ID:   deref(kp.KeyPairId),
			Name: name,
			Attributes: map[string]string{
				"fingerprint": deref(kp.KeyFingerprint),
			},
		}, nil
	})
	if err != nil {
		return types.ReconciledResource{}, fmt.Errorf("key pair %s: %w", name, err)
	}

	m.log.Debug("created key pair", zap.String("name", name), zap.String("id", found.ID))
	return *found, nil
}

// Delete removes the key pair. Absence is success.
func (m *KeyPairManager) Delete(ctx context.Context, name string) error {
	_, err := m.api.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyName: &name})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete key pair %s: %w", name, err)
	}
	m.log.Debug("deleted key pair", zap.String("name", name))
	return nil
}
