package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"go.uber.org/zap"
)

// KeySecretStore escrows SSH private key material in Secrets Manager.
// Key material only exists at creation time, so losing the local .pem
// file otherwise means losing access to the instance.
type KeySecretStore struct {
	api  SecretsAPI
	tags map[string]string
	log  *zap.Logger
}

// NewKeySecretStore creates a new KeySecretStore.
func NewKeySecretStore(api SecretsAPI, tags map[string]string, log *zap.Logger) *KeySecretStore {
	return &KeySecretStore{api: api, tags: tags, log: log}
}

// Put stores the key material under name, updating the secret in place
// if it already exists.
func (s *KeySecretStore) Put(ctx context.Context, name, material string) error {
	_, err := s.api.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     &name,
		SecretString: &material,
	})
	if err == nil {
		s.log.Debug("updated key escrow secret", zap.String("name", name))
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to update secret %s: %w", name, err)
	}

	smTags := make([]smtypes.Tag, 0, len(s.tags))
	for _, k := range sortedKeys(s.tags) {
		k := k
		v := s.tags[k]
		smTags = append(smTags, smtypes.Tag{Key: &k, Value: &v})
	}

	_, err = s.api.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         &name,
		SecretString: &material,
		Tags:         smTags,
	})
	if err != nil {
		return fmt.Errorf("failed to create secret %s: %w", name, err)
	}

	s.log.Debug("created key escrow secret", zap.String("name", name))
	return nil
}

// Delete removes the secret immediately, skipping the recovery window.
// Absence is success.
func (s *KeySecretStore) Delete(ctx context.Context, name string) error {
	_, err := s.api.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId:                   &name,
		ForceDeleteWithoutRecovery: awssdk.Bool(true),
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete secret %s: %w", name, err)
	}

	s.log.Debug("deleted key escrow secret", zap.String("name", name))
	return nil
}
