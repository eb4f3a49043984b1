package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"go.uber.org/zap"
)

// OutputPublisher records deployment outputs (load balancer DNS name,
// instance IP) in SSM Parameter Store so other tooling can read them
// without re-describing the resources.
type OutputPublisher struct {
	api SSMAPI
	log *zap.Logger
}

// NewOutputPublisher creates a new OutputPublisher.
func NewOutputPublisher(api SSMAPI, log *zap.Logger) *OutputPublisher {
	return &OutputPublisher{api: api, log: log}
}

// Publish writes the parameter, overwriting any previous value.
func (p *OutputPublisher) Publish(ctx context.Context, name, value string) error {
	_, err := p.api.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      &name,
		Value:     &value,
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: awssdk.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to publish parameter %s: %w", name, err)
	}

	p.log.Debug("published output parameter", zap.String("name", name))
	return nil
}

// Delete removes the parameter. Absence is success.
func (p *OutputPublisher) Delete(ctx context.Context, name string) error {
	_, err := p.api.DeleteParameter(ctx, &ssm.DeleteParameterInput{
		Name: &name,
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to delete parameter %s: %w", name, err)
	}

	p.log.Debug("deleted output parameter", zap.String("name", name))
	return nil
}
