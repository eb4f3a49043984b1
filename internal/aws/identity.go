package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Identity describes the AWS principal the credentials resolve to.
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// WhoAmI resolves the caller identity. Used as a preflight so bad
// credentials fail with a clear message before any resource call.
func WhoAmI(ctx context.Context, api STSAPI) (Identity, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to resolve caller identity: %w", err)
	}
	return Identity{
		Account: deref(out.Account),
		ARN:     deref(out.Arn),
		UserID:  deref(out.UserId),
	}, nil
}
