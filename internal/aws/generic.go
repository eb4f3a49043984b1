package aws

import (
	"context"
	"sort"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/vietdv277/stratus/pkg/provider"
)

// describeBack re-reads a just-created resource so callers get the
// server-assigned fields instead of the raw create response. A single
// immediate re-describe absorbs the common read-after-write race; a
// second miss surfaces ErrNotFoundAfterCreate.
func describeBack[T any](ctx context.Context, get func(context.Context) (*T, error)) (*T, error) {
	for attempt := 0; attempt < 2; attempt++ {
		r, err := get(ctx)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		if r != nil {
			return r, nil
		}
	}
	return nil, provider.ErrNotFoundAfterCreate
}

// ec2Tags converts a tag map to EC2 tags, sorted for determinism.
func ec2Tags(tags map[string]string) []ec2types.Tag {
	out := make([]ec2types.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		key, value := k, tags[k]
		out = append(out, ec2types.Tag{Key: &key, Value: &value})
	}
	return out
}

// elbTags converts a tag map to ELBv2 tags, sorted for determinism.
func elbTags(tags map[string]string) []elbv2types.Tag {
	out := make([]elbv2types.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		key, value := k, tags[k]
		out = append(out, elbv2types.Tag{Key: &key, Value: &value})
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
