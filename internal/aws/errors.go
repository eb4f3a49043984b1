package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/vietdv277/stratus/pkg/provider"
)

// Raw AWS error codes are inspected here and nowhere else. Everything
// downstream sees only the pkg/provider taxonomy.

var notFoundCodes = map[string]bool{
	"InvalidKeyPair.NotFound":    true,
	"InvalidGroup.NotFound":      true,
	"InvalidInstanceID.NotFound": true,
	"LoadBalancerNotFound":       true,
	"TargetGroupNotFound":        true,
	"ListenerNotFound":           true,
	"ParameterNotFound":          true,
	"ResourceNotFoundException":  true,
}

var dependencyCodes = map[string]bool{
	"DependencyViolation": true,
	"ResourceInUse":       true,
}

var alreadyExistsCodes = map[string]bool{
	"InvalidKeyPair.Duplicate":  true,
	"InvalidGroup.Duplicate":    true,
	"DuplicateTargetGroupName":  true,
	"DuplicateLoadBalancerName": true,
	"DuplicateListener":         true,
}

// errorCode extracts the AWS API error code, or "" for non-API errors.
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// isNotFound reports whether err means the resource does not exist.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, provider.ErrNotFound) || notFoundCodes[errorCode(err)]
}

// isAlreadyExists reports whether err means a same-named resource exists.
func isAlreadyExists(err error) bool {
	return err != nil && alreadyExistsCodes[errorCode(err)]
}

// isDuplicateRule reports whether err means an ingress rule is already
// present. Append-only rule calls treat this as success.
func isDuplicateRule(err error) bool {
	return err != nil && errorCode(err) == "InvalidPermission.Duplicate"
}

// classifyDelete maps dependency-conflict rejections onto the retryable
// taxonomy entry; every other error passes through unclassified.
func classifyDelete(err error) error {
	if err == nil {
		return nil
	}
	if dependencyCodes[errorCode(err)] {
		return fmt.Errorf("%w: %v", provider.ErrDependencyStillAttached, err)
	}
	return err
}
