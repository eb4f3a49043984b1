package provider

import "errors"

// Closed error taxonomy for remote-API failures. Managers classify raw
// provider errors into these exactly once, at the API boundary; the
// orchestrators and the retry policy never inspect provider error strings.
var (
	// ErrNotFound means the resource does not exist. Deletes treat it as
	// success; ensure-exists treats it as "proceed to create".
	ErrNotFound = errors.New("resource not found")

	// ErrDependencyStillAttached marks a delete rejected because a
	// dependent resource has not released it yet. Transient; retried.
	ErrDependencyStillAttached = errors.New("resource still referenced by a dependent resource")

	// ErrNotFoundAfterCreate means the describe-back following a create
	// could not locate the new resource (eventual-consistency race).
	ErrNotFoundAfterCreate = errors.New("resource not found after creation")

	// ErrAmbiguousCreate means a lookup by name matched more than one
	// resource, so adoption would be ambiguous.
	ErrAmbiguousCreate = errors.New("name lookup matched more than one resource")

	// ErrNoMatchingImage means the image filter matched nothing.
	ErrNoMatchingImage = errors.New("no machine image matches the filter")

	// ErrInsufficientSubnetDiversity means the subnets offered for a load
	// balancer do not span at least two availability zones.
	ErrInsufficientSubnetDiversity = errors.New("load balancer requires subnets in at least 2 availability zones")
)
