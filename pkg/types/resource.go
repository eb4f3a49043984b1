package types

// ReconciledResource is the outcome of a create-or-adopt call.
// ID is always populated on success. AlreadyExisted reports that a
// same-named resource was found and adopted without modification.
type ReconciledResource struct {
	ID             string
	Name           string
	AlreadyExisted bool
	Attributes     map[string]string
}

// Attr returns an attribute value, or "" if unset.
func (r ReconciledResource) Attr(key string) string {
	if r.Attributes == nil {
		return ""
	}
	return r.Attributes[key]
}

// FirewallRule describes a single security group ingress rule.
// SourceCIDR may be empty, in which case the caller's public IP
// (widened to /32) is substituted; rules with neither are skipped.
type FirewallRule struct {
	Protocol    string
	FromPort    int32
	ToPort      int32
	SourceCIDR  string
	Description string
}
