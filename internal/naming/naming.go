// Package naming derives every resource name from a single template
// identifier. Names are the only handle the tool keeps between runs, so
// the derivation must be deterministic.
package naming

import "fmt"

// Names provides the resource naming conventions for one deployment.
type Names struct {
	template string
}

// New creates a Names helper for the given template name.
func New(templateName string) *Names {
	return &Names{template: templateName}
}

// Template returns the template name the set derives from.
func (n *Names) Template() string {
	return n.template
}

// KeyPair returns the SSH key pair name.
// Pattern: ${template}-keypair
func (n *Names) KeyPair() string {
	return fmt.Sprintf("%s-keypair", n.template)
}

// KeyFile returns the on-disk path for the private key.
// Pattern: ${template}-keypair.pem
func (n *Names) KeyFile() string {
	return fmt.Sprintf("%s-keypair.pem", n.template)
}

// InstanceSecurityGroup returns the instance security group name.
// Pattern: ${template}-sg
func (n *Names) InstanceSecurityGroup() string {
	return fmt.Sprintf("%s-sg", n.template)
}

// LoadBalancerSecurityGroup returns the ALB security group name.
// Pattern: ${template}-alb-sg
func (n *Names) LoadBalancerSecurityGroup() string {
	return fmt.Sprintf("%s-alb-sg", n.template)
}

// Instance returns the instance Name tag.
// Pattern: ${template}-instance
func (n *Names) Instance() string {
	return fmt.Sprintf("%s-instance", n.template)
}

// LoadBalancer returns the load balancer name.
// Pattern: ${template}-alb
func (n *Names) LoadBalancer() string {
	return fmt.Sprintf("%s-alb", n.template)
}

// TargetGroup returns the target group name.
// Pattern: ${template}-tg
func (n *Names) TargetGroup() string {
	return fmt.Sprintf("%s-tg", n.template)
}

// KeySecret returns the Secrets Manager secret name for key escrow.
// Pattern: stratus/${template}/private-key
func (n *Names) KeySecret() string {
	return fmt.Sprintf("stratus/%s/private-key", n.template)
}

// OutputParameter returns the SSM parameter path for a deployment output.
// Pattern: /stratus/${template}/${key}
func (n *Names) OutputParameter(key string) string {
	return fmt.Sprintf("/stratus/%s/%s", n.template, key)
}
