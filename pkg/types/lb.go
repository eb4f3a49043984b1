package types

// LoadBalancer represents an AWS Application Load Balancer
type LoadBalancer struct {
	Name    string
	ARN     string
	DNSName string
	Scheme  string // internet-facing, internal
	State   string
	VPCID   string
	AZs     []string
}

// TargetGroup represents an AWS Target Group
type TargetGroup struct {
	Name     string
	ARN      string
	Protocol string
	Port     int32
	VPCID    string
}

// Target represents a registration of an instance in a target group
type Target struct {
	TargetGroupARN string
	InstanceID     string
	Health         string // healthy, unhealthy, draining, unused, initial
}

// Listener represents a load balancer listener
type Listener struct {
	ARN      string
	Port     int32
	Protocol string
}

// Subnet represents a VPC subnet
type Subnet struct {
	ID    string
	VPCID string
	AZ    string
}
