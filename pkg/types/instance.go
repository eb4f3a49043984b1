package types

// Image represents a machine image candidate for instance launches.
type Image struct {
	ID           string
	Name         string
	State        string
	Architecture string
	CreationDate string // RFC3339, as reported by the API
}

// Instance represents an EC2 instance
type Instance struct {
	ID        string
	Name      string
	Type      string
	State     string
	PublicIP  string
	PrivateIP string
	AZ        string
	SubnetID  string
	VPCID     string
}

// IsRunning returns true if the instance is running
func (i *Instance) IsRunning() bool {
	return i.State == "running"
}
