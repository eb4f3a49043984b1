// Package config loads the deployment configuration. Every field has a
// default so the tool runs with no config file present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vietdv277/stratus/pkg/types"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "stratus.yaml"

// Duration is a time.Duration that unmarshals from yaml strings like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Timeouts groups every waiter, settling, and retry knob. The defaults
// mirror what the AWS control plane actually needs; tests dial them down.
type Timeouts struct {
	PollInterval       Duration `yaml:"poll_interval"`
	InstanceRunning    Duration `yaml:"instance_running"`
	InstanceTerminated Duration `yaml:"instance_terminated"`
	LoadBalancerActive Duration `yaml:"load_balancer_active"`
	// Settling delays give eventual consistency time to release
	// dependents before the dependent stage's delete is issued.
	LoadBalancerSettle Duration `yaml:"load_balancer_settle"`
	InstanceSettle     Duration `yaml:"instance_settle"`

	DeleteRetryAttempts int      `yaml:"delete_retry_attempts"`
	DeleteRetryStep     Duration `yaml:"delete_retry_step"`
}

// Config represents the deployment configuration.
type Config struct {
	TemplateName string `yaml:"template_name"`
	TemplateID   string `yaml:"template_id"`

	Profile string `yaml:"profile,omitempty"`
	Region  string `yaml:"region,omitempty"`

	InstanceType    string `yaml:"instance_type"`
	AMINameFilter   string `yaml:"ami_name_filter"`
	AMIOwner        string `yaml:"ami_owner"`
	AMIArchitecture string `yaml:"ami_architecture"`

	ListenerPort    int32  `yaml:"listener_port"`
	TargetPort      int32  `yaml:"target_port"`
	HealthCheckPath string `yaml:"health_check_path"`

	// KeyFile overrides the default <template>-keypair.pem path.
	KeyFile string `yaml:"key_file,omitempty"`
	// EscrowKey stores freshly created private keys in Secrets Manager.
	EscrowKey bool `yaml:"escrow_key"`
	// PublishOutputs writes deployment outputs to SSM Parameter Store.
	PublishOutputs bool `yaml:"publish_outputs"`

	Timeouts Timeouts `yaml:"timeouts"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TemplateName:    "barista-cafe",
		TemplateID:      "2137",
		InstanceType:    "t2.micro",
		AMINameFilter:   "al2023-ami-2023.*-x86_64",
		AMIOwner:        "amazon",
		AMIArchitecture: "x86_64",
		ListenerPort:    80,
		TargetPort:      80,
		HealthCheckPath: "/",
		Timeouts: Timeouts{
			PollInterval:        Duration(5 * time.Second),
			InstanceRunning:     Duration(5 * time.Minute),
			InstanceTerminated:  Duration(5 * time.Minute),
			LoadBalancerActive:  Duration(10 * time.Minute),
			LoadBalancerSettle:  Duration(10 * time.Second),
			InstanceSettle:      Duration(20 * time.Second),
			DeleteRetryAttempts: 5,
			DeleteRetryStep:     Duration(10 * time.Second),
		},
	}
}

// Load reads the config at path, layered over the defaults. A missing
// file at the default path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.TemplateName == "" {
		return nil, fmt.Errorf("template_name must not be empty")
	}
	return cfg, nil
}

// Tags returns the common tags stamped on every created resource.
func (c *Config) Tags() map[string]string {
	return map[string]string{
		"Project":     c.TemplateName,
		"ManagedBy":   "stratus",
		"Environment": "Demo",
	}
}

// InstanceRules returns the ingress rules for the instance security
// group. The SSH rule carries no CIDR: the deployer substitutes the
// discovered public IP, and the rule is skipped when none is known.
func (c *Config) InstanceRules() []types.FirewallRule {
	return []types.FirewallRule{
		{
			Protocol:    "tcp",
			FromPort:    22,
			ToPort:      22,
			Description: "SSH access from my IP",
		},
		{
			Protocol:    "tcp",
			FromPort:    c.TargetPort,
			ToPort:      c.TargetPort,
			SourceCIDR:  "0.0.0.0/0",
			Description: "HTTP access from anywhere",
		},
	}
}

// LoadBalancerRules returns the ingress rules for the ALB security group.
func (c *Config) LoadBalancerRules() []types.FirewallRule {
	return []types.FirewallRule{
		{
			Protocol:    "tcp",
			FromPort:    c.ListenerPort,
			ToPort:      c.ListenerPort,
			SourceCIDR:  "0.0.0.0/0",
			Description: "HTTP access from anywhere",
		},
	}
}
