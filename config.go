package mqnotify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ProviderAWS delivers to Amazon SQS queues (and SNS topics).
	ProviderAWS = "aws"

	// ProviderGCloud delivers to Google Cloud Pub/Sub topics.
	ProviderGCloud = "gcloud"

	// DefaultRegion is used when no region is configured.
	DefaultRegion = "us-east-1"
)

// RawConfig is the notifier configuration as it appears in a config file.
type RawConfig struct {
	Provider        string `yaml:"provider"`
	Name            string `yaml:"name"`
	Region          string `yaml:"region_name"`
	AccessKeyID     string `yaml:"aws_access_key_id"`
	SecretAccessKey string `yaml:"aws_secret_access_key"`
	Profile         string `yaml:"profile_name"`
	Endpoint        string `yaml:"endpoint_url"`
	Project         string `yaml:"project"`
}

// Config represents validated configuration for a Dispatcher.
// Use RawConfig.Validate to obtain one.
type Config struct {
	Provider    string
	Name        string
	Region      string
	Endpoint    string
	Project     string
	Credentials Credentials
}

// Credentials selects how the AWS client authenticates.
// It is one of KeyPairCredentials, ProfileCredentials or NoCredentials.
type Credentials interface {
	isCredentials()
}

// KeyPairCredentials authenticates with an explicit access key pair.
type KeyPairCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// ProfileCredentials authenticates with a named profile from the shared AWS config files.
type ProfileCredentials struct {
	Profile string
}

// NoCredentials defers to the SDK's default credential chain.
type NoCredentials struct{}

func (KeyPairCredentials) isCredentials() {}
func (ProfileCredentials) isCredentials() {}
func (NoCredentials) isCredentials()      {}

// NewCredentials builds the credential variant for the given fields.
// The access key id and secret must be set together, and a profile
// cannot be combined with either of them.
func NewCredentials(accessKeyID, secretAccessKey, profile string) (Credentials, error) {
	hasKey := accessKeyID != ""
	hasSecret := secretAccessKey != ""

	if hasKey != hasSecret {
		return nil, configErr("aws_access_key_id", "aws_access_key_id and aws_secret_access_key must be set together")
	}

	if profile != "" {
		if hasKey {
			return nil, configErr("profile_name", "profile_name cannot be combined with an access key pair")
		}
		return ProfileCredentials{Profile: profile}, nil
	}

	if hasKey {
		return KeyPairCredentials{AccessKeyID: accessKeyID, SecretAccessKey: secretAccessKey}, nil
	}

	return NoCredentials{}, nil
}

// Validate applies defaults and checks the configuration.
func (raw RawConfig) Validate() (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(raw.Provider))
	if provider == "" {
		provider = ProviderAWS
	}

	region := strings.TrimSpace(raw.Region)
	if region == "" {
		region = DefaultRegion
	}

	creds, err := NewCredentials(raw.AccessKeyID, raw.SecretAccessKey, raw.Profile)
	if err != nil {
		return nil, err
	}

	switch provider {
	case ProviderAWS:
	case ProviderGCloud:
		if raw.Project == "" {
			return nil, configErr("project", "project is required for the gcloud provider")
		}
		if _, ok := creds.(NoCredentials); !ok {
			return nil, configErr("provider", "aws credentials cannot be used with the gcloud provider")
		}
	default:
		return nil, configErr("provider", fmt.Sprintf("unrecognized provider %q", raw.Provider))
	}

	return &Config{
		Provider:    provider,
		Name:        raw.Name,
		Region:      region,
		Endpoint:    raw.Endpoint,
		Project:     raw.Project,
		Credentials: creds,
	}, nil
}

// ParseConfig decodes YAML configuration and validates it.
func ParseConfig(data []byte) (*Config, error) {
	var raw RawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Reason: "failed to parse config", Err: err}
	}

	return raw.Validate()
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("failed to read config file %q", path), Err: err}
	}

	return ParseConfig(data)
}
