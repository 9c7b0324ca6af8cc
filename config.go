package echoez

import (
	"os"

	"github.com/muka/go-bluetooth/bluez/profile/agent"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the peripheral. Command-line flags override
// the values read from a file.
type Config struct {
	// Name is advertised as the local name and namespaces the agent path.
	// Letters only.
	Name    string `yaml:"name"`
	Verbose bool   `yaml:"verbose"`

	// Adapter restricts the adapter search to one id, such as hci0. Empty
	// means the first adapter offering a GATT manager.
	Adapter string `yaml:"adapter"`

	// AgentCapability is the IO capability announced to BlueZ when the
	// pairing agent registers.
	AgentCapability string `yaml:"agent_capability"`

	// StrictCleanup makes a failure to unregister the advertisement on
	// shutdown an error instead of being ignored.
	StrictCleanup bool `yaml:"strict_cleanup"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Name:            "echoez",
		AgentCapability: agent.CapNoInputNoOutput,
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "could not parse config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration before anything is registered.
func (c Config) Validate() error {
	if !isAlpha(c.Name) {
		return errors.Wrapf(ErrInvalidName, "%q is invalid", c.Name)
	}
	if c.AgentCapability == "" {
		return errors.New("echoez: agent capability must not be empty")
	}
	return nil
}
