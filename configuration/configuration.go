// Package configuration holds the tunables the core reads at
// construction time: how long the Confirmation Waiter tolerates a
// missing receipt, how deep the Submission Serializer's queue is
// allowed to grow, and the gas-padding constants applied to every
// estimate.
package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EthereumConfig is the single configuration object threaded through
// the core's constructors.
type EthereumConfig struct {
	// BlockWaitLimit is the number of blocks past the snapshot taken at
	// waitForResult time after which an unconfirmed transaction is
	// reported as InclusionTimeout.
	BlockWaitLimit uint64 `yaml:"blockWaitLimit"`

	// SubmissionQueueCapacity bounds the Submission Serializer's
	// internal queue; enqueues beyond this fail with BackpressureExceeded.
	SubmissionQueueCapacity int `yaml:"submissionQueueCapacity"`

	// PollInterval is how often the Confirmation Waiter's polling
	// fallback re-queries the backend for a transaction's receipt.
	PollInterval string `yaml:"pollInterval"`

	// AdditionalGasForContractCreation and AdditionalGasDirtyFix are the
	// two gas-estimate padding constants per §4.4: the first is added only
	// for contract-creation transactions and compensates for
	// constructor-code execution the backend's estimate under-reports, the
	// second is a pessimistic pad applied to every estimate.
	AdditionalGasForContractCreation uint64 `yaml:"additionalGasForContractCreation"`
	AdditionalGasDirtyFix             uint64 `yaml:"additionalGasDirtyFix"`
}

// DefEthereumConfig returns the default configuration: a 16-block wait
// window (a few minutes at typical block times), a queue sized per the
// spec's order-of-10^4 guidance, and the original proxy's gas padding
// constants.
func DefEthereumConfig() *EthereumConfig {
	return &EthereumConfig{
		BlockWaitLimit:                    16,
		SubmissionQueueCapacity:           10_000,
		PollInterval:                      "10s",
		AdditionalGasForContractCreation:  15_000,
		AdditionalGasDirtyFix:             200_000,
	}
}

// Check validates the configuration, mirroring the teacher's
// Check()-per-config-struct convention.
func (c *EthereumConfig) Check() error {
	if c.BlockWaitLimit == 0 {
		return fmt.Errorf("configuration: blockWaitLimit must be greater than zero")
	}
	if c.SubmissionQueueCapacity <= 0 {
		return fmt.Errorf("configuration: submissionQueueCapacity must be greater than zero")
	}
	return nil
}

// Load reads an EthereumConfig from a YAML file at path, falling back to
// defaults for any field left unset in the file.
func Load(path string) (*EthereumConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration: read %s: %w", path, err)
	}
	cfg := DefEthereumConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("configuration: parse %s: %w", path, err)
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}
