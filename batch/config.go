package batch

import "sync"

// Config retrieves the config values used by Batch. If these values are
// constant, NewConstantConfig can be used to create an implementation
// of the interface.
type Config interface {
	// Get returns the values for configuration.
	//
	// If the config values may be modified during batch processing, Get
	// must properly handle concurrency issues.
	Get() ConfigValues
}

// ConfigValues is a struct that contains the Batch config values.
type ConfigValues struct {
	// BatchSize is the number of items a bucket collects before it is
	// flushed as one batch. Zero is treated as 1.
	BatchSize uint64 `json:"batchSize"`

	// DropRemainder discards the partially filled buckets left over when
	// the Source is exhausted instead of flushing them as short batches.
	DropRemainder bool `json:"dropRemainder"`
}

// NewConstantConfig returns a Config with constant values. If values
// is nil, the default values are used as described in Batch.
func NewConstantConfig(values *ConfigValues) *ConstantConfig {
	if values == nil {
		return &ConstantConfig{}
	}

	return &ConstantConfig{
		values: *values,
	}
}

// ConstantConfig is a Config with constant values. Create one with
// NewConstantConfig.
type ConstantConfig struct {
	values ConfigValues
}

// Get implements the Config interface.
func (b *ConstantConfig) Get() ConfigValues {
	return b.values
}

// NewDynamicConfig creates a configuration that can be adjusted at runtime.
// If values is nil, the default values are used as described in Batch.
func NewDynamicConfig(values *ConfigValues) *DynamicConfig {
	if values == nil {
		return &DynamicConfig{}
	}

	return &DynamicConfig{
		batchSize:     values.BatchSize,
		dropRemainder: values.DropRemainder,
	}
}

// DynamicConfig implements the Config interface with values that can be
// modified while a Batch is running. A new batch size applies to the next
// item appended to a bucket.
type DynamicConfig struct {
	mu            sync.RWMutex
	batchSize     uint64
	dropRemainder bool
}

// Get implements the Config interface by returning the current configuration values.
func (c *DynamicConfig) Get() ConfigValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ConfigValues{
		BatchSize:     c.batchSize,
		DropRemainder: c.dropRemainder,
	}
}

// UpdateBatchSize updates the batch size.
func (c *DynamicConfig) UpdateBatchSize(batchSize uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batchSize = batchSize
}

// Update replaces all configuration values at once.
func (c *DynamicConfig) Update(config ConfigValues) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batchSize = config.BatchSize
	c.dropRemainder = config.DropRemainder
}

// fixConfig corrects invalid ConfigValues. A zero BatchSize becomes 1, so
// every item is eventually part of some batch.
func fixConfig(c ConfigValues) ConfigValues {
	if c.BatchSize == 0 {
		c.BatchSize = 1
	}
	return c
}
