package config

import (
	"fmt"
	"os"
	"strings"
)

// applyFallbacks fills values derived from other settings
func (c *Config) applyFallbacks() {
	c.App.LogLevel = strings.ToLower(strings.TrimSpace(c.App.LogLevel))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.applyObservabilityDefaults()
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

// generateServiceInstanceID generates a service instance ID from the hostname
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	configLog.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		configLog.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		configLog.Println("[CONFIG] Config file: None (using defaults)")
	}

	configLog.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			configLog.Printf("[CONFIG]   %s", kv)
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		configLog.Println("[CONFIG]   None set")
	}

	configLog.Println("[CONFIG] === Key Configuration Values ===")
	configLog.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	configLog.Printf("[CONFIG] Default Format: %s", c.App.DefaultFormat)
	configLog.Printf("[CONFIG] Store: %s (%s)", c.Store.Driver, c.Store.Path)
	configLog.Printf("[CONFIG] Watch: debounce %s, %.1f runs/s", c.Watch.DebounceDelay, c.Watch.MaxRunsPerSecond)
	configLog.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	configLog.Println("[CONFIG] =====================================")
}
