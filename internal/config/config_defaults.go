package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.logLevel", "warn")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Store defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.busyTimeout", 5*time.Second)

	// Rewrite defaults
	v.SetDefault("rewrite.downloadFileName", "improved-resume.txt")
	v.SetDefault("rewrite.skillsLimit", 10)

	// Watch defaults
	v.SetDefault("watch.debounceDelay", 250*time.Millisecond)
	v.SetDefault("watch.maxRunsPerSecond", 2.0)
	v.SetDefault("watch.burst", 1)

	// Observability defaults
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "atsmatch")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}

// defaultStorePath is $HOME/.atsmatch/session.db, or ./.atsmatch/session.db without a home directory.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".atsmatch", "session.db")
	}
	return filepath.Join(home, ".atsmatch", "session.db")
}
