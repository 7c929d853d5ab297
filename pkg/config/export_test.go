package config

// ApplyEnvOverridesForTest exposes the environment layer to external tests.
func ApplyEnvOverridesForTest(cfg *Config) {
	applyEnvOverrides(cfg)
}
