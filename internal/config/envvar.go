package config

// Environment variable names read by the cfgstore CLI. Flags take
// precedence over these.
const (
	EnvPrefix   = "CFGSTORE"
	EnvFile     = "CFGSTORE_FILE"      // Path of the config file to operate on
	EnvFormat   = "CFGSTORE_FORMAT"    // Explicit format, "detect" by default
	EnvDefaults = "CFGSTORE_DEFAULTS"  // Path of a default template file
	EnvJSON     = "CFGSTORE_JSON"      // Enable JSON output ("1" or "true")
	EnvLogLevel = "CFGSTORE_LOG_LEVEL" // zerolog level name
	EnvLogJSON  = "CFGSTORE_LOG_JSON"  // Emit diagnostics as JSON lines
)
