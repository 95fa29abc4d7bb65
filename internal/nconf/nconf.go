// Package nconf is the single parse site for every environment variable
// the core consumes, mirroring the source's nauto_drivers::config module:
// one function per variable, default baked in, no scattered os.Getenv calls.
package nconf

import (
	"os"
	"strconv"
	"strings"
)

const (
	EnvQueue              = "NAUTO_QUEUE"
	EnvWorkerLimit        = "NAUTO_WORKER_LIMIT"
	EnvApprovalsPath      = "NAUTO_APPROVALS_PATH"
	EnvResultsDir         = "NAUTO_RESULTS_DIR"
	EnvWorkerAuditLog     = "NAUTO_WORKER_AUDIT_LOG"
	EnvUseMockDrivers     = "NAUTO_USE_MOCK_DRIVERS"
	EnvSSHTimeoutSecs     = "NAUTO_SSH_TIMEOUT_SECS"
	EnvHTTPTimeoutSecs    = "NAUTO_HTTP_TIMEOUT_SECS"
	EnvHTTPRetries        = "NAUTO_HTTP_RETRIES"
	EnvKeyringFile        = "NAUTO_KEYRING_FILE"
	EnvEncryptionKey      = "NAUTO_ENCRYPTION_KEY"
	EnvEnablePluginDrivers = "NAUTO_ENABLE_PLUGIN_DRIVERS"
	EnvPluginPublicKey    = "NAUTO_PLUGIN_PUBLIC_KEY"
	EnvPluginDir          = "NAUTO_PLUGIN_DIR"
	EnvSSHKnownHosts      = "NAUTO_SSH_KNOWN_HOSTS"
)

const (
	DefaultSSHTimeoutSecs  = 30
	DefaultHTTPTimeoutSecs = 15
	DefaultHTTPRetries     = 2
	DefaultWorkerLimit     = 10
)

// Str returns the raw string value, or def if unset.
func Str(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// StrPtr returns a pointer to the value if set, else nil.
func StrPtr(name string) *string {
	if v, ok := os.LookupEnv(name); ok {
		return &v
	}
	return nil
}

// Int returns the parsed integer value, or def if unset or unparsable.
func Int(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Bool reports whether the named variable is set to a truthy value
// ("1", "true", "yes", "on", case-insensitive). Unset or any other value
// is false.
func Bool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func SSHTimeoutSecs() int  { return Int(EnvSSHTimeoutSecs, DefaultSSHTimeoutSecs) }
func HTTPTimeoutSecs() int { return Int(EnvHTTPTimeoutSecs, DefaultHTTPTimeoutSecs) }
func HTTPRetries() int     { return Int(EnvHTTPRetries, DefaultHTTPRetries) }
func WorkerLimit() int     { return Int(EnvWorkerLimit, DefaultWorkerLimit) }
func UseMockDrivers() bool { return Bool(EnvUseMockDrivers) }
func EnablePluginDrivers() bool { return Bool(EnvEnablePluginDrivers) }
