// Package plugins implements the Plugin Host (SPEC_FULL.md §4.J), grounded
// on original_source/apps/nauto_cli/src/plugins.rs. The source loads and
// instantiates signed WASM modules via wasmtime; the actual sandboxed
// execution runtime is explicitly out of scope here (spec §1 Non-goals),
// so this package keeps the source's descriptor model and detached
// signature verification, and registers a Placeholder driver in place of
// a real WASM guest call.
package plugins

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/model"
)

// Descriptor is the on-disk manifest shape of one installed plugin
// (a "<name>.plugin.json" file alongside a detached "<name>.plugin.json.sig").
type Descriptor struct {
	Vendor       string              `json:"vendor"`
	DeviceType   string              `json:"device_type"`
	Capabilities model.CapabilitySet `json:"capabilities"`
	Artifact     string              `json:"artifact"`
}

// Host collects the descriptors that survived signature verification,
// mirroring the source's PluginHost.
type Host struct {
	Drivers []Descriptor
}

// LoadInstalled scans dir for "*.plugin.json" manifests, verifies each
// against a detached ed25519 signature, and returns a Host containing the
// descriptors that verified. A missing directory is an empty host, not an
// error (matches the source's try_load: "if !dir.exists() return Ok(vec![])").
func LoadInstalled(dir string, log hclog.Logger) Host {
	if log == nil {
		log = hclog.NewNullLogger()
	}

	host := Host{}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.Info("No plugin manifests detected", "dir", dir)
		return host
	}
	if err != nil {
		log.Warn("Plugin loading failed", "dir", dir, "error", err)
		return host
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".plugin.json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		desc, err := loadSingle(path)
		if err != nil {
			log.Warn("Failed to initialize plugin", "path", path, "error", err)
			continue
		}
		log.Info("Registered plugin driver", "vendor", desc.Vendor, "device_type", desc.DeviceType, "capabilities", desc.Capabilities)
		host.Drivers = append(host.Drivers, desc)
	}

	if len(host.Drivers) == 0 {
		log.Info("No plugin manifests detected", "dir", dir)
	}
	return host
}

func loadSingle(path string) (Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("plugins: reading manifest %s: %w", path, err)
	}

	if err := verifySignature(path, raw); err != nil {
		return Descriptor{}, err
	}

	var desc Descriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		return Descriptor{}, fmt.Errorf("plugins: parsing manifest %s: %w", path, err)
	}
	if desc.Vendor == "" || desc.DeviceType == "" {
		return Descriptor{}, fmt.Errorf("plugins: manifest %s missing vendor or device_type", path)
	}
	return desc, nil
}

// verifySignature checks manifestBytes against "<path>.sig" using the
// public key in NAUTO_PLUGIN_PUBLIC_KEY, matching the source's
// verify_signature exactly (it too refuses to load without the env var).
func verifySignature(path string, manifestBytes []byte) error {
	pubKeyHex := nconf.StrPtr(nconf.EnvPluginPublicKey)
	if pubKeyHex == nil || *pubKeyHex == "" {
		return fmt.Errorf("plugins: %s not set, cannot verify plugins", nconf.EnvPluginPublicKey)
	}
	pubKeyBytes, err := hex.DecodeString(*pubKeyHex)
	if err != nil {
		return fmt.Errorf("plugins: invalid public key hex: %w", err)
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return fmt.Errorf("plugins: invalid public key length")
	}

	sigPath := path + ".sig"
	sigHex, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("plugins: missing signature file %s: %w", sigPath, err)
	}
	sigBytes, err := hex.DecodeString(strings.TrimSpace(string(sigHex)))
	if err != nil {
		return fmt.Errorf("plugins: invalid signature hex: %w", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return fmt.Errorf("plugins: invalid signature length")
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKeyBytes), manifestBytes, sigBytes) {
		return fmt.Errorf("plugins: signature verification failed for %s", path)
	}
	return nil
}

// ExtendRegistry adds a Placeholder driver for every descriptor in host
// when plugin drivers are enabled, matching the source's
// extend_with_plugin_drivers gate on NAUTO_ENABLE_PLUGIN_DRIVERS.
func ExtendRegistry(reg *drivers.Registry, host Host) {
	if !nconf.EnablePluginDrivers() {
		return
	}
	for _, desc := range host.Drivers {
		reg.AddPlugin(NewPlaceholder(desc))
	}
}

// Placeholder stands in for a real plugin-backed driver. Its Execute and
// Rollback always fail: the sandboxed guest runtime this would dispatch
// into is out of scope, so a plugin descriptor is observable (it appears
// in `nauto plugins list` and claims a device type in the registry) but
// never actually runs a job.
type Placeholder struct {
	desc Descriptor
}

// NewPlaceholder wraps a verified plugin descriptor as a drivers.Driver.
func NewPlaceholder(desc Descriptor) Placeholder {
	return Placeholder{desc: desc}
}

func (p Placeholder) DeviceType() model.DeviceType { return model.DeviceType(p.desc.DeviceType) }
func (p Placeholder) Name() string                 { return "plugin:" + p.desc.Vendor }
func (p Placeholder) Capabilities() model.CapabilitySet { return p.desc.Capabilities }

func (p Placeholder) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	return drivers.ExecutionResult{}, fmt.Errorf("plugin driver %q (%s) has no execution runtime wired", p.desc.Vendor, p.desc.Artifact)
}

func (p Placeholder) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	return fmt.Errorf("plugin driver %q (%s) has no execution runtime wired", p.desc.Vendor, p.desc.Artifact)
}
