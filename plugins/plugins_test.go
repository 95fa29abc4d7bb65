package plugins_test

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/plugins"
)

func writeManifest(t *testing.T, dir, name string, priv ed25519.PrivateKey, desc plugins.Descriptor) {
	t.Helper()
	raw, err := json.Marshal(desc)
	require.NoError(t, err)

	manifestPath := filepath.Join(dir, name+".plugin.json")
	require.NoError(t, os.WriteFile(manifestPath, raw, 0o644))

	sig := ed25519.Sign(priv, raw)
	require.NoError(t, os.WriteFile(manifestPath+".sig", []byte(hex.EncodeToString(sig)), 0o644))
}

func TestLoadInstalledVerifiesSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	t.Setenv(nconf.EnvPluginPublicKey, hex.EncodeToString(pub))

	dir := t.TempDir()
	desc := plugins.Descriptor{
		Vendor:       "acme",
		DeviceType:   "acme-widget",
		Capabilities: model.CapabilitySet{Commit: true, Diff: true},
		Artifact:     "acme.wasm",
	}
	writeManifest(t, dir, "acme", priv, desc)

	host := plugins.LoadInstalled(dir, nil)
	require.Len(t, host.Drivers, 1)
	require.Equal(t, "acme", host.Drivers[0].Vendor)
	require.Equal(t, "acme-widget", host.Drivers[0].DeviceType)
}

func TestLoadInstalledRejectsBadSignature(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	t.Setenv(nconf.EnvPluginPublicKey, hex.EncodeToString(pub))

	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	dir := t.TempDir()
	writeManifest(t, dir, "acme", otherPriv, plugins.Descriptor{Vendor: "acme", DeviceType: "acme-widget"})

	host := plugins.LoadInstalled(dir, nil)
	require.Empty(t, host.Drivers)
}

func TestLoadInstalledMissingDirIsEmpty(t *testing.T) {
	host := plugins.LoadInstalled(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.Empty(t, host.Drivers)
}

func TestLoadInstalledRefusesWithoutPublicKey(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme.plugin.json"), []byte(`{"vendor":"acme","device_type":"x"}`), 0o644))

	host := plugins.LoadInstalled(dir, nil)
	require.Empty(t, host.Drivers)
}

func TestPlaceholderAlwaysErrors(t *testing.T) {
	p := plugins.NewPlaceholder(plugins.Descriptor{Vendor: "acme", DeviceType: "acme-widget"})
	require.Equal(t, "plugin:acme", p.Name())

	device := model.Device{ID: "d1", Type: model.DeviceType("acme-widget")}

	_, err := p.Execute(context.Background(), device, drivers.JobAction{})
	require.Error(t, err)

	err = p.Rollback(context.Background(), device, "snap")
	require.Error(t, err)
}
