package security

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lammesen/netrust/model"
)

func credentialFixture() model.Credential {
	return model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "hunter2"}
}

func TestFileStorePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := newFileStore(filepath.Join(dir, "creds.enc"), "super-secret-passphrase")

	require.NoError(t, fs.put("device-a", `{"kind":"user_password","username":"admin","password":"hunter2"}`))

	got, err := fs.get("device-a")
	require.NoError(t, err)
	require.Equal(t, `{"kind":"user_password","username":"admin","password":"hunter2"}`, got)
}

func TestFileStoreMissingRecord(t *testing.T) {
	dir := t.TempDir()
	fs := newFileStore(filepath.Join(dir, "creds.enc"), "pass")

	_, err := fs.get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRefusesPlaintextWithoutPassphrase(t *testing.T) {
	dir := t.TempDir()
	fs := newFileStore(filepath.Join(dir, "creds.enc"), "")

	err := fs.put("device-a", `{"kind":"bearer_token","token":"abc"}`)
	require.Error(t, err)
}

func TestCredentialStringRedactsSecrets(t *testing.T) {
	require.NotContains(t, (credentialFixture()).String(), "hunter2")
}
