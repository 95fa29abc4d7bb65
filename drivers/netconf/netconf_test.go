package netconf

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
)

type fakeSession struct {
	rpcs   []string
	config string
}

func (f *fakeSession) Hello() error { return nil }

func (f *fakeSession) RPC(xml string) (string, error) {
	f.rpcs = append(f.rpcs, xml)
	if strings.Contains(xml, "get-config") {
		return f.config, nil
	}
	return "<rpc-reply/>", nil
}

func (f *fakeSession) Close() error { return nil }

type fakeResolver struct{}

func (fakeResolver) Store(context.Context, model.CredentialRef, model.Credential) error { return nil }
func (fakeResolver) Resolve(context.Context, model.CredentialRef) (model.Credential, error) {
	return model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "x"}, nil
}

func TestApplyConfigLocksEditsValidatesCommitsUnlocks(t *testing.T) {
	d := New(fakeResolver{})
	fs := &fakeSession{config: "system { host-name r1; }"}
	d.dial = func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (session, error) {
		return fs, nil
	}

	res, err := d.Execute(context.Background(), model.Device{MgmtAddr: "10.0.0.1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindConfigPush, Snippet: "set system ntp server 1.1.1.1"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Diff)

	// rpcs[0] is the get-config pre-snapshot taken before the lock.
	require.True(t, strings.Contains(fs.rpcs[1], "<lock>"))
	require.True(t, strings.Contains(fs.rpcs[2], "<edit-config>"))
	require.True(t, strings.Contains(fs.rpcs[3], "<validate>"))
	require.True(t, strings.Contains(fs.rpcs[4], "<commit/>"))
	require.True(t, strings.Contains(fs.rpcs[5], "<unlock>"))
}

func TestApplyConfigDryRunSkipsCommit(t *testing.T) {
	d := New(fakeResolver{})
	fs := &fakeSession{config: "system { host-name r1; }"}
	d.dial = func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (session, error) {
		return fs, nil
	}

	_, err := d.Execute(context.Background(), model.Device{MgmtAddr: "10.0.0.1"}, drivers.JobAction{
		Kind:   model.JobKind{Type: model.JobKindConfigPush, Snippet: "set x"},
		DryRun: true,
	})
	require.NoError(t, err)
	for _, rpc := range fs.rpcs {
		require.False(t, strings.Contains(rpc, "<commit/>"))
	}
}
