package sshcli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/model"
)

type fakeClient struct {
	calls    []string
	fail     map[string]bool
	runConfg string
}

func (f *fakeClient) RunCommand(cmd string) (string, error) {
	f.calls = append(f.calls, cmd)
	if f.fail[cmd] {
		return "", context.DeadlineExceeded
	}
	if cmd == "show running-config" {
		return f.runConfg, nil
	}
	return "ok", nil
}

func (f *fakeClient) Close() error { return nil }

type fakeResolver struct{}

func (fakeResolver) Store(context.Context, model.CredentialRef, model.Credential) error { return nil }
func (fakeResolver) Resolve(context.Context, model.CredentialRef) (model.Credential, error) {
	return model.Credential{Kind: model.CredentialUserPassword, Username: "admin", Password: "x"}, nil
}

func TestExecuteCommandBatch(t *testing.T) {
	d := NewCiscoIOS(fakeResolver{})
	fc := &fakeClient{}
	d.dial = func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshClient, error) {
		return fc, nil
	}

	res, err := d.Execute(context.Background(), model.Device{MgmtAddr: "10.0.0.1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"show version"}},
	})
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	require.Equal(t, []string{"show version"}, fc.calls)
}

func TestExecuteConfigPushProducesDiff(t *testing.T) {
	d := NewCiscoIOS(fakeResolver{})
	fc := &fakeClient{runConfg: "hostname r1\n"}
	d.dial = func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshClient, error) {
		return fc, nil
	}

	res, err := d.Execute(context.Background(), model.Device{MgmtAddr: "10.0.0.1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindConfigPush, Snippet: "ntp server 1.1.1.1"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Diff)
	require.Contains(t, fc.calls, "configure terminal")
	require.Contains(t, fc.calls, "write memory")
}

func TestExecuteCommandBatchPropagatesFailure(t *testing.T) {
	d := NewGeneric(fakeResolver{})
	fc := &fakeClient{fail: map[string]bool{"fail-cmd": true}}
	d.dial = func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshClient, error) {
		return fc, nil
	}

	_, err := d.Execute(context.Background(), model.Device{MgmtAddr: "10.0.0.1"}, drivers.JobAction{
		Kind: model.JobKind{Type: model.JobKindCommandBatch, Commands: []string{"fail-cmd"}},
	})
	require.Error(t, err)
}
