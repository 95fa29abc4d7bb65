// Package sshcli implements the SSH-CLI driver family (generic-ssh,
// cisco-ios-like, arista-eos CLI mode) described in SPEC_FULL.md §4.A,
// grounded on original_source/crates/nauto_drivers/src/ssh.rs,
// drivers/generic_ssh.rs and drivers/cisco_ios.rs.
package sshcli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/drivers/internal/diffutil"
	"github.com/lammesen/netrust/internal/nconf"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/security"
)

// DefaultPort is used when a device's management address carries no port.
const DefaultPort = 22

// maxLogBytes bounds how much stdout is kept per command in task logs.
const maxLogBytes = 512

// vendorMarkers is the enter-config/end/save command triple each
// CLI-family vendor wraps a config-push snippet with.
type vendorMarkers struct {
	enterConfig string
	end         string
	save        string
}

var markersByType = map[model.DeviceType]vendorMarkers{
	model.DeviceGenericSSH:   {enterConfig: "configure terminal", end: "end", save: "write memory"},
	model.DeviceCiscoIOSLike: {enterConfig: "configure terminal", end: "end", save: "write memory"},
	model.DeviceAristaEOS:    {enterConfig: "configure", end: "end", save: "copy running-config startup-config"},
}

// Driver is the shared SSH-CLI implementation, parameterized by device
// type and name so generic-ssh, cisco-ios-like, and arista-eos can each
// register a thin wrapper around the same protocol logic.
type Driver struct {
	deviceType model.DeviceType
	name       string
	resolver   security.Resolver
	dial       func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshClient, error)
}

// New builds an SSH-CLI driver for the given device type.
func New(deviceType model.DeviceType, name string, resolver security.Resolver) *Driver {
	return &Driver{deviceType: deviceType, name: name, resolver: resolver, dial: defaultDial}
}

func (d *Driver) DeviceType() model.DeviceType { return d.deviceType }
func (d *Driver) Name() string                 { return d.name }

func (d *Driver) Capabilities() model.CapabilitySet {
	return model.CapabilitySet{Commit: true, Rollback: false, Diff: true, DryRun: false}
}

// sshClient is the minimal surface this package needs from *ssh.Client,
// narrowed so tests can substitute a fake without a real network.
type sshClient interface {
	RunCommand(cmd string) (stdout string, err error)
	Close() error
}

type realClient struct{ c *ssh.Client }

func (r realClient) RunCommand(cmd string) (string, error) {
	session, err := r.c.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session: %w", err)
	}
	defer session.Close()
	var out bytes.Buffer
	session.Stdout = &out
	if err := session.Run(cmd); err != nil {
		return out.String(), fmt.Errorf("command %q: %w", cmd, err)
	}
	return out.String(), nil
}

func (r realClient) Close() error { return r.c.Close() }

func defaultDial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshClient, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		return nil, err
	}
	return realClient{c: ssh.NewClient(sshConn, chans, reqs)}, nil
}

func authMethods(cred model.Credential) ([]ssh.AuthMethod, error) {
	switch cred.Kind {
	case model.CredentialUserPassword:
		return []ssh.AuthMethod{ssh.Password(cred.Password)}, nil
	case model.CredentialSSHKey:
		signer, err := loadSigner(cred.KeyPath, cred.Passphrase)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	default:
		return nil, fmt.Errorf("sshcli: unsupported credential kind %q", cred.Kind)
	}
}

func username(cred model.Credential) string {
	if cred.Kind == model.CredentialUserPassword {
		return cred.Username
	}
	return "admin"
}

func hostKeyCallback() ssh.HostKeyCallback {
	if path := nconf.Str(nconf.EnvSSHKnownHosts, ""); path != "" {
		if cb, err := knownHostsCallback(path); err == nil {
			return cb
		}
	}
	return ssh.InsecureIgnoreHostKey()
}

func addressWithPort(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return fmt.Sprintf("%s:%d", addr, DefaultPort)
}

func truncate(s string) string {
	if len(s) <= maxLogBytes {
		return s
	}
	return s[:maxLogBytes] + "...(truncated)"
}

func (d *Driver) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	cred, err := d.resolver.Resolve(ctx, device.Credential)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("sshcli: resolving credential: %w", err)
	}
	methods, err := authMethods(cred)
	if err != nil {
		return drivers.ExecutionResult{}, err
	}

	cfg := &ssh.ClientConfig{
		User:            username(cred),
		Auth:            methods,
		HostKeyCallback: hostKeyCallback(),
		Timeout:         time.Duration(nconf.SSHTimeoutSecs()) * time.Second,
	}

	client, err := d.dial(ctx, addressWithPort(device.MgmtAddr), cfg)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("sshcli: dialing %s: %w", device.MgmtAddr, err)
	}
	defer client.Close()

	switch action.Kind.Type {
	case model.JobKindCommandBatch:
		return d.executeCommandBatch(client, action.Kind.Commands)
	case model.JobKindConfigPush:
		return d.executeConfigPush(client, action.Kind.Snippet)
	default:
		return drivers.ExecutionResult{}, fmt.Errorf("sshcli: unsupported job kind %q", action.Kind.Type)
	}
}

func (d *Driver) executeCommandBatch(client sshClient, commands []string) (drivers.ExecutionResult, error) {
	var logs []string
	for _, cmd := range commands {
		out, err := client.RunCommand(cmd)
		if err != nil {
			return drivers.ExecutionResult{Logs: logs}, err
		}
		logs = append(logs, fmt.Sprintf("%s => %s", cmd, truncate(strings.TrimSpace(out))))
	}
	return drivers.ExecutionResult{Logs: logs}, nil
}

func (d *Driver) executeConfigPush(client sshClient, snippet string) (drivers.ExecutionResult, error) {
	markers, ok := markersByType[d.deviceType]
	if !ok {
		markers = markersByType[model.DeviceGenericSSH]
	}

	pre, err := client.RunCommand("show running-config")
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("capturing pre-snapshot: %w", err)
	}

	for _, cmd := range append([]string{markers.enterConfig}, strings.Split(snippet, "\n")...) {
		if _, err := client.RunCommand(cmd); err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("applying config-push: %w", err)
		}
	}
	if _, err := client.RunCommand(markers.end); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("exiting config mode: %w", err)
	}
	if _, err := client.RunCommand(markers.save); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("saving config: %w", err)
	}

	post, err := client.RunCommand("show running-config")
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("capturing post-snapshot: %w", err)
	}

	diff, err := diffutil.Unified(pre, post)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("rendering diff: %w", err)
	}

	return drivers.ExecutionResult{
		Logs:     []string{"config-push applied"},
		PreSnap:  &pre,
		PostSnap: &post,
		Diff:     &diff,
	}, nil
}

// Rollback is best-effort and unsupported for this family (capability bit
// is false); callers should never invoke it, but it fails loudly if they do.
func (d *Driver) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	return fmt.Errorf("sshcli: rollback not supported for device type %s", d.deviceType)
}
