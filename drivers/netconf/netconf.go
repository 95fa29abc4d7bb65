// Package netconf implements the junos-netconf driver family (SPEC_FULL.md
// §4.A), grounded on
// original_source/crates/nauto_drivers/src/drivers/juniper_junos.rs.
package netconf

import (
	"bufio"
	"context"
	"fmt"
	"io"
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

// DefaultPort is the NETCONF-over-SSH port used when a device's
// management address carries none.
const DefaultPort = 830

// delimiter is the NETCONF 1.0 framing marker terminating every rpc reply.
const delimiter = "]]>]]>"

// session is the minimal surface this package needs from a NETCONF
// transport, narrowed so tests can substitute a fake.
type session interface {
	Hello() error
	RPC(xml string) (reply string, err error)
	Close() error
}

// Driver is the junos-netconf driver.
type Driver struct {
	resolver security.Resolver
	dial     func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (session, error)
}

// New builds a junos-netconf driver.
func New(resolver security.Resolver) *Driver {
	return &Driver{resolver: resolver, dial: defaultDial}
}

func (d *Driver) DeviceType() model.DeviceType { return model.DeviceJunosNetconf }
func (d *Driver) Name() string                 { return "junos-netconf" }

func (d *Driver) Capabilities() model.CapabilitySet {
	return model.CapabilitySet{Commit: true, Rollback: true, Diff: true, DryRun: true}
}

type realSession struct {
	client  *ssh.Client
	session *ssh.Session
	w       io.WriteCloser
	r       *bufio.Reader
}

func (s *realSession) Hello() error {
	hello := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<hello xmlns="urn:ietf:params:xml:ns:netconf:base:1.0">` +
		`<capabilities><capability>urn:ietf:params:netconf:base:1.0</capability></capabilities></hello>` + "\n" + delimiter
	if _, err := io.WriteString(s.w, hello); err != nil {
		return err
	}
	_, err := s.readFramed()
	return err
}

func (s *realSession) RPC(xml string) (string, error) {
	if _, err := io.WriteString(s.w, xml+"\n"+delimiter); err != nil {
		return "", err
	}
	return s.readFramed()
}

func (s *realSession) readFramed() (string, error) {
	var sb strings.Builder
	for {
		line, err := s.r.ReadString('\n')
		sb.WriteString(line)
		if strings.Contains(line, delimiter) {
			return strings.Replace(sb.String(), delimiter, "", 1), nil
		}
		if err != nil {
			return sb.String(), err
		}
	}
}

func (s *realSession) Close() error {
	s.session.Close()
	return s.client.Close()
}

func defaultDial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (session, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		return nil, err
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := sess.RequestSubsystem("netconf"); err != nil {
		sess.Close()
		client.Close()
		return nil, err
	}
	w, err := sess.StdinPipe()
	if err != nil {
		return nil, err
	}
	r, err := sess.StdoutPipe()
	if err != nil {
		return nil, err
	}
	return &realSession{client: client, session: sess, w: w, r: bufio.NewReader(r)}, nil
}

func authMethods(cred model.Credential) ([]ssh.AuthMethod, string, error) {
	switch cred.Kind {
	case model.CredentialUserPassword:
		return []ssh.AuthMethod{ssh.Password(cred.Password)}, cred.Username, nil
	default:
		return nil, "", fmt.Errorf("netconf: unsupported credential kind %q", cred.Kind)
	}
}

func addressWithPort(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return fmt.Sprintf("%s:%d", addr, DefaultPort)
}

func (d *Driver) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	cred, err := d.resolver.Resolve(ctx, device.Credential)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("netconf: resolving credential: %w", err)
	}
	methods, user, err := authMethods(cred)
	if err != nil {
		return drivers.ExecutionResult{}, err
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         time.Duration(nconf.SSHTimeoutSecs()) * time.Second,
	}

	sess, err := d.dial(ctx, addressWithPort(device.MgmtAddr), cfg)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("netconf: dialing %s: %w", device.MgmtAddr, err)
	}
	defer sess.Close()

	if err := sess.Hello(); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("netconf: hello exchange: %w", err)
	}

	switch action.Kind.Type {
	case model.JobKindConfigPush:
		return d.applyConfig(sess, action.Kind.Snippet, action.DryRun)
	case model.JobKindCommandBatch:
		return d.runCommands(sess, action.Kind.Commands)
	default:
		return drivers.ExecutionResult{}, fmt.Errorf("netconf: unsupported job kind %q", action.Kind.Type)
	}
}

func (d *Driver) runCommands(sess session, commands []string) (drivers.ExecutionResult, error) {
	var logs []string
	for _, cmd := range commands {
		reply, err := sess.RPC(rpcGetCommand(cmd))
		if err != nil {
			return drivers.ExecutionResult{Logs: logs}, fmt.Errorf("running %q: %w", cmd, err)
		}
		logs = append(logs, cmd+" => "+strings.TrimSpace(reply))
	}
	return drivers.ExecutionResult{Logs: logs}, nil
}

func (d *Driver) applyConfig(sess session, snippet string, dryRun bool) (drivers.ExecutionResult, error) {
	pre, err := sess.RPC(rpcGetConfig())
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("capturing pre-snapshot: %w", err)
	}

	var logs []string
	if _, err := sess.RPC(rpcLock()); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("lock: %w", err)
	}
	logs = append(logs, "candidate configuration locked")

	if _, err := sess.RPC(rpcEditConfig(snippet)); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("edit-config: %w", err)
	}
	logs = append(logs, "edit-config merge applied")

	if _, err := sess.RPC(rpcValidate()); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("validate: %w", err)
	}
	logs = append(logs, "candidate validated")

	if dryRun {
		if _, err := sess.RPC(rpcUnlock()); err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("unlock after dry-run: %w", err)
		}
		logs = append(logs, "dry run: commit skipped")
		return drivers.ExecutionResult{Logs: logs}, nil
	}

	if _, err := sess.RPC(rpcCommit()); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("commit: %w", err)
	}
	logs = append(logs, "candidate committed")

	if _, err := sess.RPC(rpcUnlock()); err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("unlock: %w", err)
	}
	logs = append(logs, "candidate configuration unlocked")

	post, err := sess.RPC(rpcGetConfig())
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("capturing post-snapshot: %w", err)
	}

	diff, err := diffutil.Unified(pre, post)
	if err != nil {
		return drivers.ExecutionResult{}, fmt.Errorf("rendering diff: %w", err)
	}

	return drivers.ExecutionResult{Logs: logs, PreSnap: &pre, PostSnap: &post, Diff: &diff}, nil
}

// Rollback loads an override candidate built from the prior snapshot and
// commits it, mirroring the source's override-load-and-commit rollback.
func (d *Driver) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	cred, err := d.resolver.Resolve(ctx, device.Credential)
	if err != nil {
		return fmt.Errorf("netconf: resolving credential: %w", err)
	}
	methods, user, err := authMethods(cred)
	if err != nil {
		return err
	}
	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            methods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         time.Duration(nconf.SSHTimeoutSecs()) * time.Second,
	}
	sess, err := d.dial(ctx, addressWithPort(device.MgmtAddr), cfg)
	if err != nil {
		return fmt.Errorf("netconf: dialing %s: %w", device.MgmtAddr, err)
	}
	defer sess.Close()

	if err := sess.Hello(); err != nil {
		return fmt.Errorf("netconf: hello exchange: %w", err)
	}
	if _, err := sess.RPC(rpcLock()); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	if _, err := sess.RPC(rpcEditConfigOverride(snapshot)); err != nil {
		return fmt.Errorf("override load: %w", err)
	}
	if _, err := sess.RPC(rpcCommit()); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if _, err := sess.RPC(rpcUnlock()); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	return nil
}
