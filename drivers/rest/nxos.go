package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/lammesen/netrust/drivers"
	"github.com/lammesen/netrust/drivers/internal/diffutil"
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/security"
)

// NXOSDriver speaks the NX-API JSON-RPC-style envelope over HTTP basic
// auth, grounded on
// original_source/.../drivers/cisco_nxos_api.rs.
type NXOSDriver struct {
	resolver security.Resolver
	client   *retryablehttp.Client
	log      hclog.Logger
}

// NewNXOS builds a cisco-nxos-api driver.
func NewNXOS(resolver security.Resolver, log hclog.Logger) *NXOSDriver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &NXOSDriver{resolver: resolver, client: newClient(log), log: log.Named("nxos-api")}
}

func (d *NXOSDriver) DeviceType() model.DeviceType { return model.DeviceCiscoNXOSAPI }
func (d *NXOSDriver) Name() string                 { return "cisco-nxos-api" }

func (d *NXOSDriver) Capabilities() model.CapabilitySet {
	return model.CapabilitySet{Commit: true, Rollback: false, Diff: true, DryRun: false}
}

type nxosRequest struct {
	Commands []string `json:"commands"`
}

type nxosEnvelope struct {
	Result  []string `json:"result"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

func (d *NXOSDriver) post(ctx context.Context, device model.Device, commands []string) (nxosEnvelope, error) {
	cred, err := d.resolver.Resolve(ctx, device.Credential)
	if err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: resolving credential: %w", err)
	}
	if cred.Kind != model.CredentialUserPassword {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: unsupported credential kind %q", cred.Kind)
	}

	body, err := json.Marshal(nxosRequest{Commands: commands})
	if err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: marshaling request: %w", err)
	}

	url := fmt.Sprintf("https://%s/ins", device.MgmtAddr)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: building request: %w", err)
	}
	req.SetBasicAuth(cred.Username, cred.Password)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: non-2xx status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env nxosEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: malformed envelope: %w", err)
	}
	if !env.Success {
		return nxosEnvelope{}, fmt.Errorf("nxos-api: device reported failure: %s", env.Error)
	}
	return env, nil
}

func (d *NXOSDriver) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	switch action.Kind.Type {
	case model.JobKindCommandBatch:
		env, err := d.post(ctx, device, action.Kind.Commands)
		if err != nil {
			return drivers.ExecutionResult{}, err
		}
		return drivers.ExecutionResult{Logs: env.Result}, nil

	case model.JobKindConfigPush:
		preEnv, err := d.post(ctx, device, []string{"show running-config"})
		if err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("capturing pre-snapshot: %w", err)
		}
		pre := strings.Join(preEnv.Result, "\n")

		cmds := append([]string{"configure terminal"}, strings.Split(action.Kind.Snippet, "\n")...)
		cmds = append(cmds, "end", "copy running-config startup-config")
		if _, err := d.post(ctx, device, cmds); err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("applying config-push: %w", err)
		}

		postEnv, err := d.post(ctx, device, []string{"show running-config"})
		if err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("capturing post-snapshot: %w", err)
		}
		post := strings.Join(postEnv.Result, "\n")

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

	default:
		return drivers.ExecutionResult{}, fmt.Errorf("nxos-api: unsupported job kind %q", action.Kind.Type)
	}
}

func (d *NXOSDriver) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	return fmt.Errorf("nxos-api: rollback not supported")
}
