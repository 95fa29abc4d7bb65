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
	"github.com/lammesen/netrust/model"
	"github.com/lammesen/netrust/security"
)

// MerakiDriver speaks the Meraki Cloud Dashboard REST API with an API-key
// header, grounded on
// original_source/.../drivers/meraki_cloud.rs. Its supports_rollback
// capability bit is advertised true but Rollback is a logged no-op,
// matching the source exactly (see DESIGN.md Open Questions).
type MerakiDriver struct {
	resolver security.Resolver
	client   *retryablehttp.Client
	log      hclog.Logger
}

// NewMeraki builds a meraki-cloud driver.
func NewMeraki(resolver security.Resolver, log hclog.Logger) *MerakiDriver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &MerakiDriver{resolver: resolver, client: newClient(log), log: log.Named("meraki-cloud")}
}

func (d *MerakiDriver) DeviceType() model.DeviceType { return model.DeviceMerakiCloud }
func (d *MerakiDriver) Name() string                 { return "meraki-cloud" }

func (d *MerakiDriver) Capabilities() model.CapabilitySet {
	return model.CapabilitySet{Commit: true, Rollback: true, Diff: true, DryRun: false}
}

type merakiEnvelope struct {
	Errors []string        `json:"errors,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (d *MerakiDriver) call(ctx context.Context, device model.Device, method, path string, body interface{}) (merakiEnvelope, error) {
	cred, err := d.resolver.Resolve(ctx, device.Credential)
	if err != nil {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: resolving credential: %w", err)
	}
	if cred.Kind != model.CredentialBearerToken {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: unsupported credential kind %q", cred.Kind)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return merakiEnvelope{}, fmt.Errorf("meraki-cloud: marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	url := fmt.Sprintf("https://%s%s", device.MgmtAddr, path)
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: building request: %w", err)
	}
	req.Header.Set("X-Cisco-Meraki-API-Key", cred.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: non-2xx status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env merakiEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return merakiEnvelope{}, fmt.Errorf("meraki-cloud: malformed envelope: %w", err)
		}
	}
	if len(env.Errors) > 0 {
		return merakiEnvelope{}, fmt.Errorf("meraki-cloud: device reported failure: %s", strings.Join(env.Errors, "; "))
	}
	return env, nil
}

func (d *MerakiDriver) Execute(ctx context.Context, device model.Device, action drivers.JobAction) (drivers.ExecutionResult, error) {
	switch action.Kind.Type {
	case model.JobKindCommandBatch:
		var logs []string
		for _, cmd := range action.Kind.Commands {
			env, err := d.call(ctx, device, http.MethodGet, "/devices/"+device.ID+"/"+cmd, nil)
			if err != nil {
				return drivers.ExecutionResult{Logs: logs}, err
			}
			logs = append(logs, cmd+" => "+string(env.Data))
		}
		return drivers.ExecutionResult{Logs: logs}, nil

	case model.JobKindConfigPush:
		payload := map[string]string{"snippet": action.Kind.Snippet}
		if _, err := d.call(ctx, device, http.MethodPut, "/devices/"+device.ID+"/managementInterfaceSettings", payload); err != nil {
			return drivers.ExecutionResult{}, fmt.Errorf("applying config-push: %w", err)
		}
		return drivers.ExecutionResult{Logs: []string{"config-push applied via dashboard API"}}, nil

	default:
		return drivers.ExecutionResult{}, fmt.Errorf("meraki-cloud: unsupported job kind %q", action.Kind.Type)
	}
}

// Rollback is advertised but not actually implemented upstream; log and
// no-op rather than pretend to restore state (matches original_source).
func (d *MerakiDriver) Rollback(ctx context.Context, device model.Device, snapshot string) error {
	d.log.Warn("rollback requested but meraki-cloud does not implement rollback", "device", device.ID)
	return nil
}
