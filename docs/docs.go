// Package docs parses the YAML job and inventory documents described in
// SPEC_FULL.md §6, decoupling the wire format from the model.Job /
// model.Device domain structs the way original_source/apps/nauto_cli/src/
// job_runner.rs's JobFile/InventoryFile types do.
package docs

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lammesen/netrust/model"
)

// JobFile is the on-disk YAML shape of a job document.
type JobFile struct {
	Name        string                 `yaml:"name"`
	ID          *string                `yaml:"id"`
	Kind        jobKindFile            `yaml:"kind"`
	Targets     targetsFile            `yaml:"targets"`
	Parameters  map[string]interface{} `yaml:"parameters"`
	MaxParallel *int                   `yaml:"max_parallel"`
	DryRun      bool                   `yaml:"dry_run"`
	ApprovalID  *string                `yaml:"approval_id"`
}

type jobKindFile struct {
	Type     string                 `yaml:"type"`
	Commands []string               `yaml:"commands"`
	Snippet  string                 `yaml:"snippet"`
	Rules    []model.ComplianceRule `yaml:"rules"`
}

type targetsFile struct {
	Mode  string   `yaml:"mode"`
	IDs   []string `yaml:"ids"`
	AllOf []string `yaml:"all_of"`
}

// LoadJob reads and parses a job YAML document into a model.Job, assigning
// a fresh id when the document omits one.
func LoadJob(path string) (model.Job, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("docs: reading job document %s: %w", path, err)
	}
	var jf JobFile
	if err := yaml.Unmarshal(raw, &jf); err != nil {
		return model.Job{}, fmt.Errorf("docs: parsing job document %s: %w", path, err)
	}
	return jf.toModel()
}

func (jf JobFile) toModel() (model.Job, error) {
	id := uuid.New()
	if jf.ID != nil && *jf.ID != "" {
		parsed, err := uuid.Parse(*jf.ID)
		if err != nil {
			return model.Job{}, fmt.Errorf("docs: invalid job id %q: %w", *jf.ID, err)
		}
		id = parsed
	}

	var approvalID *uuid.UUID
	if jf.ApprovalID != nil && *jf.ApprovalID != "" {
		parsed, err := uuid.Parse(*jf.ApprovalID)
		if err != nil {
			return model.Job{}, fmt.Errorf("docs: invalid approval id %q: %w", *jf.ApprovalID, err)
		}
		approvalID = &parsed
	}

	kindType, err := parseJobKindType(jf.Kind.Type)
	if err != nil {
		return model.Job{}, err
	}
	targetMode, err := parseTargetMode(jf.Targets.Mode)
	if err != nil {
		return model.Job{}, err
	}

	return model.Job{
		ID:   id,
		Name: jf.Name,
		Kind: model.JobKind{
			Type:     kindType,
			Commands: jf.Kind.Commands,
			Snippet:  jf.Kind.Snippet,
			Rules:    jf.Kind.Rules,
		},
		Targets: model.TargetSelector{
			Mode:  targetMode,
			IDs:   jf.Targets.IDs,
			AllOf: jf.Targets.AllOf,
		},
		Parameters:  jf.Parameters,
		MaxParallel: jf.MaxParallel,
		DryRun:      jf.DryRun,
		ApprovalID:  approvalID,
	}, nil
}

func parseJobKindType(s string) (model.JobKindType, error) {
	switch s {
	case "command_batch":
		return model.JobKindCommandBatch, nil
	case "config_push":
		return model.JobKindConfigPush, nil
	case "compliance_check":
		return model.JobKindComplianceCheck, nil
	default:
		return "", fmt.Errorf("docs: unknown job kind %q", s)
	}
}

func parseTargetMode(s string) (model.TargetMode, error) {
	switch s {
	case "all":
		return model.TargetAll, nil
	case "by_ids":
		return model.TargetByIDs, nil
	case "by_tags":
		return model.TargetByTags, nil
	default:
		return "", fmt.Errorf("docs: unknown target mode %q", s)
	}
}

// InventoryFile is the on-disk YAML shape of an inventory document.
type InventoryFile struct {
	Devices []deviceFile `yaml:"devices"`
}

type deviceFile struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	DeviceType   string              `yaml:"device_type"`
	MgmtAddress  string              `yaml:"mgmt_address"`
	Credential   credentialRefFile   `yaml:"credential"`
	Tags         []string            `yaml:"tags"`
	Capabilities model.CapabilitySet `yaml:"capabilities"`
}

type credentialRefFile struct {
	Name string `yaml:"name"`
}

// LoadInventory reads and parses an inventory YAML document into a device
// slice, normalizing device_type from snake_case or PascalCase forms.
func LoadInventory(path string) ([]model.Device, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("docs: reading inventory document %s: %w", path, err)
	}
	var inv InventoryFile
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("docs: parsing inventory document %s: %w", path, err)
	}

	devices := make([]model.Device, 0, len(inv.Devices))
	for _, df := range inv.Devices {
		typ, err := normalizeDeviceType(df.DeviceType)
		if err != nil {
			return nil, err
		}
		devices = append(devices, model.Device{
			ID:         df.ID,
			Name:       df.Name,
			Type:       typ,
			MgmtAddr:   df.MgmtAddress,
			Credential: model.CredentialRef{Name: df.Credential.Name},
			Tags:       df.Tags,
			Caps:       df.Capabilities,
		})
	}
	return devices, nil
}

var deviceTypeAliases = map[string]model.DeviceType{
	"generic-ssh":     model.DeviceGenericSSH,
	"generic_ssh":     model.DeviceGenericSSH,
	"GenericSsh":      model.DeviceGenericSSH,
	"cisco-ios-like":  model.DeviceCiscoIOSLike,
	"cisco_ios_like":  model.DeviceCiscoIOSLike,
	"CiscoIosLike":    model.DeviceCiscoIOSLike,
	"junos-netconf":   model.DeviceJunosNetconf,
	"junos_netconf":   model.DeviceJunosNetconf,
	"JunosNetconf":    model.DeviceJunosNetconf,
	"arista-eos":      model.DeviceAristaEOS,
	"arista_eos":      model.DeviceAristaEOS,
	"AristaEos":       model.DeviceAristaEOS,
	"cisco-nxos-api":  model.DeviceCiscoNXOSAPI,
	"cisco_nxos_api":  model.DeviceCiscoNXOSAPI,
	"CiscoNxosApi":    model.DeviceCiscoNXOSAPI,
	"meraki-cloud":    model.DeviceMerakiCloud,
	"meraki_cloud":    model.DeviceMerakiCloud,
	"MerakiCloud":     model.DeviceMerakiCloud,
}

// normalizeDeviceType accepts the closed vocabulary's snake_case/kebab or
// PascalCase spellings; anything else is assumed plugin-declared and
// passed through verbatim (spec §3: "plus plugin-declared types").
func normalizeDeviceType(s string) (model.DeviceType, error) {
	if t, ok := deviceTypeAliases[s]; ok {
		return t, nil
	}
	if s == "" {
		return "", fmt.Errorf("docs: device_type must not be empty")
	}
	return model.DeviceType(s), nil
}
