package model

import "github.com/google/uuid"

// JobKindType discriminates the JobKind union.
type JobKindType string

const (
	JobKindCommandBatch     JobKindType = "command_batch"
	JobKindConfigPush       JobKindType = "config_push"
	JobKindComplianceCheck  JobKindType = "compliance_check"
)

// ComplianceRule is one predicate of the tiny DSL described in SPEC_FULL.md
// §4.E / §9: contains:<literal>, not:<literal>, or a bare literal (treated
// as contains:).
type ComplianceRule struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Expression  string `json:"expression" yaml:"expression"`
}

// JobKind is a tagged union: exactly one of Commands, Snippet, or Rules is
// meaningful, selected by Type.
type JobKind struct {
	Type     JobKindType      `json:"type" yaml:"type"`
	Commands []string         `json:"commands,omitempty" yaml:"commands,omitempty"`
	Snippet  string           `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Rules    []ComplianceRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// TargetMode discriminates the TargetSelector union.
type TargetMode string

const (
	TargetAll     TargetMode = "all"
	TargetByIDs   TargetMode = "by_ids"
	TargetByTags  TargetMode = "by_tags"
)

// TargetSelector picks a device subset out of an inventory snapshot.
type TargetSelector struct {
	Mode  TargetMode `json:"mode" yaml:"mode"`
	IDs   []string   `json:"ids,omitempty" yaml:"ids,omitempty"`
	AllOf []string   `json:"all_of,omitempty" yaml:"all_of,omitempty"`
}

// Job is never mutated after being handed to the engine. Construct a new
// value (see copystructure use in package queue) instead of editing one
// in place.
type Job struct {
	ID          uuid.UUID              `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Kind        JobKind                `json:"kind" yaml:"kind"`
	Targets     TargetSelector         `json:"targets" yaml:"targets"`
	Parameters  map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	MaxParallel *int                   `json:"max_parallel,omitempty" yaml:"max_parallel,omitempty"`
	DryRun      bool                   `json:"dry_run" yaml:"dry_run"`
	ApprovalID  *uuid.UUID             `json:"approval_id,omitempty" yaml:"approval_id,omitempty"`
}

// String redacts config-push snippets, which are secret-equivalent per spec.
func (j Job) String() string {
	k := j.Kind
	if k.Type == JobKindConfigPush {
		k.Snippet = "<redacted>"
	}
	return "Job{id=" + j.ID.String() + ", name=" + j.Name + ", kind=" + string(k.Type) + "}"
}

// Param fetches a raw parameter, reporting whether it was present.
func (j Job) Param(key string) (interface{}, bool) {
	if j.Parameters == nil {
		return nil, false
	}
	v, ok := j.Parameters[key]
	return v, ok
}
