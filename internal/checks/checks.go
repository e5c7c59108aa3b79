// Package checks defines the catalog of security properties the engine
// evaluates and, where supported, remediates.
package checks

import (
	"context"
	"fmt"
)

// Status of a single check after evaluation
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Rank orders statuses for worst-of aggregation (FAIL > WARN > PASS)
func (s Status) Rank() int {
	switch s {
	case StatusFail:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two statuses
func Worse(a, b Status) Status {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Outcome of a remediation attempt
type Outcome string

const (
	OutcomeNotAttempted Outcome = "not_attempted"
	OutcomeApplied      Outcome = "applied"
	OutcomeDeclined     Outcome = "declined"
	OutcomeFailed       Outcome = "failed"
)

// Category groups related checks in the report
type Category string

const (
	CategoryRemoteAccess    Category = "remote_access"
	CategoryPerimeter       Category = "perimeter"
	CategoryPatching        Category = "patching"
	CategoryAccountPolicy   Category = "account_policy"
	CategoryFilePermissions Category = "file_permissions"
	CategoryKernel          Category = "kernel"
	CategoryServices        Category = "services"
	CategoryAuditSubsystem  Category = "audit_subsystem"
)

// Finding is the outcome of one probe
type Finding struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Pass builds a passing finding
func Pass(format string, args ...interface{}) *Finding {
	return &Finding{Status: StatusPass, Message: fmt.Sprintf(format, args...)}
}

// Warn builds a warning finding
func Warn(format string, args ...interface{}) *Finding {
	return &Finding{Status: StatusWarn, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failing finding
func Fail(format string, args ...interface{}) *Finding {
	return &Finding{Status: StatusFail, Message: fmt.Sprintf(format, args...)}
}

// Check is one independently evaluable security property.
// Evaluate must never write to system state.
type Check interface {
	ID() string
	Title() string
	Category() Category
	Mutates() bool
	RequiresConfirmation() bool
	Evaluate(ctx context.Context, env *Env) (*Finding, error)
}

// Remediable is the optional capability of a Check to correct its finding.
// Targets lists files the remediation may write so the caller can back
// them up before Remediate runs.
type Remediable interface {
	Remediate(ctx context.Context, env *Env) error
	Targets(env *Env) []string
}

// Result pairs a check's identity with its finding and remediation outcome
type Result struct {
	CheckID  string   `json:"check_id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Message  string   `json:"message"`
	Outcome  Outcome  `json:"outcome"`
}

// Registry holds the ordered catalog of checks. Enumeration order is the
// registration order and is part of the engine's contract.
type Registry struct {
	order []Check
	byID  map[string]Check
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Check),
	}
}

// Register appends a check to the catalog. Registering a duplicate id
// replaces nothing and returns an error.
func (r *Registry) Register(c Check) error {
	if _, exists := r.byID[c.ID()]; exists {
		return fmt.Errorf("check %q already registered", c.ID())
	}
	r.byID[c.ID()] = c
	r.order = append(r.order, c)
	return nil
}

// Get retrieves a check by id
func (r *Registry) Get(id string) (Check, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns the checks in registration order
func (r *Registry) All() []Check {
	out := make([]Check, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered checks
func (r *Registry) Len() int {
	return len(r.order)
}
