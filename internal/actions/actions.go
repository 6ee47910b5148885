// Package actions implements the fixed, enumerated set of mutating operations the
// TUI is allowed to issue against EC2 instances.
package actions

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/errs"
)

// Action is one of the fixed enumeration of mutating operations the controller may
// issue. There is deliberately no way to construct an action outside this set.
type Action int

const (
	Ec2Start Action = iota
	Ec2Stop
	Ec2Terminate
)

// DescriptorKey is the catalog resource key every action requires a selected row
// from. All three actions currently operate on ec2.
func (a Action) DescriptorKey() string {
	return "ec2"
}

// WireAction is the Query-protocol Action= value sent to EC2.
func (a Action) WireAction() string {
	switch a {
	case Ec2Start:
		return "StartInstances"
	case Ec2Stop:
		return "StopInstances"
	case Ec2Terminate:
		return "TerminateInstances"
	default:
		return ""
	}
}

// ConfirmPrompt is the text shown in the Confirm view before the action is issued.
func (a Action) ConfirmPrompt(instanceID string) string {
	switch a {
	case Ec2Start:
		return fmt.Sprintf("Start instance %s?", instanceID)
	case Ec2Stop:
		return fmt.Sprintf("Stop instance %s?", instanceID)
	case Ec2Terminate:
		return fmt.Sprintf("Terminate instance %s? This cannot be undone.", instanceID)
	default:
		return ""
	}
}

func (a Action) String() string {
	switch a {
	case Ec2Start:
		return "Ec2Start"
	case Ec2Stop:
		return "Ec2Stop"
	case Ec2Terminate:
		return "Ec2Terminate"
	default:
		return "Unknown"
	}
}

// queryInvoker is the slice of sigv4.Client this package needs, narrowed to an
// interface so tests can substitute a fake and assert read-only mode never calls
// through to the network.
type queryInvoker interface {
	QueryRequest(ctx context.Context, svc catalog.ServiceDefinition, isGlobal bool, action string, form url.Values, idempotent bool) (any, error)
}

// Executor issues actions, refusing all of them when readonly is set.
type Executor struct {
	client   queryInvoker
	readonly bool
}

// NewExecutor builds an Executor bound to a signed client and the session's
// read-only flag.
func NewExecutor(client queryInvoker, readonly bool) *Executor {
	return &Executor{client: client, readonly: readonly}
}

// Execute runs action against instanceID. In read-only mode it returns an
// InputError and never touches client.
func (e *Executor) Execute(ctx context.Context, action Action, instanceID string) error {
	if e.readonly {
		return errs.NewInputError("refusing %s on %s: running in read-only mode", action, instanceID)
	}

	svc, ok := catalog.Services["ec2"]
	if !ok {
		return fmt.Errorf("ec2 service definition missing from catalog")
	}

	form := url.Values{}
	form.Set("InstanceId.1", instanceID)

	// Mutating EC2 actions are not idempotent from the caller's perspective (a retried
	// StartInstances after a dropped response could double up against a half-applied
	// state change), so a bare transport error is not retried here.
	_, err := e.client.QueryRequest(ctx, svc, svc.IsGlobal, action.WireAction(), form, false)
	return err
}
