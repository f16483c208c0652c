package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

// Transition describes a workflow event moving a record from any of Src to Dst.
type Transition struct {
	Event string
	Src   []string
	Dst   string
}

// Workflow is a status life cycle (eg. payment states) backed by a state machine.
// Records only store their current status; a machine is built per transition.
type Workflow struct {
	events fsm.Events
	states []string
}

func NewWorkflow(transitions ...Transition) *Workflow {
	wf := &Workflow{events: make(fsm.Events, 0, len(transitions))}
	seen := make(map[string]bool)
	for _, t := range transitions {
		wf.events = append(wf.events, fsm.EventDesc{Name: t.Event, Src: t.Src, Dst: t.Dst})
		states := make([]string, 0, len(t.Src)+1)
		states = append(states, t.Src...)
		for _, s := range append(states, t.Dst) {
			if !seen[s] {
				seen[s] = true
				wf.states = append(wf.states, s)
			}
		}
	}
	return wf
}

// Apply fires event from the current status and returns the resulting status.
// Events that are not allowed from current return a ValidationError on field "evento".
func (wf *Workflow) Apply(ctx context.Context, current, event string) (string, error) {
	machine := fsm.NewFSM(current, wf.events, fsm.Callbacks{})
	if !machine.Can(event) {
		return current, NewFieldError("evento", fmt.Sprintf("no se puede %q desde el estado %q", event, current))
	}
	if err := machine.Event(ctx, event); err != nil {
		return current, errors.Wrapf(err, "applying %q", event)
	}
	return machine.Current(), nil
}

// Can reports whether event may be fired from current.
func (wf *Workflow) Can(current, event string) bool {
	return fsm.NewFSM(current, wf.events, fsm.Callbacks{}).Can(event)
}

// AvailableEvents lists the events allowed from current, sorted.
func (wf *Workflow) AvailableEvents(current string) []string {
	events := fsm.NewFSM(current, wf.events, fsm.Callbacks{}).AvailableTransitions()
	sort.Strings(events)
	return events
}

// States returns every status known to the workflow.
func (wf *Workflow) States() []string {
	return append([]string(nil), wf.states...)
}

// HasState reports whether s is a status of the workflow.
func (wf *Workflow) HasState(s string) bool {
	for _, st := range wf.states {
		if st == s {
			return true
		}
	}
	return false
}
