package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/fleetcare/internal/domain"
)

// Compile-time checks against the domain ports.
var (
	_ domain.RequestTransitionValidator     = (*RequestValidator)(nil)
	_ domain.MaintenanceTransitionValidator = (*MaintenanceValidator)(nil)
)

// buildEvents converts a transition table into looplab/fsm EventDesc format,
// consolidating transitions with the same event+destination into a single
// EventDesc with multiple source states (e.g., EventCancelWork from
// "PROGRAMADO" and "EN_PROCESO" both go to "CANCELADO").
func buildEvents(events, sources, destinations []string) []loopfsm.EventDesc {
	type key struct {
		event string
		dst   string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for i := range events {
		k := key{event: events[i], dst: destinations[i]}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], sources[i])
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.event,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

var requestEvents = func() []loopfsm.EventDesc {
	evs := make([]string, 0, len(domain.RequestTransitions))
	srcs := make([]string, 0, len(domain.RequestTransitions))
	dsts := make([]string, 0, len(domain.RequestTransitions))
	for _, t := range domain.RequestTransitions {
		evs = append(evs, string(t.Event))
		srcs = append(srcs, string(t.Src))
		dsts = append(dsts, string(t.Dst))
	}
	return buildEvents(evs, srcs, dsts)
}()

var maintenanceEvents = func() []loopfsm.EventDesc {
	evs := make([]string, 0, len(domain.MaintenanceTransitions))
	srcs := make([]string, 0, len(domain.MaintenanceTransitions))
	dsts := make([]string, 0, len(domain.MaintenanceTransitions))
	for _, t := range domain.MaintenanceTransitions {
		evs = append(evs, string(t.Event))
		srcs = append(srcs, string(t.Src))
		dsts = append(dsts, string(t.Dst))
	}
	return buildEvents(evs, srcs, dsts)
}()

// apply runs one event against a short-lived FSM seeded with the current
// state. looplab/fsm is stateful (it tracks the current state internally),
// so a fresh machine per call keeps the validators safe for concurrent use.
func apply(ctx context.Context, descs []loopfsm.EventDesc, current, event string) (string, error) {
	machine := loopfsm.NewFSM(current, descs, nil)

	if err := machine.Event(ctx, event); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return machine.Current(), nil
}

// RequestValidator validates service-request lifecycle events using
// looplab/fsm.
type RequestValidator struct{}

// NewRequestValidator creates an FSM-backed request transition validator.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{}
}

// Apply checks if the given event is valid from the current status and
// returns the destination status. Returns a domain.TransitionError if the
// transition is not allowed.
func (v *RequestValidator) Apply(ctx context.Context, current domain.RequestStatus, event domain.RequestEvent) (domain.RequestStatus, error) {
	dst, err := apply(ctx, requestEvents, string(current), string(event))
	if err != nil {
		return "", err
	}
	return domain.RequestStatus(dst), nil
}

// MaintenanceValidator validates maintenance lifecycle events using
// looplab/fsm.
type MaintenanceValidator struct{}

// NewMaintenanceValidator creates an FSM-backed maintenance transition
// validator.
func NewMaintenanceValidator() *MaintenanceValidator {
	return &MaintenanceValidator{}
}

// Apply checks if the given event is valid from the current status and
// returns the destination status. Returns a domain.TransitionError if the
// transition is not allowed.
func (v *MaintenanceValidator) Apply(ctx context.Context, current domain.MaintenanceStatus, event domain.MaintenanceEvent) (domain.MaintenanceStatus, error) {
	dst, err := apply(ctx, maintenanceEvents, string(current), string(event))
	if err != nil {
		return "", err
	}
	return domain.MaintenanceStatus(dst), nil
}
