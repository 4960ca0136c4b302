package engine

import (
	"context"

	"github.com/rulekit/rulekit/external"
	"github.com/rulekit/rulekit/vm"
)

// ResultHandler receives one Result event's bindings and trace.
type ResultHandler func(vm.Event)

// DebugHandler receives a Debug event and returns the host's textual
// reply; returning "" is equivalent to "continue" (§4.3's resolution
// for an unrecognized debugger command applies the same way here).
type DebugHandler func(vm.Event) string

// cursors tracks the in-flight Cursor for each call_id a query has open,
// so a second ExternalCall event for the same id (the VM's "ask again"
// retry on backtracking into the lookup) resumes the same Cursor instead
// of re-resolving it.
type cursors struct {
	byCallID map[uint64]external.Cursor
}

// Pump drives q to completion against reg, answering every ExternalCall
// event from the registry and every Debug event via onDebug (defaulting
// to "continue" if onDebug is nil), invoking onResult for each Result.
// It returns when the query reaches Done or errors.
func Pump(ctx context.Context, q *vm.Query, reg *external.Registry, onResult ResultHandler, onDebug DebugHandler) error {
	cur := &cursors{byCallID: map[uint64]external.Cursor{}}
	for {
		ev, err := q.NextEvent()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case vm.EventDone:
			return nil
		case vm.EventResult:
			if onResult != nil {
				onResult(ev)
			}
		case vm.EventDebug:
			reply := "continue"
			if onDebug != nil {
				if r := onDebug(ev); r != "" {
					reply = r
				}
			}
			if err := q.DebugCommand(reply); err != nil {
				return err
			}
		case vm.EventExternalCall:
			if err := cur.serve(ctx, q, reg, ev); err != nil {
				return err
			}
		}
	}
}

func (c *cursors) serve(ctx context.Context, q *vm.Query, reg *external.Registry, ev vm.Event) error {
	cursor, ok := c.byCallID[ev.CallID]
	if !ok {
		req := external.Request{CallID: ev.CallID, Instance: ev.Instance, Attribute: ev.Attribute, Args: ev.Args}
		r, found := reg.ResolveRequest(req)
		if !found {
			return q.CallResult(ev.CallID, nil, false)
		}
		newCursor, err := r.Resolve(ctx, req)
		if err != nil {
			return q.CallResult(ev.CallID, nil, false)
		}
		cursor = newCursor
		c.byCallID[ev.CallID] = cursor
	}
	value, hasValue, err := cursor.Next(ctx)
	if err != nil || !hasValue {
		delete(c.byCallID, ev.CallID)
		return q.CallResult(ev.CallID, nil, false)
	}
	return q.CallResult(ev.CallID, value, true)
}
