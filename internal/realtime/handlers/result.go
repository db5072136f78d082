package handlers

import "github.com/carrier-im/carrier/internal/wire"

// EmitScope describes where an event should be emitted.
type EmitScope int

const (
	emitScopeUnknown EmitScope = iota
	emitScopeRoom
	emitScopeUser
	emitScopeBroadcast
)

// EmitInstruction describes a single outbound emission produced by a handler
// call. The transport adapter executes it through the dispatcher.
type EmitInstruction struct {
	scope    EmitScope
	roomID   string
	userID   string
	event    wire.Event
	skipSelf bool
}

func newRoomEmit(roomID string, event wire.Event) EmitInstruction {
	return EmitInstruction{scope: emitScopeRoom, roomID: roomID, event: event}
}

func newRoomEmitSkippingSelf(roomID string, event wire.Event) EmitInstruction {
	return EmitInstruction{scope: emitScopeRoom, roomID: roomID, event: event, skipSelf: true}
}

func newUserEmit(userID string, event wire.Event) EmitInstruction {
	return EmitInstruction{scope: emitScopeUser, userID: userID, event: event}
}

func newBroadcast(event wire.Event) EmitInstruction {
	return EmitInstruction{scope: emitScopeBroadcast, event: event}
}

// IsRoom reports whether the event targets a conversation room.
func (e EmitInstruction) IsRoom() bool { return e.scope == emitScopeRoom }

// IsUser reports whether the event targets all sessions of one user.
func (e EmitInstruction) IsUser() bool { return e.scope == emitScopeUser }

// IsBroadcast reports whether the event targets all registered sessions.
func (e EmitInstruction) IsBroadcast() bool { return e.scope == emitScopeBroadcast }

// SkipSelf reports whether the transport adapter should skip emitting the
// event back to the calling session.
func (e EmitInstruction) SkipSelf() bool { return e.skipSelf }

// RoomID returns the target room for room-scoped emissions.
func (e EmitInstruction) RoomID() string { return e.roomID }

// UserID returns the target user for user-scoped emissions.
func (e EmitInstruction) UserID() string { return e.userID }

// Event returns the event payload.
func (e EmitInstruction) Event() wire.Event { return e.event }

// EventResult is the output of a handler invocation: room subscriptions the
// calling session should gain, plus zero-or-more outbound emissions.
type EventResult struct {
	joins []string
	emits []EmitInstruction
}

// NewEventResult constructs a handler result.
func NewEventResult(joins []string, emits []EmitInstruction) EventResult {
	return EventResult{joins: joins, emits: emits}
}

// Joins returns the room ids the calling session should join.
func (r EventResult) Joins() []string { return r.joins }

// Emits returns the emissions requested by the handler.
func (r EventResult) Emits() []EmitInstruction { return r.emits }
