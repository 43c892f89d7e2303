package pubsub

import (
	"github.com/google/uuid"
)

// listenerFunc is the type-erased form every Listener dispatches through.
// It is built once, at subscribe time, by closing over the caller's typed
// owner and callback (see Subscribe/SubscribeFunc in topic.go) — the same
// role pypubsub's weakmethod.py plays by wrapping a bound method in a
// weakref and re-binding it lazily on each call.
type listenerFunc func(Data) (retVal any, err error)

// Listener is one subscription: an identity, a dispatch closure, the
// listener's declared call signature, and any curried arguments supplied
// at subscribe time. Ported from pypubsub's listener.py Listener class.
type Listener struct {
	id       string
	ref      ownerRef
	call     listenerFunc
	argsInfo CallArgsInfo
	curried  Data
}

// newListener is the common constructor used by the generic Subscribe and
// the ownerless SubscribeFunc (topic.go); it is not exported because the
// ownerRef/call wiring it requires is an implementation detail of those
// two entry points.
func newListener(ref ownerRef, call listenerFunc, argsInfo CallArgsInfo, curried Data) *Listener {
	return &Listener{
		id:       uuid.NewString(),
		ref:      ref,
		call:     call,
		argsInfo: argsInfo,
		curried:  curried,
	}
}

// ID uniquely identifies this subscription for the lifetime of the
// process. pypubsub derives a listener's identity from id(boundMethod);
// Go's weak.Pointer gives no stable integer identity for a dead referent,
// so a random UUID (minted once, at Subscribe time) takes its place.
func (l *Listener) ID() string { return l.id }

// IsDead reports whether this listener's owner has been garbage
// collected (always false for listeners registered via SubscribeFunc,
// which have no owner to die).
func (l *Listener) IsDead() bool { return l.ref.dead() }

// SetCurriedArgs replaces the arguments that are merged into every
// message this listener receives, in addition to whatever SendMessage
// supplies. Ported from pypubsub's Listener.setCurriedArgs: the key set
// of args must be identical to the listener's existing curried keys (the
// first call, when no curried args have been set yet, establishes that
// key set); a changed key set is a *ListenerMismatchError rather than a
// silent overwrite.
func (l *Listener) SetCurriedArgs(args Data) error {
	if l.curried != nil && !sameKeySet(l.curried, args) {
		return &ListenerMismatchError{
			ListenerID: l.id,
			Reason:     "curried arguments must keep the same key set across calls",
			Names:      keysOf(args),
		}
	}
	l.curried = args
	return nil
}

func keysOf(data Data) []string {
	out := make([]string, 0, len(data))
	for k := range data {
		out = append(out, k)
	}
	return out
}

func sameKeySet(a, b Data) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// wants reports whether this listener names the given argument explicitly:
// as one of its declared parameters, as its auto-topic parameter, or as
// one of its curried arguments.
func (l *Listener) wants(name string) bool {
	if contains(l.argsInfo.AllParams, name) {
		return true
	}
	if l.argsInfo.AutoTopicArgName == name {
		return true
	}
	_, curried := l.curried[name]
	return curried
}

// invoke merges this listener's curried args into msgData (or, for a
// listener that declared AcceptsAllKwargs, into allData — the full
// sender payload rather than this ancestor's MDS-filtered subset, per
// listener.py's `kwargs = allKwargs or kwargs`), adds the auto-topic
// value if declared, and calls the listener. A returned
// deadListenerInvokedError means dispatch raced the owner's GC-triggered
// detachment; see Topic.deliver.
func (l *Listener) invoke(topic *Topic, msgData Data, allData Data) error {
	base := msgData
	if l.argsInfo.AcceptsAllKwargs {
		base = allData
	}
	call := Data{}
	for k, v := range base {
		call[k] = v
	}
	for k, v := range l.curried {
		call[k] = v
	}
	if l.argsInfo.AutoTopicArgName != "" {
		call[l.argsInfo.AutoTopicArgName] = topic
	}
	if !l.argsInfo.AcceptsAllKwargs {
		filtered := Data{}
		for _, name := range l.argsInfo.AllParams {
			if v, ok := call[name]; ok {
				filtered[name] = v
			}
		}
		if l.argsInfo.AutoTopicArgName != "" {
			filtered[l.argsInfo.AutoTopicArgName] = call[l.argsInfo.AutoTopicArgName]
		}
		call = filtered
	}
	_, err := l.call(call)
	return err
}

// validateListener checks a listener's declared ArgSpec against a topic's
// MDS before it is allowed to subscribe, ported from pypubsub's
// validatelistener.py. A listener may:
//   - require no more than the topic declares required or optional,
//   - require a subset of what the topic can supply,
//   - and if it declares an auto-topic parameter, that name must not also
//     appear as one of the topic's message-data parameter names.
func validateListener(id string, argsInfo CallArgsInfo, mds *ArgsInfo) error {
	if mds == nil || !mds.IsComplete() {
		return nil
	}
	all := mds.AllArgs()

	if argsInfo.AutoTopicArgName != "" && contains(all, argsInfo.AutoTopicArgName) {
		return &ListenerMismatchError{
			ListenerID: id,
			Reason:     "auto-topic parameter name collides with a message data parameter",
			Names:      []string{argsInfo.AutoTopicArgName},
		}
	}

	if !argsInfo.AcceptsAllKwargs {
		var unknown []string
		for _, name := range argsInfo.AllParams {
			if !contains(all, name) {
				unknown = append(unknown, name)
			}
		}
		if len(unknown) > 0 {
			return &ListenerMismatchError{
				ListenerID: id,
				Reason:     "listener requires parameters the topic's message data spec does not declare",
				Names:      unknown,
			}
		}
	}

	var missing []string
	for _, name := range mds.RequiredArgs() {
		if !contains(argsInfo.AllParams, name) && !argsInfo.AcceptsAllKwargs {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ListenerMismatchError{
			ListenerID: id,
			Reason:     "listener does not declare all of the topic's required message data parameters",
			Names:      missing,
		}
	}
	return nil
}
