package pubsub

import (
	"runtime"
	"unsafe"
	"weak"
)

// ownerKey is a non-retaining, comparable stand-in for an owner's identity.
// It is the numeric value of the owner's address, never converted back to
// a pointer; storing *O itself as a map key would keep it permanently
// reachable through the map, defeating the whole point of tracking it
// weakly. Ported from pypubsub's use of id(object) as the weak-listener
// registry key in weakmethod.py.
type ownerKey uintptr

func keyOf[O any](owner *O) ownerKey {
	return ownerKey(uintptr(unsafe.Pointer(owner)))
}

// ownerRef is the minimal interface Topic needs from a tracked listener
// owner, mirroring what pypubsub's weakmethod.py gets out of a
// weakref.ref/WeakMethod: "is the referent still alive".
type ownerRef interface {
	dead() bool
}

// weakOwnerRef tracks one listener's owner without keeping it alive,
// analogous to pypubsub's BoundMethodWeakref/WeakMethod. When the owner is
// garbage collected, onDeath fires exactly once (runtime.AddCleanup's
// contract), giving the topic a chance to detach the now-dangling listener
// — pypubsub's deadListener notification.
type weakOwnerRef[O any] struct {
	ptr weak.Pointer[O]
}

func newWeakOwnerRef[O any](owner *O, onDeath func()) *weakOwnerRef[O] {
	ref := &weakOwnerRef[O]{ptr: weak.Make(owner)}
	if onDeath != nil {
		runtime.AddCleanup(owner, func(_ struct{}) { onDeath() }, struct{}{})
	}
	return ref
}

func (r *weakOwnerRef[O]) dead() bool {
	return r.ptr.Value() == nil
}

// value returns the owner if it is still alive, or nil otherwise. Callers
// must not retain the returned pointer beyond the current dispatch — doing
// so would extend the owner's lifetime for as long as the retained copy
// exists.
func (r *weakOwnerRef[O]) value() *O {
	return r.ptr.Value()
}

// foreverRef is the ownerRef used for listeners subscribed without an
// owner (SubscribeFunc): there is nothing to go weak over, so it is never
// considered dead. Mirrors pypubsub's handling of plain functions, which
// callables.py never wraps in a weakref at all.
type foreverRef struct{}

func (foreverRef) dead() bool { return false }
