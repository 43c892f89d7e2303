package pubsub

import (
	"sync"

	logging "github.com/ipfs/go-log"
)

var log = logging.Logger("pubsub")

// Data is the message payload passed to SendMessage and, filtered per
// ancestor, to every listener it reaches. Ported from pypubsub's use of
// **kwargs as a topic message's argument bag.
type Data map[string]any

// ListenerExcHandler lets a caller intercept errors raised by a listener
// during dispatch instead of having them propagate out of SendMessage and
// abort delivery to the remaining listeners/ancestors. Ported from
// pypubsub's IListenerExcHandler.
type ListenerExcHandler interface {
	HandleListenerError(listenerID string, topicName Name, origErr error) error
}

// ListenerExcHandlerFunc adapts a plain function to ListenerExcHandler.
type ListenerExcHandlerFunc func(listenerID string, topicName Name, origErr error) error

func (f ListenerExcHandlerFunc) HandleListenerError(listenerID string, topicName Name, origErr error) error {
	return f(listenerID, topicName, origErr)
}

// Topic is one node of the hierarchical publish/subscribe tree. Topics are
// created and owned by a TopicManager; callers obtain a *Topic via
// TopicManager.GetTopic/GetOrCreateTopic rather than constructing one
// directly, mirroring pypubsub's topicobj.py / topicmgr.py split.
type Topic struct {
	mu sync.RWMutex

	name     Name
	parent   *Topic
	children map[string]*Topic

	mgr *TopicManager

	listeners    []*Listener
	listenersKey map[ownerKey]*Listener

	mds *ArgsInfo
}

// newTopic constructs a Topic and its (initially incomplete) ArgsInfo
// node. The ArgsInfo node is created eagerly, whether or not a message
// data spec is given yet, so that a descendant declared before its
// ancestor still links into the same ArgsInfo tree and sees the
// ancestor's spec retroactively once it is declared (see ArgsInfo.finalize).
func newTopic(name Name, parent *Topic, mgr *TopicManager) *Topic {
	t := &Topic{
		name:         name,
		parent:       parent,
		children:     make(map[string]*Topic),
		mgr:          mgr,
		listenersKey: make(map[ownerKey]*Listener),
	}
	var parentMDS *ArgsInfo
	if parent != nil {
		parentMDS = parent.mds
	}
	mds, _ := NewArgsInfo(name, nil, parentMDS)
	t.mds = mds
	return t
}

// Name returns this topic's full dotted-tuple name.
func (t *Topic) Name() Name { return t.name }

// Parent returns the parent topic, or nil for the tree root.
func (t *Topic) Parent() *Topic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.parent
}

// Children returns the direct child topics, in no particular order.
func (t *Topic) Children() []*Topic {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Topic, 0, len(t.children))
	for _, c := range t.children {
		out = append(out, c)
	}
	return out
}

// HasMDS reports whether this topic has a complete message data
// specification.
func (t *Topic) HasMDS() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mds != nil && t.mds.IsComplete()
}

// ArgsInfo returns this topic's message data specification node. It is
// never nil; its IsComplete reports whether a spec has been declared yet.
func (t *Topic) ArgsInfo() *ArgsInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mds
}

// SetMsgArgSpec declares (or redeclares, consistently) this topic's
// message data specification. Ported from pypubsub's
// Topic.setMsgArgSpec.
func (t *Topic) SetMsgArgSpec(spec TopicSpec) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mds.Finalize(&spec)
}

// NumListeners reports how many listeners are currently subscribed,
// whether or not their owners are still alive.
func (t *Topic) NumListeners() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners)
}

// HasListeners reports whether at least one listener is subscribed.
func (t *Topic) HasListeners() bool {
	return t.NumListeners() > 0
}

// HasListener reports whether the given listener ID is currently
// subscribed to this topic.
func (t *Topic) HasListener(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, l := range t.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// addListener inserts l into the topic's listener set, unless key already
// identifies a subscribed owner — in which case the existing listener's
// curried arguments are updated in place (spec 4.F step 1 / Testable
// Property: re-subscribing the same owner returns the existing listener
// and isNew=false, updating curried values rather than creating a
// duplicate subscription) and l itself is discarded.
func (t *Topic) addListener(l *Listener, key *ownerKey) (listener *Listener, isNew bool, err error) {
	t.mu.Lock()
	if key != nil {
		if existing, ok := t.listenersKey[*key]; ok {
			t.mu.Unlock()
			if l.curried != nil {
				if err := existing.SetCurriedArgs(l.curried); err != nil {
					return nil, false, err
				}
			}
			return existing, false, nil
		}
	}
	if err := validateListener(l.id, l.argsInfo, t.mds); err != nil {
		t.mu.Unlock()
		return nil, false, err
	}
	t.listeners = append(t.listeners, l)
	if key != nil {
		t.listenersKey[*key] = l
	}
	t.mu.Unlock()

	if t.mgr != nil {
		t.mgr.notify().notifySubscribe(t, l)
	}
	return l, true, nil
}

// Unsubscribe removes the listener with the given ID from this topic.
// Reports whether a listener was actually removed.
func (t *Topic) Unsubscribe(id string) bool {
	t.mu.Lock()
	idx := -1
	for i, l := range t.listeners {
		if l.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	l := t.listeners[idx]
	t.listeners = append(t.listeners[:idx], t.listeners[idx+1:]...)
	for k, v := range t.listenersKey {
		if v == l {
			delete(t.listenersKey, k)
			break
		}
	}
	t.mu.Unlock()

	if t.mgr != nil {
		t.mgr.notify().notifyUnsubscribe(t, l)
	}
	return true
}

// UnsubscribeAll removes every listener from this topic (and, if
// cascadeToChildren is true, from every descendant as well), returning the
// IDs of everything removed. Ported from pypubsub's Topic.unsubscribeAllListeners.
func (t *Topic) UnsubscribeAll(cascadeToChildren bool) []string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.listeners))
	removed := append([]*Listener{}, t.listeners...)
	for _, l := range removed {
		ids = append(ids, l.id)
	}
	t.listeners = nil
	t.listenersKey = make(map[ownerKey]*Listener)
	children := make([]*Topic, 0, len(t.children))
	for _, c := range t.children {
		children = append(children, c)
	}
	t.mu.Unlock()

	if t.mgr != nil {
		for _, l := range removed {
			t.mgr.notify().notifyUnsubscribe(t, l)
		}
	}
	if cascadeToChildren {
		for _, c := range children {
			ids = append(ids, c.UnsubscribeAll(true)...)
		}
	}
	return ids
}

// pruneDead removes listeners whose owners have been garbage collected,
// notifying deadListener for each. Called opportunistically during
// dispatch, mirroring pypubsub's lazy dead-listener cleanup.
func (t *Topic) pruneDead() {
	t.mu.Lock()
	var dead []*Listener
	alive := t.listeners[:0:0]
	for _, l := range t.listeners {
		if l.IsDead() {
			dead = append(dead, l)
			continue
		}
		alive = append(alive, l)
	}
	t.listeners = alive
	for k, v := range t.listenersKey {
		if v.IsDead() {
			delete(t.listenersKey, k)
		}
	}
	t.mu.Unlock()

	if t.mgr != nil {
		for _, l := range dead {
			t.mgr.notify().notifyDeadListener(t, l)
		}
	}
}

func (t *Topic) snapshotListeners() []*Listener {
	t.pruneDead()
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Listener{}, t.listeners...)
}

// ancestors returns this topic's chain from itself up to (and including)
// the tree root.
func (t *Topic) ancestors() []*Topic {
	var chain []*Topic
	for cur := t; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	return chain
}

// Publish sends msgData to this topic: it is checked against the topic's
// MDS, then delivered, filtered to each topic's own MDS, to the listeners
// of every topic from the tree root down to this one. Ported from
// pypubsub's Topic.publish / publisher.py's sendMessage root-to-leaf walk:
// the chain is built from the publish target upward and iterated in
// reverse, so ancestors are delivered to before descendants.
func (t *Topic) Publish(msgData Data) error {
	mds := t.ArgsInfo()
	if mds != nil && mds.IsComplete() {
		if err := mds.Check(msgData); err != nil {
			return err
		}
	} else if t.mgr != nil && t.mgr.topicUnspecifiedFatal {
		return &TopicDefnError{Name: t.name}
	}

	if t.mgr != nil {
		t.mgr.notify().notifySendMessagePre(t, msgData)
	}

	chain := t.ancestors()
	for i := len(chain) - 1; i >= 0; i-- {
		anc := chain[i]
		ancMDS := anc.ArgsInfo()
		var filtered Data
		if ancMDS != nil && ancMDS.IsComplete() {
			filtered = ancMDS.Filter(msgData)
		} else {
			filtered = msgData
		}
		if t.mgr != nil {
			t.mgr.notify().notifySendMessageIn(anc, filtered)
		}
		if err := anc.deliver(filtered, msgData); err != nil {
			return err
		}
	}

	if t.mgr != nil {
		t.mgr.notify().notifySendMessagePost(t, msgData)
	}
	return nil
}

// deliver calls every live listener of t in turn, passing data (this
// topic's MDS-filtered view of the message) and allData (the original,
// unfiltered sender payload, for AcceptsAllKwargs listeners). Ported from
// publisher.py's sendMessage: when no ListenerExcHandler is installed, the
// first listener to return an error aborts delivery to every remaining
// listener and ancestor, and that error propagates out of Publish — there
// is no default log-and-continue behavior.
func (t *Topic) deliver(data Data, allData Data) error {
	for _, l := range t.snapshotListeners() {
		if l.IsDead() {
			continue
		}
		err := l.invoke(t, data, allData)
		if err == nil {
			continue
		}
		if _, isDead := err.(*deadListenerInvokedError); isDead {
			continue
		}
		if hErr := t.handleListenerError(l, err); hErr != nil {
			return hErr
		}
	}
	return nil
}

// handleListenerError decides the fate of an error raised by listener l.
// With no handler installed, the error is returned as-is and aborts the
// send. With a handler installed, the handler is given a chance to
// suppress it; if the handler itself errors, both errors are wrapped in
// an *ExcHandlerError and that aborts the send instead. A re-entrancy
// guard on the owning TopicManager stops a handler whose own processing
// triggers another listener error from recursing into itself.
func (t *Topic) handleListenerError(l *Listener, origErr error) error {
	var handler ListenerExcHandler
	if t.mgr != nil {
		handler = t.mgr.listenerExcHandler()
	}
	if handler == nil {
		return origErr
	}
	if t.mgr != nil {
		if !t.mgr.enterExcHandling() {
			return origErr
		}
		defer t.mgr.exitExcHandling()
	}
	if hErr := handler.HandleListenerError(l.id, t.name, origErr); hErr != nil {
		return &ExcHandlerError{
			ListenerID: l.id,
			TopicName:  t.name,
			HandlerErr: hErr,
			OrigErr:    origErr,
		}
	}
	return nil
}

// Subscribe registers owner's method fn as a listener of topic, tracked
// weakly: once owner is garbage collected, the subscription is dropped
// automatically. A type parameter on Subscribe itself is required because
// Go forbids type parameters on methods — see DESIGN.md.
func Subscribe[O any](topic *Topic, owner *O, fn func(*O, Data) error, spec ArgSpec, opts ...ListenerOption) (listener *Listener, isNew bool, err error) {
	argsInfo := BuildCallArgsInfo(spec)
	key := keyOf(owner)

	l := newListener(nil, nil, argsInfo, nil)
	for _, opt := range opts {
		opt(l)
	}
	l.ref = newWeakOwnerRef(owner, func() { topic.pruneDead() })
	l.call = func(data Data) (any, error) {
		o := l.ref.(*weakOwnerRef[O]).value()
		if o == nil {
			return nil, &deadListenerInvokedError{ListenerID: l.id}
		}
		return nil, fn(o, data)
	}

	return topic.addListener(l, &key)
}

// SubscribeFunc registers fn, a plain function with no owner to track, as
// a listener of topic. Because there is no owner, the subscription lives
// until explicitly removed via Unsubscribe/UnsubscribeAll.
func SubscribeFunc(topic *Topic, fn func(Data) error, spec ArgSpec, opts ...ListenerOption) (listener *Listener, isNew bool, err error) {
	argsInfo := BuildCallArgsInfo(spec)
	l := newListener(foreverRef{}, func(data Data) (any, error) {
		return nil, fn(data)
	}, argsInfo, nil)
	for _, opt := range opts {
		opt(l)
	}
	return topic.addListener(l, nil)
}

// ListenerOption configures a Listener at subscribe time, e.g. curried
// arguments.
type ListenerOption func(*Listener)

// WithCurriedArgs sets the arguments merged into every message this
// listener receives, in addition to the identical ones SendMessage
// supplies per call.
func WithCurriedArgs(args Data) ListenerOption {
	return func(l *Listener) { l.curried = args }
}
