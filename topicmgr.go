package pubsub

import "sync"

// TreeConfig tunes a TopicManager's behavior at construction time. The
// zero value matches pypubsub's default pub.py module-level instance:
// unspecified topics are tolerated, not fatal.
type TreeConfig struct {
	// TopicUnspecifiedFatal makes Publish/SendMessage return a
	// *TopicDefnError for any topic lacking a complete message data
	// specification, instead of silently delivering whatever data was
	// given. Ported from pypubsub's Publisher.setTopicUnspecifiedFatal.
	TopicUnspecifiedFatal bool
}

// TopicManager owns the topic tree: topic creation/lookup/deletion,
// notification dispatch, the listener exception handler, and the set of
// registered TopicDefnProviders. Ported from pypubsub's topicmgr.py
// TopicManager, merged with the pieces of publisher.py/pubsubv2.py that
// are process-wide rather than per-call.
type TopicManager struct {
	mu   sync.RWMutex
	root *Topic

	providers *defnProviderRegistry
	notifier  *NotificationManager

	topicUnspecifiedFatal bool
	excHandler            ListenerExcHandler

	excMu       sync.Mutex
	excHandling bool

	notifyBridge *topicNotificationBridge
}

// NewTopicManager creates a fresh, empty topic tree.
func NewTopicManager(cfg TreeConfig) *TopicManager {
	mgr := &TopicManager{
		providers:             newDefnProviderRegistry(),
		notifier:              newNotificationManager(),
		topicUnspecifiedFatal: cfg.TopicUnspecifiedFatal,
	}
	mgr.root = newTopic(rootName, nil, mgr)
	return mgr
}

func (m *TopicManager) notify() *NotificationManager { return m.notifier }

func (m *TopicManager) listenerExcHandler() ListenerExcHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.excHandler
}

// SetListenerExcHandler installs the handler invoked when a listener
// raises during dispatch. Passing nil restores the default behavior: the
// first listener error aborts the send and is returned from Publish.
func (m *TopicManager) SetListenerExcHandler(h ListenerExcHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.excHandler = h
}

// enterExcHandling reports whether the caller may proceed into
// ListenerExcHandler.HandleListenerError, false meaning a handler call is
// already in progress on this manager (the handler's own processing
// raised another listener error) — guarding against the
// handler-raises-listener-raises-handler recursion pypubsub's
// topicmgr.py guards against with its own reentry flag.
func (m *TopicManager) enterExcHandling() bool {
	m.excMu.Lock()
	defer m.excMu.Unlock()
	if m.excHandling {
		return false
	}
	m.excHandling = true
	return true
}

func (m *TopicManager) exitExcHandling() {
	m.excMu.Lock()
	defer m.excMu.Unlock()
	m.excHandling = false
}

// SetTopicUnspecifiedFatal toggles whether publishing to a topic with no
// complete message data specification is an error.
func (m *TopicManager) SetTopicUnspecifiedFatal(fatal bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicUnspecifiedFatal = fatal
}

// AddNotificationHandler registers h to receive lifecycle notifications.
func (m *TopicManager) AddNotificationHandler(h NotificationHandler) {
	m.notifier.AddHandler(h)
}

// SetNotificationFlags selects which lifecycle events are dispatched to
// registered NotificationHandlers.
func (m *TopicManager) SetNotificationFlags(flags NotificationFlag) {
	m.notifier.SetFlags(flags)
}

// AddTopicDefnProvider registers p as a source of message data
// specifications for topics created without one explicitly. Re-adding an
// already-registered provider (by identity, for comparable provider
// types) is a no-op, per spec.
func (m *TopicManager) AddTopicDefnProvider(p TopicDefnProvider) {
	m.providers.Add(p)
}

// EnableNotificationTopics republishes every lifecycle notification as a
// SendMessage on a parallel "pubsub.*" topic tree, letting ordinary
// subscribers observe pub/sub internals instead of requiring a
// NotificationHandler; enable=false unregisters that republishing handler.
// Ported from pypubsub's utils/notification.py.
func (m *TopicManager) EnableNotificationTopics(enable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if enable {
		if m.notifyBridge == nil {
			m.notifyBridge = &topicNotificationBridge{mgr: m}
			m.notifier.AddHandler(m.notifyBridge)
		}
		return
	}
	if m.notifyBridge != nil {
		m.notifier.mu.Lock()
		kept := m.notifier.handlers[:0:0]
		for _, h := range m.notifier.handlers {
			if h != NotificationHandler(m.notifyBridge) {
				kept = append(kept, h)
			}
		}
		m.notifier.handlers = kept
		m.notifier.mu.Unlock()
	}
	m.notifyBridge = nil
}

func (m *TopicManager) publishNotification(dotted string, data Data) {
	topic, err := m.GetOrCreateTopic(ParseName(dotted))
	if err != nil {
		return
	}
	_ = topic.Publish(data)
}

// RootTopic returns the implicit ALL_TOPICS root of the tree.
func (m *TopicManager) RootTopic() *Topic { return m.root }

// GetTopic looks up an existing topic by name, returning (nil, false) if
// it has never been created.
func (m *TopicManager) GetTopic(name Name) (*Topic, bool) {
	if len(name) == 0 {
		return m.root, true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur := m.root
	for _, part := range name {
		child, ok := cur.children[part]
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// GetOrCreateTopic returns the named topic, creating it and every missing
// ancestor along the way. A newly created topic with no explicit MDS is
// offered to every registered TopicDefnProvider in turn; the first
// matching spec (if any) becomes its MDS. Ported from pypubsub's
// topicmgr.py TopicManager.getOrCreateTopic.
func (m *TopicManager) GetOrCreateTopic(name Name) (*Topic, error) {
	if err := ValidateName(append(Name{}, name...)); len(name) > 0 && err != nil {
		return nil, err
	}
	m.mu.Lock()
	cur := m.root
	built := Name{}
	var created []*Topic
	for _, part := range name {
		built = append(built, part)
		child, ok := cur.children[part]
		if !ok {
			child = newTopic(append(Name{}, built...), cur, m)
			cur.children[part] = child
			m.applyProviderLocked(child)
			created = append(created, child)
		}
		cur = child
	}
	m.mu.Unlock()

	for _, t := range created {
		m.notifier.notifyNewTopic(t)
	}
	return cur, nil
}

func (m *TopicManager) applyProviderLocked(t *Topic) {
	spec, ok := m.providers.Lookup(t.name)
	if !ok {
		return
	}
	if err := t.mds.Finalize(spec); err != nil {
		log.Errorf("topic defn provider gave an invalid spec for %q: %v", t.name.String(), err)
	}
}

// DelTopic removes the named topic and all of its descendants from the
// tree, unsubscribing every listener along the way. Reports whether the
// topic existed.
func (m *TopicManager) DelTopic(name Name) bool {
	if len(name) == 0 {
		return false
	}
	m.mu.Lock()
	cur := m.root
	for i, part := range name {
		child, ok := cur.children[part]
		if !ok {
			m.mu.Unlock()
			return false
		}
		if i == len(name)-1 {
			delete(cur.children, part)
			m.mu.Unlock()
			child.UnsubscribeAll(true)
			m.notifier.notifyDelTopic(name)
			return true
		}
		cur = child
	}
	m.mu.Unlock()
	return false
}

// ClearTree removes every topic except the root, unsubscribing all
// listeners.
func (m *TopicManager) ClearTree() {
	m.mu.Lock()
	children := make([]string, 0, len(m.root.children))
	for part := range m.root.children {
		children = append(children, part)
	}
	m.mu.Unlock()
	for _, part := range children {
		m.DelTopic(Name{part})
	}
}

// AllTopicsFlat returns every topic in the tree, including the root, in
// no particular order.
func (m *TopicManager) AllTopicsFlat() []*Topic {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Topic
	var walk func(*Topic)
	walk = func(t *Topic) {
		out = append(out, t)
		for _, c := range t.children {
			walk(c)
		}
	}
	walk(m.root)
	return out
}

// CheckAllTopicsHaveMDS reports the names of every topic in the tree
// (other than the root) that does not have a complete message data
// specification. An empty result means the tree is fully specified.
func (m *TopicManager) CheckAllTopicsHaveMDS() []Name {
	var missing []Name
	for _, t := range m.AllTopicsFlat() {
		if len(t.Name()) == 0 {
			continue
		}
		if t == m.root {
			continue
		}
		if !t.HasMDS() {
			missing = append(missing, t.Name())
		}
	}
	return missing
}
