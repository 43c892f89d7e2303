package pubsub

import "sync"

// NotificationFlag selects which lifecycle events a NotificationHandler
// receives. Ported from pypubsub's notificationmgr.py per-event enable
// flags (subscribe, unsubscribe, deadListener, sendMessage, newTopic,
// delTopic).
type NotificationFlag int

const (
	NotifySubscribe NotificationFlag = 1 << iota
	NotifyUnsubscribe
	NotifyDeadListener
	NotifySendMessage
	NotifyNewTopic
	NotifyDelTopic

	NotifyAll = NotifySubscribe | NotifyUnsubscribe | NotifyDeadListener |
		NotifySendMessage | NotifyNewTopic | NotifyDelTopic
)

// NotificationHandler receives pub/sub lifecycle events. Any method may be
// a no-op; implementations typically embed NoopNotificationHandler and
// override only what they care about. Ported from pypubsub's
// INotificationHandler.
type NotificationHandler interface {
	NotifySubscribe(topic *Topic, listenerID string)
	NotifyUnsubscribe(topic *Topic, listenerID string)
	NotifyDeadListener(topic *Topic, listenerID string)
	NotifySendMessage(topic *Topic, stage string, msgData Data)
	NotifyNewTopic(topic *Topic)
	NotifyDelTopic(name Name)
}

// NoopNotificationHandler implements NotificationHandler with no-ops, for
// embedding by handlers that only care about a subset of events.
type NoopNotificationHandler struct{}

func (NoopNotificationHandler) NotifySubscribe(*Topic, string)          {}
func (NoopNotificationHandler) NotifyUnsubscribe(*Topic, string)        {}
func (NoopNotificationHandler) NotifyDeadListener(*Topic, string)       {}
func (NoopNotificationHandler) NotifySendMessage(*Topic, string, Data)  {}
func (NoopNotificationHandler) NotifyNewTopic(*Topic)                  {}
func (NoopNotificationHandler) NotifyDelTopic(Name)                    {}

const (
	sendStagePre  = "pre"
	sendStageIn   = "in"
	sendStagePost = "post"
)

// NotificationManager dispatches lifecycle events to zero or more
// registered handlers, gated by a flag mask. Ported from pypubsub's
// notificationmgr.py NotificationMgr.
type NotificationManager struct {
	mu       sync.RWMutex
	handlers []NotificationHandler
	flags    NotificationFlag
}

func newNotificationManager() *NotificationManager {
	return &NotificationManager{flags: NotifyAll}
}

// AddHandler registers h to receive future notifications.
func (m *NotificationManager) AddHandler(h NotificationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// SetFlags replaces the set of enabled notification kinds.
func (m *NotificationManager) SetFlags(flags NotificationFlag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = flags
}

func (m *NotificationManager) enabled(f NotificationFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags&f != 0
}

func (m *NotificationManager) snapshot() []NotificationHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]NotificationHandler{}, m.handlers...)
}

func (m *NotificationManager) notifySubscribe(t *Topic, l *Listener) {
	if !m.enabled(NotifySubscribe) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifySubscribe(t, l.id)
	}
}

func (m *NotificationManager) notifyUnsubscribe(t *Topic, l *Listener) {
	if !m.enabled(NotifyUnsubscribe) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifyUnsubscribe(t, l.id)
	}
}

func (m *NotificationManager) notifyDeadListener(t *Topic, l *Listener) {
	if !m.enabled(NotifyDeadListener) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifyDeadListener(t, l.id)
	}
}

func (m *NotificationManager) notifySendMessagePre(t *Topic, data Data) {
	if !m.enabled(NotifySendMessage) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifySendMessage(t, sendStagePre, data)
	}
}

func (m *NotificationManager) notifySendMessageIn(t *Topic, data Data) {
	if !m.enabled(NotifySendMessage) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifySendMessage(t, sendStageIn, data)
	}
}

func (m *NotificationManager) notifySendMessagePost(t *Topic, data Data) {
	if !m.enabled(NotifySendMessage) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifySendMessage(t, sendStagePost, data)
	}
}

func (m *NotificationManager) notifyNewTopic(t *Topic) {
	if !m.enabled(NotifyNewTopic) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifyNewTopic(t)
	}
}

func (m *NotificationManager) notifyDelTopic(name Name) {
	if !m.enabled(NotifyDelTopic) {
		return
	}
	for _, h := range m.snapshot() {
		h.NotifyDelTopic(name)
	}
}

// topicNotificationBridge republishes every notification as a message on
// a parallel "notification topic" tree, the Go port of pypubsub's
// utils/notification.py useNotifyByPubsubMessage. reentering guards
// against a handler's own SendMessage call triggering another
// notification and recursing forever.
type topicNotificationBridge struct {
	NoopNotificationHandler
	mgr       *TopicManager
	reentering bool
	mu        sync.Mutex
}

const (
	notificationTopicSubscribe   = "pubsub.subscribe"
	notificationTopicUnsubscribe = "pubsub.unsubscribe"
	notificationTopicDeadListener = "pubsub.deadListener"
	notificationTopicSendMessage = "pubsub.sendMessage"
	notificationTopicNewTopic    = "pubsub.newTopic"
	notificationTopicDelTopic    = "pubsub.delTopic"
)

func (b *topicNotificationBridge) guard(publish func()) {
	b.mu.Lock()
	if b.reentering {
		b.mu.Unlock()
		return
	}
	b.reentering = true
	b.mu.Unlock()

	publish()

	b.mu.Lock()
	b.reentering = false
	b.mu.Unlock()
}

func (b *topicNotificationBridge) NotifySubscribe(t *Topic, listenerID string) {
	// A subscription to one of the notification topics themselves is not
	// republished.
	if len(t.name) > 0 && t.name[0] == "pubsub" {
		return
	}
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicSubscribe, Data{"topic": t.name.String(), "listenerID": listenerID})
	})
}

func (b *topicNotificationBridge) NotifyUnsubscribe(t *Topic, listenerID string) {
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicUnsubscribe, Data{"topic": t.name.String(), "listenerID": listenerID})
	})
}

func (b *topicNotificationBridge) NotifyDeadListener(t *Topic, listenerID string) {
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicDeadListener, Data{"topic": t.name.String(), "listenerID": listenerID})
	})
}

func (b *topicNotificationBridge) NotifySendMessage(t *Topic, stage string, _ Data) {
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicSendMessage, Data{"topic": t.name.String(), "stage": stage})
	})
}

func (b *topicNotificationBridge) NotifyNewTopic(t *Topic) {
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicNewTopic, Data{"topic": t.name.String()})
	})
}

func (b *topicNotificationBridge) NotifyDelTopic(name Name) {
	b.guard(func() {
		b.mgr.publishNotification(notificationTopicDelTopic, Data{"topic": name.String()})
	})
}
