package pubsub

import "testing"

type recordingHandler struct {
	NoopNotificationHandler
	subscribed   []string
	unsubscribed []string
	newTopics    []string
}

func (h *recordingHandler) NotifySubscribe(t *Topic, listenerID string) {
	h.subscribed = append(h.subscribed, t.Name().String())
}

func (h *recordingHandler) NotifyUnsubscribe(t *Topic, listenerID string) {
	h.unsubscribed = append(h.unsubscribed, t.Name().String())
}

func (h *recordingHandler) NotifyNewTopic(t *Topic) {
	h.newTopics = append(h.newTopics, t.Name().String())
}

func TestNotificationManagerDispatchesSubscribeAndNewTopic(t *testing.T) {
	mgr := newTestMgr()
	h := &recordingHandler{}
	mgr.AddNotificationHandler(h)

	topic, err := mgr.GetOrCreateTopic(ParseName("a.b"))
	if err != nil {
		t.Fatalf("GetOrCreateTopic: %v", err)
	}
	if len(h.newTopics) != 2 {
		t.Fatalf("expected notifications for both a and a.b, got %v", h.newTopics)
	}

	owner := &testOwner{}
	l, _, err := Subscribe(topic, owner, func(o *testOwner, d Data) error { return nil }, ArgSpec{})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(h.subscribed) != 1 || h.subscribed[0] != "a.b" {
		t.Fatalf("expected one subscribe notification for a.b, got %v", h.subscribed)
	}

	topic.Unsubscribe(l.ID())
	if len(h.unsubscribed) != 1 || h.unsubscribed[0] != "a.b" {
		t.Fatalf("expected one unsubscribe notification for a.b, got %v", h.unsubscribed)
	}
}

func TestNotificationManagerRespectsFlags(t *testing.T) {
	mgr := newTestMgr()
	h := &recordingHandler{}
	mgr.AddNotificationHandler(h)
	mgr.SetNotificationFlags(NotifyNewTopic) // subscribe/unsubscribe disabled

	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))
	owner := &testOwner{}
	if _, _, err := Subscribe(topic, owner, func(o *testOwner, d Data) error { return nil }, ArgSpec{}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(h.subscribed) != 0 {
		t.Fatalf("subscribe notifications should be disabled, got %v", h.subscribed)
	}
}

func TestEnableNotificationTopicsRepublishesAsMessages(t *testing.T) {
	mgr := newTestMgr()
	mgr.EnableNotificationTopics(true)

	bridgeCalls := 0
	notifTopic, err := mgr.GetOrCreateTopic(ParseName(notificationTopicNewTopic))
	if err != nil {
		t.Fatalf("GetOrCreateTopic: %v", err)
	}
	owner := &testOwner{}
	if _, _, err := Subscribe(notifTopic, owner, func(o *testOwner, d Data) error {
		bridgeCalls++
		return nil
	}, ArgSpec{AcceptsAllKwargs: true}); err != nil {
		t.Fatalf("Subscribe to notification topic: %v", err)
	}

	if _, err := mgr.GetOrCreateTopic(ParseName("fresh.topic")); err != nil {
		t.Fatalf("GetOrCreateTopic: %v", err)
	}
	if bridgeCalls == 0 {
		t.Fatal("expected the notification bridge to publish at least one newTopic message")
	}
}
