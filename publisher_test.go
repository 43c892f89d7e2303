package pubsub

import "testing"

func TestPublisherSendMessageCreatesTopic(t *testing.T) {
	p := NewPublisher(TreeConfig{})
	owner := &testOwner{}
	if _, _, err := SubscribeTo("weather.rain", owner, func(o *testOwner, data Data) error {
		return o.onMsg(data)
	}, ArgSpec{}); err != nil {
		t.Fatalf("SubscribeTo (default publisher): %v", err)
	}
	if err := SendMessage("weather.rain", Data{}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if owner.calls != 1 {
		t.Fatalf("expected 1 delivery via the default publisher, got %d", owner.calls)
	}

	// A fresh Publisher has its own tree; sending on p must not reach the
	// listener registered on the default publisher above.
	if err := p.SendMessage("weather.rain", Data{}); err != nil {
		t.Fatalf("SendMessage on isolated Publisher: %v", err)
	}
	if owner.calls != 1 {
		t.Fatalf("isolated Publisher leaked into the default tree, calls=%d", owner.calls)
	}
}

func TestPublisherTopicUnspecifiedFatal(t *testing.T) {
	p := NewPublisher(TreeConfig{TopicUnspecifiedFatal: true})
	if err := p.SendMessage("undeclared", Data{"x": 1}); err == nil {
		t.Fatal("expected TopicDefnError when TopicUnspecifiedFatal is set and no MDS exists")
	}
}

func TestPublisherIsValid(t *testing.T) {
	p := NewPublisher(TreeConfig{})
	if !p.IsValid("a.b.c") {
		t.Fatal("a.b.c should be a valid topic name")
	}
	if p.IsValid("a..c") {
		t.Fatal("a..c should not be a valid topic name")
	}
}

func TestUnsubAllCascades(t *testing.T) {
	p := NewPublisher(TreeConfig{})
	parent, err := p.GetOrCreateTopic("a")
	if err != nil {
		t.Fatalf("GetOrCreateTopic: %v", err)
	}
	child, err := p.GetOrCreateTopic("a.b")
	if err != nil {
		t.Fatalf("GetOrCreateTopic: %v", err)
	}

	ownerA, ownerB := &testOwner{}, &testOwner{}
	if _, _, err := Subscribe(parent, ownerA, func(o *testOwner, d Data) error { return nil }, ArgSpec{}); err != nil {
		t.Fatalf("Subscribe parent: %v", err)
	}
	if _, _, err := Subscribe(child, ownerB, func(o *testOwner, d Data) error { return nil }, ArgSpec{}); err != nil {
		t.Fatalf("Subscribe child: %v", err)
	}

	removed := p.UnsubAll("a", true)
	if len(removed) != 2 {
		t.Fatalf("expected 2 listener IDs removed across parent+child, got %d", len(removed))
	}
	if parent.HasListeners() || child.HasListeners() {
		t.Fatal("UnsubAll with cascade should clear both parent and child")
	}
}
