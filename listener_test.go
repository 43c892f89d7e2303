package pubsub

import "testing"

func TestListenerCurriedArgsMergedIntoCall(t *testing.T) {
	mgr := newTestMgr()
	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))

	owner := &testOwner{}
	l, _, err := Subscribe(topic, owner, func(o *testOwner, data Data) error {
		return o.onMsg(data)
	}, ArgSpec{Optional: map[string]any{"x": nil, "y": nil}}, WithCurriedArgs(Data{"y": "fixed"}))
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	_ = l

	if err := topic.Publish(Data{"x": 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if owner.received["x"] != 1 || owner.received["y"] != "fixed" {
		t.Fatalf("curried args not merged: %v", owner.received)
	}
}

func TestValidateListenerRejectsUnknownParam(t *testing.T) {
	mgr := newTestMgr()
	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))
	if err := topic.SetMsgArgSpec(TopicSpec{Required: []string{"x"}}); err != nil {
		t.Fatalf("SetMsgArgSpec: %v", err)
	}

	owner := &testOwner{}
	_, _, err := Subscribe(topic, owner, func(o *testOwner, data Data) error {
		return nil
	}, ArgSpec{Required: []string{"x"}, Optional: map[string]any{"bogus": nil}})
	if err == nil {
		t.Fatal("expected ListenerMismatchError: listener wants a param the topic doesn't declare")
	}
}

func TestValidateListenerRejectsMissingRequired(t *testing.T) {
	mgr := newTestMgr()
	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))
	if err := topic.SetMsgArgSpec(TopicSpec{Required: []string{"x", "y"}}); err != nil {
		t.Fatalf("SetMsgArgSpec: %v", err)
	}

	owner := &testOwner{}
	_, _, err := Subscribe(topic, owner, func(o *testOwner, data Data) error {
		return nil
	}, ArgSpec{Required: []string{"x"}})
	if err == nil {
		t.Fatal("expected ListenerMismatchError: listener doesn't declare required param y")
	}
}

func TestSubscribeSameOwnerTwiceUpdatesCurriedArgs(t *testing.T) {
	mgr := newTestMgr()
	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))
	owner := &testOwner{}
	fn := func(o *testOwner, data Data) error { return o.onMsg(data) }

	first, isNew, err := Subscribe(topic, owner, fn, ArgSpec{Optional: map[string]any{"b": nil}}, WithCurriedArgs(Data{"b": 1}))
	if err != nil {
		t.Fatalf("first Subscribe: %v", err)
	}
	if !isNew {
		t.Fatal("first Subscribe of a fresh owner should report isNew=true")
	}
	if topic.NumListeners() != 1 {
		t.Fatalf("expected 1 listener after first Subscribe, got %d", topic.NumListeners())
	}

	second, isNew, err := Subscribe(topic, owner, fn, ArgSpec{Optional: map[string]any{"b": nil}}, WithCurriedArgs(Data{"b": 100}))
	if err != nil {
		t.Fatalf("second Subscribe: %v", err)
	}
	if isNew {
		t.Fatal("re-subscribing the same owner should report isNew=false")
	}
	if second != first {
		t.Fatal("re-subscribing the same owner should return the existing listener")
	}
	if topic.NumListeners() != 1 {
		t.Fatalf("re-subscribing the same owner must not create a duplicate, got %d listeners", topic.NumListeners())
	}

	if err := topic.Publish(Data{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if owner.received["b"] != 100 {
		t.Fatalf("expected the updated curried value 100, got %v", owner.received["b"])
	}
}

func TestSubscribeSameOwnerTwiceRejectsDifferentCurriedKeys(t *testing.T) {
	mgr := newTestMgr()
	topic, _ := mgr.GetOrCreateTopic(ParseName("a"))
	owner := &testOwner{}
	fn := func(o *testOwner, data Data) error { return nil }

	if _, _, err := Subscribe(topic, owner, fn, ArgSpec{}, WithCurriedArgs(Data{"b": 1})); err != nil {
		t.Fatalf("first Subscribe: %v", err)
	}
	if _, _, err := Subscribe(topic, owner, fn, ArgSpec{}, WithCurriedArgs(Data{"c": 1})); err == nil {
		t.Fatal("expected ListenerMismatchError: curried key set changed across re-subscribe")
	}
}

func TestAcceptsAllKwargsReceivesFullSenderPayload(t *testing.T) {
	mgr := newTestMgr()
	parent, _ := mgr.GetOrCreateTopic(ParseName("a"))
	if err := parent.SetMsgArgSpec(TopicSpec{Optional: []string{"x"}}); err != nil {
		t.Fatalf("SetMsgArgSpec: %v", err)
	}
	child, _ := mgr.GetOrCreateTopic(ParseName("a.b"))
	if err := child.SetMsgArgSpec(TopicSpec{Optional: []string{"x", "y"}}); err != nil {
		t.Fatalf("SetMsgArgSpec: %v", err)
	}

	var seen Data
	owner := &testOwner{}
	if _, _, err := Subscribe(parent, owner, func(o *testOwner, data Data) error {
		seen = data
		return nil
	}, ArgSpec{AcceptsAllKwargs: true}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := child.Publish(Data{"x": 1, "y": 2}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if seen["x"] != 1 || seen["y"] != 2 {
		t.Fatalf("AcceptsAllKwargs listener on ancestor topic should see the full sender payload, got %v", seen)
	}
}
