package pubsub

// Publisher is the top-level handle for one independent topic tree: it
// owns a TopicManager and exposes the same operations as the package-level
// convenience functions in default.go, for callers who want more than one
// isolated pub/sub tree in the same process. Ported from pypubsub's
// pubsubv2.py Publisher class, which plays the analogous role to the
// legacy pub module's singleton.
type Publisher struct {
	mgr *TopicManager
}

// NewPublisher creates a Publisher with its own, empty topic tree.
func NewPublisher(cfg TreeConfig) *Publisher {
	return &Publisher{mgr: NewTopicManager(cfg)}
}

// TopicManager exposes the Publisher's underlying tree manager, for
// callers that need operations (provider registration, notification
// flags) not mirrored directly on Publisher.
func (p *Publisher) TopicManager() *TopicManager { return p.mgr }

// GetOrCreateTopic returns (creating if necessary) the topic named by the
// dotted name.
func (p *Publisher) GetOrCreateTopic(dotted string) (*Topic, error) {
	return p.mgr.GetOrCreateTopic(ParseName(dotted))
}

// GetTopic looks up an existing topic by dotted name.
func (p *Publisher) GetTopic(dotted string) (*Topic, bool) {
	return p.mgr.GetTopic(ParseName(dotted))
}

// SendMessage validates and delivers msgData to the named topic and its
// ancestors. The topic is created (with no MDS) if it does not already
// exist, matching pypubsub's sendMessage behavior of tolerating
// previously-unseen topic names.
func (p *Publisher) SendMessage(dotted string, msgData Data) error {
	topic, err := p.mgr.GetOrCreateTopic(ParseName(dotted))
	if err != nil {
		return err
	}
	return topic.Publish(msgData)
}

// IsValid reports whether dotted is a syntactically valid topic name.
func (p *Publisher) IsValid(dotted string) bool {
	return ValidateName(ParseName(dotted)) == nil
}

// IsSubscribed reports whether the given listener ID is currently
// subscribed to the named topic.
func (p *Publisher) IsSubscribed(dotted, listenerID string) bool {
	topic, ok := p.mgr.GetTopic(ParseName(dotted))
	if !ok {
		return false
	}
	return topic.HasListener(listenerID)
}

// Unsubscribe removes listenerID from the named topic.
func (p *Publisher) Unsubscribe(dotted, listenerID string) bool {
	topic, ok := p.mgr.GetTopic(ParseName(dotted))
	if !ok {
		return false
	}
	return topic.Unsubscribe(listenerID)
}

// UnsubAll removes every listener from the named topic (and, if
// cascadeToChildren, from its descendants too), returning the IDs
// removed.
func (p *Publisher) UnsubAll(dotted string, cascadeToChildren bool) []string {
	topic, ok := p.mgr.GetTopic(ParseName(dotted))
	if !ok {
		return nil
	}
	return topic.UnsubscribeAll(cascadeToChildren)
}

// DelTopic removes the named topic and its descendants.
func (p *Publisher) DelTopic(dotted string) bool {
	return p.mgr.DelTopic(ParseName(dotted))
}

// SetListenerExcHandler installs the handler invoked when a listener
// raises during dispatch, across the whole tree.
func (p *Publisher) SetListenerExcHandler(h ListenerExcHandler) {
	p.mgr.SetListenerExcHandler(h)
}

// SetTopicUnspecifiedFatal toggles whether SendMessage/Publish to a topic
// without a complete MDS is an error.
func (p *Publisher) SetTopicUnspecifiedFatal(fatal bool) {
	p.mgr.SetTopicUnspecifiedFatal(fatal)
}

// AddTopicDefnProvider registers a source of message data specifications
// for topics that don't declare one explicitly.
func (p *Publisher) AddTopicDefnProvider(provider TopicDefnProvider) {
	p.mgr.AddTopicDefnProvider(provider)
}

// AddNotificationHandler registers h to receive lifecycle notifications
// from this Publisher's tree.
func (p *Publisher) AddNotificationHandler(h NotificationHandler) {
	p.mgr.AddNotificationHandler(h)
}

// SetNotificationFlags selects which lifecycle events are dispatched to
// registered NotificationHandlers.
func (p *Publisher) SetNotificationFlags(flags NotificationFlag) {
	p.mgr.SetNotificationFlags(flags)
}

// EnableNotificationTopics republishes lifecycle notifications as
// ordinary messages on a parallel "pubsub.*" topic tree.
func (p *Publisher) EnableNotificationTopics(enable bool) {
	p.mgr.EnableNotificationTopics(enable)
}

// ExportTopicTreeSpec renders this Publisher's topic tree as Go source
// suitable for use as a TopicDefnProvider, per ExportTopicTreeSpec in
// export.go.
func (p *Publisher) ExportTopicTreeSpec() string {
	return ExportTopicTreeSpec(p.mgr.RootTopic())
}
