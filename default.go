package pubsub

// defaultPublisher is the process-wide Publisher the package-level
// functions below delegate to, the Go analogue of pypubsub's legacy
// pub.py module-level singleton (itself a thin wrapper over a single
// module-level Publisher instance in pubsubv2.py).
var defaultPublisher = NewPublisher(TreeConfig{})

// Default returns the process-wide default Publisher, for callers that
// need operations not mirrored as package-level functions.
func Default() *Publisher { return defaultPublisher }

// SendMessage validates and delivers msgData to the named topic (and its
// ancestors) on the default Publisher.
func SendMessage(dotted string, msgData Data) error {
	return defaultPublisher.SendMessage(dotted, msgData)
}

// GetOrCreateTopic returns (creating if necessary) the named topic on the
// default Publisher.
func GetOrCreateTopic(dotted string) (*Topic, error) {
	return defaultPublisher.GetOrCreateTopic(dotted)
}

// GetTopic looks up an existing topic by name on the default Publisher.
func GetTopic(dotted string) (*Topic, bool) {
	return defaultPublisher.GetTopic(dotted)
}

// IsValid reports whether dotted is a syntactically valid topic name.
func IsValid(dotted string) bool {
	return defaultPublisher.IsValid(dotted)
}

// IsSubscribed reports whether listenerID is subscribed to the named
// topic on the default Publisher.
func IsSubscribed(dotted, listenerID string) bool {
	return defaultPublisher.IsSubscribed(dotted, listenerID)
}

// Unsubscribe removes listenerID from the named topic on the default
// Publisher.
func Unsubscribe(dotted, listenerID string) bool {
	return defaultPublisher.Unsubscribe(dotted, listenerID)
}

// UnsubAll removes every listener from the named topic on the default
// Publisher.
func UnsubAll(dotted string, cascadeToChildren bool) []string {
	return defaultPublisher.UnsubAll(dotted, cascadeToChildren)
}

// DelTopic removes the named topic and its descendants on the default
// Publisher.
func DelTopic(dotted string) bool {
	return defaultPublisher.DelTopic(dotted)
}

// SetListenerExcHandler installs the listener exception handler on the
// default Publisher.
func SetListenerExcHandler(h ListenerExcHandler) {
	defaultPublisher.SetListenerExcHandler(h)
}

// SetTopicUnspecifiedFatal toggles strict MDS enforcement on the default
// Publisher.
func SetTopicUnspecifiedFatal(fatal bool) {
	defaultPublisher.SetTopicUnspecifiedFatal(fatal)
}

// AddTopicDefnProvider registers provider on the default Publisher.
func AddTopicDefnProvider(provider TopicDefnProvider) {
	defaultPublisher.AddTopicDefnProvider(provider)
}

// SubscribeTo registers owner's method fn as a listener of the named
// topic on the default Publisher, creating the topic if necessary. A free
// function, not a Publisher method, because Go forbids type parameters on
// methods.
func SubscribeTo[O any](dotted string, owner *O, fn func(*O, Data) error, spec ArgSpec, opts ...ListenerOption) (listener *Listener, isNew bool, err error) {
	topic, err := defaultPublisher.GetOrCreateTopic(dotted)
	if err != nil {
		return nil, false, err
	}
	return Subscribe(topic, owner, fn, spec, opts...)
}

// SubscribeFuncTo registers fn, an ownerless listener, to the named topic
// on the default Publisher, creating the topic if necessary.
func SubscribeFuncTo(dotted string, fn func(Data) error, spec ArgSpec, opts ...ListenerOption) (listener *Listener, isNew bool, err error) {
	topic, err := defaultPublisher.GetOrCreateTopic(dotted)
	if err != nil {
		return nil, false, err
	}
	return SubscribeFunc(topic, fn, spec, opts...)
}
