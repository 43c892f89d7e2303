package pubsub

import (
	"fmt"
	"strings"
)

// TopicNameError is returned when a topic name is malformed, or a topic
// looked up by name does not exist where one was required.
type TopicNameError struct {
	Name   Name
	Reason string
}

func (e *TopicNameError) Error() string {
	return fmt.Sprintf("topic name %q: %s", e.Name.String(), e.Reason)
}

// TopicDefnError is returned when an operation requires a topic to have a
// complete message data specification (MDS) but it doesn't, and
// topic-unspecified-fatal mode is enabled (see Publisher.SetTopicUnspecifiedFatal).
type TopicDefnError struct {
	Name Name
}

func (e *TopicDefnError) Error() string {
	return fmt.Sprintf("no message data specification for topic %q: see AddTopicDefnProvider and/or SetTopicUnspecifiedFatal", e.Name.String())
}

// ListenerMismatchError is returned when a listener's declared call
// signature (its ArgSpec/CallArgsInfo) is incompatible with a topic's MDS,
// or with the curried argument names supplied at subscribe time.
type ListenerMismatchError struct {
	ListenerID string
	Reason     string
	Names      []string
}

func (e *ListenerMismatchError) Error() string {
	msg := fmt.Sprintf("listener %q inadequate: %s", e.ListenerID, e.Reason)
	if len(e.Names) > 0 {
		msg += " (" + strings.Join(e.Names, ", ") + ")"
	}
	return msg
}

// MessageDataSpecError is returned when a topic's message data
// specification (MDS) is incompatible with its nearest complete
// ancestor's: a spec that omits an argument the ancestor declares, or one
// that does not keep every ancestor-required argument required.
type MessageDataSpecError struct {
	Name   Name
	Reason string
	Names  []string
}

func (e *MessageDataSpecError) Error() string {
	msg := fmt.Sprintf("invalid message data spec for topic %q: %s", e.Name.String(), e.Reason)
	if len(e.Names) > 0 {
		msg += " (" + strings.Join(e.Names, ", ") + ")"
	}
	return msg
}

// SenderMissingReqdMsgDataError is returned by SendMessage when the given
// message data is missing one or more parameters the topic's MDS marks
// required.
type SenderMissingReqdMsgDataError struct {
	Name    Name
	Given   []string
	Missing []string
}

func (e *SenderMissingReqdMsgDataError) Error() string {
	return fmt.Sprintf("sendMessage(%q, %s): missing required args: %s",
		e.Name.String(), strings.Join(e.Given, ","), strings.Join(e.Missing, ","))
}

// SenderUnknownMsgDataError is returned by SendMessage when the given
// message data has parameters that are neither required nor optional in the
// topic's MDS.
type SenderUnknownMsgDataError struct {
	Name    Name
	Given   []string
	Unknown []string
}

func (e *SenderUnknownMsgDataError) Error() string {
	return fmt.Sprintf("sendMessage(%q, %s): unknown args: %s",
		e.Name.String(), strings.Join(e.Given, ","), strings.Join(e.Unknown, ","))
}

// ExcHandlerError is returned when the listener exception handler
// installed via Publisher.SetListenerExcHandler itself fails while
// handling an error raised by a listener during dispatch. It wraps the
// handler's own error as well as the original listener error.
type ExcHandlerError struct {
	ListenerID string
	TopicName  Name
	HandlerErr error
	OrigErr    error
}

func (e *ExcHandlerError) Error() string {
	return fmt.Sprintf(
		"listener exception handler raised %v while handling an error from listener %q of topic %q (original error: %v)",
		e.HandlerErr, e.ListenerID, e.TopicName.String(), e.OrigErr)
}

func (e *ExcHandlerError) Unwrap() []error { return []error{e.HandlerErr, e.OrigErr} }

// deadListenerInvokedError is an internal-invariant error: the death
// callback for a listener's owner should always have detached it from its
// topic before dispatch could reach it again. Seeing this means dispatch
// raced the weak-reference cleanup; see Listener.call.
type deadListenerInvokedError struct {
	ListenerID string
}

func (e *deadListenerInvokedError) Error() string {
	return fmt.Sprintf("bug: dead listener %q invoked while still subscribed", e.ListenerID)
}
