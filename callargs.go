package pubsub

import "sort"

// AutoTopic is the sentinel used in an ArgSpec's Optional map to mark the
// parameter that should receive the delivering *Topic at call time. It
// plays the same role pypubsub's AUTO_TOPIC default-value sentinel does,
// except a statically-typed port can't detect "this parameter's default is
// a particular object" by introspection — so the sentinel is looked for as
// a value in an explicit, caller-supplied map instead of a function's
// defaults.
//
// Reflecting over a Go func value's parameter names is not possible (the
// names don't survive compilation), so unlike pypubsub's callables.py,
// nothing here ever inspects fn itself. The caller is the "introspector":
// it states the listener's accepted parameters directly via ArgSpec.
var AutoTopic = &autoTopicMarker{}

type autoTopicMarker struct{}

// ArgSpec is the explicit, Go-native replacement for pypubsub's callable
// introspection (callables.py's getArgs). A subscriber (or a topic
// definition provider) declares a listener's or a topic's accepted
// parameters directly instead of having them inferred from a function
// signature.
type ArgSpec struct {
	// Required lists parameter names that must appear with every message.
	Required []string
	// Optional maps parameter names to a default-or-doc marker. A value
	// identically equal to AutoTopic marks that name as the auto-topic
	// parameter instead of an ordinary optional one.
	Optional map[string]any
	// IgnoreArgs removes names from both Required and Optional of the
	// built CallArgsInfo — the counterpart of callables.py's ignoreArgs.
	// Subscribing never derives a topic's MDS from a listener's ArgSpec;
	// a topic's MDS comes only from SetMsgArgSpec or a TopicDefnProvider.
	IgnoreArgs []string
	// AcceptsAllKwargs marks a listener as accepting arbitrary extra
	// message data beyond its declared parameters (pypubsub's **kwargs
	// catch-all), the explicit analogue of a VAR_KEYWORD parameter.
	AcceptsAllKwargs bool
}

// CallArgsInfo is the validated, order-preserving signature of a listener,
// as pypubsub's callables.CallArgsInfo. BuildCallArgsInfo derives one from
// an ArgSpec.
type CallArgsInfo struct {
	RequiredArgs     []string
	OptionalArgs     []string
	AcceptsAllKwargs bool
	AutoTopicArgName string
	AllParams        []string
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// BuildCallArgsInfo applies the ported callables.py rules to an explicitly
// supplied ArgSpec: names in IgnoreArgs are dropped everywhere; an Optional
// entry whose value is AutoTopic becomes AutoTopicArgName rather than an
// ordinary optional parameter; everything else passes through unchanged,
// with AllParams preserving Required-then-Optional order.
func BuildCallArgsInfo(spec ArgSpec) CallArgsInfo {
	var info CallArgsInfo

	for _, name := range spec.Required {
		if contains(spec.IgnoreArgs, name) {
			continue
		}
		info.RequiredArgs = append(info.RequiredArgs, name)
	}

	// A Go map has no insertion order, so the optional args are visited in
	// the deterministic (alphabetical) order optionalOrder gives.
	for _, name := range optionalOrder(spec.Optional) {
		if contains(spec.IgnoreArgs, name) {
			continue
		}
		if spec.Optional[name] == any(AutoTopic) {
			info.AutoTopicArgName = name
			continue
		}
		info.OptionalArgs = append(info.OptionalArgs, name)
	}

	info.AcceptsAllKwargs = spec.AcceptsAllKwargs
	info.AllParams = append(append([]string{}, info.RequiredArgs...), info.OptionalArgs...)
	return info
}

// optionalOrder returns a deterministic iteration order for an ArgSpec's
// Optional map: the OptionalOrder field isn't part of ArgSpec because most
// callers don't need to care, but picking a stable order (alphabetical)
// keeps CallArgsInfo.AllParams reproducible across runs, which matters for
// ExportTopicTreeSpec and for tests.
func optionalOrder(m map[string]any) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
