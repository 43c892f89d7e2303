package pubsub

// TopicSpec is the Go analogue of pypubsub's ArgSpecGiven: what a caller
// thinks a topic's message data specification (MDS) should be, before it
// has been validated against the topic's ancestors. A nil *TopicSpec means
// "not given yet" (pypubsub's SPEC_GIVEN_NONE); a non-nil one is always
// complete (there is no partial-spec state in this port — a topic's MDS is
// either fully declared or not declared at all).
type TopicSpec struct {
	Required []string
	Optional []string
	Docs     map[string]string
}

func (s *TopicSpec) allArgs() []string {
	return append(append([]string{}, s.Required...), s.Optional...)
}

type mdsState int

const (
	mdsIncomplete mdsState = iota
	mdsComplete
)

// ArgsInfo is the validated Message Data Specification (MDS) for one
// topic. ArgsInfo nodes form a tree shaped exactly like the topic tree;
// unlike pypubsub's ArgsInfo, the parent link is an ordinary Go pointer
// rather than a weakref — see DESIGN.md for why Go's cycle-collecting GC
// makes that unnecessary here.
type ArgsInfo struct {
	topicName Name

	required []string
	optional []string
	docs     map[string]string

	parent   *ArgsInfo
	children []*ArgsInfo

	state mdsState
	// addedToParent is the set of names this topic introduces beyond its
	// nearest complete ancestor, recomputed whenever this node or an
	// ancestor completes. Topic.Publish does not read it; it filters with
	// Filter instead.
	addedToParent map[string]struct{}
}

// NewArgsInfo constructs the MDS node for a topic. If given is nil the node
// stays incomplete until a later call to Finalize. A nil parent makes the
// node a tree root; given may still be nil, in which case the root starts
// incomplete like any other node (the topic tree's own root is created
// this way).
func NewArgsInfo(name Name, given *TopicSpec, parent *ArgsInfo) (*ArgsInfo, error) {
	info := &ArgsInfo{topicName: name}
	if parent != nil {
		info.parent = parent
		parent.children = append(parent.children, info)
	}
	if given != nil {
		if err := info.finalize(given); err != nil {
			return nil, err
		}
	}
	return info, nil
}

// IsComplete reports whether this topic's MDS has been fully declared.
func (a *ArgsInfo) IsComplete() bool { return a.state == mdsComplete }

// AllArgs returns every argument name this topic's MDS declares, required
// and optional combined.
func (a *ArgsInfo) AllArgs() []string {
	return append(append([]string{}, a.required...), a.optional...)
}

// RequiredArgs returns the names that every SendMessage to this topic must
// supply.
func (a *ArgsInfo) RequiredArgs() []string { return append([]string{}, a.required...) }

// OptionalArgs returns the names a SendMessage to this topic may supply.
func (a *ArgsInfo) OptionalArgs() []string { return append([]string{}, a.optional...) }

// Docs returns a copy of the per-argument documentation map.
func (a *ArgsInfo) Docs() map[string]string {
	out := make(map[string]string, len(a.docs))
	for k, v := range a.docs {
		out[k] = v
	}
	return out
}

// HasSameArgs reports whether names is exactly the set of argument names
// this MDS declares (required + optional), order and duplicates ignored.
// Ported from topicargspec.py's ArgsInfo.hasSameArgs.
func (a *ArgsInfo) HasSameArgs(names ...string) bool {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	have := make(map[string]struct{}, len(a.required)+len(a.optional))
	for _, n := range a.required {
		have[n] = struct{}{}
	}
	for _, n := range a.optional {
		have[n] = struct{}{}
	}
	if len(want) != len(have) {
		return false
	}
	for n := range want {
		if _, ok := have[n]; !ok {
			return false
		}
	}
	return true
}

// nearestComplete walks the parent chain (starting at self) to the closest
// complete ancestor, or nil if none is complete.
func (a *ArgsInfo) nearestComplete() *ArgsInfo {
	for p := a; p != nil; p = p.parent {
		if p.IsComplete() {
			return p
		}
	}
	return nil
}

func setMinus(all, sub []string) []string {
	subSet := make(map[string]struct{}, len(sub))
	for _, s := range sub {
		subSet[s] = struct{}{}
	}
	var out []string
	for _, s := range all {
		if _, ok := subSet[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func setIntersect(a, b []string) []string {
	bSet := make(map[string]struct{}, len(b))
	for _, s := range b {
		bSet[s] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{})
	for _, s := range a {
		if _, ok := seen[s]; ok {
			continue
		}
		if _, ok := bSet[s]; ok {
			out = append(out, s)
			seen[s] = struct{}{}
		}
	}
	return out
}

// verifySubset ports topicargspec.py's verifySubset: every name in sub must
// appear in all, or a *MessageDataSpecError is returned naming the missing
// ones.
func verifySubset(name Name, all, sub []string, extraMsg string) error {
	missing := setMinus(sub, all)
	if len(missing) > 0 {
		return &MessageDataSpecError{
			Name:   name,
			Reason: "missing args inherited from parent" + extraMsg,
			Names:  missing,
		}
	}
	return nil
}

// validateAgainstParent ports topicargspec.py's __validateArgsToParent: a
// topic's full arg set and required arg set must each be supersets of its
// nearest complete ancestor's.
func (a *ArgsInfo) validateAgainstParent() error {
	if a.parent == nil {
		return nil
	}
	closest := a.parent.nearestComplete()
	if closest == nil {
		return nil
	}
	if err := verifySubset(a.topicName, a.AllArgs(), closest.AllArgs(), ""); err != nil {
		return err
	}
	return verifySubset(a.topicName, a.required, closest.required, " required args")
}

// finalize transitions this node from incomplete to complete, enforcing
// the MDS invariants against the nearest complete ancestor and then
// propagating completion to descendants. Ports topicargspec.py's
// ArgsInfo.__setAllArgs / __notifyParentCompleted / __notifyAncestorCompleted.
func (a *ArgsInfo) finalize(given *TopicSpec) error {
	docs := make(map[string]string, len(given.Docs))
	for k, v := range given.Docs {
		docs[k] = v
	}
	a.required = append([]string{}, given.Required...)
	a.optional = append([]string{}, given.Optional...)
	a.docs = docs
	a.state = mdsComplete

	if err := a.validateAgainstParent(); err != nil {
		a.state = mdsIncomplete
		return err
	}
	a.recomputeAddedToParent()

	for _, child := range a.children {
		if err := child.notifyAncestorCompleted(a); err != nil {
			return err
		}
	}
	return nil
}

// Finalize is the exported form of finalize, used when a topic's MDS is
// declared after the topic itself already exists (Topic.SetMsgArgSpec).
func (a *ArgsInfo) Finalize(given *TopicSpec) error {
	return a.finalize(given)
}

func (a *ArgsInfo) recomputeAddedToParent() {
	added := make(map[string]struct{})
	if a.parent != nil {
		var base []string
		if closest := a.parent.nearestComplete(); closest != nil {
			base = closest.AllArgs()
		}
		for _, name := range setMinus(a.AllArgs(), base) {
			added[name] = struct{}{}
		}
	} else {
		for _, name := range a.AllArgs() {
			added[name] = struct{}{}
		}
	}
	a.addedToParent = added
}

// notifyAncestorCompleted recurses down the (possibly multi-level)
// incomplete chain telling descendants that some ancestor further up just
// became complete, re-validating any that are themselves already complete
// along the way.
func (a *ArgsInfo) notifyAncestorCompleted(ancestor *ArgsInfo) error {
	if a.IsComplete() {
		if err := a.validateAgainstParent(); err != nil {
			return err
		}
		a.recomputeAddedToParent()
		return nil
	}
	for _, child := range a.children {
		if err := child.notifyAncestorCompleted(ancestor); err != nil {
			return err
		}
	}
	return nil
}

// AddedToParent returns the argument names this topic introduces beyond
// its nearest complete ancestor. Topic.Publish builds each ancestor's
// filtered view of message data with Filter, not with this set.
func (a *ArgsInfo) AddedToParent() map[string]struct{} { return a.addedToParent }

// Check validates sender data against this MDS, per spec.md 4.C: every
// required name must be present, and every other name must be declared
// optional.
func (a *ArgsInfo) Check(msgData Data) error {
	given := make([]string, 0, len(msgData))
	for k := range msgData {
		given = append(given, k)
	}

	var missing []string
	for _, req := range a.required {
		if _, ok := msgData[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return &SenderMissingReqdMsgDataError{Name: a.topicName, Given: given, Missing: missing}
	}

	optSet := make(map[string]struct{}, len(a.optional))
	for _, o := range a.optional {
		optSet[o] = struct{}{}
	}
	var unknown []string
	for _, k := range given {
		if contains(a.required, k) {
			continue
		}
		if _, ok := optSet[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return &SenderUnknownMsgDataError{Name: a.topicName, Given: given, Unknown: unknown}
	}
	return nil
}

// Filter returns the subset of msgData whose keys this MDS declares.
// Precondition: Check has already succeeded for this topic or a
// descendant (see spec.md 4.C).
func (a *ArgsInfo) Filter(msgData Data) Data {
	out := make(Data, len(msgData))
	for _, name := range a.AllArgs() {
		if v, ok := msgData[name]; ok {
			out[name] = v
		}
	}
	return out
}
