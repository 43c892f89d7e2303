package pubsub

import "sort"

// TopicTreeVisitor is called once per topic during a tree traversal.
// Ported from pypubsub's topictreetraverser.py ITopicTreeVisitor, reduced
// to the single callback this port needs (enter); pypubsub's done()/
// startTraversal() hooks have no equivalent use here since Go callers can
// just close over their own state.
type TopicTreeVisitor interface {
	Visit(topic *Topic, depth int)
}

// TopicTreeVisitorFunc adapts a plain function to TopicTreeVisitor.
type TopicTreeVisitorFunc func(topic *Topic, depth int)

func (f TopicTreeVisitorFunc) Visit(topic *Topic, depth int) { f(topic, depth) }

// TraversalOrder selects how TopicTreeTraverser walks the tree. Ported
// from topictreetraverser.py's two traversal strategies.
type TraversalOrder int

const (
	// DepthFirst visits a topic, then recurses into its children in
	// alphabetical order, before moving to the topic's next sibling.
	DepthFirst TraversalOrder = iota
	// BreadthFirst visits every topic at a given depth before moving to
	// the next depth.
	BreadthFirst
)

// TopicTreeTraverser walks a topic tree rooted at a given topic, invoking
// a TopicTreeVisitor on each node visited. Ported from pypubsub's
// topictreetraverser.py TopicTreeTraverser.
type TopicTreeTraverser struct {
	visitor TopicTreeVisitor
	order   TraversalOrder
}

// NewTopicTreeTraverser constructs a traverser that calls visitor for
// every topic reached, in the given order.
func NewTopicTreeTraverser(visitor TopicTreeVisitor, order TraversalOrder) *TopicTreeTraverser {
	return &TopicTreeTraverser{visitor: visitor, order: order}
}

func sortedChildren(t *Topic) []*Topic {
	children := t.Children()
	sort.Slice(children, func(i, j int) bool {
		return children[i].Name().String() < children[j].Name().String()
	})
	return children
}

// Traverse walks the tree rooted at root.
func (tr *TopicTreeTraverser) Traverse(root *Topic) {
	switch tr.order {
	case BreadthFirst:
		tr.traverseBreadthFirst(root)
	default:
		tr.traverseDepthFirst(root, 0)
	}
}

func (tr *TopicTreeTraverser) traverseDepthFirst(t *Topic, depth int) {
	tr.visitor.Visit(t, depth)
	for _, c := range sortedChildren(t) {
		tr.traverseDepthFirst(c, depth+1)
	}
}

type queueItem struct {
	topic *Topic
	depth int
}

func (tr *TopicTreeTraverser) traverseBreadthFirst(root *Topic) {
	queue := []queueItem{{root, 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		tr.visitor.Visit(item.topic, item.depth)
		for _, c := range sortedChildren(item.topic) {
			queue = append(queue, queueItem{c, item.depth + 1})
		}
	}
}
