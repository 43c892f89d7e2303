package pubsub

import (
	"fmt"
	"sort"
	"strings"
)

// ExportTopicTreeSpec renders the topic tree rooted at root as Go source
// for a MapTopicDefnProvider literal, so a tree built up incrementally
// (via SetMsgArgSpec calls scattered through a codebase) can be captured
// once and redistributed as a single static definition. Ported from
// pypubsub's topictreeprinter.py / exporttopictreespec.py, which render
// the equivalent Python source for a TopicDefnProvider module.
func ExportTopicTreeSpec(root *Topic) string {
	var b strings.Builder
	b.WriteString("pubsub.MapTopicDefnProvider{\n")

	NewTopicTreeTraverser(TopicTreeVisitorFunc(func(t *Topic, depth int) {
		if len(t.Name()) == 0 {
			return
		}
		mds := t.ArgsInfo()
		if mds == nil || !mds.IsComplete() {
			return
		}
		fmt.Fprintf(&b, "\t%q: {\n", t.Name().String())
		writeArgList(&b, "Required", mds.RequiredArgs())
		writeArgList(&b, "Optional", mds.OptionalArgs())
		b.WriteString("\t},\n")
	}), DepthFirst).Traverse(root)

	b.WriteString("}\n")
	return b.String()
}

func writeArgList(b *strings.Builder, field string, names []string) {
	if len(names) == 0 {
		return
	}
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	fmt.Fprintf(b, "\t\t%s: []string{", field)
	for i, n := range sorted {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%q", n)
	}
	b.WriteString("},\n")
}
