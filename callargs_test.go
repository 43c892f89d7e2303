package pubsub

import "testing"

func TestBuildCallArgsInfoBasic(t *testing.T) {
	info := BuildCallArgsInfo(ArgSpec{
		Required: []string{"a", "b"},
		Optional: map[string]any{"c": nil},
	})
	if len(info.RequiredArgs) != 2 || info.RequiredArgs[0] != "a" || info.RequiredArgs[1] != "b" {
		t.Fatalf("unexpected RequiredArgs: %v", info.RequiredArgs)
	}
	if len(info.OptionalArgs) != 1 || info.OptionalArgs[0] != "c" {
		t.Fatalf("unexpected OptionalArgs: %v", info.OptionalArgs)
	}
	if info.AutoTopicArgName != "" {
		t.Fatalf("expected no auto-topic arg, got %q", info.AutoTopicArgName)
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if info.AllParams[i] != w {
			t.Fatalf("AllParams[%d] = %q, want %q", i, info.AllParams[i], w)
		}
	}
}

func TestBuildCallArgsInfoAutoTopic(t *testing.T) {
	info := BuildCallArgsInfo(ArgSpec{
		Optional: map[string]any{"topic": AutoTopic, "extra": nil},
	})
	if info.AutoTopicArgName != "topic" {
		t.Fatalf("AutoTopicArgName = %q, want topic", info.AutoTopicArgName)
	}
	if contains(info.OptionalArgs, "topic") {
		t.Fatal("auto-topic parameter must not also appear in OptionalArgs")
	}
	if !contains(info.OptionalArgs, "extra") {
		t.Fatal("non-auto-topic optional parameter dropped")
	}
}

func TestBuildCallArgsInfoIgnoreArgs(t *testing.T) {
	info := BuildCallArgsInfo(ArgSpec{
		Required:   []string{"a", "b"},
		Optional:   map[string]any{"c": nil},
		IgnoreArgs: []string{"b", "c"},
	})
	if contains(info.RequiredArgs, "b") {
		t.Fatal("IgnoreArgs should remove b from RequiredArgs")
	}
	if contains(info.OptionalArgs, "c") {
		t.Fatal("IgnoreArgs should remove c from OptionalArgs")
	}
}
