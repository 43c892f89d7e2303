package pubsub

import "testing"

func TestParseNameRoundTrip(t *testing.T) {
	dotted := "a.b.c"
	n := ParseName(dotted)
	if got := n.String(); got != dotted {
		t.Fatalf("round trip: got %q, want %q", got, dotted)
	}
}

func TestNameChild(t *testing.T) {
	n := ParseName("a.b")
	c := n.Child("c")
	if got := c.String(); got != "a.b.c" {
		t.Fatalf("Child: got %q, want a.b.c", got)
	}
	if len(n) != 2 {
		t.Fatalf("Child must not mutate the receiver, got %v", n)
	}
}

func TestValidateNameRejectsEmptyComponent(t *testing.T) {
	if err := ValidateName(Name{"a", "", "b"}); err == nil {
		t.Fatal("expected error for empty component")
	}
}

func TestValidateNameRejectsLeadingDigit(t *testing.T) {
	if err := ValidateName(Name{"1abc"}); err == nil {
		t.Fatal("expected error for identifier starting with a digit")
	}
}

func TestValidateNameAllowsRootAlone(t *testing.T) {
	if err := ValidateName(Name{AllTopics}); err != nil {
		t.Fatalf("ALL_TOPICS alone should validate, got %v", err)
	}
}

func TestValidateNameRejectsRootElsewhere(t *testing.T) {
	if err := ValidateName(Name{"a", AllTopics}); err == nil {
		t.Fatal("expected error when ALL_TOPICS is not the sole component")
	}
}
