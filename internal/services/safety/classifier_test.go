// File: internal/services/safety/classifier_test.go
package safety

import "testing"

func TestClassifyDetectsDefaultKeywords(t *testing.T) {
	c := NewClassifier(nil)

	positives := []string{
		"I want to kill myself",
		"i just want to END IT ALL",
		"sometimes I think I want to die",
		"I'm scared I might hurt myself tonight",
		"honestly, i want to end this",
	}
	for _, msg := range positives {
		if !c.Classify(msg) {
			t.Errorf("expected %q to classify as distress", msg)
		}
	}

	negatives := []string{
		"I had a rough day at work",
		"my plants are dying in this heat",
		"this deadline is killing me, haha",
		"",
	}
	for _, msg := range negatives {
		if c.Classify(msg) {
			t.Errorf("expected %q not to classify as distress", msg)
		}
	}
}

func TestClassifyIsCaseInsensitiveSubstring(t *testing.T) {
	c := NewClassifier(nil)

	if !c.Classify("My friend said SUICIDE is never the answer but I keep thinking about it") {
		t.Error("keyword embedded mid-sentence should match regardless of case")
	}
}

func TestClassifierCustomKeywords(t *testing.T) {
	c := NewClassifier([]string{"No Hope Left", "  give up forever  "})

	if !c.Classify("there is no hope left for me") {
		t.Error("custom keyword should match after normalization")
	}
	if c.Classify("I want to kill myself") {
		t.Error("custom keyword set replaces the default set entirely")
	}
}

func TestClassifierEmptySetFallsBackToDefault(t *testing.T) {
	c := NewClassifier([]string{"   ", ""})

	if !c.Classify("i want to die") {
		t.Error("blank custom keywords should fall back to the default set")
	}
}

func TestParseKeywordList(t *testing.T) {
	got := ParseKeywordList(" a , b,, c ")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	if kws := ParseKeywordList(""); kws != nil {
		t.Errorf("empty input should yield nil, got %v", kws)
	}
}
