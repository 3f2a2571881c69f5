package bridge

import "testing"

func TestDocument_Defaults(t *testing.T) {
	doc := Document{}
	if got := doc.Float("missing", 0.5); got != 0.5 {
		t.Errorf("expected float default 0.5, got %v", got)
	}
	if got := doc.Int("missing", 7); got != 7 {
		t.Errorf("expected int default 7, got %v", got)
	}
	if got := doc.Bool("missing", true); !got {
		t.Error("expected bool default true")
	}
	if got := doc.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("expected string default, got %q", got)
	}
}

func TestDocument_MalformedValuesFallBack(t *testing.T) {
	doc := Document{"f": "not-a-number", "i": "3.5", "b": "maybe"}
	if got := doc.Float("f", 1.0); got != 1.0 {
		t.Errorf("malformed float should default, got %v", got)
	}
	if got := doc.Int("i", 2); got != 2 {
		t.Errorf("malformed int should default, got %v", got)
	}
	if got := doc.Bool("b", false); got {
		t.Error("malformed bool should default")
	}
}

func TestDocument_FloatSeries(t *testing.T) {
	doc := Document{}
	doc.SetFloats("series", []float64{0.1, 0.25, 3})
	got := doc.Floats("series")
	want := []float64{0.1, 0.25, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("series[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
	if vals := doc.Floats("absent"); vals != nil {
		t.Errorf("absent series should be nil, got %v", vals)
	}
}

func TestDocument_SystemTag(t *testing.T) {
	doc := Document{}
	doc.Set(SystemKey, "trade_economic_bridge")
	if !doc.CheckSystem("trade_economic_bridge") {
		t.Error("matching system tag should pass")
	}
	if doc.CheckSystem("economic_population_bridge") {
		t.Error("mismatched system tag should fail")
	}
	if (Document{}).CheckSystem("anything") {
		t.Error("untagged document should fail the system check")
	}
}
