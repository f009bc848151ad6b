package align

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// safeText draws text free of the grammar's structural characters.
func safeText(rt *rapid.T, name string) string {
	return rapid.StringMatching(`[A-Za-z][A-Za-z0-9 ]{0,30}[A-Za-z0-9]`).Draw(rt, name)
}

func TestSplitLabelDefinition_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		label := safeText(rt, "label")
		definition := safeText(rt, "definition")

		gotLabel, gotDef := SplitLabelDefinition(label + ": " + definition)
		if gotLabel != label {
			rt.Fatalf("label round-trip: want %q, got %q", label, gotLabel)
		}
		if gotDef != definition {
			rt.Fatalf("definition round-trip: want %q, got %q", definition, gotDef)
		}
	})
}

func TestSplitLabelDefinition_AltLabelsStripped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		label := safeText(rt, "label")
		alt := safeText(rt, "alt")
		definition := safeText(rt, "definition")

		combined := fmt.Sprintf("%s (ou %s): %s", label, alt, definition)
		gotLabel, gotDef := SplitLabelDefinition(combined)
		if gotLabel != label {
			rt.Fatalf("alt labels not stripped: want %q, got %q", label, gotLabel)
		}
		if gotDef != definition {
			rt.Fatalf("definition: want %q, got %q", definition, gotDef)
		}
	})
}

func TestParseVerdict_ConfidenceRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		conf := rapid.Float64Range(0, 1).Draw(rt, "confidence")
		relation := rapid.SampledFrom([]string{"exactMatch", "closeMatch"}).Draw(rt, "relation")

		v, err := ParseVerdict(fmt.Sprintf("%s (%g)", relation, conf))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if v.Confidence != conf {
			rt.Fatalf("confidence round-trip: want %v, got %v", conf, v.Confidence)
		}
	})
}

func TestCounter_StrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		start := rapid.Uint64Range(0, 1<<32).Draw(rt, "start")
		n := rapid.IntRange(1, 100).Draw(rt, "n")

		c := NewCounter(start)
		prev, first := uint64(0), true
		for i := 0; i < n; i++ {
			v := c.Next()
			if !first && v != prev+1 {
				rt.Fatalf("allocation not sequential: prev=%d, got=%d", prev, v)
			}
			prev, first = v, false
		}
		if c.Value() != start+uint64(n) {
			rt.Fatalf("counter value: want %d, got %d", start+uint64(n), c.Value())
		}
	})
}
