package align

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/taxotools/semalign/types"
)

// Relation is the semantic relation between a source concept and a
// candidate.
type Relation string

const (
	RelationExactMatch Relation = "exactMatch"
	RelationCloseMatch Relation = "closeMatch"
	// RelationNone marks candidates that must never materialize as
	// alignment records.
	RelationNone Relation = "none"
)

// Verdict is one classified candidate relation with its confidence.
type Verdict struct {
	Relation   Relation `json:"relation"`
	Confidence float64  `json:"confidence"`
}

// SplitLabelDefinition splits a combined "label_definition" field of the
// informal grammar "<label>[ (ou <altlabels>)][: <definition>]".
// The substring before the first colon is the label segment; a trailing
// parenthetical (alt labels) is stripped from it. Everything after the
// first colon, trimmed, is the definition; no colon means an empty
// definition.
func SplitLabelDefinition(labelDefinition string) (label, definition string) {
	parts := strings.SplitN(labelDefinition, ":", 2)

	labelPart := strings.TrimSpace(parts[0])
	label = strings.TrimSpace(strings.SplitN(labelPart, "(", 2)[0])

	if len(parts) == 2 {
		definition = strings.TrimSpace(parts[1])
	}
	return label, definition
}

// ParseVerdict splits one oracle verdict string of the form
// "<MatchType> (<confidence>)". The match type is everything before the
// first '(', trimmed; the confidence is the substring between that '('
// and the following ')'. A relation containing neither "closematch" nor
// "exactmatch" (case-insensitive) is classified none.
func ParseVerdict(s string) (Verdict, error) {
	parts := strings.SplitN(s, "(", 2)
	relationText := strings.TrimSpace(parts[0])

	relation := RelationNone
	lower := strings.ToLower(relationText)
	switch {
	case strings.Contains(lower, "exactmatch"):
		relation = RelationExactMatch
	case strings.Contains(lower, "closematch"):
		relation = RelationCloseMatch
	}

	if relation == RelationNone {
		return Verdict{Relation: RelationNone}, nil
	}

	if len(parts) != 2 {
		return Verdict{}, types.NewErrorf(types.ErrClassificationProtocol,
			"verdict %q has no confidence score", s)
	}
	confText := strings.TrimSpace(strings.SplitN(parts[1], ")", 2)[0])
	confidence, err := strconv.ParseFloat(confText, 64)
	if err != nil {
		return Verdict{}, types.NewErrorf(types.ErrClassificationProtocol,
			"verdict %q has unparseable confidence %q", s, confText).WithCause(err)
	}
	if confidence < 0 || confidence > 1 {
		return Verdict{}, types.NewErrorf(types.ErrClassificationProtocol,
			"verdict %q confidence %v outside [0,1]", s, confidence)
	}

	return Verdict{Relation: relation, Confidence: confidence}, nil
}

// ParseVerdictList decodes the oracle's response as a literal list of
// verdict strings and requires exactly wantLen entries. Responses that
// are not a parseable list of the expected length are a hard failure for
// the current concept's alignment attempt.
func ParseVerdictList(response string, wantLen int) ([]Verdict, error) {
	entries, err := decodeStringList(response)
	if err != nil {
		return nil, types.NewErrorf(types.ErrClassificationProtocol,
			"oracle response is not a literal list of strings").WithCause(err)
	}
	if len(entries) != wantLen {
		return nil, types.NewErrorf(types.ErrClassificationProtocol,
			"oracle returned %d verdicts for %d candidates", len(entries), wantLen)
	}

	verdicts := make([]Verdict, 0, wantLen)
	for _, entry := range entries {
		v, err := ParseVerdict(entry)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

// decodeStringList accepts a JSON array of strings, tolerating markdown
// code fences and single-quoted (Python literal style) lists.
func decodeStringList(response string) ([]string, error) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var entries []string
	if err := json.Unmarshal([]byte(text), &entries); err == nil {
		return entries, nil
	}

	// single-quoted literal list; safe to swap quotes because verdict
	// strings never contain quotes of either kind
	swapped := strings.ReplaceAll(text, `'`, `"`)
	if err := json.Unmarshal([]byte(swapped), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
