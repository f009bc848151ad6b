package align

import "github.com/taxotools/semalign/types"

// Record is one emitted semantic-correspondence result between a source
// and a candidate concept, suitable for a flat export table.
type Record struct {
	CellID     string   `json:"cell_id"`
	Relation   Relation `json:"relation"`
	Confidence float64  `json:"confidence"`

	SourceURI        string `json:"source_uri"`
	SourceLabel      string `json:"source_label"`
	SourceDefinition string `json:"source_definition"`

	CandidateURI        string `json:"candidate_uri"`
	CandidateLabel      string `json:"candidate_label"`
	CandidateDefinition string `json:"candidate_definition"`
}

// Build assembles alignment records from positionally aligned candidates
// and verdicts. Verdicts with relation none are discarded and never
// reach the caller; the counter advances only for emitted records, so an
// all-none classification leaves it untouched.
func Build(candidates []Candidate, verdicts []Verdict, counter *Counter) ([]Record, error) {
	if len(candidates) != len(verdicts) {
		return nil, types.NewErrorf(types.ErrClassificationProtocol,
			"%d candidates but %d verdicts", len(candidates), len(verdicts))
	}

	var records []Record
	for i, verdict := range verdicts {
		if verdict.Relation == RelationNone {
			continue
		}
		cand := candidates[i]
		records = append(records, Record{
			CellID:              CellID(counter.Next()),
			Relation:            verdict.Relation,
			Confidence:          verdict.Confidence,
			SourceURI:           cand.SourceURI,
			SourceLabel:         cand.SourceLabel,
			SourceDefinition:    cand.SourceDefinition,
			CandidateURI:        cand.URI,
			CandidateLabel:      cand.Label,
			CandidateDefinition: cand.Definition,
		})
	}
	return records, nil
}
