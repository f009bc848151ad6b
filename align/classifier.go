package align

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taxotools/semalign/llm"
)

const classifierSystemPrompt = "Hello ! You are a linguistic expert who understands the semantic " +
	"relationships between concepts that helps me with semantic mappings"

const classifierPromptTemplate = `
Your task is to compare the following concepts and determine the most appropriate semantic relation, i.e., if they are a SKOS closeMatch, exactMatch, or none.

You should only compare Concept 1 to all the other concepts. For each pair, provide only the type of match (exactMatch, closeMatch, or none) as well as a confidence score from 0 to 1.

Be aware that each concept can be described by: Label (list of alternative labels) and Definition. These can be provided in different languages, but this should not affect the mapping. Focus solely on the semantic meaning to determine the match type.

Please provide the results only in the following format: ["Chosen mapping (score)", "Chosen mapping (score)", ...]. The list must contain exactly one entry per compared concept, in the order the concepts are listed.

Concept 1:
Label (alternative labels): %s
Definition: %s

Concepts to compare:
%s

Response:
`

// Classifier asks the reasoning oracle to classify the semantic relation
// between a source concept and each retrieved candidate.
type Classifier struct {
	oracle llm.Oracle
	logger *zap.Logger
}

// NewClassifier creates a relation classifier backed by the oracle.
func NewClassifier(oracle llm.Oracle, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		oracle: oracle,
		logger: logger.With(zap.String("component", "classifier")),
	}
}

// Classify returns one verdict per candidate, positionally aligned to
// the input order. A response that is not a literal list with exactly
// one entry per candidate is a hard failure for this concept.
func (c *Classifier) Classify(ctx context.Context, srcLabel, srcDefinition string, candidates []Candidate) ([]Verdict, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(candidates))
	for i, cand := range candidates {
		// Concept 1 is the source; candidates start at Concept 2.
		lines = append(lines, fmt.Sprintf("Concept %d: %s", i+2, cand.LabelDefinition))
	}

	prompt := fmt.Sprintf(classifierPromptTemplate, srcLabel, srcDefinition, strings.Join(lines, "\n"))
	resp, err := c.oracle.Completion(ctx, &llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: classifierSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	text, err := llm.FirstText(resp)
	if err != nil {
		return nil, err
	}

	verdicts, err := ParseVerdictList(text, len(candidates))
	if err != nil {
		c.logger.Warn("unparseable classification response",
			zap.String("source", srcLabel),
			zap.Int("candidates", len(candidates)),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("candidates classified",
		zap.String("source", srcLabel),
		zap.Int("count", len(verdicts)))
	return verdicts, nil
}
