package eligibility

import (
	"fmt"
	"sync"

	"github.com/liamcoop/prescreen/documents"
	"github.com/liamcoop/prescreen/internal/logger"
	"github.com/liamcoop/prescreen/rules"
)

// Scorer evaluates score and flag rules through a compiled rules.Engine.
// It holds no per-evaluation state and is safe for concurrent use.
type Scorer struct {
	engine *rules.Engine
	points map[string]int    // score rule ID -> points
	flags  map[string]string // flag rule ID -> message
}

// NewScorer compiles scoreRules and flagRules. Rule IDs must be unique
// across both tables. Flags are reported in flagRules order.
func NewScorer(scoreRules []ScoreRule, flagRules []FlagRule) (*Scorer, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	s := &Scorer{
		points: make(map[string]int, len(scoreRules)),
		flags:  make(map[string]string, len(flagRules)),
	}

	s.engine, err = rules.NewEngine(env, rules.NewInMemoryRuleStore())
	if err != nil {
		return nil, err
	}

	priority := 0
	add := func(id, name, expression string) error {
		priority++
		return s.engine.AddRule(&rules.Rule{
			ID:         id,
			Name:       name,
			Expression: expression,
			Priority:   priority,
			Active:     true,
		})
	}

	for _, r := range scoreRules {
		if err := add(r.ID, r.Name, r.Expression); err != nil {
			return nil, err
		}
		s.points[r.ID] = r.Points
	}
	for _, r := range flagRules {
		if err := add(r.ID, r.Message, r.Expression); err != nil {
			return nil, err
		}
		s.flags[r.ID] = r.Message
	}

	return s, nil
}

// Rules counts the score and flag rules the scorer runs
func (s *Scorer) Rules() int {
	return s.engine.Len()
}

var defaultScorer = sync.OnceValue(func() *Scorer {
	s, err := NewScorer(DefaultScoreRules, DefaultFlagRules)
	if err != nil {
		panic(fmt.Sprintf("eligibility: default rules do not compile: %v", err))
	}
	return s
})

// Default returns the scorer built from DefaultScoreRules and DefaultFlagRules
func Default() *Scorer {
	return defaultScorer()
}

// Evaluate scores the inputs with the default rules
func Evaluate(applicant ApplicantProfile, lineage LineageFacts, docs []documents.ClassifiedDocument) Result {
	return defaultScorer().Evaluate(applicant, lineage, docs)
}

// Evaluate sums matched rule points, clamps into [MinScore, MaxScore] and
// collects matched flags. Absent fields contribute nothing; it never fails.
func (s *Scorer) Evaluate(applicant ApplicantProfile, lineage LineageFacts, docs []documents.ClassifiedDocument) Result {
	result, _ := s.Explain(applicant, lineage, docs)
	return result
}

// Explain is Evaluate plus the per-rule breakdown of the score, in rule order
func (s *Scorer) Explain(applicant ApplicantProfile, lineage LineageFacts, docs []documents.ClassifiedDocument) (Result, []Contribution) {
	evaluated, err := s.engine.EvaluateAll(buildFacts(applicant, lineage, docs))
	if err != nil {
		logger.Error("rule evaluation failed", "error", err)
	}

	sum := 0
	flags := []string{}
	contributions := make([]Contribution, 0, len(s.points))

	for _, res := range evaluated {
		if res.Error != nil {
			logger.Warn("rule failed, counted as not matched", "rule", res.RuleID, "error", res.Error)
		}

		if points, ok := s.points[res.RuleID]; ok {
			contributions = append(contributions, Contribution{
				RuleID:  res.RuleID,
				Name:    res.RuleName,
				Points:  points,
				Matched: res.Matched,
			})
			if res.Matched {
				sum += points
			}
			continue
		}

		if msg, ok := s.flags[res.RuleID]; ok && res.Matched {
			flags = append(flags, msg)
		}
	}

	score := clamp(sum)
	return Result{Score: score, Label: LabelFor(score), Flags: flags}, contributions
}
