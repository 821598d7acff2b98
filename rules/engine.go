package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// costLimit bounds the work a single program may do per evaluation
const costLimit = 1000000

// Engine compiles and evaluates boolean CEL rules held in a RuleStore
// Safe for concurrent use: compiled programs are guarded by an RWMutex and
// cel.Program values are themselves safe for concurrent evaluation
type Engine struct {
	env      *cel.Env
	store    RuleStore
	cache    RulesCache
	programs map[string]cel.Program // ruleID -> compiled program
	gen      uint64                 // bumped on every mutation, guarded by mu
	mu       sync.RWMutex
}

// NewEngine creates a rules engine over env and compiles every active rule in store
func NewEngine(env *cel.Env, store RuleStore) (*Engine, error) {
	en := &Engine{
		env:      env,
		store:    store,
		cache:    NewInMemoryRulesCache(DefaultCacheConfig()),
		programs: make(map[string]cel.Program),
	}

	if err := en.CompileAllRules(); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	return en, nil
}

// CompileRule compiles a single rule expression to a CEL program
// The expression must type-check to bool
func (en *Engine) CompileRule(ruleID, expression string) error {
	ast, issues := en.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return fmt.Errorf("compile error: expression must be bool, got %s", ast.OutputType())
	}

	prog, err := en.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	en.mu.Lock()
	en.programs[ruleID] = prog
	en.mu.Unlock()

	return nil
}

// CompileAllRules compiles all active rules from the store
// Also populates the cache with the ordered active rules list
func (en *Engine) CompileAllRules() error {
	rules, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, rule := range rules {
		if err := en.CompileRule(rule.ID, rule.Expression); err != nil {
			return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
		}
	}

	en.cache.Set(rules)

	return nil
}

// AddRule validates, compiles and stores a new rule
// The compiled program is dropped again if the store rejects the rule
func (en *Engine) AddRule(r *Rule) error {
	if err := ValidateRule(r); err != nil {
		return err
	}

	if _, err := en.store.Get(r.ID); err == nil {
		return fmt.Errorf("rule %s: %w", r.ID, ErrRuleExists)
	}

	if err := en.CompileRule(r.ID, r.Expression); err != nil {
		return fmt.Errorf("rule validation failed: %w", err)
	}

	if err := en.store.Add(r); err != nil {
		en.mu.Lock()
		delete(en.programs, r.ID)
		en.mu.Unlock()
		return err
	}

	en.invalidate()

	return nil
}

// Len reports how many rules the engine holds
func (en *Engine) Len() int {
	return en.store.Len()
}

// EvaluateAll evaluates all active rules in order against the provided facts
// A failing rule is reported in its result and does not stop the others
func (en *Engine) EvaluateAll(facts map[string]any) ([]*EvaluationResult, error) {
	rules := en.cache.Get()

	if rules == nil {
		en.mu.RLock()
		gen := en.gen
		en.mu.RUnlock()

		var err error
		rules, err = en.store.ListActive()
		if err != nil {
			return nil, err
		}

		// a mutation that landed while listing makes this list stale
		en.mu.Lock()
		if en.gen == gen {
			en.cache.Set(rules)
		}
		en.mu.Unlock()
	}

	results := make([]*EvaluationResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, en.eval(rule, facts))
	}

	return results, nil
}

// invalidate drops the cached rule list after a store mutation
func (en *Engine) invalidate() {
	en.mu.Lock()
	en.gen++
	en.cache.Invalidate()
	en.mu.Unlock()
}

// eval runs the compiled program for rule; non-boolean output counts as not matched
func (en *Engine) eval(rule *Rule, facts map[string]any) *EvaluationResult {
	result := &EvaluationResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
	}

	en.mu.RLock()
	prog, exists := en.programs[rule.ID]
	en.mu.RUnlock()

	if !exists {
		result.Error = fmt.Errorf("rule %s is not compiled", rule.ID)
		return result
	}

	out, _, err := prog.Eval(facts)
	if err != nil {
		result.Error = err
		return result
	}

	if matched, ok := out.Value().(bool); ok {
		result.Matched = matched
	}

	return result
}
