package rules

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrRuleExists   = errors.New("rule already exists")
	ErrRuleNotFound = errors.New("rule not found")
)

// RuleStore holds the rules an Engine compiles. Rules are append-only.
type RuleStore interface {
	Add(rule *Rule) error
	Get(id string) (*Rule, error)

	// ListActive returns active rules in evaluation order
	ListActive() ([]*Rule, error)

	// Len counts every stored rule, active or not
	Len() int
}

// InMemoryRuleStore keeps rules sorted by evaluation order on insert, so
// listing never re-sorts
type InMemoryRuleStore struct {
	mu      sync.RWMutex
	byID    map[string]*Rule
	ordered []*Rule
}

func NewInMemoryRuleStore() *InMemoryRuleStore {
	return &InMemoryRuleStore{byID: make(map[string]*Rule)}
}

func (s *InMemoryRuleStore) Add(rule *Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[rule.ID]; ok {
		return fmt.Errorf("rule %s: %w", rule.ID, ErrRuleExists)
	}
	s.byID[rule.ID] = rule

	i := sort.Search(len(s.ordered), func(i int) bool { return before(rule, s.ordered[i]) })
	s.ordered = append(s.ordered, nil)
	copy(s.ordered[i+1:], s.ordered[i:])
	s.ordered[i] = rule

	return nil
}

func (s *InMemoryRuleStore) Get(id string) (*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rule, ok := s.byID[id]; ok {
		return rule, nil
	}
	return nil, fmt.Errorf("rule %s: %w", id, ErrRuleNotFound)
}

func (s *InMemoryRuleStore) ListActive() ([]*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]*Rule, 0, len(s.ordered))
	for _, rule := range s.ordered {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (s *InMemoryRuleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// before reports whether a is evaluated ahead of b
func before(a, b *Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.ID < b.ID
}
