package llmselector

// Rule routes requests of up to MaxTokens total tokens to Backend.
type Rule struct {
	// ID is assigned at insertion and never changes, even when later
	// inserts shift the rule's position in the table.
	ID        int
	MaxTokens int
	Backend   Backend
}

// RuleTable is an ordered list of rules sorted ascending by MaxTokens.
// It is not safe for concurrent use; Selector guards its own table.
type RuleTable struct {
	rules  []Rule
	nextID int
}

// Add inserts a rule before the first rule with a strictly greater threshold,
// so rules with equal thresholds keep their insertion order.
// Returns the position the rule was inserted at.
func (t *RuleTable) Add(b Backend, maxTokens int) (int, Rule) {
	pos := len(t.rules)
	for i, r := range t.rules {
		if r.MaxTokens > maxTokens {
			pos = i
			break
		}
	}

	rule := Rule{ID: t.nextID, MaxTokens: maxTokens, Backend: b}
	t.nextID++

	t.rules = append(t.rules, Rule{})
	copy(t.rules[pos+1:], t.rules[pos:])
	t.rules[pos] = rule
	return pos, rule
}

// Len returns the number of rules.
func (t *RuleTable) Len() int { return len(t.rules) }

// At returns the rule at position i.
func (t *RuleTable) At(i int) Rule { return t.rules[i] }

// Rules returns a copy of the rules in ascending threshold order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Cover returns the position of the first rule whose threshold is >= tokens.
// If no rule covers tokens, the last position is returned with covered=false.
// The table must not be empty.
func (t *RuleTable) Cover(tokens int) (pos int, covered bool) {
	for i, r := range t.rules {
		if r.MaxTokens >= tokens {
			return i, true
		}
	}
	return len(t.rules) - 1, false
}
