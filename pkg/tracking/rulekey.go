package tracking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRuleKey is returned when a rule key string is not "repository:rule".
var ErrInvalidRuleKey = errors.New("invalid rule key")

// ruleKeySeparator separates the repository from the rule.
const ruleKeySeparator = ":"

// RuleKey identifies the rule that raised an issue.
type RuleKey struct {
	Repository string
	Rule       string
}

// ParseRuleKey parses a "repository:rule" string.
func ParseRuleKey(s string) (RuleKey, error) {
	repo, rule, ok := strings.Cut(s, ruleKeySeparator)
	if !ok || repo == "" || rule == "" {
		return RuleKey{}, fmt.Errorf("%w: %q", ErrInvalidRuleKey, s)
	}

	return RuleKey{Repository: repo, Rule: rule}, nil
}

// MustParseRuleKey is like ParseRuleKey but panics on malformed input.
// Intended for constants and tests.
func MustParseRuleKey(s string) RuleKey {
	key, err := ParseRuleKey(s)
	if err != nil {
		panic(err)
	}

	return key
}

// String formats the key as "repository:rule".
func (k RuleKey) String() string {
	return k.Repository + ruleKeySeparator + k.Rule
}

// IsZero reports whether the key is unset.
func (k RuleKey) IsZero() bool {
	return k.Repository == "" && k.Rule == ""
}
