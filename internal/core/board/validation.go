package board

import (
	"fmt"
	"strings"
)

// MsgEmptyFields is shown inline when a submission fails validation.
const MsgEmptyFields = "Fields should not be empty"

// Rule decides which empty-field combinations are rejected.
type Rule string

const (
	// RuleStrict rejects a submission when either field is blank.
	RuleStrict Rule = "strict"
	// RuleLenient rejects only when both fields are blank.
	RuleLenient Rule = "lenient"
)

func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(strings.TrimSpace(s))) {
	case "", RuleStrict:
		return RuleStrict, nil
	case RuleLenient:
		return RuleLenient, nil
	}
	return RuleStrict, fmt.Errorf("unknown validation rule %q", s)
}

// Validate reports whether a submission with the given fields is accepted.
// Whitespace-only fields count as empty; the fields themselves are kept as
// typed.
func (r Rule) Validate(title, body string) bool {
	t := strings.TrimSpace(title) == ""
	b := strings.TrimSpace(body) == ""
	if r == RuleLenient {
		return !(t && b)
	}
	return !t && !b
}
