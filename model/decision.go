package model

// BlockDecision is the result of evaluating a host against the rule set.
// The zero value means "not blocked".
type BlockDecision struct {
	Blocked bool
	// Rule is the matching domain rule
	Rule string
	// Reason is the human readable text carried by the denial response
	Reason string
}

// Allowed is the decision for hosts without a matching rule
func Allowed() BlockDecision {
	return BlockDecision{}
}

// BlockedBy creates a decision naming the matching rule
func BlockedBy(rule string) BlockDecision {
	return BlockDecision{
		Blocked: true,
		Rule:    rule,
		Reason:  "Blocked by domain rule: " + rule,
	}
}
