package game

import "errors"

// ErrIllegalTransition is returned when an intent does not apply to the current
// phase. The state is unchanged and nothing is logged.
var ErrIllegalTransition = errors.New("intent not valid in current phase")

// RuleError reports a rule violation for an otherwise well-timed intent. The
// state is unchanged and Reason becomes the engine's status hint.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

func ruleErr(reason string) error {
	return &RuleError{Reason: reason}
}

// IsRuleError reports whether err is a rule violation.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
