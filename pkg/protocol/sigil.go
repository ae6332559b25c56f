package protocol

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNotVariable is returned for names that parse but do not name a variable.
var ErrNotVariable = errors.New("literal strings are not variables")

// Policy is the synchronization policy a variable's sigil selects.
type Policy int

const (
	PolicyInvalid Policy = iota
	PolicyPushOnly
	PolicyDuplex
	PolicyAccumulate
	PolicyStream
	// PolicyLiteral marks a literal string, which is not a variable.
	PolicyLiteral
)

var sigilPolicies = map[rune]Policy{
	'&':  PolicyPushOnly,
	'$':  PolicyPushOnly,
	'%':  PolicyDuplex,
	'#':  PolicyAccumulate,
	'=':  PolicyStream,
	'\'': PolicyLiteral,
}

var policyNames = map[Policy]string{
	PolicyPushOnly:   "push-only",
	PolicyDuplex:     "duplex",
	PolicyAccumulate: "accumulate",
	PolicyStream:     "stream",
	PolicyLiteral:    "literal",
}

func (p Policy) String() string {
	name, exists := policyNames[p]
	if exists {
		return name
	}
	return "invalid"
}

// Requestable reports whether the current value of a variable with this
// policy is fetched from the server when a binding is created.
func (p Policy) Requestable() bool {
	return p == PolicyPushOnly || p == PolicyDuplex || p == PolicyStream
}

// Writable reports whether local changes are sent to the server.
func (p Policy) Writable() bool {
	return p == PolicyDuplex || p == PolicyStream
}

// ParseSigil returns the sigil of a remote variable name and the policy it selects.
func ParseSigil(name string) (rune, Policy, error) {
	if len(name) < 2 {
		return 0, PolicyInvalid, fmt.Errorf("invalid var %q: too short", name)
	}
	sigil, _ := utf8.DecodeRuneInString(name)
	policy, exists := sigilPolicies[sigil]
	if !exists {
		return sigil, PolicyInvalid, fmt.Errorf("invalid var %q: unknown sigil %q", name, sigil)
	}
	return sigil, policy, nil
}
