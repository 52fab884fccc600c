package auth

import (
	"fmt"
	"strings"
	"sync"
)

// Fixed failure messages for the built-in requirements. Tests and callers may
// compare against these exact strings.
const (
	MsgNotLoggedIn = "You must authenticate yourself before you can access this endpoint."
	MsgNoMFA       = "This endpoint can only be accessed through a multi-factor authenticated session."
	MsgNotMember   = "This endpoint requires foundation membership your account does not have."
	MsgNotChair    = "This endpoint requires chairing a project management committee."
	MsgNotRoot     = "This endpoint requires administrative (root) access."
	MsgNotRole     = "This endpoint can only be accessed by role accounts."
)

// Requirement is a named, pure predicate over a Session. Values can only be
// created through Register, which keeps the set of recognized requirements
// closed: a Checker built from requirements that are not in the registry is
// rejected at declaration time, not at request time.
type Requirement struct {
	name    string
	check   func(*Session) bool
	failMsg string
}

// Name returns the registry name of the requirement.
func (r *Requirement) Name() string { return r.name }

// Check evaluates the requirement, returning the fixed failure message when
// the predicate does not hold.
func (r *Requirement) Check(s *Session) (bool, string) {
	if r.check(s) {
		return true, ""
	}
	return false, r.failMsg
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Requirement{}
)

// Register adds a requirement to the recognized registry and returns it.
// Registering a duplicate name is a programming error.
func Register(name, failMsg string, check func(*Session) bool) (*Requirement, error) {
	if name == "" || check == nil {
		return nil, fmt.Errorf("requirement %q: name and predicate are required", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return nil, fmt.Errorf("requirement %q already registered", name)
	}
	r := &Requirement{name: name, check: check, failMsg: failMsg}
	registry[name] = r
	return r, nil
}

func mustRegister(name, failMsg string, check func(*Session) bool) *Requirement {
	r, err := Register(name, failMsg, check)
	if err != nil {
		panic(err)
	}
	return r
}

// Built-in requirements. Committer is satisfied by any resolved session.
var (
	Committer   = mustRegister("committer", MsgNotLoggedIn, func(s *Session) bool { return s != nil })
	Member      = mustRegister("member", MsgNotMember, func(s *Session) bool { return s != nil && s.IsMember })
	Chair       = mustRegister("chair", MsgNotChair, func(s *Session) bool { return s != nil && s.IsChair })
	Root        = mustRegister("root", MsgNotRoot, func(s *Session) bool { return s != nil && s.IsRoot })
	MFAEnabled  = mustRegister("mfa-enabled", MsgNoMFA, func(s *Session) bool { return s != nil && s.MFAVerified })
	RoleAccount = mustRegister("role-account", MsgNotRole, func(s *Session) bool { return s != nil && s.IsRoleAccount })
)

// Expression is a declarative authorization predicate attached to an endpoint:
// every AllOf requirement must hold, and at least one AnyOf requirement must
// hold, for access to be granted. Both sets may be empty, in which case any
// resolved session suffices.
type Expression struct {
	AllOf []*Requirement
	AnyOf []*Requirement
}

// Checker is a validated Expression ready for request-time evaluation.
type Checker struct {
	allOf []*Requirement
	anyOf []*Requirement
}

// Declare validates an Expression against the requirement registry and returns
// a Checker. An unrecognized requirement yields ErrUnknownRequirement; callers
// are expected to declare requirements at startup so this surfaces before any
// request is served.
func Declare(expr Expression) (*Checker, error) {
	for _, group := range [][]*Requirement{expr.AllOf, expr.AnyOf} {
		for _, r := range group {
			if err := validateRegistered(r); err != nil {
				return nil, err
			}
		}
	}
	return &Checker{allOf: expr.AllOf, anyOf: expr.AnyOf}, nil
}

// MustDeclare is Declare for startup wiring; it panics on an unrecognized
// requirement, which is a programming error.
func MustDeclare(expr Expression) *Checker {
	c, err := Declare(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func validateRegistered(r *Requirement) error {
	if r == nil {
		return fmt.Errorf("%w: nil requirement", ErrUnknownRequirement)
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	// Identity check, not just name: a foreign value reusing a known name is
	// still unrecognized.
	if registry[r.name] != r {
		return fmt.Errorf("%w: %q", ErrUnknownRequirement, r.name)
	}
	return nil
}

// Evaluate checks a resolved session against the declared requirements.
// A nil session fails immediately with MsgNotLoggedIn. AllOf failures are
// collected and joined in declaration order; AnyOf evaluation short-circuits
// on the first satisfied requirement, and its collected failure messages are
// discarded on success.
func (c *Checker) Evaluate(s *Session) error {
	if s == nil {
		return Failed(MsgNotLoggedIn)
	}

	var failures []string
	for _, r := range c.allOf {
		if ok, msg := r.Check(s); !ok {
			failures = append(failures, msg)
		}
	}
	if len(failures) > 0 {
		return Failed(strings.Join(failures, "\n"))
	}

	if len(c.anyOf) == 0 {
		return nil
	}
	failures = failures[:0]
	for _, r := range c.anyOf {
		ok, msg := r.Check(s)
		if ok {
			return nil
		}
		failures = append(failures, msg)
	}
	return Failed(strings.Join(failures, "\n"))
}
