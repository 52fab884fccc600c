package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memberSession() *Session {
	return &Session{UID: "alice", Email: "alice@example.org", IsMember: true, MFAVerified: true}
}

func TestDeclare_RejectsForeignRequirement(t *testing.T) {
	// A value that reuses a registered name but was not created through
	// Register must still be rejected.
	forged := &Requirement{name: "member", check: func(*Session) bool { return true }}

	_, err := Declare(Expression{AllOf: []*Requirement{forged}})
	assert.ErrorIs(t, err, ErrUnknownRequirement)

	_, err = Declare(Expression{AnyOf: []*Requirement{nil}})
	assert.ErrorIs(t, err, ErrUnknownRequirement)
}

func TestDeclare_AcceptsBuiltins(t *testing.T) {
	c, err := Declare(Expression{
		AllOf: []*Requirement{MFAEnabled},
		AnyOf: []*Requirement{Member, Chair},
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestChecker_Evaluate_NilSession(t *testing.T) {
	c := MustDeclare(Expression{AllOf: []*Requirement{Member}})

	err := c.Evaluate(nil)
	var failed *AuthenticationFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, 403, failed.Status)
	assert.Equal(t, MsgNotLoggedIn, failed.Message)
}

func TestChecker_Evaluate_AllOfCollectsEveryFailure(t *testing.T) {
	c := MustDeclare(Expression{AllOf: []*Requirement{Member, Chair, Root}})

	sess := &Session{UID: "bob", Email: "bob@example.org"}
	err := c.Evaluate(sess)
	var failed *AuthenticationFailed
	require.ErrorAs(t, err, &failed)

	lines := strings.Split(failed.Message, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, MsgNotMember, lines[0])
	assert.Equal(t, MsgNotChair, lines[1])
	assert.Equal(t, MsgNotRoot, lines[2])
}

func TestChecker_Evaluate_AnyOfShortCircuits(t *testing.T) {
	calls := 0
	counted, err := Register("counted-test-req", "never satisfied", func(*Session) bool {
		calls++
		return false
	})
	require.NoError(t, err)

	c := MustDeclare(Expression{AnyOf: []*Requirement{Member, counted}})

	// Member holds, so the second requirement is never consulted.
	require.NoError(t, c.Evaluate(memberSession()))
	assert.Zero(t, calls)
}

func TestChecker_Evaluate_AnyOfJoinsFailures(t *testing.T) {
	c := MustDeclare(Expression{AnyOf: []*Requirement{Chair, Root}})

	err := c.Evaluate(memberSession())
	var failed *AuthenticationFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, MsgNotChair+"\n"+MsgNotRoot, failed.Message)
}

func TestChecker_Evaluate_EmptyExpressionRequiresOnlyASession(t *testing.T) {
	c := MustDeclare(Expression{})

	require.NoError(t, c.Evaluate(&Session{UID: "carol", Email: "carol@example.org"}))
	assert.Error(t, c.Evaluate(nil))
}

func TestBuiltinRequirements(t *testing.T) {
	tests := []struct {
		name string
		req  *Requirement
		sess *Session
		ok   bool
		msg  string
	}{
		{name: "committer holds for any session", req: Committer, sess: &Session{UID: "x"}, ok: true},
		{name: "member fails without flag", req: Member, sess: &Session{UID: "x"}, ok: false, msg: MsgNotMember},
		{name: "member holds with flag", req: Member, sess: &Session{UID: "x", IsMember: true}, ok: true},
		{name: "chair fails without flag", req: Chair, sess: &Session{UID: "x"}, ok: false, msg: MsgNotChair},
		{name: "root holds with flag", req: Root, sess: &Session{UID: "x", IsRoot: true}, ok: true},
		{name: "mfa fails without flag", req: MFAEnabled, sess: &Session{UID: "x"}, ok: false, msg: MsgNoMFA},
		{name: "role account holds with flag", req: RoleAccount, sess: &Session{UID: "x", IsRoleAccount: true}, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := tt.req.Check(tt.sess)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestRegister_DuplicateName(t *testing.T) {
	_, err := Register("member", "msg", func(*Session) bool { return true })
	assert.Error(t, err)
}
