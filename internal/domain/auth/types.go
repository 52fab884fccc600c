package auth

// Package auth contains domain-level types for authentication, sessions, and
// authorization requirements. It is pure and free of framework/adapter concerns.

import (
	"time"
)

// Session is the authenticated identity attached to a request. It is immutable
// once constructed except for LastUsedAt, which the session store refreshes on
// every successful read.
type Session struct {
	UID           string         `json:"uid"`
	DN            string         `json:"dn,omitempty"`
	FullName      string         `json:"fullname,omitempty"`
	Email         string         `json:"email"`
	IsMember      bool           `json:"isMember"`
	IsChair       bool           `json:"isChair"`
	IsRoot        bool           `json:"isRoot"`
	Committees    []string       `json:"committees,omitempty"`
	Projects      []string       `json:"projects,omitempty"`
	MFAVerified   bool           `json:"mfa"`
	IsRoleAccount bool           `json:"roleaccount"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	LastUsedAt    time.Time      `json:"uts"`
}

// NewSessionInput groups the fields callers provide when constructing a Session.
type NewSessionInput struct {
	UID           string
	DN            string
	FullName      string
	Email         string
	IsMember      bool
	IsChair       bool
	IsRoot        bool
	Committees    []string
	Projects      []string
	MFAVerified   bool
	IsRoleAccount bool
	Metadata      map[string]any
}

// NewSession constructs a Session, defaulting Email to uid@defaultDomain when
// absent. UID must be non-empty.
func NewSession(in NewSessionInput, defaultDomain string) (*Session, error) {
	if in.UID == "" {
		return nil, ErrEmptyUID
	}
	email := in.Email
	if email == "" && defaultDomain != "" {
		email = in.UID + "@" + defaultDomain
	}
	return &Session{
		UID:           in.UID,
		DN:            in.DN,
		FullName:      in.FullName,
		Email:         email,
		IsMember:      in.IsMember,
		IsChair:       in.IsChair,
		IsRoot:        in.IsRoot,
		Committees:    in.Committees,
		Projects:      in.Projects,
		MFAVerified:   in.MFAVerified,
		IsRoleAccount: in.IsRoleAccount,
		Metadata:      in.Metadata,
		LastUsedAt:    time.Now(),
	}, nil
}

// Affiliations is a user's project membership/ownership snapshot sourced from
// the directory service. OwnerOf holds committee (PMC) group names, MemberOf
// holds committer group names.
type Affiliations struct {
	OwnerOf  []string
	MemberOf []string
}
