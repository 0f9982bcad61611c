// Package auth guards admin endpoints with bearer tokens and casbin roles.
package auth

import (
	"errors"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Objects and actions checked by RequirePermission.
const (
	ObjTariffs  = "tariffs"
	ObjSettings = "settings"
	ObjJobs     = "jobs"

	ActRead  = "read"
	ActWrite = "write"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrUnknownRole  = errors.New("auth: unknown role")
)

// Token is a configured API token. Hash is the bcrypt hash of the raw
// bearer value; the raw value is never stored.
type Token struct {
	Name string
	Role string
	Hash string
}

type Service struct {
	tokens   []Token
	enforcer *casbin.Enforcer
}

// NewService builds the enforcer and binds every token name to its role.
func NewService(tokens []Token) (*Service, error) {
	m, err := model.NewModelFromString(`
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (r.obj == p.obj || p.obj == "*") && (r.act == p.act || p.act == "*")
`)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	// Admin can do everything
	if _, err := e.AddPolicy(RoleAdmin, "*", "*"); err != nil {
		return nil, err
	}
	// Viewer can only read
	for _, obj := range []string{ObjTariffs, ObjSettings, ObjJobs} {
		if _, err := e.AddPolicy(RoleViewer, obj, ActRead); err != nil {
			return nil, err
		}
	}

	for _, t := range tokens {
		if t.Role != RoleAdmin && t.Role != RoleViewer {
			return nil, fmt.Errorf("%w %q for token %q", ErrUnknownRole, t.Role, t.Name)
		}
		if t.Name == "" || t.Hash == "" {
			return nil, fmt.Errorf("auth: token needs a name and a hash")
		}
		if _, err := e.AddGroupingPolicy(t.Name, t.Role); err != nil {
			return nil, err
		}
	}

	return &Service{tokens: tokens, enforcer: e}, nil
}

// GenerateToken returns a new random raw token and its bcrypt hash.
func GenerateToken() (raw, hash string, err error) {
	raw = uuid.New().String() + uuid.New().String()
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return raw, string(h), nil
}

// ValidateToken returns the configured token matching raw.
func (s *Service) ValidateToken(raw string) (*Token, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	for i := range s.tokens {
		if bcrypt.CompareHashAndPassword([]byte(s.tokens[i].Hash), []byte(raw)) == nil {
			t := s.tokens[i]
			return &t, nil
		}
	}
	return nil, ErrInvalidToken
}

func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	return s.enforcer.Enforce(sub, obj, act)
}
