// Package access implements access-code verification: classifying a
// submitted code into a role, minting the session token and naming the
// client's redirect target.
package access

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pendoke/pendo-backend/internal/accesscode"
	"github.com/pendoke/pendo-backend/internal/models"
	"github.com/pendoke/pendo-backend/internal/tokens"
)

// ErrUnauthorized is returned for every non-matching code. Callers must not
// expose which lookup failed; the client-facing message is always the same.
var ErrUnauthorized = errors.New("invalid or inactive access code")

const (
	RedirectAdmin      = "/admin"
	RedirectCounsellor = "/counsellor"
	RedirectTriage     = "/triage"
)

type Result struct {
	Role     string
	Redirect string
	Token    string
	// User carries the principal data returned to the client: the admin
	// identity, the full counselor record, or nil for students.
	User   any
	School string
}

type Service struct {
	DB        *gorm.DB
	JWTSecret []byte
	// AdminCode is the operator-configured override literal. Empty means
	// only the legacy literal and the admins table grant admin access.
	AdminCode string
}

// resolver is one step of the classification chain. match guards whether the
// step applies at all; resolve returns nil when the step applies but finds
// no principal.
type resolver struct {
	match   func(code string) bool
	resolve func(code string) (*Result, error)
}

func matchAny(string) bool { return true }

func hasPrefix(prefix string) func(string) bool {
	return func(code string) bool { return strings.HasPrefix(code, prefix) }
}

// chain returns the resolution order. The admin step runs first and without
// a prefix guard so an operator-configured literal works regardless of its
// shape; counselor and school steps are gated by their code prefixes.
func (s *Service) chain() []resolver {
	return []resolver{
		{match: matchAny, resolve: s.resolveAdmin},
		{match: hasPrefix(accesscode.PrefixCounselor), resolve: s.resolveCounselor},
		{match: hasPrefix(accesscode.PrefixSchool), resolve: s.resolveSchool},
	}
}

// Verify normalizes the raw code and walks the chain in priority order,
// returning the first match or ErrUnauthorized.
func (s *Service) Verify(rawCode string) (*Result, error) {
	code := accesscode.Normalize(rawCode)

	for _, r := range s.chain() {
		if !r.match(code) {
			continue
		}
		res, err := r.resolve(code)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, ErrUnauthorized
}

func (s *Service) resolveAdmin(code string) (*Result, error) {
	var admin models.Admin
	err := s.DB.Where("access_code = ?", code).First(&admin).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	claims := tokens.Claims{Name: "Super Admin", Role: models.RoleAdmin}
	switch {
	case err == nil:
		claims.ID = admin.ID
		claims.Name = admin.Username
	case code == accesscode.LegacyAdminCode,
		s.AdminCode != "" && code == s.AdminCode:
		// legacy/ops literal: an admin principal with no backing record
	default:
		return nil, nil
	}

	token, err := tokens.Sign(claims, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	user := map[string]any{"name": claims.Name, "role": models.RoleAdmin}
	if claims.ID != 0 {
		user["id"] = claims.ID
	}
	return &Result{
		Role:     models.RoleAdmin,
		Redirect: RedirectAdmin,
		Token:    token,
		User:     user,
	}, nil
}

func (s *Service) resolveCounselor(code string) (*Result, error) {
	var counselor models.Counselor
	if err := s.DB.Where("access_code = ?", code).First(&counselor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	claims := tokens.Claims{ID: counselor.ID, Name: counselor.Name, Role: models.RoleCounsellor}
	token, err := tokens.Sign(claims, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &Result{
		Role:     models.RoleCounsellor,
		Redirect: RedirectCounsellor,
		Token:    token,
		User:     counselor,
	}, nil
}

func (s *Service) resolveSchool(code string) (*Result, error) {
	var request models.AccessRequest
	err := s.DB.
		Where("access_code = ? AND status = ?", code, models.RequestStatusApproved).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	claims := tokens.Claims{Name: request.SchoolName, Role: models.RoleStudent, School: request.SchoolName}
	token, err := tokens.Sign(claims, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &Result{
		Role:     models.RoleStudent,
		Redirect: RedirectTriage,
		Token:    token,
		School:   request.SchoolName,
	}, nil
}
