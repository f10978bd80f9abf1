package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	auditdomain "github.com/Rosario027/finalerp/internal/audit/domain"
	"github.com/Rosario027/finalerp/internal/auth/domain"
	"github.com/Rosario027/finalerp/internal/auth/password"
	"github.com/Rosario027/finalerp/internal/auth/token"
	"github.com/Rosario027/finalerp/internal/clock"
	"github.com/Rosario027/finalerp/internal/ratelimit"
	"github.com/Rosario027/finalerp/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,63}$`)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Tokens   *token.Issuer
	Limiter  *ratelimit.LoginLimiter `optional:"true"`
	AuditSvc auditdomain.Service     `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	tokens   *token.Issuer
	limiter  *ratelimit.LoginLimiter
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		tokens:   p.Tokens,
		limiter:  p.Limiter,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if allowed, retryAfter := s.limiter.Allow(ctx, username, req.ClientIP); !allowed {
		s.log.Warn("login throttled",
			zap.String("username", username),
			zap.String("client_ip", req.ClientIP),
			zap.Duration("retry_after", retryAfter),
		)
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info("login failed", zap.String("username", username), zap.String("reason", "unknown_user"))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		s.log.Info("login failed", zap.String("username", username), zap.String("reason", "bad_password"))
		return nil, domain.ErrInvalidCredentials
	}

	raw, expires, err := s.tokens.Issue(user.ID.String(), user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	s.log.Info("login succeeded", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return &domain.LoginResult{
		Token:     raw,
		ExpiresAt: expires,
		User:      toResponse(user),
	}, nil
}

// Authenticate re-reads the user so that role changes and deletions apply to live tokens.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Principal, error) {
	raw := strings.TrimSpace(rawToken)
	if raw == "" {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	id, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return &domain.Principal{
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (*domain.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, error) {
	username := normalizeUsername(req.Username)
	if !usernamePattern.MatchString(username) {
		return nil, domain.ErrInvalidUsername
	}
	if len(req.Password) < password.MinLength {
		return nil, domain.ErrInvalidPassword
	}
	role := domain.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	user, err := s.insert(ctx, username, req.Password, role)
	if err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	s.emitAudit(ctx, auditdomain.ActionUserCreate, user, nil)
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toResponse(&users[i]))
	}
	return resp, nil
}

func (s *Service) UpdateUser(ctx context.Context, req domain.UpdateUserRequest) (*domain.UserResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var role *domain.Role
	if req.Role != nil {
		parsed, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		role = &parsed
	}
	var hashed string
	if req.Password != nil {
		if len(*req.Password) < password.MinLength {
			return nil, domain.ErrInvalidPassword
		}
		hashed, err = password.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
	}

	var changed []string
	var user *domain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		fields := map[string]any{"updated_at": now}
		if role != nil && *role != current.Role {
			if current.Role == domain.RoleAdmin {
				if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
					return err
				}
			}
			fields["role"] = *role
			current.Role = *role
			changed = append(changed, "role")
		}
		if hashed != "" {
			fields["password_hash"] = hashed
			fields["last_password_changed"] = now
			current.PasswordHash = hashed
			changed = append(changed, "password")
		}
		if len(changed) == 0 {
			user = current
			return nil
		}
		if err := s.repo.UpdateFields(ctx, tx, id, fields); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(changed) > 0 {
		s.log.Info("user updated", zap.String("user_id", user.ID.String()), zap.Strings("fields", changed))
		s.emitAudit(ctx, auditdomain.ActionUserUpdate, user, map[string]any{"fields": changed})
	}
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID, userID string) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(actorID) == id.String() {
		return domain.ErrCannotDeleteSelf
	}

	var user *domain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Role == domain.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		user = current
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", user.ID.String()))
	s.emitAudit(ctx, auditdomain.ActionUserDelete, user, nil)
	return nil
}

func (s *Service) EnsureAdmin(ctx context.Context, username, plain string) (bool, error) {
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	username = normalizeUsername(username)
	if !usernamePattern.MatchString(username) {
		return false, domain.ErrInvalidUsername
	}
	if len(plain) < password.MinLength {
		return false, domain.ErrInvalidPassword
	}
	user, err := s.insert(ctx, username, plain, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", zap.String("user_id", user.ID.String()), zap.String("username", username))
	return true, nil
}

func (s *Service) insert(ctx context.Context, username, plain string, role domain.Role) (*domain.User, error) {
	hashed, err := password.Hash(plain)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	user := &domain.User{
		ID:                  s.genID.Generate(),
		Username:            username,
		PasswordHash:        hashed,
		Role:                role,
		LastPasswordChanged: &now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) ensureAnotherAdmin(ctx context.Context, tx *gorm.DB) error {
	admins, err := s.repo.CountByRole(ctx, tx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID string) (*domain.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) emitAudit(ctx context.Context, action string, user *domain.User, extra map[string]any) {
	if s.auditSvc == nil || user == nil {
		return
	}
	metadata := map[string]any{
		"username": user.Username,
		"role":     string(user.Role),
	}
	for key, value := range extra {
		metadata[key] = value
	}
	_ = s.auditSvc.AuditLog(ctx, action, auditdomain.TargetUser, user.ID.String(), metadata)
}

func toResponse(user *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func normalizeUsername(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidUserID
	}
	return id, nil
}
