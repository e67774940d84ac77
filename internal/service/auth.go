package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/core/auth"
	"taskboard/internal/core/cache"
	"taskboard/internal/domain"
	"taskboard/pkg/utils"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"fullName" validate:"max=128"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult 注册/登录成功的返回
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService struct {
	store   domain.Store
	jwt     *auth.JWTer
	log     *zap.Logger
	cache   *cache.Cache // nil 表示不缓存
	userTTL time.Duration
	admins  []string
}

type AuthOption func(*AuthService)

// WithUserCache 鉴权时按 user:<id> 缓存用户
func WithUserCache(c *cache.Cache, ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		s.cache = c
		s.userTTL = ttl
	}
}

// WithAdminUsernames 这些用户名注册即为 admin
func WithAdminUsernames(names []string) AuthOption {
	return func(s *AuthService) { s.admins = names }
}

func NewAuthService(store domain.Store, jwt *auth.JWTer, log *zap.Logger, opts ...AuthOption) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &AuthService{store: store, jwt: jwt, log: log, userTTL: 5 * time.Minute}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	users := s.store.Users()
	if u, err := users.FindByUsername(ctx, in.Username); err != nil {
		return nil, domain.Internal("register", err)
	} else if u != nil {
		return nil, domain.Conflict("username already exists")
	}
	if u, err := users.FindByEmail(ctx, in.Email); err != nil {
		return nil, domain.Internal("register", err)
	} else if u != nil {
		return nil, domain.Conflict("email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return nil, domain.Validation("password is too long")
		}
		return nil, domain.Internal("hash password", err)
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         domain.RoleUser,
	}
	if s.isAdminUsername(u.Username) {
		u.Role = domain.RoleAdmin
	}
	if err := users.Create(ctx, u); err != nil {
		// 并发注册：预检通过但唯一索引冲突
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.Conflict("username or email already exists")
		}
		return nil, domain.Internal("create user", err)
	}
	s.log.Info("user registered", zap.String("userId", u.ID), zap.String("username", u.Username), zap.String("role", u.Role))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.store.Users().FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, domain.Internal("login", err)
	}
	if u == nil {
		// 用户不存在时也跑一次 bcrypt，避免响应时间泄露用户名是否存在
		utils.CheckPassword(in.Password, dummyHash())
		return nil, errBadCredentials
	}
	if !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, errBadCredentials
	}
	return s.issue(u)
}

var errBadCredentials = domain.Unauthenticated("invalid username or password")

var (
	dummyOnce sync.Once
	dummy     string
)

func dummyHash() string {
	dummyOnce.Do(func() { dummy, _ = utils.HashPassword("taskboard-dummy-password") })
	return dummy
}

func (s *AuthService) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.jwt.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	return &AuthResult{Token: tok, User: u}, nil
}

// Verify 校验令牌并确认用户仍存在；角色以库里为准
func (s *AuthService) Verify(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.Unauthenticated("missing token")
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return domain.Identity{}, domain.Unauthenticated("invalid or expired token")
	}
	u, err := s.loadUser(ctx, claims.UID)
	if err != nil {
		return domain.Identity{}, domain.Internal("load user", err)
	}
	if u == nil {
		return domain.Identity{}, domain.Unauthenticated("user no longer exists")
	}
	return domain.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

func (s *AuthService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	u, err := s.store.Users().FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, domain.Internal("load user", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	return u, nil
}

// ForgetUser 删除用户后失效缓存
func (s *AuthService) ForgetUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userCacheKey(userID)); err != nil {
		s.log.Warn("invalidate user cache failed", zap.String("userId", userID), zap.Error(err))
	}
}

func (s *AuthService) loadUser(ctx context.Context, id string) (*domain.User, error) {
	load := func(ctx context.Context) (*domain.User, error) {
		return s.store.Users().FindByID(ctx, id)
	}
	if s.cache == nil {
		return load(ctx)
	}
	u, err := cache.GetOrLoadJSON(s.cache, ctx, userCacheKey(id), s.userTTL, load)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func userCacheKey(id string) string { return "taskboard:user:" + id }

func (s *AuthService) isAdminUsername(name string) bool {
	for _, a := range s.admins {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}
