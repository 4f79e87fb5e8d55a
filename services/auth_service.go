package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/stores"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var redisCtx = context.Background()

// AuthConfig 认证配置
type AuthConfig struct {
	MaxLoginAttempts   int           // 最大登录失败次数
	LoginBlockDuration time.Duration // 登录封禁时长
}

// AuthService 认证服务
type AuthService struct {
	jwtService *config.JWTService
	authConfig *AuthConfig
}

// NewAuthService 创建认证服务实例
func NewAuthService() *AuthService {
	return &AuthService{
		jwtService: config.GetJWTService(),
		authConfig: &AuthConfig{
			MaxLoginAttempts:   config.GetEnvInt("AUTH_MAX_LOGIN_ATTEMPTS", 5),
			LoginBlockDuration: config.GetEnvDuration("AUTH_LOGIN_BLOCK_DURATION", 15*time.Minute),
		},
	}
}

// RegisterInput 注册入参
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        string // brand 或 creator
	DisplayName string
}

// Register 注册新用户（密码bcrypt加密）
func (s *AuthService) Register(in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleBrand && in.Role != models.RoleCreator {
		return nil, models.ErrInvalidOwnerRole
	}

	// 检查用户名/邮箱唯一性
	var existing models.User
	if err := config.DB.Where("username = ?", in.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := config.DB.Where("email = ?", in.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    string(hashed),
		Role:        in.Role,
		DisplayName: in.DisplayName,
		Status:      1,
	}

	if err := config.DB.Create(user).Error; err != nil {
		// 检查与插入之间并发注册的竞态由唯一索引兜底
		return nil, registerConflict(err)
	}
	return user, nil
}

// registerConflict 把注册落库时的唯一索引冲突（1062）归类回业务错误
func registerConflict(err error) error {
	if !stores.IsDuplicateEntry(err) {
		return err
	}
	if strings.Contains(err.Error(), "username") {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// LoginResult 登录结果
type LoginResult struct {
	User  *models.User
	Token string
}

// Login 邮箱+密码登录，签发JWT
// 失败次数用Redis计数，超限封禁一段时间
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if s.isLoginBlocked(email) {
		return nil, ErrLoginBlocked
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLoginFailure(email)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.recordLoginFailure(email)
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// 更新最后登录时间（失败不影响登录结果）
	now := time.Now()
	config.DB.Model(&user).Update("last_login", &now)
	s.clearLoginFailures(email)

	return &LoginResult{User: &user, Token: token}, nil
}

// RefreshToken 刷新即将过期的token
func (s *AuthService) RefreshToken(tokenString string) (string, error) {
	return s.jwtService.RefreshToken(tokenString)
}

// isLoginBlocked 检查该邮箱是否因失败次数过多被封禁
func (s *AuthService) isLoginBlocked(email string) bool {
	if config.RedisClient == nil {
		return false
	}
	count, err := config.RedisClient.Get(redisCtx, loginFailureKey(email)).Int()
	if err != nil {
		return false
	}
	return count >= s.authConfig.MaxLoginAttempts
}

// recordLoginFailure 记录一次登录失败
func (s *AuthService) recordLoginFailure(email string) {
	if config.RedisClient == nil {
		return
	}
	key := loginFailureKey(email)
	count, err := config.RedisClient.Incr(redisCtx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		config.RedisClient.Expire(redisCtx, key, s.authConfig.LoginBlockDuration)
	}
}

// clearLoginFailures 登录成功后清除失败计数
func (s *AuthService) clearLoginFailures(email string) {
	if config.RedisClient == nil {
		return
	}
	config.RedisClient.Del(redisCtx, loginFailureKey(email))
}

func loginFailureKey(email string) string {
	return fmt.Sprintf("login:failures:%s", email)
}
