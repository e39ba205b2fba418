package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/dejay09121/Noteapp/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "noteapp"

// contextUserKey gin.Context 中保存用户信息的键
const contextUserKey = "user_token"

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        // JWT 签名密钥
	Expiry    time.Duration // Token 过期时间，默认 365 天
	Issuer    string        // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(uid, nickname string) (string, error)
	Parse(token string) (*UserEntity, error)
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 365 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

// UserEntity JWT 中保存的用户信息
type UserEntity struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

func (t *tokenManager) signingKey() []byte {
	return []byte(t.config.SecretKey + "_" + util.GetMachineID())
}

// Generate 生成一个新的 JWT Token
func (t *tokenManager) Generate(uid, nickname string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("empty uid")
	}
	now := time.Now()
	claims := &UserEntity{
		UID:      uid,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   "user-token",
			ID:        uid,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey())
}

// Parse 校验签名并解析 JWT Token
func (t *tokenManager) Parse(token string) (*UserEntity, error) {
	claims := &UserEntity{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.signingKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.UID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ParseUnverified 不校验签名读取 Token 中的用户信息，仅检查过期时间
// Clients do not hold the signing key; the server verifies every request.
func ParseUnverified(token string) (*UserEntity, error) {
	claims := &UserEntity{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if claims.UID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, jwt.ErrTokenExpired
	}
	return claims, nil
}

// TokenFromRequest 从 token 请求头或 Authorization: Bearer 中读取 Token
func TokenFromRequest(c *gin.Context) string {
	if t := c.GetHeader("token"); t != "" {
		return t
	}
	if t, ok := c.GetQuery("token"); ok {
		return t
	}
	auth := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// SetUser 保存已认证用户到 Context
func SetUser(c *gin.Context, user *UserEntity) {
	c.Set(contextUserKey, user)
}

// GetUID 从 Context 中提取用户 ID
func GetUID(c *gin.Context) string {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*UserEntity); ok {
			return user.UID
		}
	}
	return ""
}
