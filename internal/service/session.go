package service

import (
	"context"
	"sync"

	"github.com/dejay09121/Noteapp/internal/domain"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"
)

// TokenSession 以 JWT 表示当前登录态
type TokenSession struct {
	mu    sync.RWMutex
	token string
	parse func(token string) (*pkgapp.UserEntity, error)
}

// NewTokenSession 创建会话，parse 为空时不校验签名只读取声明
func NewTokenSession(token string, parse func(string) (*pkgapp.UserEntity, error)) *TokenSession {
	if parse == nil {
		parse = pkgapp.ParseUnverified
	}
	return &TokenSession{token: token, parse: parse}
}

// CurrentUser 未设置 Token 时返回 (nil, nil)
func (s *TokenSession) CurrentUser(ctx context.Context) (*domain.User, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return nil, nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: claims.UID, Nickname: claims.Nickname}, nil
}

// Token 当前 Token
func (s *TokenSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken 登录或登出（传空串）
func (s *TokenSession) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// StaticSession 固定用户的会话，nil 表示未登录
type StaticSession struct {
	User *domain.User
}

func (s StaticSession) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.User, nil
}
