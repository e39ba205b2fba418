package cmd

import (
	"context"

	"github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/domain"
	"github.com/dejay09121/Noteapp/pkg/code"
	apperrors "github.com/dejay09121/Noteapp/pkg/errors"
)

// requireUser 命令行下未登录要明确报错，而不是静默返回空列表
func requireUser(ctx context.Context, c *app.Client) (*domain.User, error) {
	user, err := c.Session.CurrentUser(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(code.ErrorAuthenticationAbsent, err)
	}
	if user == nil {
		return nil, code.ErrorAuthenticationAbsent
	}
	return user, nil
}
