// Package remote 笔记服务的 HTTP 客户端，实现 domain.NoteRemote
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dejay09121/Noteapp/internal/domain"
	pkgapp "github.com/dejay09121/Noteapp/pkg/app"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config 客户端配置
type Config struct {
	ServerURL string
	Timeout   time.Duration
	// Token 返回当前登录 Token，随每个请求发送
	Token func() string
	Lang  string
}

// Client 笔记服务 HTTP 客户端
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// Error 服务端返回的业务错误
type Error struct {
	HTTPStatus int
	Code       int
	Message    string
	Details    []string
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("remote error %d (%d): %s: %s", e.Code, e.HTTPStatus, e.Message, strings.Join(e.Details, ", "))
	}
	return fmt.Sprintf("remote error %d (%d): %s", e.Code, e.HTTPStatus, e.Message)
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Details any    `json:"details"`
}

// New 创建客户端
func New(c Config, lg *zap.Logger) *Client {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return &Client{config: c, http: &http.Client{Timeout: c.Timeout}, logger: lg}
}

// List 获取当前用户的全部笔记，ownerID 由 Token 决定
func (c *Client) List(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	var notes []*domain.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) Insert(ctx context.Context, ownerID string, in *domain.NoteInput) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPost, "/api/note", in, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) Update(ctx context.Context, ownerID, id string, in *domain.NoteInput) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPut, "/api/note/"+url.PathEscape(id), in, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteRequest 批量删除请求体
type DeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

func (c *Client) DeleteBatch(ctx context.Context, ownerID string, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/api/notes", &DeleteRequest{IDs: ids}, nil)
}

// Version 服务端版本
func (c *Client) Version(ctx context.Context) (*pkgapp.VersionInfo, error) {
	var v pkgapp.VersionInfo
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := sonic.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.ServerURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != nil {
		if token := c.config.Token(); token != "" {
			req.Header.Set("token", token)
		}
	}
	if c.config.Lang != "" {
		req.Header.Set("lang", c.config.Lang)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	c.logger.Debug("remote request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var env envelope[sonic.NoCopyRawMessage]
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return &Error{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Status {
		return &Error{HTTPStatus: resp.StatusCode, Code: env.Code, Message: env.Message, Details: detailsOf(env.Details)}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(sonic.Unmarshal(env.Data, out), "decode response")
}

func detailsOf(v any) []string {
	switch d := v.(type) {
	case string:
		if d == "" {
			return nil
		}
		return strings.Split(d, ",")
	case []any:
		out := make([]string, 0, len(d))
		for _, x := range d {
			out = append(out, fmt.Sprint(x))
		}
		return out
	}
	return nil
}
