package service

import (
	"context"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok/v2"
)

// ErrTunnelTokenMissing 未配置 ngrok auth token
var ErrTunnelTokenMissing = errors.New("ngrok auth token is required")

// TunnelService 将本地 HTTP 服务通过 ngrok 暴露到公网
type TunnelService interface {
	Start(ctx context.Context, localAddr string) error
	Stop(ctx context.Context) error
	PublicURL() string
}

type tunnelService struct {
	logger    *zap.Logger
	authToken string
	domain    string

	mu       sync.Mutex
	agent    ngrok.Agent
	listener net.Listener
	url      string
	conns    sync.WaitGroup
}

// NewTunnelService domain 为空时由 ngrok 分配地址
func NewTunnelService(logger *zap.Logger, authToken, domain string) TunnelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tunnelService{logger: logger, authToken: authToken, domain: domain}
}

func (s *tunnelService) Start(ctx context.Context, localAddr string) error {
	if s.authToken == "" {
		return ErrTunnelTokenMissing
	}
	target := DialAddr(localAddr)

	agent, err := ngrok.NewAgent(ngrok.WithAuthtoken(s.authToken))
	if err != nil {
		return errors.Wrap(err, "create ngrok agent")
	}

	var opts []ngrok.EndpointOption
	if s.domain != "" {
		opts = append(opts, ngrok.WithURL("https://"+s.domain))
	}
	ln, err := agent.Listen(ctx, opts...)
	if err != nil {
		_ = agent.Disconnect()
		return errors.Wrap(err, "open ngrok endpoint")
	}

	s.mu.Lock()
	s.agent, s.listener, s.url = agent, ln, endpointURL(ln)
	s.mu.Unlock()
	s.logger.Info("tunnel established", zap.String("url", s.url), zap.String("target", target))

	go s.accept(ln, target)
	return nil
}

func (s *tunnelService) accept(ln net.Listener, target string) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.logger.Debug("tunnel accept stopped", zap.Error(err))
			return
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.forward(conn, target)
		}()
	}
}

// forward 双向拷贝，任一方向结束即关闭两端
func (s *tunnelService) forward(remote net.Conn, target string) {
	defer remote.Close()
	local, err := net.Dial("tcp", target)
	if err != nil {
		s.logger.Warn("tunnel dial local failed", zap.String("target", target), zap.Error(err))
		return
	}
	defer local.Close()

	done := make(chan struct{}, 2)
	go func() {
		_, _ = io.Copy(local, remote)
		done <- struct{}{}
	}()
	go func() {
		_, _ = io.Copy(remote, local)
		done <- struct{}{}
	}()
	<-done
}

func (s *tunnelService) Stop(ctx context.Context) error {
	s.mu.Lock()
	ln, agent := s.listener, s.agent
	s.listener, s.agent = nil, nil
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil {
			s.logger.Warn("close tunnel listener failed", zap.Error(err))
		}
	}
	if agent != nil {
		if err := agent.Disconnect(); err != nil {
			s.logger.Warn("disconnect ngrok agent failed", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *tunnelService) PublicURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func endpointURL(ln net.Listener) string {
	switch u := ln.(type) {
	case interface{ URL() *url.URL }:
		return u.URL().String()
	case interface{ URL() string }:
		return u.URL()
	}
	return ln.Addr().String()
}

// DialAddr 将 ":9000" 这类只含端口的监听地址转为可拨号的本地地址
func DialAddr(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "127.0.0.1" + listen
	}
	host, port, err := net.SplitHostPort(listen)
	if err == nil && (host == "0.0.0.0" || host == "::") {
		return net.JoinHostPort("127.0.0.1", port)
	}
	return listen
}
