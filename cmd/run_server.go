package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	internalApp "github.com/dejay09121/Noteapp/internal/app"
	"github.com/dejay09121/Noteapp/internal/dao"
	"github.com/dejay09121/Noteapp/internal/routers"
	"github.com/dejay09121/Noteapp/internal/service"
	"github.com/dejay09121/Noteapp/internal/task"
	"github.com/dejay09121/Noteapp/pkg/logger"
	"github.com/dejay09121/Noteapp/pkg/tracer"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// defaultSecretKeys 需要提示更换的默认密钥
var defaultSecretKeys = []string{
	defaultSecretKey,
	"",
}

// Server HTTP 服务及其附属组件
type Server struct {
	logger            *zap.Logger
	config            *internalApp.AppConfig
	app               *internalApp.App
	httpServer        *http.Server
	privateHttpServer *http.Server
	tunnel            service.TunnelService
	tasks             *task.Manager
	tracerCloser      io.Closer

	// errCh 任一监听异常退出时写入
	errCh chan error
}

// checkSecurityConfig 使用默认密钥时输出警告
func checkSecurityConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	for _, key := range defaultSecretKeys {
		if cfg.Security.AuthTokenKey != key {
			continue
		}
		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("SECURITY WARNING: Using default secret key!")
		fmt.Println()
		fmt.Println("Please modify 'security.auth-token-key' in config.yaml")
		fmt.Println("Generate a secure key with:")
		fmt.Println("  openssl rand -base64 32")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println()
		lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
		return
	}
}

// NewServer 加载配置并组装服务，不开始监听
func NewServer(runEnv *runFlags) (*Server, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if runEnv.port != "" {
		appConfig.Server.HttpPort = runEnv.port
	}

	runMode := runEnv.runMode
	if runMode == "" {
		runMode = appConfig.Server.RunMode
	}
	if runMode != "" {
		gin.SetMode(runMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	lg, err := logger.NewLogger(appConfig.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	s := &Server{
		logger: lg,
		config: appConfig,
		errCh:  make(chan error, 3),
	}
	checkSecurityConfig(appConfig, lg)

	db, err := dao.NewDBEngine(appConfig.DaoConfig())
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.app, err = internalApp.NewApp(appConfig, lg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}

	s.tasks = task.NewManager(lg)
	if err := s.tasks.RegisterServerTasks(s.app); err != nil {
		lg.Error("failed to register tasks", zap.Error(err))
	}

	if appConfig.Ngrok.Enabled {
		s.tunnel = service.NewTunnelService(lg, appConfig.Ngrok.AuthToken, appConfig.Ngrok.Domain)
	}

	lg.Warn(fmt.Sprintf("%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	lg.Warn("config loaded", zap.String("path", configRealpath))
	return s, nil
}

// Start 开始监听，监听失败通过 Err() 返回
func (s *Server) Start(ctx context.Context) {
	cfg := s.config

	s.tasks.Start(ctx)

	var tr opentracing.Tracer
	if cfg.Tracer.JaegerAgent != "" {
		t, closer, err := tracer.New(cfg.Tracer.ServiceName, cfg.Tracer.JaegerAgent)
		if err != nil {
			s.logger.Error("jaeger tracer init failed", zap.Error(err))
		} else {
			tr, s.tracerCloser = t, closer
		}
	}

	s.httpServer = &http.Server{
		Addr:           cfg.Server.HttpPort,
		Handler:        routers.NewRouter(s.app, tr),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	s.logger.Warn("api_router", zap.String("config.server.HttpPort", cfg.Server.HttpPort))
	go s.serve("api", s.httpServer)

	if addr := cfg.Server.PprofListen; addr != "" {
		s.privateHttpServer = &http.Server{
			Addr:           addr,
			Handler:        routers.NewPrivateRouter(cfg.Server.RunMode, s.logger),
			ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.logger.Info("private_router", zap.String("config.server.PprofListen", addr))
		go s.serve("private", s.privateHttpServer)
	}

	if s.tunnel != nil {
		if err := s.tunnel.Start(ctx, service.DialAddr(cfg.Server.HttpPort)); err != nil {
			s.logger.Error("ngrok tunnel start failed", zap.Error(err))
		} else {
			s.logger.Warn("ngrok tunnel", zap.String("url", s.tunnel.PublicURL()))
		}
	}
}

func (s *Server) serve(name string, srv *http.Server) {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error(name+" service err", zap.Error(err))
		s.errCh <- err
	}
}

// Err 监听异常
func (s *Server) Err() <-chan error {
	return s.errCh
}

// Shutdown 依次停止隧道、HTTP 服务、定时任务与 App Container
func (s *Server) Shutdown(ctx context.Context) error {
	if s.tunnel != nil {
		_ = s.tunnel.Stop(ctx)
	}
	for _, srv := range []*http.Server{s.httpServer, s.privateHttpServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("http server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
	s.tasks.Stop()
	if s.tracerCloser != nil {
		_ = s.tracerCloser.Close()
	}
	if err := s.app.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown app container", zap.Error(err))
		return err
	}
	s.logger.Info("App container shutdown gracefully")
	_ = s.logger.Sync()
	return nil
}
