package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aqwarena/server"
)

// 入口：加载配置，启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	var addr, cfgPath string
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.StringVar(&cfgPath, "config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := server.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	store, err := cfg.Storage.Open()
	if err != nil {
		server.Log.Fatalf("open profile store: %v", err)
	}

	srv := server.NewServer(cfg, store)
	// 先预创建默认地图的房间，便于快速试跑
	_ = srv.Rooms().GetOrCreateRoom(cfg.DefaultMap)

	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Routes()}

	go func() {
		server.Log.Infof("listening on %s (storage=%s, tick=%d/s)", cfg.Addr, cfg.Storage.Driver, cfg.TickRate)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）：停止接入 → 停止房间并保存在线玩家 → 关闭存储
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	srv.Shutdown()
	if err := store.Close(); err != nil {
		server.Log.Warnf("close profile store: %v", err)
	}
}
