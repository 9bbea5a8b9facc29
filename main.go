package main

import (
	"mafia-be/internal/api/http"
	"mafia-be/internal/config"
	"mafia-be/internal/logger"
	"mafia-be/internal/service"
	"mafia-be/internal/state"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		service.NewConnectionManager(),
		service.NewSessionManager(cfg.Rules.Ruleset()),
	)

	// 启动服务器
	http.RunServer(appState)
}
