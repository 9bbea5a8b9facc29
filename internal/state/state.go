package state

import (
	"mafia-be/internal/config"
	"mafia-be/internal/service"
)

// AppState 在组装根处构造一次，显式传给所有需要它的入口
// 进程里没有包级可变单例
type AppState struct {
	Cfg        *config.AppConfig
	ConnMgr    *service.ConnectionManager
	SessionMgr *service.SessionManager
}

func NewAppState(
	cfg *config.AppConfig,
	connMgr *service.ConnectionManager,
	sessionMgr *service.SessionManager,
) *AppState {
	return &AppState{
		Cfg:        cfg,
		ConnMgr:    connMgr,
		SessionMgr: sessionMgr,
	}
}
