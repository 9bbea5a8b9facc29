package service

import (
	"time"

	"mafia-be/internal/service/game"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager 是进程级的对局注册表兼工厂
// 映射表只在专属协程里修改，对外只暴露请求接口
type SessionManager struct {
	rules game.Ruleset

	reqCh  chan smRequest
	doneCh chan struct{}
}

type smRequest struct {
	Create *smCreateRequest
	Get    *smGetRequest
}

type smCreateRequest struct {
	HostName string
	ResCh    chan CreateSessionResult
}

type smGetRequest struct {
	ID    string
	ResCh chan *GameSession
}

type CreateSessionResult struct {
	SessionID string `json:"session_id"`
	Secret    string `json:"secret"`
}

type JoinSessionResult struct {
	SessionID string `json:"session_id"`
	Secret    string `json:"secret"`
}

// sessionEntry 附带创建时间，留给以后的闲置回收用
type sessionEntry struct {
	sess      *GameSession
	createdAt time.Time
}

func NewSessionManager(rules game.Ruleset) *SessionManager {
	sm := &SessionManager{
		rules:  rules,
		reqCh:  make(chan smRequest, 64),
		doneCh: make(chan struct{}),
	}

	go sm.loop()

	return sm
}

func (sm *SessionManager) Close() {
	close(sm.doneCh)
}

func (sm *SessionManager) loop() {
	sessions := make(map[string]sessionEntry)

	for {
		select {
		case req := <-sm.reqCh:
			switch {
			case req.Create != nil:
				req.Create.ResCh <- sm.createSession(sessions, req.Create.HostName)

			case req.Get != nil:
				req.Get.ResCh <- sessions[req.Get.ID].sess
			}

		case <-sm.doneCh:
			zap.L().Info("对局注册表协程退出")
			return
		}
	}
}

func (sm *SessionManager) createSession(
	sessions map[string]sessionEntry,
	hostName string,
) CreateSessionResult {
	sessionID := genID()
	hostSecret := genID()

	gs := NewGameSession(sessionID, hostName, hostSecret, sm.rules)
	gs.Start()

	sessions[sessionID] = sessionEntry{
		sess:      gs,
		createdAt: time.Now(),
	}

	zap.L().Info(
		"创建对局",
		zap.String("session_id", sessionID),
		zap.String("host", hostName),
	)

	return CreateSessionResult{
		SessionID: sessionID,
		Secret:    hostSecret,
	}
}

// CreateSession 新建一局游戏并注册，总是成功
func (sm *SessionManager) CreateSession(hostName string) (CreateSessionResult, error) {
	resCh := make(chan CreateSessionResult, 1)

	if err := sm.sendRequest(smRequest{
		Create: &smCreateRequest{HostName: hostName, ResCh: resCh},
	}); err != nil {
		return CreateSessionResult{}, err
	}

	return sm.awaitCreate(resCh)
}

// GetSession 纯查询，查不到返回 nil
func (sm *SessionManager) GetSession(id string) (*GameSession, error) {
	resCh := make(chan *GameSession, 1)

	if err := sm.sendRequest(smRequest{
		Get: &smGetRequest{ID: id, ResCh: resCh},
	}); err != nil {
		return nil, err
	}

	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case gs := <-resCh:
		return gs, nil
	case <-t.C:
		return nil, game.ErrInternal
	}
}

// JoinSession 把新玩家加入既有对局并发放新 secret
// 对局不存在返回 ErrInvalidSession，名字冲突原样透传
func (sm *SessionManager) JoinSession(sessionID, name string) (JoinSessionResult, error) {
	gs, err := sm.GetSession(sessionID)
	if err != nil {
		return JoinSessionResult{}, err
	}

	if gs == nil {
		return JoinSessionResult{}, game.ErrInvalidSession
	}

	secret := genID()

	if err := gs.CreateUser(name, secret); err != nil {
		zap.L().Warn(
			"玩家加入对局失败",
			zap.String("session_id", sessionID),
			zap.String("player", name),
			zap.Error(err),
		)

		return JoinSessionResult{}, err
	}

	zap.L().Info(
		"玩家加入对局",
		zap.String("session_id", sessionID),
		zap.String("player", name),
	)

	return JoinSessionResult{
		SessionID: sessionID,
		Secret:    secret,
	}, nil
}

func (sm *SessionManager) sendRequest(req smRequest) error {
	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case sm.reqCh <- req:
		return nil
	case <-sm.doneCh:
		return game.ErrInternal
	case <-t.C:
		zap.L().Warn("对局注册表请求通道发送超时")
		return game.ErrInternal
	}
}

func (sm *SessionManager) awaitCreate(ch <-chan CreateSessionResult) (CreateSessionResult, error) {
	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-t.C:
		return CreateSessionResult{}, game.ErrInternal
	}
}

// genID 生成不可伪造的随机标识，用作对局号、secret 和连接号
func genID() string {
	return uuid.NewString()
}
