package service

import (
	"time"

	"mafia-be/internal/service/game"

	"go.uber.org/zap"
)

// 跨协程请求的统一等待上限，超时一律视为内部错误
const reqTimeout = 5 * time.Second

// GameSession 是一局游戏状态的唯一持有者
// 所有修改都经由请求通道在专属协程里严格按到达顺序串行处理
type GameSession struct {
	id   string
	sess *game.Session

	// 这是所有玩家连接的请求汇总的通道
	reqCh chan sessionRequest
	// 超时信号通道，携带安排超时那一刻的阶段种类
	tmoCh  chan string
	doneCh chan struct{}

	timer   *time.Timer
	armedAt *time.Time

	createdAt time.Time
}

type sessionRequest struct {
	CreateUser           *createUserRequest
	GetPlayername        *getPlayernameRequest
	RegisterConnection   *registerConnectionRequest
	UnregisterConnection *unregisterConnectionRequest
	GetPlayerConnection  *getPlayerConnectionRequest
	HandleAction         *handleActionRequest
	CurrentPhase         *currentPhaseRequest
}

type createUserRequest struct {
	Name   string
	Secret string
	ResCh  chan error
}

type getPlayernameRequest struct {
	Secret string
	ResCh  chan getPlayernameResult
}

type getPlayernameResult struct {
	Name string
	OK   bool
}

type registerConnectionRequest struct {
	Name  string
	Conn  game.PlayerConnection
	ResCh chan struct{}
}

type unregisterConnectionRequest struct {
	Name   string
	ConnID string
	ResCh  chan struct{}
}

type getPlayerConnectionRequest struct {
	Name  string
	ResCh chan game.PlayerConnection
}

type handleActionRequest struct {
	Sender string
	Act    game.Action
	ResCh  chan error
}

type currentPhaseRequest struct {
	ResCh chan string
}

func NewGameSession(id, hostName, hostSecret string, rules game.Ruleset) *GameSession {
	return &GameSession{
		id:        id,
		sess:      game.NewSession(id, hostName, hostSecret, rules),
		reqCh:     make(chan sessionRequest, 64),
		tmoCh:     make(chan string, 8),
		doneCh:    make(chan struct{}),
		createdAt: time.Now(),
	}
}

func (gs *GameSession) ID() string {
	return gs.id
}

func (gs *GameSession) CreatedAt() time.Time {
	return gs.createdAt
}

func (gs *GameSession) Start() {
	go gs.loop()
}

func (gs *GameSession) Stop() {
	close(gs.doneCh)
}

func (gs *GameSession) loop() {
	gs.armTimer()

	defer func() {
		if gs.timer != nil {
			gs.timer.Stop()
		}

		zap.L().Info(
			"对局协程退出",
			zap.String("session_id", gs.id),
		)
	}()

	for {
		select {
		case req := <-gs.reqCh:
			gs.dispatch(req)
			gs.armTimer()

		case kind := <-gs.tmoCh:
			// Advance 内部用阶段判等过滤过期信号
			if gs.sess.Advance(kind) {
				gs.armTimer()
			}

		case <-gs.doneCh:
			return
		}
	}
}

// armTimer 依据 NextStateTime 安排下一次超时信号
// 截止时间没有变化时不动已有的计时器
func (gs *GameSession) armTimer() {
	next := gs.sess.Root.NextStateTime
	if next == gs.armedAt {
		return
	}

	if gs.timer != nil {
		gs.timer.Stop()
		gs.timer = nil
	}

	gs.armedAt = next

	if next == nil {
		return
	}

	kind := gs.sess.Phase.Kind()

	delay := time.Until(*next)
	if delay < 0 {
		delay = 0
	}

	gs.timer = time.AfterFunc(delay, func() {
		select {
		case gs.tmoCh <- kind:
		default:
			zap.L().Warn(
				"超时信号通道已满，信号被丢弃",
				zap.String("session_id", gs.id),
			)
		}
	})
}

func (gs *GameSession) dispatch(req sessionRequest) {
	switch {
	case req.CreateUser != nil:
		req.CreateUser.ResCh <- gs.sess.CreateUser(
			req.CreateUser.Name,
			req.CreateUser.Secret,
		)

	case req.GetPlayername != nil:
		name, ok := gs.sess.GetPlayername(req.GetPlayername.Secret)
		req.GetPlayername.ResCh <- getPlayernameResult{Name: name, OK: ok}

	case req.RegisterConnection != nil:
		gs.sess.RegisterConnection(
			req.RegisterConnection.Name,
			req.RegisterConnection.Conn,
		)
		req.RegisterConnection.ResCh <- struct{}{}

	case req.UnregisterConnection != nil:
		gs.unregister(req.UnregisterConnection)
		req.UnregisterConnection.ResCh <- struct{}{}

	case req.GetPlayerConnection != nil:
		req.GetPlayerConnection.ResCh <- gs.sess.GetConnection(
			req.GetPlayerConnection.Name,
		)

	case req.HandleAction != nil:
		req.HandleAction.ResCh <- gs.sess.HandleAction(
			req.HandleAction.Sender,
			req.HandleAction.Act,
		)

	case req.CurrentPhase != nil:
		req.CurrentPhase.ResCh <- gs.sess.Phase.Kind()
	}
}

// unregister 只在注册表仍指向该连接（或已为空）时清除注册
// 条件判断在本协程内完成，后接管的连接不会被先断开的连接误清
func (gs *GameSession) unregister(req *unregisterConnectionRequest) {
	current := gs.sess.GetConnection(req.Name)
	if current != nil && current.ID() != req.ConnID {
		zap.L().Debug(
			"注册表已指向新连接，跳过清除",
			zap.String("session_id", gs.id),
			zap.String("player", req.Name),
			zap.String("stale_conn", req.ConnID),
		)

		return
	}

	gs.sess.RegisterConnection(req.Name, nil)
}

func (gs *GameSession) send(req sessionRequest) error {
	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case gs.reqCh <- req:
		return nil
	case <-gs.doneCh:
		return game.ErrInternal
	case <-t.C:
		zap.L().Warn(
			"对局请求通道发送超时",
			zap.String("session_id", gs.id),
		)

		return game.ErrInternal
	}
}

// awaitReply 等待对局协程的应答，超时或对局关闭折算为内部错误
func awaitReply[T any](gs *GameSession, ch <-chan T) (T, error) {
	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	var zero T

	select {
	case res := <-ch:
		return res, nil
	case <-gs.doneCh:
		return zero, game.ErrInternal
	case <-t.C:
		zap.L().Warn(
			"等待对局应答超时",
			zap.String("session_id", gs.id),
		)

		return zero, game.ErrInternal
	}
}

// CreateUser 向名单追加玩家，同名冲突返回 PlayerNameTakenError
func (gs *GameSession) CreateUser(name, secret string) error {
	resCh := make(chan error, 1)

	if err := gs.send(sessionRequest{
		CreateUser: &createUserRequest{Name: name, Secret: secret, ResCh: resCh},
	}); err != nil {
		return err
	}

	res, err := awaitReply(gs, resCh)
	if err != nil {
		return err
	}

	return res
}

// GetPlayername 按 secret 反查玩家名，查不到返回 ErrInvalidSecret
func (gs *GameSession) GetPlayername(secret string) (string, error) {
	resCh := make(chan getPlayernameResult, 1)

	if err := gs.send(sessionRequest{
		GetPlayername: &getPlayernameRequest{Secret: secret, ResCh: resCh},
	}); err != nil {
		return "", err
	}

	res, err := awaitReply(gs, resCh)
	if err != nil {
		return "", err
	}

	if !res.OK {
		return "", game.ErrInvalidSecret
	}

	return res.Name, nil
}

// RegisterConnection 把连接句柄挂到指定玩家名下，conn 为 nil 表示清除
func (gs *GameSession) RegisterConnection(name string, conn game.PlayerConnection) error {
	resCh := make(chan struct{}, 1)

	if err := gs.send(sessionRequest{
		RegisterConnection: &registerConnectionRequest{Name: name, Conn: conn, ResCh: resCh},
	}); err != nil {
		return err
	}

	_, err := awaitReply(gs, resCh)

	return err
}

// UnregisterConnection 条件清除：仅当名下仍是 connID 对应的连接（或为空）时才清除
func (gs *GameSession) UnregisterConnection(name, connID string) error {
	resCh := make(chan struct{}, 1)

	if err := gs.send(sessionRequest{
		UnregisterConnection: &unregisterConnectionRequest{Name: name, ConnID: connID, ResCh: resCh},
	}); err != nil {
		return err
	}

	_, err := awaitReply(gs, resCh)

	return err
}

// GetPlayerConnection 返回玩家当前注册的连接，没有则返回 nil
func (gs *GameSession) GetPlayerConnection(name string) (game.PlayerConnection, error) {
	resCh := make(chan game.PlayerConnection, 1)

	if err := gs.send(sessionRequest{
		GetPlayerConnection: &getPlayerConnectionRequest{Name: name, ResCh: resCh},
	}); err != nil {
		return nil, err
	}

	return awaitReply(gs, resCh)
}

// HandleAction 把玩家动作交给当前阶段处理
func (gs *GameSession) HandleAction(sender string, act game.Action) error {
	resCh := make(chan error, 1)

	if err := gs.send(sessionRequest{
		HandleAction: &handleActionRequest{Sender: sender, Act: act, ResCh: resCh},
	}); err != nil {
		return err
	}

	res, err := awaitReply(gs, resCh)
	if err != nil {
		return err
	}

	return res
}

// CurrentPhase 返回当前阶段种类，供运维观测使用
func (gs *GameSession) CurrentPhase() (string, error) {
	resCh := make(chan string, 1)

	if err := gs.send(sessionRequest{
		CurrentPhase: &currentPhaseRequest{ResCh: resCh},
	}); err != nil {
		return "", err
	}

	return awaitReply(gs, resCh)
}
