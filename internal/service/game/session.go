package game

import "go.uber.org/zap"

// Session 是一局游戏的全部可变状态
// 方法不做任何同步，必须由唯一的持有者协程串行调用
type Session struct {
	ID    string
	Root  RootState
	Phase Phase
}

func NewSession(id, hostName, hostSecret string, rules Ruleset) *Session {
	phase := rules.InitPhase()

	root := RootState{
		Day:      1,
		Players:  []*Player{NewPlayer(hostName, hostSecret)},
		Rules:    rules,
		VoteSkip: make(map[string]struct{}),
		Host:     hostName,
	}
	root.NextStateTime = rules.Deadline(phase.Kind())

	zap.L().Debug(
		"创建对局",
		zap.String("session_id", id),
		zap.String("host", hostName),
	)

	return &Session{
		ID:    id,
		Root:  root,
		Phase: phase,
	}
}

// CreateUser 向名单追加新玩家，名字区分大小写且不可重复
func (s *Session) CreateUser(name, secret string) error {
	if s.Root.FindPlayer(name) != nil {
		return &PlayerNameTakenError{Name: name}
	}

	s.Root.Players = append(s.Root.Players, NewPlayer(name, secret))

	return nil
}

// GetPlayername 按 secret 反查玩家名，用于传输升级时的握手认证
func (s *Session) GetPlayername(secret string) (string, bool) {
	for _, p := range s.Root.Players {
		if p.Secret == secret {
			return p.Name, true
		}
	}

	return "", false
}

// GetConnection 返回玩家当前注册的连接，没有则返回 nil
func (s *Session) GetConnection(name string) PlayerConnection {
	p := s.Root.FindPlayer(name)
	if p == nil {
		return nil
	}

	return p.Connection
}

// RegisterConnection 挂载或清除玩家的连接句柄
// 名字不存在时静默忽略，以兼容重连竞争下的迟到清理
func (s *Session) RegisterConnection(name string, conn PlayerConnection) {
	p := s.Root.FindPlayer(name)
	if p == nil {
		return
	}

	p.Connection = conn

	zap.L().Debug(
		"更新玩家连接",
		zap.String("session_id", s.ID),
		zap.String("player", name),
		zap.Bool("registered", conn != nil),
	)
}

// HandleAction 让当前阶段处理一个动作
// 成功时新旧阶段整体替换，失败时状态保持不变
func (s *Session) HandleAction(sender string, act Action) error {
	next, err := s.Phase.HandleAction(&s.Root, sender, act)
	if err != nil {
		return err
	}

	s.Phase = next

	return nil
}

// Advance 处理一次超时推进
// 信号携带的阶段与当前阶段不符时直接丢弃，保证重复或迟到的信号无副作用
func (s *Session) Advance(phaseKind string) bool {
	if !SamePhase(s.Phase, phaseKind) {
		zap.L().Debug(
			"丢弃过期的超时信号",
			zap.String("session_id", s.ID),
			zap.String("signal_phase", phaseKind),
			zap.String("current_phase", s.Phase.Kind()),
		)

		return false
	}

	s.Phase = s.Phase.NextPhase(&s.Root)

	zap.L().Info(
		"阶段推进",
		zap.String("session_id", s.ID),
		zap.String("from", phaseKind),
		zap.String("to", s.Phase.Kind()),
	)

	return true
}
