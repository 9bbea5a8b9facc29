package game

import (
	"time"

	"go.uber.org/zap"
)

// RootState 是一局游戏中与阶段无关的可变状态
// 只允许持有它的 GameSession 协程修改
type RootState struct {
	Day           int
	Players       []*Player
	Rules         Ruleset
	VoteSkip      map[string]struct{}
	NextStateTime *time.Time
	Host          string
}

func (rs *RootState) FindPlayer(name string) *Player {
	for _, p := range rs.Players {
		if p.Name == name {
			return p
		}
	}

	return nil
}

func (rs *RootState) AliveCount() int {
	n := 0

	for _, p := range rs.Players {
		if p.IsAlive() {
			n++
		}
	}

	return n
}

// broadcastMessage 按可见性规则转发聊天消息：
// 活人发言所有活人可见，死人发言只有死人能听见
func broadcastMessage(rs *RootState, sender, text string) error {
	from := rs.FindPlayer(sender)
	if from == nil {
		return &InvalidPlayerNameError{Name: sender}
	}

	name := from.Name
	resp := MessageResp(&name, text)

	for _, target := range rs.Players {
		if target.Connection == nil {
			continue
		}

		if from.IsAlive() != target.IsAlive() {
			continue
		}

		target.Connection.Send(resp)
	}

	return nil
}

// announce 向所有在线玩家播报一条系统消息（from 为 null）
func announce(rs *RootState, text string) {
	resp := MessageResp(nil, text)

	for _, target := range rs.Players {
		if target.Connection == nil {
			continue
		}

		target.Connection.Send(resp)
	}
}

// unicast 给指定玩家发一条系统消息，掉线则静默丢弃
func unicast(rs *RootState, name, text string) {
	p := rs.FindPlayer(name)
	if p == nil || p.Connection == nil {
		zap.L().Debug(
			"玩家不可达，丢弃单播消息",
			zap.String("player", name),
		)
		return
	}

	p.Connection.Send(MessageResp(nil, text))
}
