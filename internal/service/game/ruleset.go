package game

import "time"

// Ruleset 决定各阶段的时长与初始阶段
// 时长为 0 表示该阶段不会因超时自动推进
type Ruleset struct {
	InitialPhase string

	LobbyDuration     time.Duration
	MorningDuration   time.Duration
	VoteDuration      time.Duration
	LastWordsDuration time.Duration
	EveningDuration   time.Duration
	NightDuration     time.Duration

	// true 时需要过半存活玩家同票才能定罪，否则按相对多数
	VoteMajority bool
}

func DefaultRuleset() Ruleset {
	return Ruleset{
		InitialPhase:      PHASE_LOBBY,
		MorningDuration:   5 * time.Minute,
		VoteDuration:      2 * time.Minute,
		LastWordsDuration: 30 * time.Second,
		EveningDuration:   time.Minute,
		NightDuration:     90 * time.Second,
		VoteMajority:      true,
	}
}

// Deadline 计算进入某阶段后的下一个超时时刻，nil 表示不超时
func (r Ruleset) Deadline(phaseKind string) *time.Time {
	var d time.Duration

	switch phaseKind {
	case PHASE_LOBBY:
		d = r.LobbyDuration
	case PHASE_MORNING:
		d = r.MorningDuration
	case PHASE_VOTE:
		d = r.VoteDuration
	case PHASE_LAST_WORDS:
		d = r.LastWordsDuration
	case PHASE_EVENING:
		d = r.EveningDuration
	case PHASE_NIGHT:
		d = r.NightDuration
	}

	if d <= 0 {
		return nil
	}

	t := time.Now().Add(d)

	return &t
}

// InitPhase 返回规则指定的初始阶段
func (r Ruleset) InitPhase() Phase {
	switch r.InitialPhase {
	case PHASE_MORNING:
		return NewMorningPhase()
	default:
		return NewLobbyPhase()
	}
}
