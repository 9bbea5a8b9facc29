package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// 一局游戏按固定顺序循环推进 6 个阶段：
// 1. 大厅（Lobby）：玩家陆续加入，等待房主开局
// 2. 早晨（Morning）：自由讨论
// 3. 投票（Vote）：存活玩家投票处决嫌疑人
// 4. 遗言（LastWords）：被定罪的玩家留下遗言
// 5. 黄昏（Evening）：公布结果后的过渡阶段
// 6. 夜晚（Night）：特殊身份提交夜间行动，天亮进入下一天
const (
	PHASE_LOBBY      = "Lobby"
	PHASE_MORNING    = "Morning"
	PHASE_VOTE       = "Vote"
	PHASE_LAST_WORDS = "LastWords"
	PHASE_EVENING    = "Evening"
	PHASE_NIGHT      = "Night"
)

// Phase 的两个操作只会被持有该局的 GameSession 协程调用
// HandleAction 返回的阶段与 RootState 的修改作为一个整体生效
type Phase interface {
	Kind() string

	HandleAction(root *RootState, sender string, act Action) (Phase, error)
	NextPhase(root *RootState) Phase
}

// SamePhase 只按阶段种类判等，专用于判定超时信号是否仍然有效
func SamePhase(p Phase, kind string) bool {
	return p.Kind() == kind
}

// 大厅阶段是整局游戏的起点
type lobbyPhase struct{}

func NewLobbyPhase() Phase {
	return &lobbyPhase{}
}

func (*lobbyPhase) Kind() string {
	return PHASE_LOBBY
}

func (lp *lobbyPhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	switch act.Type {
	case ACTION_MESSAGE:
		if err := broadcastMessage(root, sender, act.Text); err != nil {
			return lp, err
		}

		return lp, nil

	case ACTION_START:
		if root.FindPlayer(sender) == nil {
			return lp, &InvalidPlayerNameError{Name: sender}
		}

		// 只有房主可以开局
		if sender != root.Host {
			return lp, ErrWrongState
		}

		return startGame(root), nil

	default:
		return lp, ErrWrongState
	}
}

func (*lobbyPhase) NextPhase(root *RootState) Phase {
	// 大厅超时等同于房主开局
	return startGame(root)
}

// startGame 分配身份并进入第一个早晨
func startGame(root *RootState) Phase {
	assignRoles(root)

	for _, p := range root.Players {
		unicast(root, p.Name, fmt.Sprintf("Your role: %s", p.Role))
	}

	announce(root, "The game has started.")

	next := NewMorningPhase()
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	zap.L().Info(
		"游戏开始",
		zap.String("host", root.Host),
		zap.Int("players", len(root.Players)),
	)

	return next
}

// assignRoles 随机分配身份：每 4 人出 1 个黑手党（至少 1 个）
// 人数足够时依次补充医生、侦探、酒保，其余为平民
func assignRoles(root *RootState) {
	shuffled := make([]*Player, len(root.Players))
	copy(shuffled, root.Players)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	mafiaCount := len(shuffled) / 4
	if mafiaCount < 1 {
		mafiaCount = 1
	}

	roles := make([]string, 0, len(shuffled))

	for i := 0; i < mafiaCount; i++ {
		roles = append(roles, ROLE_MAFIOSO)
	}

	if len(shuffled) >= 5 {
		roles = append(roles, ROLE_DOCTOR)
	}
	if len(shuffled) >= 6 {
		roles = append(roles, ROLE_DETECTIVE)
	}
	if len(shuffled) >= 7 {
		roles = append(roles, ROLE_BARTENDER)
	}

	for i, p := range shuffled {
		if i < len(roles) {
			p.Role = roles[i]
		} else {
			p.Role = ROLE_TOWNIE
		}
	}
}

// 早晨阶段只允许自由讨论
type morningPhase struct{}

func NewMorningPhase() Phase {
	return &morningPhase{}
}

func (*morningPhase) Kind() string {
	return PHASE_MORNING
}

func (mp *morningPhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	if act.Type != ACTION_MESSAGE {
		if root.FindPlayer(sender) == nil {
			return mp, &InvalidPlayerNameError{Name: sender}
		}

		return mp, ErrWrongState
	}

	if err := broadcastMessage(root, sender, act.Text); err != nil {
		return mp, err
	}

	return mp, nil
}

func (*morningPhase) NextPhase(root *RootState) Phase {
	// 离开早晨时重置弃票集合，并安排投票截止时间
	root.VoteSkip = make(map[string]struct{})

	next := NewVotePhase()
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	return next
}

// 投票阶段持有当前的计票表
type votePhase struct {
	// voter -> target
	Votes map[string]string
}

func NewVotePhase() Phase {
	return &votePhase{
		Votes: make(map[string]string),
	}
}

func (*votePhase) Kind() string {
	return PHASE_VOTE
}

func (vp *votePhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	switch act.Type {
	case ACTION_MESSAGE:
		if err := broadcastMessage(root, sender, act.Text); err != nil {
			return vp, err
		}

		return vp, nil

	case ACTION_VOTE:
		voter := root.FindPlayer(sender)
		if voter == nil {
			return vp, &InvalidPlayerNameError{Name: sender}
		}

		// 死人可以旁听，但没有投票权
		if voter.IsDead() {
			return vp, ErrWrongState
		}

		// 每人只能表态一次，重复投票直接拒绝
		if _, voted := vp.Votes[sender]; voted {
			return vp, ErrWrongState
		}
		if _, skipped := root.VoteSkip[sender]; skipped {
			return vp, ErrWrongState
		}

		if act.Skip {
			root.VoteSkip[sender] = struct{}{}
			return vp, nil
		}

		target := root.FindPlayer(act.Target)
		if target == nil {
			return vp, &InvalidPlayerNameError{Name: act.Target}
		}

		if target.IsDead() {
			return vp, ErrWrongState
		}

		vp.Votes[sender] = act.Target

		return vp, nil

	default:
		if root.FindPlayer(sender) == nil {
			return vp, &InvalidPlayerNameError{Name: sender}
		}

		return vp, ErrWrongState
	}
}

func (vp *votePhase) NextPhase(root *RootState) Phase {
	condemned := tally(vp.Votes, root)

	if condemned == "" {
		// 没有人被定罪，直接进入黄昏
		next := NewEveningPhase()
		root.NextStateTime = root.Rules.Deadline(next.Kind())

		return next
	}

	announce(root, fmt.Sprintf("%s has been condemned by the village.", condemned))

	next := NewLastWordsPhase(condemned)
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	return next
}

// tally 结算计票表，返回被定罪玩家的名字，无人定罪返回空串
func tally(votes map[string]string, root *RootState) string {
	counts := make(map[string]int)

	for _, target := range votes {
		counts[target]++
	}

	best := ""
	bestCount := 0
	tied := false

	for target, n := range counts {
		switch {
		case n > bestCount:
			best, bestCount, tied = target, n, false
		case n == bestCount:
			tied = true
		}
	}

	if bestCount == 0 || tied {
		return ""
	}

	// 过半模式下，相对多数不足以定罪
	if root.Rules.VoteMajority && bestCount*2 <= root.AliveCount() {
		return ""
	}

	return best
}

// 遗言阶段只持有被定罪玩家的名字
type lastWordsPhase struct {
	Condemned string
}

func NewLastWordsPhase(condemned string) Phase {
	return &lastWordsPhase{Condemned: condemned}
}

func (*lastWordsPhase) Kind() string {
	return PHASE_LAST_WORDS
}

func (lw *lastWordsPhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	if act.Type != ACTION_MESSAGE {
		if root.FindPlayer(sender) == nil {
			return lw, &InvalidPlayerNameError{Name: sender}
		}

		return lw, ErrWrongState
	}

	if err := broadcastMessage(root, sender, act.Text); err != nil {
		return lw, err
	}

	return lw, nil
}

func (lw *lastWordsPhase) NextPhase(root *RootState) Phase {
	// 遗言结束，执行处决
	if p := root.FindPlayer(lw.Condemned); p != nil {
		p.State = STATE_DEAD
	}

	next := NewEveningPhase()
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	return next
}

// 黄昏是公布结果后的过渡阶段
type eveningPhase struct{}

func NewEveningPhase() Phase {
	return &eveningPhase{}
}

func (*eveningPhase) Kind() string {
	return PHASE_EVENING
}

func (ep *eveningPhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	if act.Type != ACTION_MESSAGE {
		if root.FindPlayer(sender) == nil {
			return ep, &InvalidPlayerNameError{Name: sender}
		}

		return ep, ErrWrongState
	}

	if err := broadcastMessage(root, sender, act.Text); err != nil {
		return ep, err
	}

	return ep, nil
}

func (*eveningPhase) NextPhase(root *RootState) Phase {
	next := NewNightPhase()
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	return next
}

// 夜晚阶段持有各玩家已提交的夜间行动
type nightPhase struct {
	// player -> 已提交的行动，后提交的覆盖先提交的
	Actions map[string]nightAction
}

func NewNightPhase() Phase {
	return &nightPhase{
		Actions: make(map[string]nightAction),
	}
}

func (*nightPhase) Kind() string {
	return PHASE_NIGHT
}

func (np *nightPhase) HandleAction(root *RootState, sender string, act Action) (Phase, error) {
	switch act.Type {
	case ACTION_MESSAGE:
		if err := broadcastMessage(root, sender, act.Text); err != nil {
			return np, err
		}

		return np, nil

	case ACTION_NIGHT:
		actor := root.FindPlayer(sender)
		if actor == nil {
			return np, &InvalidPlayerNameError{Name: sender}
		}

		if actor.IsDead() {
			return np, ErrWrongState
		}

		if !ValidNightAction(actor.Role, act.NightKind) {
			return np, ErrWrongState
		}

		target := root.FindPlayer(act.Target)
		if target == nil {
			return np, &InvalidPlayerNameError{Name: act.Target}
		}

		if target.IsDead() {
			return np, ErrWrongState
		}

		np.Actions[sender] = nightAction{
			Kind:   act.NightKind,
			Target: act.Target,
		}

		return np, nil

	default:
		if root.FindPlayer(sender) == nil {
			return np, &InvalidPlayerNameError{Name: sender}
		}

		return np, ErrWrongState
	}
}

func (np *nightPhase) NextPhase(root *RootState) Phase {
	resolveNight(root, np.Actions)

	root.Day++

	next := NewMorningPhase()
	root.NextStateTime = root.Rules.Deadline(next.Kind())

	zap.L().Info(
		"天亮了",
		zap.Int("day", root.Day),
		zap.Int("alive", root.AliveCount()),
	)

	return next
}

// resolveNight 结算夜间行动：
// 酒保先使目标当晚的行动失效，随后侦探收到调查报告，
// 最后结算黑手党的袭击，医生的救治可以抵消这次袭击
func resolveNight(root *RootState, actions map[string]nightAction) {
	negated := make(map[string]struct{})

	for _, a := range actions {
		if a.Kind == NIGHT_NEGATE {
			negated[a.Target] = struct{}{}
		}
	}

	effective := make(map[string]nightAction, len(actions))

	for who, a := range actions {
		if _, ok := negated[who]; ok {
			continue
		}

		effective[who] = a
	}

	killVotes := make(map[string]int)
	saved := make(map[string]struct{})

	for who, a := range effective {
		switch a.Kind {
		case NIGHT_INVESTIGATE:
			report := fmt.Sprintf("%s is an innocent townsfolk.", a.Target)

			if t := root.FindPlayer(a.Target); t != nil && IsMafia(t.Role) {
				report = fmt.Sprintf("%s is a member of the mafia.", a.Target)
			}

			unicast(root, who, report)

		case NIGHT_VOTE:
			killVotes[a.Target]++

		case NIGHT_SAVE:
			saved[a.Target] = struct{}{}
		}
	}

	victim := ""
	victimCount := 0
	tied := false

	for target, n := range killVotes {
		switch {
		case n > victimCount:
			victim, victimCount, tied = target, n, false
		case n == victimCount:
			tied = true
		}
	}

	if victim == "" || tied {
		announce(root, "Nobody died during the night.")
		return
	}

	if _, ok := saved[victim]; ok {
		announce(root, "Nobody died during the night.")
		return
	}

	if p := root.FindPlayer(victim); p != nil {
		p.State = STATE_DEAD
	}

	announce(root, fmt.Sprintf("%s died during the night.", victim))
}
