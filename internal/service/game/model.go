package game

// 玩家生存状态
const (
	STATE_ALIVE = "Alive"
	STATE_DEAD  = "Dead"
)

// 玩家身份
const (
	ROLE_TOWNIE    = "Townie"
	ROLE_MAFIOSO   = "Mafioso"
	ROLE_DOCTOR    = "Doctor"
	ROLE_BARTENDER = "Bartender"
	ROLE_DETECTIVE = "Detective"
)

// PlayerConnection 是投递消息用的非持有性能力句柄
// 底层传输断开后 Send 静默丢弃，绝不报错
type PlayerConnection interface {
	Send(resp Response)
	IsAlive() bool
	ID() string
}

type Player struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Role  string `json:"role"`

	// 加入时一次性下发，是重连时找回身份的唯一凭证
	Secret string `json:"-"`

	// 可空：nil 表示玩家暂时不可达，但仍留在名单里
	Connection PlayerConnection `json:"-"`
}

func NewPlayer(name, secret string) *Player {
	return &Player{
		Name:   name,
		State:  STATE_ALIVE,
		Role:   ROLE_TOWNIE,
		Secret: secret,
	}
}

func (p *Player) IsAlive() bool {
	return p.State == STATE_ALIVE
}

func (p *Player) IsDead() bool {
	return p.State == STATE_DEAD
}

func IsTown(role string) bool {
	switch role {
	case ROLE_TOWNIE, ROLE_DOCTOR, ROLE_DETECTIVE, ROLE_BARTENDER:
		return true
	default:
		return false
	}
}

func IsMafia(role string) bool {
	return role == ROLE_MAFIOSO
}

// ValidNightAction 校验身份是否允许提交该夜间行动
func ValidNightAction(role, action string) bool {
	switch action {
	case NIGHT_SAVE:
		return role == ROLE_DOCTOR
	case NIGHT_INVESTIGATE:
		return role == ROLE_DETECTIVE
	case NIGHT_NEGATE:
		return role == ROLE_BARTENDER
	case NIGHT_VOTE:
		return IsMafia(role)
	default:
		return false
	}
}
