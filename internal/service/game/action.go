package game

// 客户端动作类型
const (
	ACTION_MESSAGE = "Message"
	ACTION_VOTE    = "Vote"
	ACTION_NIGHT   = "NightAction"
	ACTION_START   = "Start"
)

// 夜间行动种类
const (
	NIGHT_SAVE        = "Save"
	NIGHT_INVESTIGATE = "Investigate"
	NIGHT_NEGATE      = "Negate"
	NIGHT_VOTE        = "Vote"
)

// Action 是客户端发来的扁平 tagged JSON 载荷
// 除 Type 之外的字段按动作类型选用：
//
//	Message:     {"type":"Message","text":"..."}
//	Vote:        {"type":"Vote","target":"..."} 或 {"type":"Vote","skip":true}
//	NightAction: {"type":"NightAction","action":"Save","target":"..."}
//	Start:       {"type":"Start"}
type Action struct {
	Type string `json:"type"`

	Text string `json:"text,omitempty"`

	Target string `json:"target,omitempty"`
	Skip   bool   `json:"skip,omitempty"`

	NightKind string `json:"action,omitempty"`
}

// nightAction 是某个玩家当晚已提交的行动，后提交的覆盖先提交的
type nightAction struct {
	Kind   string
	Target string
}
