package websocket

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"mafia-be/internal/service"
	"mafia-be/internal/service/game"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Connection 独占一条 websocket 传输，生命周期与底层连接一致
// 同名玩家的新连接会把旧连接挤下线（后连接者胜出）
type Connection struct {
	id     string
	player string

	conn *websocket.Conn
	cm   *service.ConnectionManager
	sess *service.GameSession

	sendCh chan game.Response
	closed atomic.Bool
	once   sync.Once
}

// terminator 由旧连接实现，供新连接在接管时强制关闭它
type terminator interface {
	Terminate()
}

func newConnection(
	player string,
	conn *websocket.Conn,
	cm *service.ConnectionManager,
	sess *service.GameSession,
) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		player: player,
		conn:   conn,
		cm:     cm,
		sess:   sess,
		sendCh: make(chan game.Response, SEND_BUFFER),
	}
}

func (c *Connection) ID() string {
	return c.id
}

// IsAlive 只反映传输层可达性，与玩家的游戏内生死无关
func (c *Connection) IsAlive() bool {
	return !c.closed.Load()
}

// Send 把响应排入下发通道
// 连接已关闭或通道已满时静默丢弃，投递给掉线玩家永远不是错误
func (c *Connection) Send(resp game.Response) {
	if c.closed.Load() {
		return
	}

	select {
	case c.sendCh <- resp:
	default:
		zap.L().Warn(
			"下发通道已满，消息被丢弃",
			zap.String("conn_id", c.id),
			zap.String("player", c.player),
		)
	}
}

// Terminate 强制关闭底层传输，读循环随之退出并走正常清理路径
func (c *Connection) Terminate() {
	zap.L().Info(
		"连接被新连接接管，强制下线",
		zap.String("conn_id", c.id),
		zap.String("player", c.player),
	)

	c.shutdown()
}

func (c *Connection) shutdown() {
	c.once.Do(func() {
		c.closed.Store(true)
		c.conn.Close()
	})
}

// run 阻塞运行到连接关闭，承载一条连接的完整生命周期
func (c *Connection) run() {
	zap.L().Info(
		"连接启动",
		zap.String("conn_id", c.id),
		zap.String("player", c.player),
	)

	c.cm.Connect(c.id, c)

	// 接管：同名玩家已有存活连接时，先终止旧连接再注册自己
	// 握手期间允许两条连接短暂共存
	if prev, err := c.sess.GetPlayerConnection(c.player); err == nil {
		if prev != nil && prev.IsAlive() && prev.ID() != c.id {
			if t, ok := prev.(terminator); ok {
				t.Terminate()
			}
		}
	}

	if err := c.sess.RegisterConnection(c.player, c); err != nil {
		zap.L().Error(
			"注册连接失败",
			zap.String("conn_id", c.id),
			zap.String("player", c.player),
			zap.Error(err),
		)

		c.shutdown()
	}

	writeDone := make(chan struct{})

	go c.writeLoop(writeDone)

	c.readLoop()

	// 读循环退出即连接生命周期结束
	c.shutdown()
	close(writeDone)

	c.cm.Disconnect(c.id)

	// 条件清除在对局协程内完成：若注册表已指向接管的新连接则保持不动
	if err := c.sess.UnregisterConnection(c.player, c.id); err != nil {
		zap.L().Warn(
			"清除连接注册失败",
			zap.String("conn_id", c.id),
			zap.String("player", c.player),
			zap.Error(err),
		)
	}

	zap.L().Info(
		"连接关闭",
		zap.String("conn_id", c.id),
		zap.String("player", c.player),
	)
}

func (c *Connection) readLoop() {
	c.conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))

	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		return nil
	})

	// 客户端 ping 原样回 pong，同时顺延读超时
	c.conn.SetPingHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		return c.conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(WRITE_TIMEOUT),
		)
	})

	for {
		msgType, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				zap.L().Error(
					"读取消息失败",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}

			return
		}

		// 文本帧之外的帧一律忽略
		if msgType != websocket.TextMessage {
			continue
		}

		var act game.Action

		if err := json.Unmarshal(msg, &act); err != nil {
			zap.L().Debug(
				"解析动作失败",
				zap.String("conn_id", c.id),
				zap.Error(err),
			)

			// 解析失败回错误响应，绝不让坏载荷碰到游戏状态
			c.Send(game.ErrResp(game.ErrInternal))

			continue
		}

		if err := c.sess.HandleAction(c.player, act); err != nil {
			c.Send(game.ErrResp(err))
		}
	}
}

func (c *Connection) writeLoop(writeDone <-chan struct{}) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-writeDone:
			zap.L().Debug(
				"写协程退出",
				zap.String("conn_id", c.id),
			)
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"发送心跳失败",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
				return
			}

		case resp := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))

			if err := c.conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"发送消息失败",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
				return
			}
		}
	}
}
