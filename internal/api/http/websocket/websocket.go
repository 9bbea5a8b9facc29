package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// NOTE: 暂时允许所有来源
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	// 心跳间隔
	HEARTBEAT_INTERVAL = 30 * time.Second
	// 心跳超时时间，超过视为连接死亡
	HEARTBEAT_TIMEOUT = 45 * time.Second

	// 写超时
	WRITE_TIMEOUT = 10 * time.Second

	// 下发通道容量，写满后新消息被丢弃而不是阻塞对局协程
	SEND_BUFFER = 64
)
