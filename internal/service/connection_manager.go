package service

import (
	"time"

	"mafia-be/internal/service/game"

	"go.uber.org/zap"
)

// ConnectionManager 是进程级的连接注册表，纯记账不含业务
// 存在的意义是让运维侧能枚举当前存活的传输连接
type ConnectionManager struct {
	reqCh  chan cmRequest
	doneCh chan struct{}
}

type cmRequest struct {
	Connect    *cmConnectRequest
	Disconnect *cmDisconnectRequest
	Snapshot   *cmSnapshotRequest
}

type cmConnectRequest struct {
	ID   string
	Conn game.PlayerConnection
}

type cmDisconnectRequest struct {
	ID string
}

type cmSnapshotRequest struct {
	ResCh chan []string
}

func NewConnectionManager() *ConnectionManager {
	cm := &ConnectionManager{
		reqCh:  make(chan cmRequest, 64),
		doneCh: make(chan struct{}),
	}

	go cm.loop()

	return cm
}

func (cm *ConnectionManager) Close() {
	close(cm.doneCh)
}

func (cm *ConnectionManager) loop() {
	connections := make(map[string]game.PlayerConnection)

	for {
		select {
		case req := <-cm.reqCh:
			switch {
			case req.Connect != nil:
				// 连接号每次新生成，覆盖写不会产生冲突
				connections[req.Connect.ID] = req.Connect.Conn

			case req.Disconnect != nil:
				// 删除不存在的连接号是无副作用的空操作
				delete(connections, req.Disconnect.ID)

			case req.Snapshot != nil:
				ids := make([]string, 0, len(connections))
				for id := range connections {
					ids = append(ids, id)
				}
				req.Snapshot.ResCh <- ids
			}

		case <-cm.doneCh:
			zap.L().Info("连接注册表协程退出")
			return
		}
	}
}

func (cm *ConnectionManager) Connect(id string, conn game.PlayerConnection) {
	cm.sendRequest(cmRequest{
		Connect: &cmConnectRequest{ID: id, Conn: conn},
	})
}

func (cm *ConnectionManager) Disconnect(id string) {
	cm.sendRequest(cmRequest{
		Disconnect: &cmDisconnectRequest{ID: id},
	})
}

// Snapshot 返回当前所有存活连接号
func (cm *ConnectionManager) Snapshot() ([]string, error) {
	resCh := make(chan []string, 1)

	if err := cm.sendRequest(cmRequest{
		Snapshot: &cmSnapshotRequest{ResCh: resCh},
	}); err != nil {
		return nil, err
	}

	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case ids := <-resCh:
		return ids, nil
	case <-t.C:
		return nil, game.ErrInternal
	}
}

func (cm *ConnectionManager) sendRequest(req cmRequest) error {
	t := time.NewTimer(reqTimeout)
	defer t.Stop()

	select {
	case cm.reqCh <- req:
		return nil
	case <-cm.doneCh:
		return game.ErrInternal
	case <-t.C:
		zap.L().Warn("连接注册表请求通道发送超时")
		return game.ErrInternal
	}
}
