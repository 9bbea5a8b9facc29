package websocket

import (
	"errors"

	"mafia-be/internal/service/game"
	"mafia-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// Join 处理传输升级：先验 session 再验 secret，任一无效则拒绝升级
func Join(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		sessionID := ctx.URLParam("session")
		secret := ctx.URLParam("secret")

		gs, err := appState.SessionMgr.GetSession(sessionID)
		if err != nil {
			zap.L().Error(
				"查询对局失败",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)

			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{"error": game.ErrorMessage(err)})

			return
		}

		if gs == nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{"error": game.ErrInvalidSession.Error()})

			return
		}

		name, err := gs.GetPlayername(secret)
		if err != nil {
			if errors.Is(err, game.ErrInvalidSecret) {
				zap.L().Warn(
					"secret 无效，拒绝升级",
					zap.String("client_ip", ctx.RemoteAddr()),
					zap.String("session_id", sessionID),
				)

				ctx.StatusCode(iris.StatusBadRequest)
			} else {
				ctx.StatusCode(iris.StatusInternalServerError)
			}

			ctx.JSON(iris.Map{"error": game.ErrorMessage(err)})

			return
		}

		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error(
				"升级到WebSocket失败",
				zap.String("client_ip", ctx.RemoteAddr()),
				zap.Error(err),
			)

			ctx.StatusCode(iris.StatusBadRequest)

			return
		}

		zap.L().Info(
			"玩家建立连接",
			zap.String("client_ip", ctx.RemoteAddr()),
			zap.String("session_id", sessionID),
			zap.String("player", name),
		)

		c := newConnection(name, conn, appState.ConnMgr, gs)
		c.run()
	}
}
