package http

import (
	"errors"

	"mafia-be/internal/service/game"
	"mafia-be/internal/state"

	"github.com/kataras/iris/v12"
)

// CreateLobby 新建对局并发放房主凭证
func CreateLobby(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		name := ctx.URLParam("name")
		if name == "" {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{"error": "player name is required"})
			return
		}

		res, err := appState.SessionMgr.CreateSession(name)
		if err != nil {
			ctx.StatusCode(iris.StatusInternalServerError)
			ctx.JSON(iris.Map{"error": game.ErrorMessage(err)})
			return
		}

		ctx.JSON(res)
	}
}

// JoinLobby 把玩家加入既有对局并发放凭证
func JoinLobby(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		sessionID := ctx.URLParam("session_id")
		name := ctx.URLParam("name")

		if sessionID == "" || name == "" {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{"error": "session_id and name are required"})
			return
		}

		res, err := appState.SessionMgr.JoinSession(sessionID, name)
		if err != nil {
			ctx.StatusCode(joinErrorStatus(err))
			ctx.JSON(iris.Map{
				"error": game.ErrorMessage(err),
				"code":  game.ErrorCode(err),
			})
			return
		}

		ctx.JSON(res)
	}
}

func joinErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidSession):
		return iris.StatusNotFound
	case errors.Is(err, game.ErrInternal):
		return iris.StatusInternalServerError
	default:
		return iris.StatusBadRequest
	}
}
