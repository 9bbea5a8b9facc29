package http

import (
	"fmt"

	"mafia-be/internal/api/http/websocket"
	"mafia-be/internal/state"

	"github.com/kataras/iris/v12"
)

func RunServer(appState *state.AppState) {
	app := iris.Default()

	app.Get("/create", CreateLobby(appState))
	app.Get("/join", JoinLobby(appState))
	app.Get("/ws", websocket.Join(appState))

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	app.Listen(addr)
}
