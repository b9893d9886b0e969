package web

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader upgrades an HTTP connection to a websocket, allowing same-origin
// requests and the Vite dev server used during front-end development.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if origin == "http://localhost:5173" {
			return true
		}

		host := r.Host
		return origin == "http://"+host || origin == "https://"+host
	},
}

// RegisterRoutes mounts the hub's websocket endpoint on mux at /ws.
func RegisterRoutes[O, Env any](mux *http.ServeMux, hub *Hub[O, Env]) {
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WarnS(r.Context(), "websocket upgrade failed", err)
			return
		}

		client := NewClient(conn)

		// Hub.Run delivers the initial snapshot from inside the same
		// select case that registers client, so it can never observe
		// a diff before its snapshot (see hub.go).
		hub.register <- client

		go client.writePump()
		go client.readPump(hub.unregister)
	})
}
