// Package natsbus bridges a room to NATS.
//
// Every frame the room broadcasts is also published on <subject>.out, and
// frames published on <subject>.in are decoded and handled as if a websocket
// client had sent them. Replies to injected frames go to the connected
// sessions and to <subject>.out like any other reply.
//
// Usage:
//
//	bridge, err := natsbus.Connect("nats://127.0.0.1:4222", "gameon.room", log)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer bridge.Close()
//
//	hub := websocket.NewHub(roomService, registry, log, websocket.WithMirror(bridge))
//	unsubscribe, err := bridge.Forward(hub)
package natsbus
