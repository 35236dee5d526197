// Command rdmwatch connects to a running rdmsim server's dashboard
// WebSocket endpoint and prints each tick snapshot as it arrives. It
// replaces the teacher's tools/ws_client, which imported
// gorilla/websocket — not a dependency the teacher's go.mod actually
// carries, so it never built — and dials the real coder/websocket-backed
// hub instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/coder/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "rdmsim server address")
	path := flag.String("path", "/ws", "dashboard websocket path")
	count := flag.Int("count", 0, "number of snapshots to print before exiting (0 = unlimited)")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: *path}
	log.Printf("connecting to %s", u.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		log.Fatalf("dial error: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	for i := 0; *count == 0 || i < *count; i++ {
		readCtx, readCancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, msg, err := conn.Read(readCtx)
		readCancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot[%d]=%s\n", i, string(msg))
	}
}
