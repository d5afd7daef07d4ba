package wsrouter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnSerializesConcurrentWrites(t *testing.T) {
	const writers = 8
	const perWriter = 50

	received := make(chan []byte, writers*perWriter)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	conn := NewConn(ws)
	defer conn.Close()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, conn.WriteJSON(map[string]int{"writer": w, "seq": i}))
			}
		}(w)
	}
	wg.Wait()

	// every frame must arrive intact, never interleaved with another writer's
	seen := make(map[int]int, writers)
	for i := 0; i < writers*perWriter; i++ {
		select {
		case data := <-received:
			var frame map[string]int
			require.NoError(t, json.Unmarshal(data, &frame))
			seen[frame["writer"]]++
		case <-time.After(5 * time.Second):
			t.Fatalf("received %d of %d frames", i, writers*perWriter)
		}
	}
	for w := 0; w < writers; w++ {
		assert.Equal(t, perWriter, seen[w], "writer %d", w)
	}
}
