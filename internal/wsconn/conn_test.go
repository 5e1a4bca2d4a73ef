package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
)

func TestDialRoundtripsWithAccept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close()
		msg, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		if err := conn.WriteMessage(msg); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]
	client, err := Dial(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	echoed, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(echoed) != "hello" {
		t.Fatalf("got %q, want hello", echoed)
	}
}

func TestAcceptAndRoundtripBinaryMessage(t *testing.T) {
	var gotMessage []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close()
		msg, err := conn.ReadMessage()
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		gotMessage = msg
		if err := conn.WriteMessage(msg); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.BinaryMessage, []byte("payload")); err != nil {
		t.Fatalf("client write: %v", err)
	}
	_, echoed, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if string(echoed) != "payload" {
		t.Fatalf("got %q, want payload", echoed)
	}
	if string(gotMessage) != "payload" {
		t.Fatalf("server saw %q, want payload", gotMessage)
	}
}

func TestReadMessageRejectsTextFrames(t *testing.T) {
	result := make(chan error, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Accept(w, r)
		if err != nil {
			result <- err
			return
		}
		defer conn.Close()
		_, err = conn.ReadMessage()
		result <- err
	}))
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):]
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte("not binary")); err != nil {
		t.Fatalf("client write: %v", err)
	}

	err = <-result
	if err != ErrNotBinary {
		t.Fatalf("got %v, want ErrNotBinary", err)
	}
}
