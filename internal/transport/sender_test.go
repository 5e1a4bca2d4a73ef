package transport

import (
	"testing"
	"time"
)

func TestSendThenRecvFIFO(t *testing.T) {
	s := NewSender()
	s.Send([]byte("a"))
	s.Send([]byte("b"))

	m1 := s.Recv()
	m2 := s.Recv()
	if string(m1.Payload) != "a" || string(m2.Payload) != "b" {
		t.Fatalf("got %q then %q, want a then b", m1.Payload, m2.Payload)
	}
}

func TestCloseEnqueuesTombstone(t *testing.T) {
	s := NewSender()
	s.Send([]byte("a"))
	s.Close()

	m1 := s.Recv()
	if m1.Close {
		t.Fatal("expected payload before tombstone")
	}
	m2 := s.Recv()
	if !m2.Close {
		t.Fatal("expected tombstone")
	}
}

func TestDrainDiscardsQueuedMessages(t *testing.T) {
	s := NewSender()
	s.Send([]byte("a"))
	s.Send([]byte("b"))
	s.Drain()
	if !s.Empty() {
		t.Fatal("expected empty queue after Drain")
	}
}

func TestRecvBlocksUntilSend(t *testing.T) {
	s := NewSender()
	done := make(chan Message, 1)
	go func() {
		done <- s.Recv()
	}()

	time.Sleep(20 * time.Millisecond)
	s.Send([]byte("late"))

	select {
	case m := <-done:
		if string(m.Payload) != "late" {
			t.Fatalf("got %q, want late", m.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Send")
	}
}
