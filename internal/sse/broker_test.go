package sse

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
	return ""
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Change{Kind: KindCreated, Slug: "boller", Path: "/opskrifter/boller", Title: "Boller"})

	s := receive(t, ch)
	for _, want := range []string{
		"id: 1\n",
		"event: recipe.created\n",
		`"slug":"boller"`,
		`"path":"/opskrifter/boller"`,
		`"title":"Boller"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("message %q missing %q", s, want)
		}
	}

	s = receive(t, ch)
	if !strings.Contains(s, "id: 2\nevent: "+EventRecipesChanged+"\n") {
		t.Errorf("second message = %q, want recipes.changed", s)
	}
}

func TestPublish_DeletedOmitsTitle(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Change{Kind: KindDeleted, Slug: "boller", Path: "/opskrifter/boller"})

	s := receive(t, ch)
	if strings.Contains(s, `"title"`) {
		t.Errorf("deleted event carries title: %q", s)
	}
}

func TestPublish_ListThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First change triggers recipes.changed; the second falls inside the window.
	b.Publish(Change{Kind: KindCreated, Slug: "boller"})
	b.Publish(Change{Kind: KindUpdated, Slug: "aebletaerte"})

	time.Sleep(50 * time.Millisecond)
	listCount := 0
	recipeCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: "+EventRecipesChanged) {
				listCount++
			} else {
				recipeCount++
			}
		default:
			break loop
		}
	}

	if recipeCount != 2 {
		t.Errorf("recipe events = %d, want 2", recipeCount)
	}
	if listCount != 1 {
		t.Errorf("list events = %d, want 1 (throttled)", listCount)
	}
}

func TestPublish_InvalidChangeDropped(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Change{Kind: "renamed", Slug: "boller"})
	b.Publish(Change{Kind: KindUpdated})
	b.Publish(Change{Kind: KindDeleted, Slug: "boller"})

	s := receive(t, ch)
	if !strings.Contains(s, "id: 1\nevent: recipe.deleted") {
		t.Errorf("first message = %q, want recipe.deleted with id 1", s)
	}
}

func TestPublish_FullBufferDoesNotBlock(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Client buffer holds 64 messages; the rest are dropped.
	for i := 0; i < 100; i++ {
		b.Publish(Change{Kind: KindUpdated, Slug: "boller"})
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel after unsubscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content-type = %q", ct)
	}

	b.Publish(Change{Kind: KindUpdated, Slug: "boller", Path: "/opskrifter/boller"})

	lines := make(chan string, 64)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream ended before recipe.updated")
			}
			if line == "event: recipe.updated" {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for recipe.updated")
		}
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close returned an open channel")
	}

	// No-ops after close.
	b.Publish(Change{Kind: KindUpdated, Slug: "boller"})
	b.Unsubscribe(late)
}
