package push

import (
	"testing"
)

func TestDecodeEventUpsert(t *testing.T) {
	body := []byte(`{"id":5,"title":"T","status":"TODO","project":{"id":3}}`)

	evt, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if evt.Kind != EventTaskUpserted {
		t.Fatalf("Kind = %v, want upserted", evt.Kind)
	}
	if evt.Task.ID != 5 || evt.Task.ProjectID != 3 {
		t.Errorf("task not normalized: %+v", evt.Task)
	}
	if evt.ProjectID != 3 {
		t.Errorf("ProjectID = %d, want 3", evt.ProjectID)
	}
}

func TestDecodeEventDelete(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{"deletedId":10,"projectId":2}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if evt.Kind != EventTaskDeleted {
		t.Fatalf("Kind = %v, want deleted", evt.Kind)
	}
	if evt.DeletedID != 10 || evt.ProjectID != 2 {
		t.Errorf("got DeletedID=%d ProjectID=%d", evt.DeletedID, evt.ProjectID)
	}
}

func TestDecodeEventExpired(t *testing.T) {
	body := []byte(`{"action":"expired","taskId":7,"task":"Ship it","projectId":4,"deadline":"2025-06-01T12:00:00Z"}`)

	evt, err := DecodeEvent(body)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if evt.Kind != EventTaskExpired {
		t.Fatalf("Kind = %v, want expired", evt.Kind)
	}
	if evt.TaskID != 7 || evt.TaskTitle != "Ship it" || evt.ProjectID != 4 {
		t.Errorf("fields: %+v", evt)
	}
	if evt.Deadline != "2025-06-01T12:00:00Z" {
		t.Errorf("Deadline = %q", evt.Deadline)
	}
}

func TestDecodeEventStringNumericIDs(t *testing.T) {
	// Some brokers stringify numeric fields on the way through.
	evt, err := DecodeEvent([]byte(`{"deletedId":"12","projectId":"3"}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if evt.Kind != EventTaskDeleted {
		t.Fatalf("Kind = %v, want deleted", evt.Kind)
	}
	if evt.DeletedID != 12 || evt.ProjectID != 3 {
		t.Errorf("got DeletedID=%d ProjectID=%d", evt.DeletedID, evt.ProjectID)
	}
}

func TestDecodeEventUnknown(t *testing.T) {
	evt, err := DecodeEvent([]byte(`{"something":"else"}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if evt.Kind != EventUnknown {
		t.Fatalf("Kind = %v, want unknown", evt.Kind)
	}
	if string(evt.Raw) != `{"something":"else"}` {
		t.Errorf("Raw not preserved: %s", evt.Raw)
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	for _, body := range []string{"not json", "", "null", "[1,2,3]"} {
		if _, err := DecodeEvent([]byte(body)); err == nil {
			t.Errorf("DecodeEvent(%q): expected error", body)
		}
	}
}

func TestNoopSubscriptionUnsubscribeIsIdempotent(t *testing.T) {
	source := NewSource("ws://127.0.0.1:1/stomp/websocket", 0)

	sub := source.SubscribeProject(1, func(Event) {})
	if sub.Destination() != "/topic/projects/1/tasks" {
		t.Errorf("Destination = %q", sub.Destination())
	}

	// Not connected, so this must be inert and safe repeatedly.
	sub.Unsubscribe()
	sub.Unsubscribe()

	global := source.SubscribeGlobal(func(Event) {})
	if global.Destination() != GlobalTopic {
		t.Errorf("global Destination = %q", global.Destination())
	}
	global.Unsubscribe()
}

func TestDisconnectWithoutConnect(t *testing.T) {
	source := NewSource("ws://127.0.0.1:1/stomp/websocket", 0)
	source.Disconnect()
	source.Disconnect()
	if source.Connected() {
		t.Error("Connected() = true on a never-connected source")
	}
}
