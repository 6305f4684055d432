package scheduler

import (
	"testing"

	"transport_broker_backend/platform/config"
	"transport_broker_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
)

func TestNewClientWithoutRedisIsNil(t *testing.T) {
	client, err := NewClient(&config.Config{}, logger.New("development"))
	if err != nil {
		t.Fatalf("no redis url should not error: %v", err)
	}
	if client != nil {
		t.Fatal("no redis url should yield a nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("closing a nil client must be safe: %v", err)
	}
}

func TestEnqueueOrderPull(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		RedisURL:       "redis://" + mr.Addr(),
		AsynqQueueName: "default",
	}

	client, err := NewClient(cfg, logger.New("development"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueOrderPull("ord-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(mr.Keys()) == 0 {
		t.Fatal("expected the task to land in redis")
	}
}

func TestOrderPullPayloadRoundtrip(t *testing.T) {
	task, err := NewOrderPullTask("ord-42")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	payload, err := ParseOrderPullPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.OrderID != "ord-42" {
		t.Errorf("OrderID = %q, want ord-42", payload.OrderID)
	}
}

func TestParseOrderPullPayloadRejectsEmptyOrderID(t *testing.T) {
	task, err := NewOrderPullTask("")
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if _, err := ParseOrderPullPayload(task); err == nil {
		t.Fatal("empty order id must be rejected")
	}
}
