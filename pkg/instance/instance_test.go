package instance

import "testing"

func TestGetIDDefault(t *testing.T) {
	t.Setenv("FARMCART_WORKER_ID", "")
	if got := GetID(); got != "worker-0" {
		t.Fatalf("expected default id, got %q", got)
	}
}

func TestGetIDFromEnv(t *testing.T) {
	t.Setenv("FARMCART_WORKER_ID", "worker-7")
	if got := GetID(); got != "worker-7" {
		t.Fatalf("expected worker-7, got %q", got)
	}
}
