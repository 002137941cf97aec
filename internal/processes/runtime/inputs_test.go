package runtime

import "testing"

func TestStringInput(t *testing.T) {
	inputs := map[string]any{"topic": "  tariffs  ", "count": 3}
	got, err := StringInput("proc", inputs, "topic")
	if err != nil {
		t.Fatalf("StringInput: %v", err)
	}
	if got != "tariffs" {
		t.Fatalf("unexpected value: %q", got)
	}
	if _, err := StringInput("proc", inputs, "missing"); err == nil {
		t.Fatal("expected error for missing input")
	}
	if _, err := StringInput("proc", inputs, "count"); err == nil {
		t.Fatal("expected error for non-string input")
	}
	if _, err := StringInput("proc", map[string]any{"topic": "  "}, "topic"); err == nil {
		t.Fatal("expected error for blank input")
	}
}

func TestList(t *testing.T) {
	result := map[string]any{"items": []any{"a", "b"}, "scalar": "x"}
	if got := List(result, "items"); len(got) != 2 {
		t.Fatalf("unexpected list: %v", got)
	}
	if got := List(result, "scalar"); got != nil {
		t.Fatalf("expected nil for non-array field, got %v", got)
	}
	if got := List(result, "absent"); got != nil {
		t.Fatalf("expected nil for absent field, got %v", got)
	}
}

func TestIntOption(t *testing.T) {
	cfg := map[string]any{"shards": float64(4), "zero": float64(0), "bad": "x", "exact": 2}
	if got := IntOption(cfg, "shards", 3); got != 4 {
		t.Fatalf("float64 option: got %d", got)
	}
	if got := IntOption(cfg, "exact", 3); got != 2 {
		t.Fatalf("int option: got %d", got)
	}
	for _, key := range []string{"zero", "bad", "absent"} {
		if got := IntOption(cfg, key, 3); got != 3 {
			t.Fatalf("fallback for %s: got %d", key, got)
		}
	}
}
