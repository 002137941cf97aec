package artifact

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"praxis/internal/runspace"
)

func newTestStore(t *testing.T) (*Store, *runspace.Run) {
	t.Helper()
	run := runspace.New(t.TempDir(), "decision-20260502-103000-ab12cd34")
	if err := run.Initialize(); err != nil {
		t.Fatalf("initialize run: %v", err)
	}
	fixed := time.Date(2026, 5, 2, 10, 30, 0, 0, time.UTC)
	store := NewStore(run, WithClock(func() time.Time { return fixed }))
	return store, run
}

func testMeta(ref Ref, run *runspace.Run) Metadata {
	return Metadata{
		ArtifactID: ref.ID,
		ProcessID:  "decision",
		Version:    "1.0.0",
		RunID:      run.ID(),
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	store, run := newTestStore(t)
	body := []byte("# Decision Report\n\nExpected utility ranking follows.\n")
	if err := store.Write(ReportDoc, body, testMeta(ReportDoc, run)); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, err := store.Check(ReportDoc)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.State != StateReady {
		t.Fatalf("expected ready, got %s (%v)", result.State, result.Err)
	}
	if result.Metadata.ProcessID != "decision" {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
	got, err := store.ReadBody(ReportDoc)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(got) != string(body) {
		t.Fatalf("body mismatch:\n%q\nvs\n%q", got, body)
	}
}

func TestJSONArtifactCarriesMetadataBlock(t *testing.T) {
	store, run := newTestStore(t)
	ref := TaskResultRef("elicit-options-001-aa")
	body := []byte(`{"options":["reuse","rewrite"]}`)
	if err := store.Write(ref, body, testMeta(ref, run)); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(ref.Path(run))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["_praxis"]; !ok {
		t.Fatalf("expected _praxis metadata block")
	}
	result, err := store.Check(ref)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.State != StateReady || result.Metadata.RunID != run.ID() {
		t.Fatalf("unexpected check result %+v", result)
	}
}

func TestCheckMissingAndInvalid(t *testing.T) {
	store, run := newTestStore(t)
	result, err := store.Check(ReportDoc)
	if err != nil {
		t.Fatalf("check missing: %v", err)
	}
	if result.State != StateMissing {
		t.Fatalf("expected missing, got %s", result.State)
	}
	if err := os.WriteFile(ReportDoc.Path(run), []byte("no frontmatter here"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, _ = store.Check(ReportDoc)
	if result.State != StateInvalid {
		t.Fatalf("expected invalid, got %s", result.State)
	}
}

func TestCheckRejectsMismatchedArtifactID(t *testing.T) {
	store, run := newTestStore(t)
	other := TaskResultRef("other-effect")
	if err := store.Write(other, []byte(`{}`), testMeta(other, run)); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Point a different ref at the same file.
	impostor := TaskResultRef("impostor")
	impostor.path = other.path
	result, _ := store.Check(impostor)
	if result.State != StateInvalid {
		t.Fatalf("expected invalid for mismatched id, got %s", result.State)
	}
}

func TestMarkerWrite(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Write(CompleteMarker, nil, Metadata{}); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	result, err := store.Check(CompleteMarker)
	if err != nil || result.State != StateReady {
		t.Fatalf("expected ready marker, got %s (%v)", result.State, err)
	}
}

func TestWriteRejectsIncompleteMetadata(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Write(ReportDoc, []byte("body"), Metadata{ArtifactID: ReportDoc.ID})
	if err == nil || !strings.Contains(err.Error(), "process id") {
		t.Fatalf("expected process id error, got %v", err)
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	if _, _, err := ParseFrontMatter(nil); err != ErrMissingFrontMatter {
		t.Fatalf("expected missing frontmatter, got %v", err)
	}
	if _, _, err := ParseFrontMatter([]byte("---\npraxis:\n  artifact: x\n")); err != ErrMalformedFrontMatter {
		t.Fatalf("expected malformed frontmatter, got %v", err)
	}
}
