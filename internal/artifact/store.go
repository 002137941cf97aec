package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"praxis/internal/runspace"
)

// Store manages artifact IO rooted at one run directory.
type Store struct {
	run *runspace.Run
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for metadata timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store for a run.
func NewStore(run *runspace.Run, opts ...StoreOption) *Store {
	store := &Store{run: run, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Check inspects the artifact on disk and returns its status and metadata.
func (s *Store) Check(ref Ref) (CheckResult, error) {
	path := ref.Path(s.run)
	if path == "" {
		err := fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Ref: ref, Path: path, State: StateMissing}, nil
		}
		return CheckResult{Ref: ref, Path: path, State: StateError, Err: err}, err
	}
	switch ref.Kind {
	case KindMarker:
		if info.IsDir() {
			return invalidResult(ref, path, fmt.Errorf("artifact: expected marker file got directory"))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady}, nil
	case KindJSON:
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}, readErr
		}
		meta, metaErr := parseJSONMetadata(data)
		if metaErr != nil {
			return invalidResult(ref, path, metaErr)
		}
		if meta.ArtifactID != ref.ID {
			return invalidResult(ref, path, fmt.Errorf("artifact: metadata id %s does not match %s", meta.ArtifactID, ref.ID))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady, Metadata: &meta}, nil
	default:
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return CheckResult{Ref: ref, Path: path, State: StateError, Err: readErr}, readErr
		}
		meta, _, metaErr := ParseFrontMatter(data)
		if metaErr != nil {
			return invalidResult(ref, path, metaErr)
		}
		if meta.ArtifactID != ref.ID {
			return invalidResult(ref, path, fmt.Errorf("artifact: metadata id %s does not match %s", meta.ArtifactID, ref.ID))
		}
		return CheckResult{Ref: ref, Path: path, State: StateReady, Metadata: &meta}, nil
	}
}

// Write persists the artifact contents and metadata based on its kind.
func (s *Store) Write(ref Ref, body []byte, meta Metadata) error {
	path := ref.Path(s.run)
	if path == "" {
		return fmt.Errorf("artifact: %s path could not be resolved", ref.ID)
	}
	switch ref.Kind {
	case KindMarker:
		return ensureMarker(path)
	case KindJSON:
		return s.writeJSON(path, ref, body, meta)
	default:
		return s.writeDocument(path, ref, body, meta)
	}
}

// ReadBody returns the body of a document artifact, skipping frontmatter.
func (s *Store) ReadBody(ref Ref) ([]byte, error) {
	path := ref.Path(s.run)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	_, body, err := ParseFrontMatter(data)
	if err != nil {
		if errors.Is(err, ErrMissingFrontMatter) {
			return data, nil
		}
		return nil, err
	}
	return body, nil
}

func (s *Store) writeDocument(path string, ref Ref, body []byte, meta Metadata) error {
	if body == nil {
		body = []byte{}
	}
	prepared := meta.WithDefaults(ref, s.now())
	if err := prepared.ValidateFor(ref); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content, err := WriteFrontMatter(prepared, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (s *Store) writeJSON(path string, ref Ref, body []byte, meta Metadata) error {
	if body == nil {
		body = []byte("{}")
	}
	prepared := meta.WithDefaults(ref, s.now())
	if err := prepared.ValidateFor(ref); err != nil {
		return err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("artifact: invalid json body for %s: %w", ref.ID, err)
	}
	payload["_praxis"] = metadataToJSON(prepared)
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode json for %s: %w", ref.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

func ensureMarker(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte{}, 0o644)
}

func invalidResult(ref Ref, path string, err error) (CheckResult, error) {
	return CheckResult{Ref: ref, Path: path, State: StateInvalid, Err: err}, err
}

func parseJSONMetadata(data []byte) (Metadata, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse json metadata: %w", err)
	}
	raw, ok := payload["_praxis"]
	if !ok {
		return Metadata{}, fmt.Errorf("artifact: missing _praxis metadata")
	}
	metaMap, ok := raw.(map[string]any)
	if !ok {
		return Metadata{}, fmt.Errorf("artifact: invalid _praxis metadata structure")
	}
	return metadataFromMap(metaMap)
}

func metadataToJSON(meta Metadata) map[string]any {
	result := map[string]any{
		"artifact": meta.ArtifactID,
		"process":  meta.ProcessID,
		"version":  meta.Version,
		"run":      meta.RunID,
		"created":  meta.CreatedAt.UTC().Format(timeLayout),
	}
	if len(meta.Inputs) > 0 {
		result["inputs"] = append([]string{}, meta.Inputs...)
	}
	if len(meta.Notes) > 0 {
		result["notes"] = cloneNotes(meta.Notes)
	}
	return result
}

func metadataFromMap(raw map[string]any) (Metadata, error) {
	meta := Metadata{
		ArtifactID: stringValue(raw["artifact"]),
		ProcessID:  stringValue(raw["process"]),
		Version:    stringValue(raw["version"]),
		RunID:      stringValue(raw["run"]),
	}
	if meta.ArtifactID == "" || meta.ProcessID == "" || meta.Version == "" {
		return Metadata{}, fmt.Errorf("artifact: incomplete _praxis metadata")
	}
	if created := stringValue(raw["created"]); created != "" {
		parsed, err := time.Parse(timeLayout, created)
		if err != nil {
			return Metadata{}, fmt.Errorf("artifact: parse created timestamp: %w", err)
		}
		meta.CreatedAt = parsed
	}
	if inputs, ok := raw["inputs"].([]any); ok {
		for _, input := range inputs {
			if s := stringValue(input); s != "" {
				meta.Inputs = append(meta.Inputs, s)
			}
		}
	}
	if notes, ok := raw["notes"].(map[string]any); ok {
		meta.Notes = make(map[string]string, len(notes))
		for key, value := range notes {
			meta.Notes[key] = stringValue(value)
		}
	}
	return meta, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
