package main

import (
	"fmt"
	"strings"

	"praxis/internal/process"
)

// keyValueFlag collects repeatable key=value flags.
type keyValueFlag map[string]string

func (kv *keyValueFlag) String() string {
	if kv == nil || len(*kv) == 0 {
		return ""
	}
	var pairs []string
	for key, value := range *kv {
		pairs = append(pairs, fmt.Sprintf("%s=%s", key, value))
	}
	return strings.Join(pairs, ", ")
}

func (kv *keyValueFlag) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	key := strings.TrimSpace(parts[0])
	if key == "" {
		return fmt.Errorf("key is empty in %q", value)
	}
	if *kv == nil {
		*kv = keyValueFlag{}
	}
	(*kv)[key] = parts[1]
	return nil
}

func (kv keyValueFlag) toMap() map[string]any {
	if len(kv) == 0 {
		return nil
	}
	out := make(map[string]any, len(kv))
	for key, value := range kv {
		out[key] = value
	}
	return out
}

func (kv keyValueFlag) toConfig() process.Config {
	if len(kv) == 0 {
		return nil
	}
	out := make(process.Config, len(kv))
	for key, value := range kv {
		out[key] = value
	}
	return out
}
