package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateBytes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind string
		wantErr  string
	}{
		{
			name:     "valid library",
			input:    `{"events": [{"id": "a", "stages": [{"id": "s", "choices": [{"label": "ok", "nextStage": "s"}]}]}]}`,
			wantKind: kindEvents,
		},
		{
			name:     "default stage ids resolve",
			input:    `{"events": [{"id": "a", "stages": [{"choices": [{"nextStage": "stage-1"}]}, {"choices": [{}]}]}]}`,
			wantKind: kindEvents,
		},
		{
			name:     "unknown field",
			input:    `{"events": [{"id": "a", "colour": "red", "stages": []}]}`,
			wantKind: kindEvents,
			wantErr:  "strict",
		},
		{
			name:     "missing next stage",
			input:    `{"events": [{"id": "a", "stages": [{"choices": [{"nextStage": "nowhere"}]}]}]}`,
			wantKind: kindEvents,
			wantErr:  `nextStage "nowhere" does not exist`,
		},
		{
			name:     "duplicate event",
			input:    `{"events": [{"id": "a", "stages": [{"choices": [{}]}]}, {"id": "a", "stages": [{"choices": [{}]}]}]}`,
			wantKind: kindEvents,
			wantErr:  `duplicate event id "a"`,
		},
		{
			name:     "unknown effect",
			input:    `{"events": [{"id": "a", "stages": [{"choices": [{"effects": [{"type": "explode"}]}]}]}]}`,
			wantKind: kindEvents,
			wantErr:  `unknown type or shape "explode"`,
		},
		{
			name:     "bad roll chance",
			input:    `{"events": [{"id": "a", "stages": [{"choices": [{"roll": {"chance": 2}}]}]}]}`,
			wantKind: kindEvents,
			wantErr:  "outside [0, 1]",
		},
		{
			name:     "unknown hook",
			input:    `{"events": [{"id": "a", "hook": "lunch", "stages": [{"choices": [{}]}]}]}`,
			wantKind: kindEvents,
			wantErr:  `unknown hook "lunch"`,
		},
		{
			name:     "valid skeleton",
			input:    `{"worldVersion": 1, "checkpoints": [{"id": "a", "name": "A", "actions": ["shop"]}]}`,
			wantKind: kindSkeleton,
		},
		{
			name:     "empty skeleton",
			input:    `{"checkpoints": []}`,
			wantKind: kindSkeleton,
			wantErr:  "missing checkpoints",
		},
		{
			name:     "unknown checkpoint action",
			input:    `{"checkpoints": [{"id": "a", "name": "A", "actions": ["juggle"]}]}`,
			wantKind: kindSkeleton,
			wantErr:  `unknown action "juggle"`,
		},
		{
			name:     "valid legacy graph",
			input:    `{"start": "a", "nodes": [{"id": "a", "name": "A", "connections": ["b"]}, {"id": "b", "name": "B", "neighbors": [{"id": "a"}]}]}`,
			wantKind: kindLegacy,
		},
		{
			name:     "dangling legacy connection",
			input:    `{"nodes": [{"id": "a", "name": "A", "connections": ["ghost"]}]}`,
			wantKind: kindLegacy,
			wantErr:  `missing node "ghost"`,
		},
		{
			name:    "unrecognized",
			input:   `{"scenes": []}`,
			wantErr: "unrecognized content",
		},
		{
			name:    "not json",
			input:   `{`,
			wantErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := validateBytes([]byte(tt.input))
			if kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.txt")
	if err := os.WriteFile(path, []byte(`{"events": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := validateFile(path); err == nil || !strings.Contains(err.Error(), ".json extension") {
		t.Errorf("error = %v, want extension error", err)
	}
}

func TestBundledDataIsValid(t *testing.T) {
	for _, name := range []string{"world.json", "nodes.json", "events.json"} {
		t.Run(name, func(t *testing.T) {
			if _, err := validateFile(filepath.Join("..", "..", "data", name)); err != nil {
				t.Errorf("bundled %s: %v", name, err)
			}
		})
	}
}
