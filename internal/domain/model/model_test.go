//go:build !integration

package model

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"testing"
)

var uuidV4Re = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestNewJobDerivesStoredPath(t *testing.T) {
	j := NewJob("uploads", "My Thesis.pdf")

	if !uuidV4Re.MatchString(j.ID) {
		t.Errorf("id %q is not a UUID v4", j.ID)
	}
	if j.OriginalName != "My Thesis.pdf" {
		t.Errorf("originalName = %q", j.OriginalName)
	}
	if want := filepath.Join("uploads", j.ID+".pdf"); j.StoredPath != want {
		t.Errorf("storedPath = %q, want %q", j.StoredPath, want)
	}
	if j.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}

func TestNewJobWithoutExtension(t *testing.T) {
	j := NewJob("uploads", "README")
	if want := filepath.Join("uploads", j.ID); j.StoredPath != want {
		t.Errorf("storedPath = %q, want %q", j.StoredPath, want)
	}
}

func TestJobIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		j := NewJob("d", "a.pdf")
		if seen[j.ID] {
			t.Fatalf("duplicate id %s", j.ID)
		}
		seen[j.ID] = true
	}
}

func TestDescriptorWireFormat(t *testing.T) {
	j := NewJob("uploads", "doc.pdf")
	b, err := json.Marshal(j.Descriptor())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"jobId", "filePath", "originalName", "timestamp"} {
		if m[key] == "" {
			t.Errorf("missing %q in descriptor %s", key, b)
		}
	}
	if m["jobId"] != j.ID || m["originalName"] != "doc.pdf" {
		t.Errorf("descriptor = %v", m)
	}
}

func TestNewStatusFrameDefaults(t *testing.T) {
	f := NewStatusFrame("j", StatusConnected, nil)

	if f.Type != FrameTypeStatusUpdate {
		t.Errorf("type = %q", f.Type)
	}
	if f.Metadata == nil {
		t.Error("nil metadata must become an empty map")
	}
	if f.Timestamp == 0 {
		t.Error("timestamp not stamped")
	}

	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["metadata"] == nil {
		t.Errorf("metadata serialized as null: %s", b)
	}
}
