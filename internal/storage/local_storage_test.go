package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveUpload(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	content := []byte("test video content")
	name, err := store.SaveUpload(bytes.NewReader(content), UploadInfo{
		OriginalName: "recording.MP4",
		ContentType:  "video/mp4",
		Size:         int64(len(content)),
	})
	if err != nil {
		t.Fatalf("Failed to save upload: %v", err)
	}

	if filepath.Ext(name) != ".mp4" {
		t.Errorf("Expected lowercased .mp4 extension, got %s", filepath.Ext(name))
	}
	if name == "recording.MP4" {
		t.Errorf("Stored name must be generated, got the original name back")
	}

	saved, err := os.ReadFile(filepath.Join(tmpDir, name))
	if err != nil {
		t.Fatalf("Upload not written: %v", err)
	}
	if !bytes.Equal(saved, content) {
		t.Errorf("Upload content mismatch")
	}
}

func TestOpenAndRemove(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewLocalStorage(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	name, err := store.SaveUpload(bytes.NewReader([]byte("clip")), UploadInfo{OriginalName: "a.mp4"})
	if err != nil {
		t.Fatalf("Failed to save upload: %v", err)
	}

	file, err := store.Open(name)
	if err != nil {
		t.Fatalf("Failed to open upload: %v", err)
	}
	buf := make([]byte, 4)
	if _, err := file.Read(buf); err != nil {
		t.Fatalf("Failed to read upload: %v", err)
	}
	file.Close()
	if string(buf) != "clip" {
		t.Errorf("Expected clip, got %q", buf)
	}

	if err := store.Remove(name); err != nil {
		t.Fatalf("Failed to remove upload: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, name)); !os.IsNotExist(err) {
		t.Errorf("Upload was not removed")
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	bad := []string{
		"../../../etc/passwd",
		"sub/clip.mp4",
		`sub\clip.mp4`,
		"..",
	}
	for _, name := range bad {
		if _, err := store.Path(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
		if _, err := store.Open(name); err == nil {
			t.Errorf("Expected open of %q to fail", name)
		}
		if err := store.Remove(name); err == nil {
			t.Errorf("Expected remove of %q to fail", name)
		}
	}
}
