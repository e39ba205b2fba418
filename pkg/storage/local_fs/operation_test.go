package local_fs

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestLocalFS_SendFile(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{SavePath: tempDir, PublicURL: "/media"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	content := "hello world"
	key, err := client.SendFile(context.Background(), "private/1700000000000.jpg", strings.NewReader(content), "image/jpeg")
	if err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if key != "private/1700000000000.jpg" {
		t.Errorf("unexpected key %s", key)
	}

	savedContent, err := os.ReadFile(client.FilePath(key))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(savedContent) != content {
		t.Errorf("Content mismatch: expected %s, got %s", content, string(savedContent))
	}

	if got := client.PublicURL(key); got != "/media/private/1700000000000.jpg" {
		t.Errorf("unexpected public url %s", got)
	}
}

func TestLocalFS_CustomPathAndDelete(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{SavePath: tempDir, CustomPath: "notes"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	key, err := client.SendFile(context.Background(), "private/2.mp4", strings.NewReader("v"), "video/mp4")
	if err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if key != "notes/private/2.mp4" {
		t.Fatalf("unexpected key %s", key)
	}

	if err := client.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(client.FilePath(key)); !os.IsNotExist(err) {
		t.Fatalf("file still exists after delete")
	}
	if err := client.Delete(context.Background(), key); err != nil {
		t.Fatalf("Delete of missing file should be ignored: %v", err)
	}
}

func TestNewClient_EmptySavePath(t *testing.T) {
	if _, err := NewClient(&Config{}); err == nil {
		t.Fatal("expected error for empty save path")
	}
}
