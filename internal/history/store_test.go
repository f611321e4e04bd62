package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/diogo/sanai/internal/models"
)

func sampleMessages() []models.Message {
	return []models.Message{
		{ID: "1", Role: models.RoleUser, Text: "Apa itu Go?", Timestamp: 1700000000000},
		{ID: "2", Role: models.RoleModel, Text: "Go adalah bahasa pemrograman.", Timestamp: 1700000001000},
		{ID: "3", Role: models.RoleUser, Text: "/img kucing", Timestamp: 1700000002000},
		{ID: "4", Role: models.RoleModel, Text: "Ini adalah gambar untuk: **kucing**", ImageURL: "https://image.pollinations.ai/prompt/kucing?seed=1", Timestamp: 1700000005500},
	}
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	historyDir := filepath.Join(tmpDir, "history")
	if _, err := os.Stat(historyDir); os.IsNotExist(err) {
		t.Error("history directory was not created")
	}
	if store.Path() != filepath.Join(historyDir, FileName) {
		t.Errorf("Path() = %s", store.Path())
	}
}

func TestDefaultStore(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SANAI_HOME", home)

	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore failed: %v", err)
	}
	if store.Path() != filepath.Join(home, "history", FileName) {
		t.Errorf("Path() = %s", store.Path())
	}
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	messages, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("expected empty non-nil list, got %v", messages)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	want := sampleMessages()

	if err := store.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}
}

func TestStore_SaveEmptyKeepsFile(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	_ = store.Save(sampleMessages())

	if err := store.Save(nil); err != nil {
		t.Fatalf("Save(nil) failed: %v", err)
	}

	got, _ := store.Load()
	if len(got) != 4 {
		t.Errorf("empty save must not overwrite, got %d messages", len(got))
	}
}

func TestStore_SaveEmptyCreatesNothing(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	_ = store.Save([]models.Message{})

	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty conversation")
	}
}

func TestStore_SaveReplacesWholeList(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	msgs := sampleMessages()

	_ = store.Save(msgs[:2])
	_ = store.Save(msgs)

	got, _ := store.Load()
	if len(got) != 4 {
		t.Errorf("got %d messages, want 4", len(got))
	}

	entries, _ := os.ReadDir(filepath.Dir(store.Path()))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	messages, err := store.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if len(messages) != 0 {
		t.Errorf("expected empty list, got %d", len(messages))
	}

	if _, err := os.Stat(store.Path() + ".corrupt"); err != nil {
		t.Errorf("corrupt file should be kept aside: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("corrupt file should be moved away")
	}
}

func TestStore_ReadLeavesCorruptFile(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Read(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil || string(data) != "{not json" {
		t.Errorf("Read modified the file: %q, %v", data, err)
	}
	if _, err := os.Stat(store.Path() + ".corrupt"); !os.IsNotExist(err) {
		t.Error("Read should not create a backup")
	}
}

func TestStore_ReadMissing(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	messages, err := store.Read()
	if err != nil || len(messages) != 0 {
		t.Errorf("Read() = %v, %v; want empty, nil", messages, err)
	}
}

func TestStore_LoadMillisecondTimestamps(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	raw := `[{"id":"1712","role":"user","text":"halo","imageUrl":"data:image/png;base64,AA==","timestamp":1712000000000}]`
	_ = os.WriteFile(store.Path(), []byte(raw), 0o600)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 1 || got[0].Text != "halo" || !got[0].HasInlineImage() {
		t.Errorf("unexpected messages: %+v", got)
	}
}
