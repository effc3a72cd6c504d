package audio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashIsStable(t *testing.T) {
	a := Hash([]byte("same image"))
	b := Hash([]byte("same image"))
	if a != b {
		t.Errorf("hash not deterministic: %s vs %s", a, b)
	}
	if a == Hash([]byte("other image")) {
		t.Error("different content produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestArtifactNameSeparatesEngines(t *testing.T) {
	h := Hash([]byte("meme"))
	gtts := ArtifactName(h, "gtts", "mp3")
	chattts := ArtifactName(h, "chattts", "wav")
	if gtts == chattts {
		t.Fatalf("engines must not share artifact names: %s", gtts)
	}
	if filepath.Ext(gtts) != ".mp3" || filepath.Ext(chattts) != ".wav" {
		t.Errorf("unexpected extensions: %s, %s", gtts, chattts)
	}
}

func TestSaveAndExists(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "artifacts"))

	name := ArtifactName(Hash([]byte("img")), "gtts", "mp3")
	path, err := s.Save(name, []byte("mp3-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "mp3-bytes" {
		t.Errorf("content = %q", got)
	}
	if !s.Exists(name) {
		t.Error("Exists returned false for saved artifact")
	}

	// повторная запись того же имени — идемпотентная перезапись
	if _, err := s.Save(name, []byte("newer")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = os.ReadFile(path)
	if string(got) != "newer" {
		t.Errorf("overwrite content = %q", got)
	}
}

func TestPathRejectsTraversal(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, name := range []string{"", "../evil.mp3", "a/b.mp3"} {
		if _, err := s.Path(name); err == nil {
			t.Errorf("Path(%q) accepted a bad name", name)
		}
	}
}
