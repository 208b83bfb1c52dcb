package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSanitizeTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{name: "spaces", topic: "Quantum Computing", want: "Quantum_Computing"},
		{name: "punctuation", topic: "R&D: what's next?", want: "RD_whats_next"},
		{name: "hyphenUnderscore", topic: "dev-ops_101", want: "dev-ops_101"},
		{name: "trailingSpaces", topic: "Go!!  ", want: "Go"},
		{name: "unicode", topic: "Künstliche Intelligenz", want: "Künstliche_Intelligenz"},
		{name: "pathTraversal", topic: "../../etc/passwd", want: "etcpasswd"},
		{name: "onlySymbols", topic: "?!*", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTopic(tt.topic); got != tt.want {
				t.Errorf("SanitizeTopic(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestDeckFilename(t *testing.T) {
	if got := DeckFilename("Quantum Computing"); got != "Quantum_Computing_presentation.pptx" {
		t.Errorf("DeckFilename() = %q", got)
	}
	if got := DeckFilename("???"); got != "untitled_presentation.pptx" {
		t.Errorf("DeckFilename(???) = %q", got)
	}
}

func TestLocalStorageDeckPath(t *testing.T) {
	s := NewLocalStorage("presentations")
	want := filepath.Join("presentations", "Quantum_Computing_presentation.pptx")
	if got := s.DeckPath("Quantum Computing"); got != want {
		t.Errorf("DeckPath() = %q, want %q", got, want)
	}
}

func TestLocalStorageSaveDeck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "presentations")
	s := NewLocalStorage(dir)

	path, err := s.SaveDeck("Go", func(w io.Writer) error {
		_, err := io.WriteString(w, "deck bytes")
		return err
	})
	if err != nil {
		t.Fatalf("SaveDeck() error = %v", err)
	}
	if path != filepath.Join(dir, "Go_presentation.pptx") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "deck bytes" {
		t.Errorf("content = %q", data)
	}

	decks, err := s.ListDecks()
	if err != nil {
		t.Fatalf("ListDecks() error = %v", err)
	}
	if !reflect.DeepEqual(decks, []string{path}) {
		t.Errorf("ListDecks() = %v, want [%s]", decks, path)
	}
}

func TestLocalStorageSaveDeckFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)

	existing := s.DeckPath("Go")
	if err := os.WriteFile(existing, []byte("previous"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := s.SaveDeck("Go", func(w io.Writer) error {
		_, _ = io.WriteString(w, "half")
		return errors.New("encoder exploded")
	})
	if err == nil {
		t.Fatal("SaveDeck() should fail")
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "previous" {
		t.Errorf("existing deck overwritten with %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want 1", len(entries))
	}
}

func TestLocalStorageSaveDeckUnwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := NewLocalStorage(filepath.Join(file, "presentations"))
	_, err := s.SaveDeck("Go", func(io.Writer) error { return nil })
	if err == nil {
		t.Error("SaveDeck() under a file should fail")
	}
}

func TestLocalStorageListDecksMissingDir(t *testing.T) {
	s := NewLocalStorage("/nonexistent/dir")
	if _, err := s.ListDecks(); err == nil {
		t.Error("ListDecks() should fail for missing directory")
	}
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantOK     bool
	}{
		{uri: "gs://decks/team/Go_presentation.pptx", wantBucket: "decks", wantObject: "team/Go_presentation.pptx", wantOK: true},
		{uri: "gs://decks/", wantOK: false},
		{uri: "gs://decks", wantOK: false},
		{uri: "presentations/Go_presentation.pptx", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, ok := ParseURI(tt.uri)
			if ok != tt.wantOK || bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("ParseURI(%q) = %q, %q, %v", tt.uri, bucket, object, ok)
			}
		})
	}
}

func TestNewGCSStorageRequiresBucket(t *testing.T) {
	if _, err := NewGCSStorage(context.Background(), GCSConfig{}); err == nil {
		t.Error("NewGCSStorage() without bucket should fail")
	}
}

func TestNewGCSStorageBadCredentials(t *testing.T) {
	creds := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(creds, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := NewGCSStorage(context.Background(), GCSConfig{Bucket: "decks", CredentialsFile: creds})
	if err == nil {
		t.Error("NewGCSStorage() with malformed credentials should fail")
	}
}

func TestGCSStorageListDecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/b/decks/o") {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("prefix"); got != "team" {
			t.Errorf("prefix = %q, want team", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"kind":"storage#objects","items":[
			{"kind":"storage#object","name":"team/Go_presentation.pptx","bucket":"decks"},
			{"kind":"storage#object","name":"team/notes.txt","bucket":"decks"}
		]}`)
	}))
	defer server.Close()

	t.Setenv("STORAGE_EMULATOR_HOST", strings.TrimPrefix(server.URL, "http://"))

	s, err := NewGCSStorage(context.Background(), GCSConfig{Bucket: "decks", Prefix: "/team/"})
	if err != nil {
		t.Fatalf("NewGCSStorage() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	decks, err := s.ListDecks(context.Background())
	if err != nil {
		t.Fatalf("ListDecks() error = %v", err)
	}
	if !reflect.DeepEqual(decks, []string{"team/Go_presentation.pptx"}) {
		t.Errorf("ListDecks() = %v", decks)
	}
	if got := s.objectName("/tmp/out/Go_presentation.pptx"); got != "team/Go_presentation.pptx" {
		t.Errorf("objectName() = %q", got)
	}
}

func TestGCSStorageUploadMissingFile(t *testing.T) {
	t.Setenv("STORAGE_EMULATOR_HOST", "127.0.0.1:1")

	s, err := NewGCSStorage(context.Background(), GCSConfig{Bucket: "decks"})
	if err != nil {
		t.Fatalf("NewGCSStorage() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pptx")); err == nil {
		t.Error("Upload() of missing file should fail")
	}
}

func TestGCSStorageDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "Go_presentation.pptx") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", pptxContentType)
		_, _ = fmt.Fprint(w, "deck bytes")
	}))
	defer server.Close()

	t.Setenv("STORAGE_EMULATOR_HOST", strings.TrimPrefix(server.URL, "http://"))

	s, err := NewGCSStorage(context.Background(), GCSConfig{Bucket: "decks"})
	if err != nil {
		t.Fatalf("NewGCSStorage() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	tests := []struct {
		name    string
		object  string
		subdir  string
		wantErr bool
	}{
		{"downloaded", "team/Go_presentation.pptx", "", false},
		{"missingObject", "team/Rust_presentation.pptx", "", true},
		{"missingLocalDir", "team/Go_presentation.pptx", "absent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			local := filepath.Join(dir, tt.subdir, "deck.pptx")

			err := s.Download(context.Background(), tt.object, local)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Download() error = %v, wantErr %v", err, tt.wantErr)
			}

			entries, readErr := os.ReadDir(dir)
			if readErr != nil {
				t.Fatalf("ReadDir() error = %v", readErr)
			}
			if tt.wantErr {
				if len(entries) != 0 {
					t.Errorf("failed download left %d file(s) behind", len(entries))
				}
				if _, statErr := os.Stat(local); !errors.Is(statErr, os.ErrNotExist) {
					t.Errorf("Stat(%s) error = %v, want not exist", local, statErr)
				}
				return
			}

			if len(entries) != 1 {
				t.Errorf("download dir has %d entries, want 1", len(entries))
			}
			data, readErr := os.ReadFile(local)
			if readErr != nil {
				t.Fatalf("ReadFile() error = %v", readErr)
			}
			if string(data) != "deck bytes" {
				t.Errorf("downloaded %q, want %q", data, "deck bytes")
			}
		})
	}
}
