package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")

	sink, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("destination directory was not created: %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	name := "P1 Chronicle Android Raw Data 01-05-2024.csv"
	content := []byte("app_package_name,event_type\ncom.example,1\n")
	if err := sink.WriteFile(context.Background(), name, content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteFileNoSidecarFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	if err := sink.WriteFile(context.Background(), "a.csv", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.csv" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only a.csv, found %v", names)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	sink, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer sink.Close()

	ctx := context.Background()
	if err := sink.WriteFile(ctx, "a.csv", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := sink.WriteFile(ctx, "a.csv", []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}
}
