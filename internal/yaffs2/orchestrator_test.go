package yaffs2

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestRunExtractsEndToEnd(t *testing.T) {
	layout := Layouts[0]
	b := newImageBuilder(layout)
	uid, gid := os.Getuid(), os.Getgid()

	b.WriteHeader(RootObjectID, rootHeader(1000, 1000))
	b.WriteHeader(2, ObjectHeader{Type: TypeDirectory, ParentObjectID: RootObjectID, Name: "d", Mode: 040755, UID: uint32(uid), GID: uint32(gid), ATime: 2000, MTime: 2000})
	payload := []byte("byte-exact content\n")
	b.WriteHeader(3, ObjectHeader{Type: TypeFile, ParentObjectID: 2, Name: "f.txt", Mode: 0100644, UID: uint32(uid), GID: uint32(gid), FileSize: uint32(len(payload)), ATime: 3000, MTime: 3000})
	b.WriteData(3, 1, payload)
	b.WriteHeader(4, ObjectHeader{Type: TypeSymlink, ParentObjectID: 2, Name: "link", Alias: "f.txt", UID: uint32(uid), GID: uint32(gid)})

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(wd)

	cfg := Config{
		Source:  io.NopCloser(bytes.NewReader(b.Bytes())),
		BaseDir: dir,
		Mode:    ModeExtract,
		Verbose: true,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
		FS:      NewOSFileSystem(),
	}
	result, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Objects != 3 {
		t.Errorf("Objects = %d, want 3", result.Objects)
	}

	got, err := os.ReadFile(filepath.Join(dir, "d", "f.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("file content = %q, want %q", got, payload)
	}

	target, err := os.Readlink(filepath.Join(dir, "d", "link"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "f.txt" {
		t.Errorf("symlink target = %q, want f.txt", target)
	}

	info, err := os.Stat(filepath.Join(dir, "d"))
	if err != nil {
		t.Fatalf("Stat(d): %v", err)
	}
	// Directory mtime was restored by the shutdown replay, not left at
	// the time Mkdir created it.
	if info.ModTime().Unix() != 2000 {
		t.Errorf("dir mtime = %v, want unix 2000", info.ModTime())
	}
}

func TestRunListMode(t *testing.T) {
	layout := Layouts[0]
	b := newImageBuilder(layout)
	b.WriteHeader(RootObjectID, rootHeader(0, 0))
	b.WriteHeader(2, ObjectHeader{Type: TypeFile, ParentObjectID: RootObjectID, Name: "a.bin", FileSize: 4})
	b.WriteData(2, 1, []byte{1, 2, 3, 4})

	var stdout bytes.Buffer
	cfg := Config{
		Source: io.NopCloser(bytes.NewReader(b.Bytes())),
		Mode:   ModeListNames,
		Stdout: &stdout,
		Stderr: io.Discard,
		FS:     NewOSFileSystem(),
	}
	if _, err := Run(cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stdout.String() != "a.bin\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "a.bin\n")
	}
}

func TestRunForcedLayoutMismatchYieldsBrokenOrTruncated(t *testing.T) {
	layout := Layouts[0]
	b := newImageBuilder(layout)
	b.WriteHeader(RootObjectID, rootHeader(0, 0))

	cfg := Config{
		Source:       io.NopCloser(bytes.NewReader(b.Bytes())),
		ForcedLayout: 2, // actual image was built at layout 1 (2048/64)
		Mode:         ModeListNames,
		Stdout:       io.Discard,
		Stderr:       io.Discard,
		FS:           NewOSFileSystem(),
	}
	_, err := Run(cfg)
	if ye, ok := err.(*Error); !ok || (ye.Kind != KindBrokenImage && ye.Kind != KindTruncatedImage) {
		t.Errorf("err = %v, want KindBrokenImage or KindTruncatedImage when the forced layout doesn't match the image", err)
	}
}
