package main

import "testing"

func TestRunVersionFlag(t *testing.T) {
	if code := run([]string{"-V"}); code != 0 {
		t.Errorf("run(-V) = %d, want 0", code)
	}
}

func TestRunNoArguments(t *testing.T) {
	if code := run(nil); code != 1 {
		t.Errorf("run() with no positional args = %d, want 1", code)
	}
}

func TestRunTooManyArguments(t *testing.T) {
	if code := run([]string{"image.bin", "dest", "extra"}); code != 1 {
		t.Errorf("run() with 3 positional args = %d, want 1", code)
	}
}

func TestRunBaseDirWithListModeRejected(t *testing.T) {
	if code := run([]string{"-t", "image.bin", "dest"}); code != 1 {
		t.Errorf("run(-t image.bin dest) = %d, want 1", code)
	}
}

func TestRunLayoutOutOfRange(t *testing.T) {
	if code := run([]string{"-l", "5", "image.bin"}); code != 1 {
		t.Errorf("run(-l 5 image.bin) = %d, want 1", code)
	}
}

func TestRunMissingImageFile(t *testing.T) {
	if code := run([]string{"/nonexistent/path/to/image.bin"}); code != 1 {
		t.Errorf("run() with a missing image = %d, want 1", code)
	}
}

func TestRunUnknownFlag(t *testing.T) {
	if code := run([]string{"--bogus"}); code != 1 {
		t.Errorf("run(--bogus) = %d, want 1", code)
	}
}
