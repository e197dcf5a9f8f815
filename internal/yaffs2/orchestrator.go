package yaffs2

import (
	"fmt"
	"io"
)

// Config configures one Run. The byte source and the destination
// filesystem are supplied by the caller — opening the image file or
// stdin, and any os.Open/os.Stdin wiring, belongs to
// cmd/yaffs2extract/main.go, kept outside the decoder/extractor core.
type Config struct {
	// Source is the image byte stream. Run closes it before returning.
	Source io.ReadCloser

	// BaseDir, if non-empty, is created (with intermediate components at
	// mode 0777) and chdir'd into before any extraction happens.
	BaseDir string

	// ForcedLayout is 0 for auto-detect, or 1..4 to force one of the four
	// supported layouts.
	ForcedLayout int

	Mode    Mode
	Verbose bool

	Stdout io.Writer
	Stderr io.Writer
	FS     FileSystem
}

// Result summarizes a completed Run, for the caller's own reporting.
type Result struct {
	Objects  int
	Warnings int
}

// Run drives the full extract-or-list sequence: open (already done by the
// caller), optionally chdir into the destination, detect or force the
// layout, decode the chunk stream until end of stream, then replay
// directory timestamps in reverse-creation order.
func Run(cfg Config) (Result, error) {
	defer cfg.Source.Close()

	if cfg.BaseDir != "" {
		if err := cfg.FS.MkdirAll(cfg.BaseDir); err != nil {
			return Result{}, wrapError(KindBadDestination, err, "creating base directory %s", cfg.BaseDir)
		}
		if err := cfg.FS.Chdir(cfg.BaseDir); err != nil {
			return Result{}, wrapError(KindBadDestination, err, "changing into base directory %s", cfg.BaseDir)
		}
	}
	cfg.FS.Umask(0)

	layout, prefix, err := resolveLayout(cfg)
	if err != nil {
		return Result{}, err
	}

	reader := newReader(cfg.Source, layout, prefix)
	pull := func() (Record, bool, error) {
		present, err := reader.Next()
		if err != nil {
			return Record{}, false, err
		}
		if !present {
			return Record{}, false, nil
		}
		return decodeRecord(reader.Chunk(), reader.Spare()), true, nil
	}

	ext := NewExtractor(cfg.FS, cfg.Mode, cfg.Stdout, cfg.Stderr, pull)

	for {
		rec, present, err := pull()
		if err != nil {
			return Result{Objects: ext.ObjectCount()}, err
		}
		if !present {
			break
		}
		if err := ext.HandleRecord(rec); err != nil {
			return Result{Objects: ext.ObjectCount()}, err
		}
	}

	if err := ext.ReplayDirectoryTimes(); err != nil {
		return Result{Objects: ext.ObjectCount()}, err
	}
	return Result{Objects: ext.ObjectCount()}, nil
}

func resolveLayout(cfg Config) (Layout, []byte, error) {
	if cfg.ForcedLayout != 0 {
		layout, err := LayoutByNumber(cfg.ForcedLayout)
		if err != nil {
			return Layout{}, nil, wrapError(KindUsageError, err, "resolving forced layout")
		}
		return layout, nil, nil
	}

	prefix, err := readLookahead(cfg.Source)
	if err != nil {
		return Layout{}, nil, err
	}
	layout, err := detectLayout(prefix)
	if err != nil {
		return Layout{}, nil, err
	}
	if cfg.Verbose && cfg.Mode == ModeExtract {
		fmt.Fprintf(cfg.Stderr, "Header check OK, %s.\n", layout)
	}
	return layout, prefix, nil
}
