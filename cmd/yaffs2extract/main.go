// Command yaffs2extract extracts (or lists) the contents of a YAFFS2
// flash-filesystem image into a POSIX directory tree.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nand2tree/yaffs2extract/internal/yaffs2"
)

const usageHelp = `Usage: yaffs2extract [-flags] <image> [<base_dir>]

  -l N    layout: 0 = auto-detect (default), 1..4 force one of:
            layout=1:  2K chunk,  64 byte spare size
            layout=2:  4K chunk, 128 byte spare size
            layout=3:  8K chunk, 256 byte spare size
            layout=4: 16K chunk, 512 byte spare size
  -t      list mode: print names only, no extraction
  -v      verbose: with -t, long listing; without -t, print the
          detected layout to stderr
  -V      print version and exit
  -h, -?  this help

<image> is a regular file, or "-" for standard input.
<base_dir> is only valid without -t: yaffs2extract chdirs into it
(creating it if necessary) before extracting.
`

const version = "yaffs2extract 1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fset := flag.NewFlagSet("yaffs2extract", flag.ContinueOnError)
	fset.SetOutput(os.Stderr)
	fset.Usage = func() { fmt.Fprint(os.Stderr, usageHelp) }

	layoutFlag := fset.Int("l", 0, "layout number (0 = auto-detect, 1..4 = force)")
	listFlag := fset.Bool("t", false, "list mode: print names only")
	verboseFlag := fset.Bool("v", false, "verbose")
	versionFlag := fset.Bool("V", false, "print version and exit")

	if err := fset.Parse(args); err != nil {
		return 1
	}

	if *versionFlag {
		fmt.Println(version)
		return 0
	}

	if *layoutFlag < 0 || *layoutFlag > 4 {
		fset.Usage()
		return 1
	}

	narg := fset.NArg()
	if narg < 1 || narg > 2 {
		fset.Usage()
		return 1
	}
	if narg == 2 && *listFlag {
		fmt.Fprintln(os.Stderr, "yaffs2extract: a destination directory is only valid without -t")
		return 1
	}

	mode := yaffs2.ModeExtract
	if *listFlag {
		mode = yaffs2.ModeListNames
		if *verboseFlag {
			mode = yaffs2.ModeListLong
		}
	}

	source, err := openSource(fset.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaffs2extract: %v\n", err)
		return 1
	}

	baseDir := ""
	if narg == 2 {
		baseDir = fset.Arg(1)
	}

	stdout := newFlushWriter(os.Stdout)
	cfg := yaffs2.Config{
		Source:       source,
		BaseDir:      baseDir,
		ForcedLayout: *layoutFlag,
		Mode:         mode,
		Verbose:      *verboseFlag,
		Stdout:       stdout,
		Stderr:       os.Stderr,
		FS:           yaffs2.NewOSFileSystem(),
	}

	result, runErr := yaffs2.Run(cfg)
	stdout.Flush()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "yaffs2extract: %v\n", runErr)
		return 1
	}

	if mode == yaffs2.ModeExtract && isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintf(os.Stderr, "yaffs2extract: extracted %d object(s)\n", result.Objects)
	}
	return 0
}

func openSource(name string) (*os.File, error) {
	if name == "-" {
		return os.Stdin, nil
	}
	return os.Open(name)
}
