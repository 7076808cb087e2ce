package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmdtest"
	"github.com/pkg/fileutils"
)

var update = flag.Bool("update", false, "update test files with results")

// fixtures are copied from testdata into each test's root directory.
var fixtures = []string{"hello.txt", "batch.txt", "batch-fail.txt"}

func TestCLI(t *testing.T) {
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	srcdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	ts.Setup = func(dir string) (err error) {
		for _, fn := range fixtures {
			err = fileutils.CopyFile(filepath.Join(dir, fn), filepath.Join(srcdir, "testdata", fn))
			if err != nil {
				return
			}
		}
		return
	}
	ts.Commands["ppath"] = cmdtest.InProcessProgram("ppath", run)
	ts.Run(t, *update)
}
