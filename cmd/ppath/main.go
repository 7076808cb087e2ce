package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"
	"github.com/google/renameio"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
	pt "github.com/t7a/pairtree"
)

var log *logrus.Logger

func init() {
	// built before cmdtest swaps os.Stderr, so log lines stay out of
	// the golden output
	log = pt.NewLogger(os.Stderr, os.Getenv("DEBUG") == "1")
}

const usage = `ppath

Usage:
  ppath init <uri> [--shorty=<n>] [--scheme=<scheme>] [--store=<dir>]
  ppath encode <id>
  ppath decode <encoded>
  ppath path <id> [--shorty=<n>] [--store=<dir>]
  ppath id <dirpath> [--store=<dir>]
  ppath mkobj [<id>] [--store=<dir>]
  ppath exists <id> [--store=<dir>]
  ppath rm <id> [--store=<dir>]
  ppath ls [--store=<dir>]
  ppath put <id> <name> [<file>] [--subpath=<subpath>] [--store=<dir>]
  ppath get <id> <name> [--subpath=<subpath>] [-o <filename>] [--store=<dir>]
  ppath del <id> <name> [--subpath=<subpath>] [--store=<dir>]
  ppath parts <id> [<subpath>] [-l] [--store=<dir>]
  ppath index <filename> [--store=<dir>]
  ppath batch <file> [--store=<dir>]

The store is --store, else $PAIRTREE_DIR, else ./data.  With --shorty,
path prints the shorty path of <id> without opening a store.  put reads
standard input when <file> is not given.  batch runs one command per
line of <file>, stopping at the first failure.

Options:
  -h --help     Show this screen.
  --version     Show version.
`

type Opts struct {
	Init       bool   `docopt:"init"`
	Encode     bool   `docopt:"encode"`
	Decode     bool   `docopt:"decode"`
	Path       bool   `docopt:"path"`
	IDCmd      bool   `docopt:"id"`
	Mkobj      bool   `docopt:"mkobj"`
	Exists     bool   `docopt:"exists"`
	Rm         bool   `docopt:"rm"`
	Ls         bool   `docopt:"ls"`
	Put        bool   `docopt:"put"`
	Get        bool   `docopt:"get"`
	Del        bool   `docopt:"del"`
	Parts      bool   `docopt:"parts"`
	Index      bool   `docopt:"index"`
	Batch      bool   `docopt:"batch"`
	URI        string `docopt:"<uri>"`
	ID         string `docopt:"<id>"`
	Encoded    string `docopt:"<encoded>"`
	Dirpath    string `docopt:"<dirpath>"`
	Name       string `docopt:"<name>"`
	File       string `docopt:"<file>"`
	SubpathArg string `docopt:"<subpath>"`
	Filename   string `docopt:"<filename>"`
	Shorty     string `docopt:"--shorty"`
	Scheme     string `docopt:"--scheme"`
	Store      string `docopt:"--store"`
	Subpath    string `docopt:"--subpath"`
	Out        bool   `docopt:"-o"`
	Long       bool   `docopt:"-l"`
	Help       bool   `docopt:"--help"`
	Version    bool   `docopt:"--version"`
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	return dispatch(os.Args[1:])
}

// dispatch parses one command line and runs it.
func dispatch(args []string) (rc int) {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	o, err := parser.ParseArgs(usage, args, "0.1")
	if err != nil {
		return 22
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	switch true {
	case opts.Init:
		store, err := create(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("Initialized pairtree store in %s\n", store.Dir)
	case opts.Encode:
		fmt.Println(pt.Encode(opts.ID))
	case opts.Decode:
		id, err := pt.Decode(opts.Encoded)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(id)
	case opts.Path:
		path, err := shortyPath(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(path)
	case opts.IDCmd:
		store, err := open(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		id, err := store.IDFromPath(opts.Dirpath)
		if err != nil {
			log.Error(err)
			return 43
		}
		fmt.Println(id)
	case opts.Mkobj:
		obj, err := mkobj(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Println(obj.ID)
	case opts.Exists:
		store, err := open(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		ok, err := store.Exists(opts.ID)
		if err != nil {
			log.Error(err)
			return 43
		}
		fmt.Println(ok)
	case opts.Rm:
		store, err := open(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		err = store.DeleteObject(opts.ID)
		if err != nil {
			log.Error(err)
			return 43
		}
	case opts.Ls:
		store, err := open(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		ids, err := store.ListIDs()
		if err != nil {
			log.Error(err)
			return 43
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	case opts.Put:
		err := put(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Get:
		err := get(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
	case opts.Del:
		store, err := open(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		err = store.DelStream(opts.ID, opts.Subpath, opts.Name)
		if err != nil {
			log.Error(err)
			return 43
		}
	case opts.Parts:
		lines, err := parts(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		if len(lines) > 0 {
			fmt.Println(strings.Join(lines, "\n"))
		}
	case opts.Index:
		n, err := index(opts)
		if err != nil {
			log.Error(err)
			return 42
		}
		fmt.Printf("indexed %d objects to %s\n", n, opts.Filename)
	case opts.Batch:
		return batch(opts)
	}
	return 0
}

// storeDir picks the store directory for opts.
func storeDir(opts Opts) string {
	if opts.Store != "" {
		return opts.Store
	}
	if dir := os.Getenv("PAIRTREE_DIR"); dir != "" {
		return dir
	}
	return "data"
}

func open(opts Opts) (store *pt.Store, err error) {
	return pt.Store{Dir: storeDir(opts), Log: log}.Open()
}

func create(opts Opts) (store *pt.Store, err error) {
	shorty, err := shortyLength(opts)
	if err != nil {
		return
	}
	return pt.Store{
		Dir:          storeDir(opts),
		URIBase:      opts.URI,
		ShortyLength: shorty,
		IDScheme:     opts.Scheme,
		Log:          log,
	}.Open()
}

func shortyLength(opts Opts) (n int, err error) {
	if opts.Shorty == "" {
		return 0, nil
	}
	n, err = strconv.Atoi(opts.Shorty)
	if err != nil {
		return
	}
	if n < 1 {
		return 0, fmt.Errorf("shorty length must be positive: %d", n)
	}
	return
}

func shortyPath(opts Opts) (path string, err error) {
	if opts.Shorty != "" {
		n, err := shortyLength(opts)
		if err != nil {
			return "", err
		}
		return filepath.Join(pt.Segments(opts.ID, n)...), nil
	}
	store, err := open(opts)
	if err != nil {
		return
	}
	return store.Path(opts.ID).Abs, nil
}

func mkobj(opts Opts) (obj *pt.Object, err error) {
	store, err := open(opts)
	if err != nil {
		return
	}
	if opts.ID == "" {
		return store.NewObject()
	}
	return store.CreateObject(opts.ID)
}

func put(opts Opts) (err error) {
	store, err := open(opts)
	if err != nil {
		return
	}
	var src io.Reader = os.Stdin
	if opts.File != "" {
		fh, err := os.Open(opts.File)
		if err != nil {
			return err
		}
		defer fh.Close()
		src = fh
	}
	_, err = store.PutStream(opts.ID, opts.Subpath, opts.Name, src, 0)
	return
}

func get(opts Opts) (err error) {
	store, err := open(opts)
	if err != nil {
		return
	}
	rd, err := store.GetStream(opts.ID, opts.Subpath, opts.Name)
	if err != nil {
		return
	}
	defer rd.Close()
	if !opts.Out {
		_, err = io.Copy(os.Stdout, rd)
		return
	}
	fh, err := os.Create(opts.Filename)
	if err != nil {
		return
	}
	_, err = io.Copy(fh, rd)
	cerr := fh.Close()
	if err == nil {
		err = cerr
	}
	return
}

// parts lists an object directory; long lines carry the size of each
// file, or "-" for directories.
func parts(opts Opts) (lines []string, err error) {
	store, err := open(opts)
	if err != nil {
		return
	}
	names, err := store.ListParts(opts.ID, opts.SubpathArg)
	if err != nil {
		return
	}
	if !opts.Long {
		return names, nil
	}
	dir := filepath.Join(store.Path(opts.ID).Abs, opts.SubpathArg)
	for _, name := range names {
		info, err := store.FS.Stat(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			lines = append(lines, fmt.Sprintf("%-8s %s/", "-", name))
			continue
		}
		lines = append(lines, fmt.Sprintf("%-8s %s", humanize.Bytes(uint64(info.Size())), name))
	}
	return
}

// index writes a msgpack index of the store to opts.Filename, replacing
// any previous index in one step.
func index(opts Opts) (n int, err error) {
	store, err := open(opts)
	if err != nil {
		return
	}
	idx, err := store.BuildIndex()
	if err != nil {
		return
	}
	dir := filepath.Dir(opts.Filename)
	pf, err := renameio.TempFile(dir, opts.Filename)
	if err != nil {
		return
	}
	defer pf.Cleanup()
	err = idx.Encode(pf)
	if err != nil {
		return
	}
	err = pf.CloseAtomicallyReplace()
	if err != nil {
		return
	}
	return len(idx.Entries), nil
}

// batch runs the commands in opts.File.  Blank lines and lines
// starting with # are skipped.  A --store given to batch applies to
// every command that doesn't name its own.
func batch(opts Opts) (rc int) {
	fh, err := os.Open(opts.File)
	if err != nil {
		log.Error(err)
		return 42
	}
	defer fh.Close()
	scanner := bufio.NewScanner(fh)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shlex.Split(line)
		if err != nil {
			log.Errorf("%s:%d: %v", opts.File, lineno, err)
			return 42
		}
		if opts.Store != "" && !hasStoreFlag(args) {
			args = append(args, "--store="+opts.Store)
		}
		log.WithField("line", lineno).Debug(args)
		rc = dispatch(args)
		if rc != 0 {
			log.Errorf("%s:%d: %q failed", opts.File, lineno, line)
			return rc
		}
	}
	err = scanner.Err()
	if err != nil {
		log.Error(err)
		return 42
	}
	return 0
}

func hasStoreFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--store" || strings.HasPrefix(arg, "--store=") {
			return true
		}
	}
	return false
}
