package pairtree

import (
	"encoding/json"
	"path/filepath"

	. "github.com/stevegt/goadapt"
)

// names of the metadata files in a store root
const (
	VersionFile = "pairtree_version0_1"
	PrefixFile  = "pairtree_prefix"
	ConfigFile  = "pairtree_config.json"
)

// VersionText is the content of VersionFile.
const VersionText = "This directory conforms to Pairtree Version 0.1. Updated spec: http://www.cdlib.org/inside/diglib/pairtree/pairtreespec.html"

// config is the part of a Store's settings that must agree between
// every process using the store, so it is kept in the root.
type config struct {
	ShortyLength int    `json:"shorty_length"`
	IDScheme     string `json:"id_scheme,omitempty"`
}

func (store *Store) writeConfig() (err error) {
	defer Return(&err)
	buf, err := json.MarshalIndent(config{
		ShortyLength: store.ShortyLength,
		IDScheme:     store.IDScheme,
	}, "", "  ")
	Ck(err)
	err = store.FS.WriteFileAtomic(filepath.Join(store.Dir, ConfigFile), append(buf, '\n'))
	Ck(err)
	return
}

// loadConfig reconciles the caller's settings with the ones stored
// in the root.  A root without a config file was written by another
// implementation and is left untouched.
func (store *Store) loadConfig() (err error) {
	fn := filepath.Join(store.Dir, ConfigFile)
	ok, err := exists(store.FS, fn)
	if err != nil || !ok {
		return
	}
	buf, err := readAll(store.FS, fn)
	if err != nil {
		return
	}
	var conf config
	err = json.Unmarshal(buf, &conf)
	if err != nil {
		return &NotAPairtreeStoreError{Dir: store.Dir, Reason: "malformed " + ConfigFile + ": " + err.Error()}
	}
	if conf.ShortyLength > 0 {
		if store.ShortyLength != 0 && store.ShortyLength != conf.ShortyLength {
			return &ShortyLengthMismatchError{Dir: store.Dir, Stored: conf.ShortyLength, Wanted: store.ShortyLength}
		}
		store.ShortyLength = conf.ShortyLength
	}
	if store.IDScheme == "" {
		store.IDScheme = conf.IDScheme
	}
	return
}
