// Package config loads rdiff's configuration from its base directory.
package config

import (
	"encoding/json"
	"io"
	"os"
	"os/user"
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var DefaultBaseDirectoryPath string

func init() {
	u, err := user.Current()
	if err != nil {
		log.Fatalf("Could not get current user: %v", err)
	}
	DefaultBaseDirectoryPath = path.Join(u.HomeDir, "lib/rdiff")
}

type C struct {
	// Targets analyzed when the command line does not name any.
	Targets []string `json:"targets"`

	// Output format - "text", "term" or "json". Empty picks text, or
	// term when stdout is a terminal.
	Format string `json:"format"`

	// Common lines shown around each hunk in line-mode output.
	ContextLines *int `json:"context-lines"`

	// Default whitespace policy name - "exact", "trim", "ignore-all" or
	// "language-aware".
	Whitespace string `json:"whitespace"`

	// Directory holding the rdiff config file. Other paths are derived
	// from it.
	base string
}

// Load reads the file called "config" in the provided base directory. A
// missing file is not an error: every setting has a usable zero value, so
// rdiff runs unconfigured.
func Load(base string) (*C, error) {
	filename := path.Join(base, "config")
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return &C{base: base}, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer func() {
		_ = f.Close()
	}()
	c, err := load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", filename)
	}
	c.base = base
	return c, nil
}

func load(r io.Reader) (c *C, err error) {
	err = json.NewDecoder(r).Decode(&c)
	return
}

// Context returns the configured context window, or def when unset.
func (c *C) Context(def int) int {
	if c.ContextLines == nil {
		return def
	}
	return *c.ContextLines
}

func (c *C) LogFilePath() string {
	return path.Join(c.base, "rdiff.log")
}
