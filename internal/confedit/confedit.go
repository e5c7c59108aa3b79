// Package confedit edits key/value configuration files such as
// sshd_config and sysctl.d drop-ins while preserving unrelated lines,
// comments and ordering. An existing directive is rewritten in place,
// never appended a second time.
package confedit

import (
	"os"
	"strings"
)

// Style selects how a directive is rendered when written
type Style int

const (
	// SpaceSeparated renders "Key value" (sshd_config)
	SpaceSeparated Style = iota
	// EqualsSeparated renders "key = value" (sysctl.d)
	EqualsSeparated
)

// File is an in-memory copy of a configuration file
type File struct {
	path   string
	style  Style
	mode   os.FileMode
	exists bool
	lines  []string
}

// Load reads an existing configuration file. A missing file is an error;
// use LoadOrCreate for files that may not exist yet.
func Load(path string, style Style) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{
		path:   path,
		style:  style,
		mode:   info.Mode().Perm(),
		exists: true,
		lines:  splitLines(data),
	}, nil
}

// Parse builds a File from content already in memory, for callers that
// obtained the bytes through another channel (sudo cat, tests).
func Parse(path string, style Style, data []byte) *File {
	return &File{
		path:   path,
		style:  style,
		mode:   0644,
		exists: true,
		lines:  splitLines(data),
	}
}

// LoadOrCreate reads a configuration file, or starts an empty one with
// the given mode when the file does not exist.
func LoadOrCreate(path string, style Style, mode os.FileMode) (*File, error) {
	f, err := Load(path, style)
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	return &File{path: path, style: style, mode: mode}, nil
}

// Path returns the file's location on disk
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the file was present when loaded
func (f *File) Exists() bool {
	return f.exists
}

// Get returns the value of the first active directive matching key.
// Matching is case-insensitive; commented lines are ignored.
func (f *File) Get(key string) (string, bool) {
	for _, line := range f.lines {
		if k, v, ok := splitDirective(line); ok && strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Set rewrites every active occurrence of key in place, so no stale
// duplicate can shadow or contradict the new value. When the directive
// is absent it is appended at the end of the file.
func (f *File) Set(key, value string) {
	replaced := false
	for i, line := range f.lines {
		if k, _, ok := splitDirective(line); ok && strings.EqualFold(k, key) {
			f.lines[i] = f.render(key, value)
			replaced = true
		}
	}
	if !replaced {
		f.lines = append(f.lines, f.render(key, value))
	}
}

// Bytes renders the file content with a trailing newline
func (f *File) Bytes() []byte {
	if len(f.lines) == 0 {
		return nil
	}
	return []byte(strings.Join(f.lines, "\n") + "\n")
}

// Save writes the content back to disk preserving the file's mode
func (f *File) Save() error {
	if err := os.WriteFile(f.path, f.Bytes(), f.mode); err != nil {
		return err
	}
	f.exists = true
	return nil
}

func (f *File) render(key, value string) string {
	if f.style == EqualsSeparated {
		return key + " = " + value
	}
	return key + " " + value
}

// splitDirective parses one line into key and value. It accepts both
// whitespace and '=' separators; blank lines and comments report ok=false.
func splitDirective(line string) (key, value string, ok bool) {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") {
		return "", "", false
	}
	i := strings.IndexAny(s, " \t=")
	if i < 0 {
		return s, "", true
	}
	key = s[:i]
	rest := strings.TrimLeft(s[i:], " \t")
	rest = strings.TrimPrefix(rest, "=")
	return key, strings.TrimSpace(rest), true
}

func splitLines(data []byte) []string {
	s := strings.TrimRight(string(data), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
