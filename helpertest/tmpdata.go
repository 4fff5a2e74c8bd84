package helpertest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TmpFolder is a temporary directory removed by Clean
type TmpFolder struct {
	Path   string
	Error  error
	prefix string
}

// TmpFile is a file inside a TmpFolder
type TmpFile struct {
	Path   string
	Error  error
	Folder *TmpFolder
}

func NewTmpFolder(prefix string) *TmpFolder {
	ipref := prefix

	if len(ipref) == 0 {
		ipref = "argus"
	}

	path, err := os.MkdirTemp("", ipref)

	return &TmpFolder{
		Path:   path,
		Error:  err,
		prefix: ipref,
	}
}

func (tf *TmpFolder) Clean() error {
	if len(tf.Path) > 0 {
		return os.RemoveAll(tf.Path)
	}

	return nil
}

func (tf *TmpFolder) CreateSubFolder(name string) *TmpFolder {
	path := filepath.Join(tf.Path, name)

	return &TmpFolder{
		Path:   path,
		Error:  os.Mkdir(path, fs.ModePerm),
		prefix: tf.prefix,
	}
}

func (tf *TmpFolder) JoinPath(name string) string {
	return filepath.Join(tf.Path, name)
}

// CreateStringFile writes the lines joined by "\n" without a trailing newline
func (tf *TmpFolder) CreateStringFile(name string, lines ...string) *TmpFile {
	return tf.CreateRawFile(name, strings.Join(lines, "\n"))
}

// CreateRawFile writes content as-is
func (tf *TmpFolder) CreateRawFile(name, content string) *TmpFile {
	path := tf.JoinPath(name)

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return &TmpFile{Error: err, Folder: tf}
	}

	return &TmpFile{
		Path:   path,
		Folder: tf,
	}
}

// Content returns the current file content
func (f *TmpFile) Content() string {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}

	return string(b)
}

// Write replaces the file content
func (f *TmpFile) Write(content string) error {
	return os.WriteFile(f.Path, []byte(content), 0o600)
}

func (f *TmpFile) Stat() error {
	if f.Error != nil {
		return f.Error
	}

	_, err := os.Stat(f.Path)

	return err
}
