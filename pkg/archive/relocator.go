package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

type Mode string

const (
	ModeMove Mode = "move"
	ModeCopy Mode = "copy"
)

var ErrSizeMismatch = errors.New("relocated file size does not match source")

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMove:
		return ModeMove, nil
	case ModeCopy:
		return ModeCopy, nil
	default:
		return "", fmt.Errorf("unknown relocation mode %q", s)
	}
}

// Relocator places downloaded files into archival storage. In move mode the
// source is removed once the destination is written.
type Relocator struct {
	fs   afero.Fs
	mode Mode
}

func NewRelocator(fs afero.Fs, mode Mode) *Relocator {
	return &Relocator{fs: fs, mode: mode}
}

func (r *Relocator) Mode() Mode {
	return r.mode
}

// Exists reports whether path is present on the relocation filesystem.
func (r *Relocator) Exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}

// Relocate moves or copies src to dst, creating dst's directory, and returns
// the number of bytes at dst. A size difference between src and dst returns
// ErrSizeMismatch; the destination is left in place.
func (r *Relocator) Relocate(src, dst string) (int64, error) {
	finfo, err := r.fs.Stat(src)
	if err != nil {
		return 0, err
	}

	if err := r.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, err
	}

	switch r.mode {
	case ModeCopy:
		err = r.copyFile(src, dst)
	default:
		err = r.moveFile(src, dst)
	}

	if err != nil {
		return 0, err
	}

	dinfo, err := r.fs.Stat(dst)
	if err != nil {
		return 0, err
	}

	if dinfo.Size() != finfo.Size() {
		return dinfo.Size(), fmt.Errorf("%w: %s is %s, %s is %s", ErrSizeMismatch,
			src, humanize.IBytes(uint64(finfo.Size())), dst, humanize.IBytes(uint64(dinfo.Size())))
	}

	log.Debugf("Relocated (%s) %s to %s, %s", r.mode, src, dst, humanize.IBytes(uint64(dinfo.Size())))

	return dinfo.Size(), nil
}

// moveFile renames when src and dst share a filesystem and falls back to copy
// and remove when they do not.
func (r *Relocator) moveFile(src, dst string) error {
	if err := r.fs.Rename(src, dst); err == nil {
		return nil
	}

	if err := r.copyFile(src, dst); err != nil {
		return err
	}

	return r.fs.Remove(src)
}

func (r *Relocator) copyFile(src, dst string) error {
	in, err := r.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := r.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
