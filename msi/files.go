/*
 * files.go, part of msicastep.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package msi

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/msicastep"
)

// readCloser closes the decompressor and then the file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// writeCloser flushes the compressor and then closes the file.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w writeCloser) Close() error {
	var err error
	for _, c := range w.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// OpenFile opens name for reading. Files ending in .zst are decompressed with
// z-standard and files ending in .gz with gzip. Anything else is read as it is.
func OpenFile(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		d, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return readCloser{d, []func() error{func() error { d.Close(); return nil }, f.Close}}, nil
	case strings.HasSuffix(lower, ".gz"):
		d, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return readCloser{d, []func() error{d.Close, f.Close}}, nil
	}
	return f, nil
}

// CreateFile creates name for writing, compressing the output according to the
// file extension, as OpenFile does.
func CreateFile(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zst"):
		c, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			f.Close()
			return nil, err
		}
		return writeCloser{c, []func() error{c.Close, f.Close}}, nil
	case strings.HasSuffix(lower, ".gz"):
		c, err := gzip.NewWriterLevel(f, gzip.BestCompression)
		if err != nil {
			f.Close()
			return nil, err
		}
		return writeCloser{c, []func() error{c.Close, f.Close}}, nil
	}
	return f, nil
}

// ParseFile reads the MSI file name, compressed or not (see OpenFile).
func ParseFile(name string, opts ...Options) (*chem.Model, error) {
	f, err := OpenFile(name)
	if err != nil {
		return nil, chem.NewError(chem.ParseError, err, "ParseFile", "opening %s", name)
	}
	defer f.Close()
	mol, err := Parse(f, opts...)
	return mol, errDecorate(err, "ParseFile: "+name)
}

// WriteFile writes mol to the MSI file name, compressed according to its extension.
func WriteFile(name string, mol *chem.Model) error {
	f, err := CreateFile(name)
	if err != nil {
		return chem.NewError(chem.ExportError, err, "WriteFile", "creating %s", name).SetCritical(false)
	}
	if err := (Exporter{}).Export(f, mol); err != nil {
		f.Close()
		return errDecorate(err, "WriteFile: "+name)
	}
	if err := f.Close(); err != nil {
		return chem.NewError(chem.ExportError, err, "WriteFile", "closing %s", name).SetCritical(false)
	}
	return nil
}
