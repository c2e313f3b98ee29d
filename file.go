// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// A File represents an open BDAT image, either a single legacy table
// bundle or a modern multi-table file.
type File struct {
	Dialect   Dialect  `json:"dialect,omitempty"`
	Tables    []*Table `json:"tables,omitempty"`
	Anomalies []string `json:"anomalies,omitempty"`

	data   []byte
	mapped mmap.MMap
	f      *os.File
	opts   *Options
	logger Logger
}

// Open instantiates a File from a path, memory-mapping its contents
// rather than reading them into a Go-managed buffer.
func Open(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errIO(err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errIO(err)
	}

	file := &File{f: f, mapped: data, data: data}
	file.applyOptions(opts)
	return file, nil
}

// OpenBytes instantiates a File over an in-memory buffer.
func OpenBytes(data []byte, opts *Options) (*File, error) {
	file := &File{data: data}
	file.applyOptions(opts)
	return file, nil
}

func (f *File) applyOptions(opts *Options) {
	if opts != nil {
		f.opts = opts
	} else {
		f.opts = &Options{}
	}
	if f.opts.Logger == nil {
		f.logger = newDefaultLogger()
	} else {
		f.logger = f.opts.Logger
	}
}

// Close closes the File, unmapping its backing memory if it was opened
// with Open.
func (f *File) Close() error {
	if f.mapped != nil {
		_ = f.mapped.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Parse detects the file's dialect and decodes every table it
// contains, populating Dialect, Tables and Anomalies.
func (f *File) Parse() error {
	dialect, err := DetectDialect(f.data)
	if err != nil {
		return err
	}
	f.Dialect = dialect

	view, err := ReadFileView(f.data)
	if err != nil {
		if dialect == DialectLegacyWii {
			f.logger.Warnf("legacy-wii table parsing skipped: %v", err)
			f.Anomalies = append(f.Anomalies, AnoLegacyWiiUnparsed)
			return nil
		}
		return err
	}
	f.Tables = view.Tables
	f.collectAnomalies()
	return nil
}

// collectAnomalies records the non-fatal diagnostics declared in
// anomaly.go: conditions that are not malformed enough to reject at
// parse time but that a caller inspecting the file would want to know
// about.
func (f *File) collectAnomalies() {
	if len(f.Tables) == 0 {
		f.addAnomaly(AnoZeroTables)
	}
	for _, t := range f.Tables {
		if len(t.Columns) == 0 {
			f.addAnomaly(AnoZeroColumns)
		}
		if len(t.Rows) == 0 {
			f.addAnomaly(AnoZeroRows)
		}
	}
}

func (f *File) addAnomaly(anomaly string) {
	for _, a := range f.Anomalies {
		if a == anomaly {
			return
		}
	}
	f.Anomalies = append(f.Anomalies, anomaly)
}
