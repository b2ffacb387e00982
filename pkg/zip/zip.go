// Package zip bundles render files into a single downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
)

type File struct {
	Name string
	Data []byte
}

// Archive writes files into one zip and returns the raw bytes. Entries that
// fail to open are skipped; a write failure aborts the whole archive.
func Archive(files []File) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			continue
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
