package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchive(t *testing.T) {
	files := []File{
		{Name: "thumbnail_0.png", Data: []byte("first")},
		{Name: "thumbnail_1.png", Data: []byte("second")},
	}
	raw := Archive(files)
	if len(raw) == 0 {
		t.Fatal("Archive() returned empty bytes")
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(zr.File))
	}
	for i, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if !bytes.Equal(data, files[i].Data) {
			t.Fatalf("%s content = %q, want %q", f.Name, data, files[i].Data)
		}
	}
}
