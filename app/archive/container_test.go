package archive

import "testing"

func TestDetectContainerByName(t *testing.T) {
	tests := []struct {
		name   string
		format ContainerFormat
	}{
		{"data.zip", ContainerZip},
		{"DATA.ZIP", ContainerZip},
		{"data.tar", ContainerTar},
		{"data.tar.gz", ContainerTarGzip},
		{"data.tgz", ContainerTarGzip},
		{"data.tar.xz", ContainerTarXZ},
		{"data.tar.zst", ContainerTarZstd},
		{"data.csv", ContainerUnknown},
		{"data", ContainerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContainer(tt.name, nil); got != tt.format {
				t.Errorf("DetectContainer(%q) = %v, want %v", tt.name, got, tt.format)
			}
		})
	}
}

func TestDetectContainerByMagic(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format ContainerFormat
	}{
		{"zip magic", []byte{0x50, 0x4b, 0x03, 0x04, 0x00}, ContainerZip},
		{"gzip magic", []byte{0x1f, 0x8b, 0x08}, ContainerTarGzip},
		{"xz magic", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00}, ContainerTarXZ},
		{"zstd magic", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, ContainerTarZstd},
		{"no magic", []byte("hello"), ContainerUnknown},
		{"empty", nil, ContainerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContainer("payload.bin", tt.data); got != tt.format {
				t.Errorf("got %v, want %v", got, tt.format)
			}
		})
	}
}

func TestStripContainerExt(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"upload.zip", "upload"},
		{"Upload.ZIP", "Upload"},
		{"logs.tar.gz", "logs"},
		{"logs.tgz", "logs"},
		{"bundle.tar.zst", "bundle"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := StripContainerExt(tt.in); got != tt.out {
			t.Errorf("StripContainerExt(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}

func TestPayloadType(t *testing.T) {
	tests := []struct {
		name string
		ft   FileType
		ok   bool
	}{
		{"a.csv", FileTypeCSV, true},
		{"a.CSV", FileTypeCSV, true},
		{"report.final.pdf", FileTypePDF, true},
		{"a.txt", "", false},
		{"noext", "", false},
		{"trailingdot.", "", false},
	}
	for _, tt := range tests {
		ft, ok := PayloadType(tt.name)
		if ft != tt.ft || ok != tt.ok {
			t.Errorf("PayloadType(%q) = (%v, %v), want (%v, %v)", tt.name, ft, ok, tt.ft, tt.ok)
		}
	}
}
