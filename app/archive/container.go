package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrUnsupportedFile is returned when the input is not a recognized archive
// container. It is raised at the upload boundary, before any walking begins.
var ErrUnsupportedFile = errors.New("archive: unsupported file")

// ErrDecode is returned when the container bytes are corrupt or unreadable.
// No partial tree is ever exposed on a decode failure.
var ErrDecode = errors.New("archive: decode failed")

// ContainerFormat represents the container encoding of an uploaded archive.
type ContainerFormat int

const (
	ContainerUnknown ContainerFormat = iota
	ContainerZip
	ContainerTar
	ContainerTarGzip
	ContainerTarXZ
	ContainerTarZstd
)

// String returns the string representation of ContainerFormat.
func (f ContainerFormat) String() string {
	switch f {
	case ContainerZip:
		return "zip"
	case ContainerTar:
		return "tar"
	case ContainerTarGzip:
		return "tar.gz"
	case ContainerTarXZ:
		return "tar.xz"
	case ContainerTarZstd:
		return "tar.zst"
	default:
		return "unknown"
	}
}

// containerExtensions maps container extensions to their format, longest
// extensions first so ".tar.gz" wins over ".gz"-style suffix checks.
var containerExtensions = []struct {
	ext    string
	format ContainerFormat
}{
	{".tar.gz", ContainerTarGzip},
	{".tar.xz", ContainerTarXZ},
	{".tar.zst", ContainerTarZstd},
	{".tgz", ContainerTarGzip},
	{".zip", ContainerZip},
	{".tar", ContainerTar},
}

// Magic byte signatures for container detection
var (
	// Zip local file header: 50 4b 03 04 ("PK\x03\x04")
	zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}
	// Gzip magic bytes: 1f 8b
	gzipMagic = []byte{0x1f, 0x8b}
	// XZ magic bytes: fd 37 7a 58 5a 00
	xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	// Zstandard magic bytes: 28 b5 2f fd
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// DetectContainer determines the container format from the file name, falling
// back to magic byte detection when the name carries no known extension.
// Compressed streams detected only by magic are assumed to wrap a tar.
func DetectContainer(name string, data []byte) ContainerFormat {
	lower := strings.ToLower(name)
	for _, c := range containerExtensions {
		if strings.HasSuffix(lower, c.ext) {
			return c.format
		}
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return ContainerZip
	case bytes.HasPrefix(data, gzipMagic):
		return ContainerTarGzip
	case bytes.HasPrefix(data, xzMagic):
		return ContainerTarXZ
	case bytes.HasPrefix(data, zstdMagic):
		return ContainerTarZstd
	}

	return ContainerUnknown
}

// IsArchiveName reports whether the file name ends in a recognized container
// extension.
func IsArchiveName(name string) bool {
	lower := strings.ToLower(name)
	for _, c := range containerExtensions {
		if strings.HasSuffix(lower, c.ext) {
			return true
		}
	}
	return false
}

// StripContainerExt returns the archive name without its container extension,
// used to name the root folder of the extracted tree.
func StripContainerExt(name string) string {
	lower := strings.ToLower(name)
	for _, c := range containerExtensions {
		if strings.HasSuffix(lower, c.ext) {
			return name[:len(name)-len(c.ext)]
		}
	}
	return name
}

// entry is one decoded archive member, in the order the decoder yielded it.
// Payload bytes are materialized only for files with a supported extension;
// everything else is dropped before it ever reaches the tree.
type entry struct {
	path    string
	isDir   bool
	modTime time.Time
	data    []byte
}

// decodeEntries decodes the container into its member entries. Entry order is
// whatever the underlying decoder yields; callers must not assume parents
// arrive before children.
func decodeEntries(format ContainerFormat, data []byte) ([]entry, error) {
	switch format {
	case ContainerZip:
		return decodeZip(data)
	case ContainerTar:
		return decodeTar(bytes.NewReader(data))
	case ContainerTarGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip stream: %v", ErrDecode, err)
		}
		defer gz.Close()
		return decodeTar(gz)
	case ContainerTarXZ:
		xzr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: xz stream: %v", ErrDecode, err)
		}
		return decodeTar(xzr)
	case ContainerTarZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd stream: %v", ErrDecode, err)
		}
		defer zr.Close()
		return decodeTar(zr)
	default:
		return nil, ErrUnsupportedFile
	}
}

func decodeZip(data []byte) ([]entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: zip directory: %v", ErrDecode, err)
	}

	entries := make([]entry, 0, len(r.File))
	for _, f := range r.File {
		e := entry{
			path:    f.Name,
			isDir:   strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			modTime: f.Modified,
		}
		if !e.isDir {
			if _, ok := PayloadType(f.Name); ok {
				rc, err := f.Open()
				if err != nil {
					return nil, fmt.Errorf("%w: zip member %s: %v", ErrDecode, f.Name, err)
				}
				e.data, err = io.ReadAll(rc)
				rc.Close()
				if err != nil {
					return nil, fmt.Errorf("%w: zip member %s: %v", ErrDecode, f.Name, err)
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeTar(r io.Reader) ([]entry, error) {
	tr := tar.NewReader(r)
	var entries []entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: tar stream: %v", ErrDecode, err)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			entries = append(entries, entry{
				path:    hdr.Name,
				isDir:   true,
				modTime: hdr.ModTime,
			})
		case tar.TypeReg:
			e := entry{path: hdr.Name, modTime: hdr.ModTime}
			if _, ok := PayloadType(hdr.Name); ok {
				data, err := io.ReadAll(tr)
				if err != nil {
					return nil, fmt.Errorf("%w: tar member %s: %v", ErrDecode, hdr.Name, err)
				}
				e.data = data
			}
			entries = append(entries, e)
		}
		// Links, devices and other member types are not part of the tree model
	}
	return entries, nil
}
