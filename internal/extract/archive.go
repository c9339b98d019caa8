package extract

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// maxEntryBytes caps how much of a single archive entry is inflated.
const maxEntryBytes = 50 << 20

var (
	numberEntryExts  = []string{".txt", ".csv"}
	sessionEntryExts = []string{".session", ".tdata", ".json"}
)

// Ext returns the lower-cased extension of name without the dot.
func Ext(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(name))), ".")
}

func hasSuffix(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxEntryBytes))
}

// Archive extracts numbers from every .txt and .csv entry of a zip archive.
// A corrupt archive is logged and yields nil.
func Archive(data []byte, log *zap.Logger) []string {
	if log == nil {
		log = zap.NewNop()
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Warn("unreadable archive", zap.Int("bytes", len(data)), zap.Error(err))
		return nil
	}

	var lists [][]string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !hasSuffix(f.Name, numberEntryExts) {
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			log.Warn("skipping archive entry", zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		nums := Numbers(DecodeText(b))
		log.Debug("archive entry scanned", zap.String("entry", f.Name), zap.Int("numbers", len(nums)))
		lists = append(lists, nums)
	}
	return Merge(lists...)
}

// FromFile extracts numbers from a named upload: zip archives are scanned entry by
// entry, anything else is treated as text.
func FromFile(name string, data []byte, log *zap.Logger) []string {
	if Ext(name) == "zip" {
		return Archive(data, log)
	}
	return Numbers(DecodeText(data))
}

// SessionFromArchive returns the first entry that looks like session material.
// It returns a nil slice when the archive holds none.
func SessionFromArchive(data []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", errors.Wrap(err, "open session archive")
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !hasSuffix(f.Name, sessionEntryExts) {
			continue
		}
		b, err := readEntry(f)
		if err != nil {
			return nil, f.Name, errors.Wrapf(err, "read %s", f.Name)
		}
		return b, f.Name, nil
	}
	return nil, "", nil
}
