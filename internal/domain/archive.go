package domain

import (
	"strconv"
	"strings"
)

// Tape-archive layout constants. The weather agency's payload uses the
// narrow classic subset: fixed 512-byte header blocks, an ASCII octal size
// field, content padded to the next block boundary, and a zero header block
// marking end of archive. The subset is small enough that a field descriptor
// table beats pulling in a generic archive reader, and structural garbage
// must degrade to "not an archive" instead of erroring (the caller then
// falls back to scanning the raw bytes as text).
const (
	archiveBlockSize = 512

	// Size field layout inside the header block.
	archiveSizeOffset = 124
	archiveSizeLength = 12
)

// extractArchiveEntries walks the fixed-block archive layout and returns the
// decoded content of each entry. Any structural inconsistency (unparseable
// size field, entry running past the buffer) returns nil: partial results
// are never reported for a corrupt archive.
func extractArchiveEntries(buf []byte) []string {
	var entries []string

	offset := 0
	for offset+archiveBlockSize <= len(buf) {
		header := buf[offset : offset+archiveBlockSize]
		if isZeroBlock(header) {
			break // end-of-archive marker
		}

		size, ok := parseOctalField(header[archiveSizeOffset : archiveSizeOffset+archiveSizeLength])
		if !ok {
			return nil
		}

		contentStart := offset + archiveBlockSize
		next := contentStart + roundUpToBlock(size)
		if next > len(buf) {
			return nil
		}

		entries = append(entries, string(buf[contentStart:contentStart+size]))
		offset = next
	}

	return entries
}

// parseOctalField decodes an ASCII octal number from a header field. Fields
// are NUL- or space-terminated and may carry leading padding.
func parseOctalField(field []byte) (int, bool) {
	s := strings.Trim(string(field), " \x00")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 8, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return int(v), true
}

// roundUpToBlock rounds a content size up to the next 512-byte boundary.
func roundUpToBlock(size int) int {
	blocks := (size + archiveBlockSize - 1) / archiveBlockSize
	return blocks * archiveBlockSize
}

func isZeroBlock(block []byte) bool {
	for _, b := range block {
		if b != 0 {
			return false
		}
	}
	return true
}
