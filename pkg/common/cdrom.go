// Package common provides shared utilities for disc image operations.
// This file contains sector arithmetic and ISO9660 identifier helpers.
package common

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// SectorSize is the logical block size of every image handled here
const SectorSize = 2048

// SectorOffset returns the absolute byte offset of a sector
func SectorOffset(sector uint32) int64 {
	return int64(sector) * SectorSize
}

// GetSizeInSectors calculates the number of sectors needed for a given size in bytes
func GetSizeInSectors(sizeBytes uint32) uint32 {
	return uint32((uint64(sizeBytes) + SectorSize - 1) / SectorSize)
}

// CleanFileName removes version numbers from ISO9660 file names
func CleanFileName(fileName string) string {
	// Remove version numbers (e.g., "FILE.EXT;1" -> "FILE.EXT")
	if idx := strings.LastIndex(fileName, ";"); idx != -1 {
		return fileName[:idx]
	}
	return fileName
}

// IsSpecialDirEntry checks if a directory entry is "." or ".."
func IsSpecialDirEntry(fileName string) bool {
	return fileName == "." || fileName == ".."
}

// DecodeIdentifier turns raw identifier bytes into a UTF-8 string.
// ISO9660 d-characters are ASCII; anything above 0x7F is read as Latin-1,
// and the string is cut at the first NUL byte.
func DecodeIdentifier(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			raw = raw[:i]
			break
		}
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// TrimPadded decodes a space padded a-character or d-character field.
func TrimPadded(raw []byte) string {
	return strings.TrimRight(DecodeIdentifier(raw), " ")
}
