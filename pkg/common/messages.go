package common

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenImage         = "failed to open disc image"
	ErrFailedToOpenNFO           = "failed to open nfo file"
	ErrFailedToReadNFO           = "failed to read lba offset from nfo file"
	ErrFailedToSeekSector        = "failed to seek to sector 0x%08x"
	ErrFailedToReadDescriptor    = "failed to read primary volume descriptor"
	ErrNotPrimaryDescriptor      = "first volume descriptor is not a primary one (type %d)"
	ErrBadStandardIdentifier     = "unexpected standard identifier %q"
	ErrFailedToReadPathEntry     = "failed to read path table entry at byte 0x%08x"
	ErrFailedToReadDirName       = "failed to read directory name at byte 0x%08x"
	ErrFailedToReadRecord        = "failed to read directory record at byte 0x%08x"
	ErrFailedToReadRecordName    = "failed to read directory record name field at byte 0x%08x"
	ErrFailedToReadRegionCount   = "failed to read plain region count"
	ErrFailedToReadRegion        = "failed to read plain region #%d"
	ErrRegionCountOutOfRange     = "plain region count %d out of range (0-%d)"
	ErrRegionInverted            = "plain region %d has start 0x%08x after or equal to end 0x%08x, corrupt image?"
	ErrRegionOverlap             = "plain region %d starts at 0x%08x before previous region ends at 0x%08x"
	ErrRegionCountMismatch       = "found %d encrypted regions, expected %d"
	ErrFailedToReadSectorHeader  = "failed to read 16 bytes at sector 0x%08x"
	ErrFailedToWriteSectorHeader = "failed to write 16 bytes at sector 0x%08x"
	ErrFailedToReadIRD           = "failed to read IRD file"
	ErrBadIRDMagic               = "incorrect IRD magic %q"
	ErrFailedToInflate           = "failed to decompress %s"
	ErrIRDSectionTooLarge        = "%s exceeds %d bytes once decompressed"
	ErrPathCycle                 = "cyclic parent reference at directory %d"
	ErrFailedToResolvePath       = "failed to resolve path of directory %d: %v"
	ErrEntryOutOfRange           = "directory %d out of range (1-%d)"
)

// Info messages
const (
	InfoLBAOffset          = "got lba sector offset 0x%08x from nfo"
	InfoPlainRegionCount   = "this image has %d plain regions"
	InfoPlainRegion        = "plain region %d sectors: start 0x%08x end 0x%08x length 0x%08x"
	InfoSeamlessRegions    = "plain regions %d and %d fit seamlessly, no encrypted region in between"
	InfoEncryptedCount     = "found %d encrypted regions between plain ones"
	InfoEncryptedRegion    = "encrypted region %d sectors: start 0x%08x end 0x%08x length 0x%08x"
	InfoCorrectingRegion   = "correcting encrypted region %d"
	InfoRegionProgress     = "region %d: %d sectors done"
	InfoPathTableEnd       = "last path table entry found before end, %d bytes processed, path table size %d"
	InfoCorrectionComplete = "corrected %d of %d sectors in %d regions, %d skipped"
	InfoIRDLoaded          = "loaded IRD %s (%s), %d region hashes, %d file hashes"
)

// Debug messages
const (
	DebugPathTableAt      = "processing path table at byte 0x%08x"
	DebugPathTableEntry   = "entry data at 0x%08x parent %d %q -> %s"
	DebugAssemblingPath   = "going to assemble contents of directory %s"
	DebugAssemblingDir    = "assembling directory records at sector 0x%08x (%d)"
	DebugDirectoryRecord  = "file %q data sector 0x%08x length 0x%08x"
	DebugSectorCorrection = "sector 0x%08x: word 0x%08x -> 0x%08x"
)

// Warning messages
const (
	WarnUnresolvedParent   = "path table entry %d %q refers to parent %d outside of 1-%d"
	WarnSelfParent         = "path table entry %d %q names itself as parent"
	WarnInvalidRecordLen   = "invalid directory record length %d found at byte 0x%08x"
	WarnZeroNameLength     = "bad name length 0 in directory record at byte 0x%08x, ignoring"
	WarnNameOverrun        = "name length %d exceeds record body of %d bytes at byte 0x%08x"
	WarnNoDirectoryRecords = "no directory records found at sector 0x%08x (%d)"
	WarnRegionHashMismatch = "IRD lists %d region hashes but its header describes %d regions"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// ConfigureLogOutput sends log output to stderr and, when path is set,
// to a size-rotated log file as well. The returned closer releases the file.
func ConfigureLogOutput(path string, maxSizeMB int) io.Closer {
	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}
