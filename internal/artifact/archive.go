package artifact

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	openArchiveMessageConstant       = "open archive: %w"
	invalidEntryPathMessageConstant  = "invalid file path: %s"
	createDirectoryMessageConstant   = "create directory: %w"
	createParentMessageConstant      = "create parent directory: %w"
	openEntryMessageConstant         = "open file in archive: %w"
	createOutputFileMessageConstant  = "create output file: %w"
	writeOutputFileMessageConstant   = "write file: %w"
	extractedDirectoryModeConstant   = 0o755
	extractedFileDefaultModeConstant = 0o644
)

// ErrArchiveEmpty indicates an archive without entries, which carries no version.
var ErrArchiveEmpty = errors.New("archive contains no entries")

// ErrArchiveUndated indicates an archive whose entries carry no modification time, which carries no version.
var ErrArchiveUndated = errors.New("archive entries carry no modification time")

// earliestArchiveTimestamp is the MS-DOS epoch; zip readers report entries without a timestamp before it.
var earliestArchiveTimestamp = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Archive reads entry timestamps and extracts archives.
type Archive interface {
	Version(archivePath string) (DateStamp, error)
	Extract(archivePath string, destinationDirectory string) error
}

// ZipArchive implements Archive for .zip files.
type ZipArchive struct{}

// Version returns the latest entry modification time truncated to the day, without extracting anything.
func (ZipArchive) Version(archivePath string) (DateStamp, error) {
	reader, openError := zip.OpenReader(archivePath)
	if openError != nil {
		return "", fmt.Errorf(openArchiveMessageConstant, openError)
	}
	defer reader.Close()

	if len(reader.File) == 0 {
		return "", fmt.Errorf("%w: %s", ErrArchiveEmpty, archivePath)
	}

	latest := time.Time{}
	for _, entry := range reader.File {
		if entry.Modified.After(latest) {
			latest = entry.Modified
		}
	}
	if latest.Before(earliestArchiveTimestamp) {
		return "", fmt.Errorf("%w: %s", ErrArchiveUndated, archivePath)
	}
	return DateStampFromTime(latest), nil
}

// Extract writes every entry below destinationDirectory, preserving directory structure.
// Entries resolving outside destinationDirectory are rejected.
func (ZipArchive) Extract(archivePath string, destinationDirectory string) error {
	reader, openError := zip.OpenReader(archivePath)
	if openError != nil {
		return fmt.Errorf(openArchiveMessageConstant, openError)
	}
	defer reader.Close()

	cleanDestination := filepath.Clean(destinationDirectory)
	for _, entry := range reader.File {
		target := filepath.Join(cleanDestination, entry.Name)
		if target != cleanDestination && !strings.HasPrefix(target, cleanDestination+string(os.PathSeparator)) {
			return fmt.Errorf(invalidEntryPathMessageConstant, entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if mkdirError := os.MkdirAll(target, extractedDirectoryModeConstant); mkdirError != nil {
				return fmt.Errorf(createDirectoryMessageConstant, mkdirError)
			}
			continue
		}

		if mkdirError := os.MkdirAll(filepath.Dir(target), extractedDirectoryModeConstant); mkdirError != nil {
			return fmt.Errorf(createParentMessageConstant, mkdirError)
		}
		if extractError := extractZipEntry(entry, target); extractError != nil {
			return extractError
		}
	}
	return nil
}

func extractZipEntry(entry *zip.File, target string) error {
	entryReader, openError := entry.Open()
	if openError != nil {
		return fmt.Errorf(openEntryMessageConstant, openError)
	}
	defer entryReader.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = extractedFileDefaultModeConstant
	}
	outputFile, createError := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if createError != nil {
		return fmt.Errorf(createOutputFileMessageConstant, createError)
	}
	defer outputFile.Close()

	if _, copyError := io.Copy(outputFile, entryReader); copyError != nil {
		return fmt.Errorf(writeOutputFileMessageConstant, copyError)
	}
	return nil
}
