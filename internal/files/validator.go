package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scorecli/internal/errors"
)

// SourceValidator checks score files before they are parsed
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a new source validator
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{logger: logger}
}

// ValidateSource checks that path is a readable, non-temporary workbook or
// CSV file. A missing file is a NOT_FOUND error; anything else unusable is a
// VALIDATION error.
func (v *SourceValidator) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Source does not exist", slog.String("file", path))
		return errors.NewAppError(errors.ErrTypeNotFound, "source not found", err).WithContext("file", path)
	}
	if err != nil {
		return errors.NewAppValidationError("failed to stat source", err).WithContext("file", path)
	}
	if info.IsDir() {
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil).
			WithContext("file", path)
	}

	name := filepath.Base(path)
	if !IsSupportedSource(name) {
		return errors.NewAppValidationError(fmt.Sprintf("unsupported file type %q", filepath.Ext(name)), nil).
			WithContext("file", path)
	}
	if isTempFile(name) {
		v.logger.Warn("Skipping temporary file", slog.String("file", path))
		return errors.NewAppValidationError("temporary file", nil).WithContext("file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.NewAppValidationError("source is not readable", err).WithContext("file", path)
	}
	f.Close()

	v.logger.Debug("Source validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *SourceValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError("failed to create output directory", err).WithContext("directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		return errors.NewStorageError("output directory is not writable", err).WithContext("directory", dir)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return nil
}
