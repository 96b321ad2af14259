package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("underlying")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
	}{
		{
			name:     "config error with cause",
			err:      NewConfigError("no numeric columns", cause),
			wantType: ErrTypeConfig,
			wantMsg:  "[CONFIG] no numeric columns: underlying",
		},
		{
			name:     "validation error",
			err:      NewAppValidationError("student is required", nil),
			wantType: ErrTypeValidation,
			wantMsg:  "[VALIDATION] student is required",
		},
		{
			name:     "missing column",
			err:      NewMissingColumnError("Chemistry", nil),
			wantType: ErrTypeMissingColumn,
			wantMsg:  `[MISSING_COLUMN] column "Chemistry" not found`,
		},
		{
			name:     "not found",
			err:      NewNotFoundError("analysis run"),
			wantType: ErrTypeNotFound,
			wantMsg:  "[NOT_FOUND] analysis run not found",
		},
		{
			name:     "parsing",
			err:      NewParsingError("bad cell", cause),
			wantType: ErrTypeParsing,
			wantMsg:  "[PARSING] bad cell: underlying",
		},
		{
			name:     "storage",
			err:      NewStorageError("insert failed", cause),
			wantType: ErrTypeStorage,
			wantMsg:  "[STORAGE] insert failed: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, IsType(tt.err, tt.wantType))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("wrapped: %w", NewConfigError("bad", sentinel))

	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, IsType(err, ErrTypeConfig))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(sentinel, ErrTypeConfig))
	assert.False(t, IsType(nil, ErrTypeConfig))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewMissingColumnError("Math", nil).WithContext("semester", "S1")

	assert.Equal(t, "Math", err.Context["column"])
	assert.Equal(t, "S1", err.Context["semester"])

	bare := &AppError{Type: ErrTypeParsing, Message: "x"}
	bare.WithContext("row", 3)
	assert.Equal(t, 3, bare.Context["row"])
}
