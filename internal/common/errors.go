package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds carried in AppError.Code.
const (
	KindTextExtraction      = "TextExtractionError"
	KindOCRExtraction       = "OCRExtractionError"
	KindDOIParsing          = "DOIParsingError"
	KindTitleAuthorParsing  = "TitleAuthorParsingError"
	KindSummarization       = "SummarizationError"
	KindDatabase            = "DatabaseError"
	KindFileSave            = "FileSaveError"
	KindNoMetadataExtracted = "NoMetadataExtracted"
	KindConfig              = "ConfigError"
	KindUnexpected          = "UnexpectedError"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrDatabase            = errors.New("database error")
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateKey        = errors.New("already exists")
	ErrNoMetadataExtracted = NewAppError(KindNoMetadataExtracted, "no metadata extracted from any document", nil)
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func TextExtraction(message string, cause error) error {
	return NewAppError(KindTextExtraction, message, cause)
}

func OCRExtraction(message string, cause error) error {
	return NewAppError(KindOCRExtraction, message, cause)
}

func DOIParsing(message string) error {
	return NewAppError(KindDOIParsing, message, nil)
}

func TitleAuthorParsing(message string) error {
	return NewAppError(KindTitleAuthorParsing, message, nil)
}

func Summarization(message string, cause error) error {
	return NewAppError(KindSummarization, message, cause)
}

func Database(message string, cause error) error {
	return NewAppError(KindDatabase, message, cause)
}

func FileSave(message string, cause error) error {
	return NewAppError(KindFileSave, message, cause)
}

func ConfigError(message string) error {
	return NewAppError(KindConfig, message, ErrInvalidInput)
}

// KindOf returns the Code of the outermost AppError in err's chain.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return KindUnexpected
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind string) bool {
	return err != nil && KindOf(err) == kind
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps an application error onto a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrValidation):
		return InvalidArgumentError(err.Error())
	case IsKind(err, KindNoMetadataExtracted):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return InternalError(err.Error())
	}
}
