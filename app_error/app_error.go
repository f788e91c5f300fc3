package app_error

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrConcurrentPublish = errors.New("leaderboard was published concurrently")
	ErrUnauthenticated   = errors.New("not authenticated")
)

// ValidationError is user-correctable. Nothing was written when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	Id       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Id)
}

func NotFound(resource string, id string) error {
	return &NotFoundError{Resource: resource, Id: id}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

// PartialWriteError reports that some score records were persisted before a
// failure. Retrying the identical submission is safe.
type PartialWriteError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("saved %d of %d scores before failing, retry the submission: %v", e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// PublishError means the scores were saved but the leaderboard still shows
// the last published snapshot.
type PublishError struct {
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("scores saved, leaderboard refresh failed: %v", e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type statusError struct {
	error
	status int
}

func (e statusError) Unwrap() error {
	return e.error
}

func (e statusError) HTTPStatus() int {
	return e.status
}

func WithStatus(err error, status int) error {
	return statusError{error: err, status: status}
}

func HTTPStatus(err error) int {
	var status interface{ HTTPStatus() int }
	var validation *ValidationError
	var notFound *NotFoundError
	var forbidden *ForbiddenError
	var partial *PartialWriteError
	var publish *PublishError
	switch {
	case errors.As(err, &status):
		return status.HTTPStatus()
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &partial):
		return http.StatusServiceUnavailable
	case errors.As(err, &publish):
		return http.StatusAccepted
	case errors.Is(err, ErrConcurrentPublish):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WithHTTPStatus(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var partial *PartialWriteError
	var publish *PublishError
	switch {
	case errors.As(err, &publish):
		body["scores_saved"] = true
	case errors.As(err, &partial):
		body["written"] = partial.Written
		body["total"] = partial.Total
	}
	c.JSON(HTTPStatus(err), body)
}
