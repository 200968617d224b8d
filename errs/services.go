package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Project administration errors. The admin controller surfaces every
// failure as one of these kinds, wrapped around the collaborator's cause.
var (
	ErrStoreUnavailable  = errors.New("project store unavailable")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUploadFailed      = errors.New("upload failed")
	ErrMissingThumbnail  = errors.New("missing thumbnail")
	ErrPersistFailed     = errors.New("persist failed")
	ErrBusy              = errors.New("another action is in progress")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("action not allowed in current state")
)

// Third-party delivery errors
var (
	ErrEmailDelivery   = errors.New("email delivery failed")
	ErrSMSDelivery     = errors.New("sms delivery failed")
	ErrServiceConfig   = errors.New("service not configured")
	ErrUpstreamRefused = errors.New("upstream service refused request")
)

func NewUploadFailedError(fileName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrUploadFailed,
		Details:    fmt.Sprintf("Failed to store %s", fileName),
		Cause:      cause,
		Field:      "file",
	}
}

func NewEmailDeliveryError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrEmailDelivery,
		Details:    "Failed to send message",
		Cause:      cause,
	}
}

func NewServiceConfigError(service, key string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceConfig,
		Details:    fmt.Sprintf("%s requires %s", service, key),
		Field:      key,
	}
}

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

func IsUploadFailed(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}

func IsMissingThumbnail(err error) bool {
	return errors.Is(err, ErrMissingThumbnail)
}

func IsPersistFailed(err error) bool {
	return errors.Is(err, ErrPersistFailed)
}

func IsBusy(err error) bool {
	return errors.Is(err, ErrBusy)
}

func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

func IsEmailDelivery(err error) bool {
	return errors.Is(err, ErrEmailDelivery)
}
