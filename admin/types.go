package admin

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateCreating
	StateEditing
	StateSubmitting
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateCreating:
		return "creating"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Direction is a one-step move in the display list. Up is toward index 0.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) offset() int {
	if d == Up {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection accepts "up" or "down", case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, errs.NewInvalidFieldError("direction", fmt.Sprintf("%q is not up or down", s))
}

// Form is the editable copy of a project.
type Form struct {
	Title       string
	Description string
	Thumbnail   string
	DemoLink    string
	ViewText    string
	Order       int
}

func DefaultForm() Form {
	return Form{ViewText: models.DefaultViewText}
}

func (f Form) missingField() string {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return "title"
	case strings.TrimSpace(f.Description) == "":
		return "description"
	case strings.TrimSpace(f.DemoLink) == "":
		return "demoLink"
	}
	return ""
}

// PendingFile is a thumbnail selected but not yet uploaded.
type PendingFile struct {
	Name string
	Data []byte
}

// FileNameFromURL returns the last path segment of a thumbnail URL, or the
// input unchanged when it cannot be parsed.
func FileNameFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return raw
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notice is a user-visible message. Err is set for LevelError notices.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(n Notice) {
	if n.Level == LevelError {
		l.Logger.Error().Err(n.Err).Msg(n.Message)
		return
	}
	l.Logger.Info().Msg(n.Message)
}

func infoNotice(msg string) Notice {
	return Notice{Level: LevelInfo, Message: msg}
}

func errorNotice(msg string, err error) Notice {
	return Notice{Level: LevelError, Message: msg, Err: err}
}

func storeUnavailable(err error) error {
	if errors.Is(err, errs.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
}

func uploadFailed(fileName string, err error) error {
	if errors.Is(err, errs.ErrUploadFailed) {
		return err
	}
	return fmt.Errorf("upload %s: %w: %w", fileName, errs.ErrUploadFailed, err)
}

// persistFailed keeps NotFound recognizable so callers can tell a vanished
// project from a store outage.
func persistFailed(op string, err error) error {
	if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrPersistFailed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, errs.ErrPersistFailed, err)
}

func fileTooLarge(name string, size int) error {
	return fmt.Errorf("%s is %d bytes, limit is %d: %w", name, size, models.MaxThumbnailBytes, errs.ErrFileTooLarge)
}
