package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var allowedThumbnailTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/svg+xml", "image/avif"}

type uploadHandler struct {
	responder Responder
	logger    zerolog.Logger
	uploader  Uploader
	metrics   *httpMetrics
}

func newUploadHandler(uploader Uploader, metrics *httpMetrics) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()
	return uploadHandler{
		responder: NewResponder(logger),
		logger:    logger,
		uploader:  uploader,
		metrics:   metrics,
	}
}

// uploadThumbnail stores the raw request body as a thumbnail image
// @Summary Upload thumbnail
// @Tags Uploads
// @Accept image/png,image/jpeg,image/gif,image/webp
// @Produce json
// @Param filename query string true "Original file name"
// @Success 200 {object} UploadResponse
// @Failure 413 {object} ErrorResponse "File larger than 1 MiB"
// @Failure 415 {object} ErrorResponse "Not an image"
// @Failure 502 {object} ErrorResponse "Blob storage refused the upload"
// @Router /upload [post]
func (h uploadHandler) uploadThumbnail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.uploader == nil {
			h.responder.WriteError(w, errs.NewServiceConfigError("thumbnail upload", "S3_BUCKET"))
			return
		}

		fileName := strings.TrimSpace(r.URL.Query().Get("filename"))
		if fileName == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("filename"))
			return
		}

		body := http.MaxBytesReader(w, r.Body, models.MaxThumbnailBytes)
		data, err := io.ReadAll(body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.metrics.uploads.WithLabelValues("too_large").Inc()
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(maxErr.Limit))
				return
			}
			h.responder.WriteError(w, errs.NewBadRequestError("failed to read request body"))
			return
		}
		if len(data) == 0 {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("body"))
			return
		}

		detected := mimetype.Detect(data)
		if !mimetype.EqualsAny(detected.String(), allowedThumbnailTypes...) {
			h.metrics.uploads.WithLabelValues("rejected").Inc()
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(detected.String(), allowedThumbnailTypes))
			return
		}

		url, err := h.uploader.Upload(r.Context(), data, fileName)
		h.metrics.uploads.WithLabelValues(result(err)).Inc()
		if err != nil {
			var apiErr *errs.ApiErr
			if !errors.As(err, &apiErr) {
				err = errs.NewUploadFailedError(fileName, err)
			}
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Str("fileName", fileName).
			Str("contentType", detected.String()).
			Int("bytes", len(data)).
			Str("url", url).
			Msg("Thumbnail uploaded")
		h.responder.WriteJSON(w, UploadResponse{URL: url})
	}
}
