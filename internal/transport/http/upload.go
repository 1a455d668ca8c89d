package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	apierrors "regreport/internal/errors"
	"regreport/internal/middleware"
)

// Form field names of an upload
const (
	FileField   = "file"
	ActionField = "action"
)

// uploadMemory is how much of a multipart body is held in memory before
// parts spill to temporary files.
const uploadMemory = 8 << 20

// upload is a received spreadsheet. Close releases the open part and
// every temporary file the multipart reader created.
type upload struct {
	file   multipart.File
	name   string
	size   int64
	action string
	form   *multipart.Form
}

func (u *upload) Close() error {
	err := u.file.Close()
	if rmErr := u.form.RemoveAll(); err == nil {
		err = rmErr
	}
	return err
}

// readUpload parses the multipart body of r and opens its file field.
// Errors are ready for the error handler.
func readUpload(r *http.Request, validation *middleware.ValidationMiddleware) (*upload, error) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		removeForm(r)
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apierrors.ErrPayloadTooLarge.WithExtension("limit_bytes", validation.MaxUploadBytes())
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, apierrors.ErrMissingFile
		default:
			return nil, apierrors.InvalidRequestWithError(err)
		}
	}

	form := r.MultipartForm
	headers := form.File[FileField]
	if len(headers) == 0 || headers[0].Filename == "" {
		form.RemoveAll()
		return nil, apierrors.ErrMissingFile
	}
	header := headers[0]

	var action string
	if values := form.Value[ActionField]; len(values) > 0 {
		action = values[0]
	}

	err := validation.ValidateUpload(middleware.UploadRequest{
		Filename: header.Filename,
		Size:     header.Size,
		Action:   action,
	})
	if err != nil {
		form.RemoveAll()
		return nil, err
	}

	file, err := header.Open()
	if err != nil {
		form.RemoveAll()
		return nil, apierrors.InvalidRequestWithError(err)
	}

	return &upload{
		file:   file,
		name:   header.Filename,
		size:   header.Size,
		action: action,
		form:   form,
	}, nil
}

func removeForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}
