package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go-media-backend/internal/logger"
	"go-media-backend/internal/model"
	"go-media-backend/internal/util"
	"go-media-backend/pkg/apierror"
)

const maxFormFieldBytes = 64 << 10

// spooledForm is a multipart request whose file parts were copied to local
// temp files. Cleanup must run once the service is done with the files.
type spooledForm struct {
	fields map[string]string
	files  map[string]model.LocalFile
}

func (f *spooledForm) Value(name string) string {
	return f.fields[name]
}

func (f *spooledForm) File(name string) model.LocalFile {
	return f.files[name]
}

func (f *spooledForm) Cleanup() {
	for _, file := range f.files {
		_ = os.Remove(file.Path)
	}
}

// spoolMultipart streams the request parts to disk under tempDir. Only the
// named file fields are kept; the first part wins when one repeats.
func spoolMultipart(r *http.Request, tempDir string, fileFields ...string) (*spooledForm, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, apierror.InvalidArgument("invalid multipart body", "")
	}

	wanted := make(map[string]bool, len(fileFields))
	for _, name := range fileFields {
		wanted[name] = true
	}

	form := &spooledForm{fields: map[string]string{}, files: map[string]model.LocalFile{}}

	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			form.Cleanup()
			return nil, multipartError(nextErr)
		}

		name := part.FormName()

		if part.FileName() == "" {
			value, readErr := io.ReadAll(io.LimitReader(part, maxFormFieldBytes))
			_ = part.Close()
			if readErr != nil {
				form.Cleanup()
				return nil, multipartError(readErr)
			}
			if _, seen := form.fields[name]; !seen {
				form.fields[name] = string(value)
			}
			continue
		}

		if _, seen := form.files[name]; seen || !wanted[name] {
			_ = part.Close()
			continue
		}

		file, spoolErr := spoolPart(part, tempDir)
		_ = part.Close()
		if spoolErr != nil {
			form.Cleanup()
			return nil, spoolErr
		}
		form.files[name] = file
	}

	logger.FromContext(r.Context()).Debug("multipart spooled",
		slog.Int("files", len(form.files)),
		slog.Int("fields", len(form.fields)),
	)

	return form, nil
}

type filePart interface {
	io.Reader
	FileName() string
	FormName() string
}

func spoolPart(part filePart, tempDir string) (model.LocalFile, error) {
	name, err := util.SanitizeFilename(part.FileName())
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) {
			apiErr.Field = part.FormName()
		}
		return model.LocalFile{}, err
	}

	tmp, err := os.CreateTemp(tempDir, "upload-*")
	if err != nil {
		return model.LocalFile{}, fmt.Errorf("create spool file: %w", err)
	}

	size, copyErr := io.Copy(tmp, part)
	closeErr := tmp.Close()
	if copyErr != nil {
		_ = os.Remove(tmp.Name())
		return model.LocalFile{}, multipartError(copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmp.Name())
		return model.LocalFile{}, fmt.Errorf("close spool file: %w", closeErr)
	}
	if size == 0 {
		_ = os.Remove(tmp.Name())
		return model.LocalFile{}, apierror.InvalidArgument(part.FormName()+" is empty", part.FormName())
	}

	contentType, err := util.DetectMIMEFromPath(tmp.Name())
	if err != nil {
		_ = os.Remove(tmp.Name())
		return model.LocalFile{}, err
	}

	return model.LocalFile{Path: tmp.Name(), Name: name, ContentType: contentType, Size: size}, nil
}

func multipartError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		return &http.MaxBytesError{}
	}
	return apierror.Wrap(err, apierror.CodeBadRequest, "invalid multipart stream", http.StatusBadRequest)
}
