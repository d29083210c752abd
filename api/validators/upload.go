package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

// Multipart field names of the two spreadsheets.
const (
	MainField   = "main"
	DetailField = "detail"
)

// ReadImportUpload reads the main and detail spreadsheets of a multipart
// request. The whole body is capped at maxBytes.
func ReadImportUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (importer.Input, importer.Input, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return importer.Input{}, importer.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "upload too large").
				WithDetails(map[string]any{"max_bytes": tooLarge.Limit})
		}
		return importer.Input{}, importer.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	mainIn, err := readFormFile(r, MainField)
	if err != nil {
		return importer.Input{}, importer.Input{}, err
	}
	detailIn, err := readFormFile(r, DetailField)
	if err != nil {
		return importer.Input{}, importer.Input{}, err
	}
	return mainIn, detailIn, nil
}

func readFormFile(r *http.Request, field string) (importer.Input, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return importer.Input{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file is required", field)).
			WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return importer.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("failed to read %s file", field))
	}
	return importer.Input{Name: filepath.Base(header.Filename), Data: data}, nil
}
