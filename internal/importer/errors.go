package importer

import (
	"context"
	"errors"

	"github.com/ginjaninja78/oc-consolidator/internal/headers"
	"github.com/ginjaninja78/oc-consolidator/internal/sheet"
	pkgerrors "github.com/ginjaninja78/oc-consolidator/pkg/errors"
)

// CodedError maps an import error to a coded error carrying the file role
// and, for missing columns, the missing field names. Already-coded errors
// pass through.
func CodedError(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if coded := pkgerrors.As(err); coded != nil {
		return coded
	}

	details := map[string]any{}
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		details["file"] = fileErr.Role
		if fileErr.Name != "" {
			details["name"] = fileErr.Name
		}
	}

	var (
		missing  *headers.MissingColumnsError
		notFound *headers.HeaderNotFoundError
	)
	switch {
	case errors.As(err, &missing):
		fields := make([]string, len(missing.Fields))
		for i, f := range missing.Fields {
			fields[i] = string(f)
		}
		details["fields"] = fields
		return pkgerrors.New(pkgerrors.CodeMissingColumns, err.Error()).WithDetails(details)
	case errors.As(err, &notFound):
		details["scanned_rows"] = notFound.ScannedRows
		return pkgerrors.New(pkgerrors.CodeHeaderNotFound, err.Error()).WithDetails(details)
	case errors.Is(err, sheet.ErrUnreadableFile):
		return pkgerrors.New(pkgerrors.CodeUnreadableFile, err.Error()).WithDetails(details)
	case errors.Is(err, ErrNoSubmitter):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import cannot be submitted")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import did not finish in time")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import failed")
}
