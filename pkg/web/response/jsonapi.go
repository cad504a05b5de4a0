// Package response writes serializer documents and serializer failures as
// JSON:API HTTP responses.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/DataDog/jsonapi"

	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

const (
	// JSONAPIMediaType is the official JSON:API media type
	JSONAPIMediaType = "application/vnd.api+json"
)

// Error titles for serializer failures
const (
	TitleInvalidRelationPath  = "Invalid relation path"
	TitleUnsupportedInclusion = "Inclusion of related resources is not supported"
)

// IsJSONAPI checks if the request accepts JSON:API format
func IsJSONAPI(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return false
	}

	for _, part := range strings.Split(accept, ",") {
		// Parse media type to handle parameters like charset
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			// Fall back to simple check if parsing fails
			if strings.Contains(part, JSONAPIMediaType) {
				return true
			}
			continue
		}
		if mediaType == JSONAPIMediaType {
			return true
		}
	}
	return false
}

// ErrMarshalDocument is returned by RenderDocument when nothing was written
var ErrMarshalDocument = errors.New("failed to marshal document")

// RenderDocument marshals a document and writes it with the JSON:API media
// type. A marshal failure is returned before anything is written; the write
// error is returned otherwise.
func RenderDocument(w http.ResponseWriter, status int, doc *serializer.Document) error {
	// Marshal before writing headers
	data, err := serializer.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshalDocument, err)
	}

	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// ErrorFor maps a document build failure to an HTTP status and JSON:API error
// objects. Relation path and inclusion failures are client errors; anything
// else is reported as an internal error without its message.
func ErrorFor(err error) (int, []*jsonapi.Error) {
	switch {
	case errors.Is(err, serializer.ErrInvalidRelationPath):
		status := http.StatusBadRequest
		detail := err.Error()
		if path, ok := serializer.PathOf(err); ok {
			detail = fmt.Sprintf("The relationship path %q does not exist or cannot be included", path)
		}
		return status, []*jsonapi.Error{{
			Status: &status,
			Code:   "invalid_relation_path",
			Title:  TitleInvalidRelationPath,
			Detail: detail,
		}}

	case errors.Is(err, serializer.ErrUnsupportedInclusion):
		status := http.StatusBadRequest
		return status, []*jsonapi.Error{{
			Status: &status,
			Code:   "unsupported_inclusion",
			Title:  TitleUnsupportedInclusion,
			Detail: "This endpoint does not support the include parameter",
		}}

	default:
		status := http.StatusInternalServerError
		return status, []*jsonapi.Error{{
			Status: &status,
			Code:   errorCodeFromStatus(status),
			Title:  http.StatusText(status),
		}}
	}
}

// RenderError renders the JSON:API errors ErrorFor derives from err
func RenderError(w http.ResponseWriter, err error) error {
	status, errs := ErrorFor(err)
	return RenderJSONAPIErrors(w, status, errs)
}

// RenderJSONAPIError renders a single JSON:API error
func RenderJSONAPIError(w http.ResponseWriter, statusCode int, err error) error {
	errs := []*jsonapi.Error{{
		Status: &statusCode,
		Code:   errorCodeFromStatus(statusCode),
		Title:  http.StatusText(statusCode),
		Detail: err.Error(),
	}}

	return RenderJSONAPIErrors(w, statusCode, errs)
}

// RenderJSONAPIErrors renders multiple JSON:API errors and returns the write
// error. If the errors cannot be marshaled a fixed 500 document is written
// instead.
func RenderJSONAPIErrors(w http.ResponseWriter, statusCode int, errs []*jsonapi.Error) error {
	// Marshal errors before writing headers
	data, err := json.Marshal(map[string][]*jsonapi.Error{"errors": errs})
	if err != nil {
		statusCode = http.StatusInternalServerError
		data = []byte(`{"errors":[{"status":"500","code":"internal_error","title":"Internal Server Error"}]}`)
	}

	w.Header().Set("Content-Type", JSONAPIMediaType)
	w.WriteHeader(statusCode)
	_, err = w.Write(data)
	return err
}

func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusNotAcceptable:
		return "not_acceptable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return "error_" + strconv.Itoa(status)
	}
}
