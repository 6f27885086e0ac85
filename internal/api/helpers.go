package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/normalize"
	"github.com/panelverse/panelverse-server/internal/service"
	"github.com/panelverse/panelverse-server/internal/store"
)

// maxMultipartMemory bounds how much of a multipart body is held in memory;
// the rest spills to temp files.
const maxMultipartMemory = 32 << 20

const defaultLimit = 100

var errMineRequiresAuth = store.ErrUnauthorized.WithMessage("authentication required for mine=true")

// parseListParams builds the catalog query from query-string parameters.
// Malformed boolean and numeric values are ignored rather than rejected, and
// unknown sort fields silently fall back to the upload-date default.
func parseListParams(r *http.Request, ident auth.Identity, authed bool) (service.ListParams, error) {
	q := r.URL.Query()

	p := service.ListParams{
		Sort: store.DefaultComicSort(),
		Page: store.Page{Limit: defaultLimit},
	}

	p.Filter.Search = q.Get("search")
	if tags := q.Get("tags"); tags != "" {
		p.Filter.Tags = normalize.Tags(tags)
	}
	if raw := q.Get("published"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			p.Filter.Published = &v
		}
	}

	if boolParam(q.Get("mine")) {
		if !authed {
			return p, errMineRequiresAuth
		}
		// The "mine" scope shows the caller's comics regardless of
		// published state; it never mixes with the public scope.
		p.Filter.AuthorID = ident.ID
	} else if boolParam(q.Get("published_only")) {
		p.Filter.PublishedOnly = true
	}

	p.Sort.Field = store.ParseSortField(q.Get("sort_by"))
	if q.Get("order") == "asc" {
		p.Sort.Descending = false
	}

	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			p.Page.Limit = v
		}
	}
	if raw := q.Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			p.Page.Skip = v
		}
	}

	return p, nil
}

// boolParam interprets a query-string boolean; malformed values read as false.
func boolParam(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}

// readMultipartFiles loads the "files" parts of an already-parsed multipart
// form, preserving submission order.
func readMultipartFiles(r *http.Request) ([]service.UploadFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["files"]
	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.UploadFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}
