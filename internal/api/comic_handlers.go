package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/panelverse/panelverse-server/internal/domain"
	"github.com/panelverse/panelverse-server/internal/http/response"
	"github.com/panelverse/panelverse-server/internal/id"
	"github.com/panelverse/panelverse-server/internal/service"
)

// uploadedFile is the per-file slice of the upload response.
type uploadedFile struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	URL              string `json:"url"`
}

type uploadResponse struct {
	Message string         `json:"message"`
	ComicID string         `json:"comic_id"`
	Tags    []string       `json:"tags"`
	Files   []uploadedFile `json:"files"`
}

type listResponse struct {
	Comics     []*domain.Comic `json:"comics"`
	TotalCount int             `json:"total_count"`
	Limit      int             `json:"limit"`
	Skip       int             `json:"skip"`
	HasMore    bool            `json:"has_more"`
}

// handleUpload ingests a multipart comic batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form", s.logger)
		return
	}

	files, err := readMultipartFiles(r)
	if err != nil {
		response.BadRequest(w, "Failed to read uploaded files", s.logger)
		return
	}

	comic, err := s.catalog.Upload(ctx, ident, service.UploadInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Files:       files,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp := uploadResponse{
		Message: "Upload successful",
		ComicID: comic.ID,
		Tags:    comic.Tags,
		Files:   make([]uploadedFile, 0, len(comic.Files)),
	}
	for _, f := range comic.Files {
		resp.Files = append(resp.Files, uploadedFile{
			Filename:         f.StoredFilename,
			OriginalFilename: f.OriginalFilename,
			URL:              f.URL,
		})
	}

	response.Success(w, resp, s.logger)
}

// handleListComics serves the catalog query.
func (s *Server) handleListComics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, authed := identityFrom(ctx)

	params, err := parseListParams(r, ident, authed)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	res, err := s.catalog.List(ctx, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, listResponse{
		Comics:     res.Comics,
		TotalCount: res.Total,
		Limit:      res.Limit,
		Skip:       res.Skip,
		HasMore:    res.HasMore,
	}, s.logger)
}

// handleSavedComics returns the caller's bookmarked comics.
func (s *Server) handleSavedComics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	comics, err := s.catalog.Saved(ctx, ident)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"comics":      comics,
		"total_count": len(comics),
	}, s.logger)
}

// handleListTags returns the distinct tag set; mine=true scopes it to the
// caller's comics.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, authed := identityFrom(ctx)

	var authorID string
	if boolParam(r.URL.Query().Get("mine")) {
		if !authed {
			response.HandleError(w, errMineRequiresAuth, s.logger)
			return
		}
		authorID = ident.ID
	}

	tags, err := s.catalog.Tags(ctx, authorID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{"tags": tags}, s.logger)
}

// handleGetComic returns one comic.
func (s *Server) handleGetComic(w http.ResponseWriter, r *http.Request) {
	comicID, ok := s.comicIDParam(w, r)
	if !ok {
		return
	}

	comic, err := s.catalog.Get(r.Context(), comicID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, comic, s.logger)
}

// patchRequest is the JSON body of a metadata patch. Absent fields stay
// untouched.
type patchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Tags        *string `json:"tags"`
	Published   *bool   `json:"published"`
}

// handlePatchComic applies a partial metadata update. A multipart body may
// additionally append files; a JSON body is metadata only.
func (s *Server) handlePatchComic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	comicID, ok := s.comicIDParam(w, r)
	if !ok {
		return
	}

	var in service.PatchInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, ok := s.parseMultipartPatch(w, r)
		if !ok {
			return
		}
		in = parsed
	} else {
		var req patchRequest
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body", s.logger)
			return
		}
		if err := s.validate.Validate(req); err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		in = service.PatchInput{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			Published:   req.Published,
		}
	}

	comic, err := s.catalog.Patch(ctx, ident, comicID, in)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, comic, s.logger)
}

// parseMultipartPatch reads metadata fields and appended files from a
// multipart patch body. Only fields actually present in the form are set.
func (s *Server) parseMultipartPatch(w http.ResponseWriter, r *http.Request) (service.PatchInput, bool) {
	var in service.PatchInput

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form", s.logger)
		return in, false
	}

	values := r.MultipartForm.Value
	if v, present := formValue(values, "title"); present {
		if strings.TrimSpace(v) == "" {
			response.BadRequest(w, "Title cannot be empty", s.logger)
			return in, false
		}
		in.Title = &v
	}
	if v, present := formValue(values, "description"); present {
		in.Description = &v
	}
	if v, present := formValue(values, "tags"); present {
		in.Tags = &v
	}
	if v, present := formValue(values, "published"); present {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "Invalid published value", s.logger)
			return in, false
		}
		in.Published = &parsed
	}

	files, err := readMultipartFiles(r)
	if err != nil {
		response.BadRequest(w, "Failed to read uploaded files", s.logger)
		return in, false
	}
	in.Append = files

	return in, true
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, present := values[key]
	if !present || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// handleDeleteComic hard-deletes a comic as its author.
func (s *Server) handleDeleteComic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	comicID, ok := s.comicIDParam(w, r)
	if !ok {
		return
	}

	if err := s.catalog.Delete(ctx, ident, comicID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "Comic deleted"}, s.logger)
}

// handleSaveComic bookmarks a comic for the caller.
func (s *Server) handleSaveComic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	comicID, ok := s.comicIDParam(w, r)
	if !ok {
		return
	}

	if err := s.catalog.Save(ctx, ident, comicID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "Comic saved"}, s.logger)
}

// handleUnsaveComic removes a bookmark.
func (s *Server) handleUnsaveComic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := identityFrom(ctx)

	comicID, ok := s.comicIDParam(w, r)
	if !ok {
		return
	}

	if err := s.catalog.Unsave(ctx, ident, comicID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"message": "Comic removed from saved"}, s.logger)
}

// comicIDParam extracts and validates the {id} route parameter.
func (s *Server) comicIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	comicID := chi.URLParam(r, "id")
	if !id.Valid("com", comicID) {
		response.BadRequest(w, "Invalid comic ID", s.logger)
		return "", false
	}
	return comicID, true
}
