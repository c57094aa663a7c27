// Package upload serves the upload form, file listing and downloads.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/fileupload/service/internal/logging"
	"github.com/fileupload/service/internal/middleware"
	"github.com/fileupload/service/internal/response"
	"github.com/fileupload/service/internal/storage"
)

// maxMemory is how much of a multipart body is kept in memory before
// spilling to temp files.
const maxMemory = 32 << 20

// Handler holds HTTP handlers for the upload endpoints.
type Handler struct {
	store   storage.Storage
	maxSize int64
	logger  *logging.Logger
}

// NewHandler creates a new upload Handler. Request bodies larger than
// maxSize bytes are rejected.
func NewHandler(store storage.Storage, maxSize int64, logger *logging.Logger) *Handler {
	return &Handler{store: store, maxSize: maxSize, logger: logger}
}

// Routes registers the upload endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListFiles)
	r.Get("/files/{filename}", h.ServeFile)
	r.Post("/", h.Upload)
}

// ListResponse is the JSON form of the file listing.
type ListResponse struct {
	Files   []string `json:"files"`
	Message string   `json:"message,omitempty"`
}

// ListFiles godoc
//
//	@Summary		List uploaded files
//	@Description	Renders the upload form with one download URL per stored file. Send Accept: application/json for a JSON list.
//	@Tags			files
//	@Produce		html
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=ListResponse}
//	@Failure		500	{object}	response.Envelope
//	@Router			/ [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.LoadAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	names, err := storage.Collect(listing)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, fileURL(r, name))
	}
	message := popFlash(w, r)

	if wantsJSON(r) {
		response.OK(w, ListResponse{Files: urls, Message: message})
		return
	}

	if err := renderForm(w, formData{Files: urls, Message: message, MaxSize: h.maxSize}); err != nil {
		h.logger.Error("render upload form", "err", err)
	}
}

// ServeFile godoc
//
//	@Summary		Download a file
//	@Description	Streams the stored file as an attachment. Range requests are supported.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			filename	path	string	true	"Stored file name"
//	@Success		200
//	@Failure		404
//	@Failure		500	{object}	response.Envelope
//	@Router			/files/{filename} [get]
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := filenameParam(r)
	// Resolve does not check containment, so only plain names reach storage.
	if !storage.IsBaseName(name) {
		response.NotFound(w)
		return
	}

	res, err := h.store.LoadAsResource(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	f, err := res.Open()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("detect content type: %w", err))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		h.writeError(w, r, fmt.Errorf("rewind %q: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", mtype.String())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	http.ServeContent(w, r, res.Filename, res.ModTime, f)
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the multipart part "file" under its original name, replacing a file of the same name, then redirects to the listing.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Param			file	formData	file	true	"File to upload"
//	@Security		BearerAuth
//	@Success		303
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		413	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/ [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, `missing file part "file"`)
		return
	}
	defer file.Close()

	if err := h.store.Store(r.Context(), header.Filename, file); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("file stored",
		"name", header.Filename,
		"size", header.Size,
		"subject", middleware.Subject(r.Context()),
	)

	setFlash(w, "You successfully uploaded "+header.Filename+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeError maps storage errors to responses: missing files are 404 with
// an empty body, everything else is a 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if storage.IsNotFound(err) {
		response.NotFound(w)
		return
	}

	h.logger.Error("storage failure", "method", r.Method, "path", r.URL.Path, "err", err)
	response.InternalError(w)
}

// filenameParam returns the decoded {filename} segment. chi matches on the
// raw path when the URL carries escapes that differ from the default
// encoding (such as %2F), leaving the parameter escaped.
func filenameParam(r *http.Request) string {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}

func fileURL(r *http.Request, name string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: "/files/" + name}
	return u.String()
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
