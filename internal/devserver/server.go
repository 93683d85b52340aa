// Package devserver is a self contained reference implementation of the
// gallery backend. It keeps users and image metadata in memory and image
// bytes in a BlobStore, and serves the same routes the api client calls.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/lightbox/internal/api"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BasePath is the prefix every API route is mounted under.
const BasePath = "/api/v1"

const (
	defaultPageSize = 20
	maxUploadBytes  = 32 << 20
	thumbSuffix     = "_small"
)

// Options configures a Server.
type Options struct {
	Addr string
	// PublicURL is the externally visible origin used to build image URLs.
	// When empty the request's host is used.
	PublicURL      string
	AllowedOrigins []string
	ThumbnailWidth uint
}

// Server serves the gallery API.
type Server struct {
	opts    Options
	catalog *Catalog
	blobs   BlobStore
	log     zerolog.Logger
}

// New creates a server over catalog and blobs.
func New(opts Options, catalog *Catalog, blobs BlobStore, log zerolog.Logger) *Server {
	if opts.ThumbnailWidth == 0 {
		opts.ThumbnailWidth = DefaultThumbnailWidth
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")

	return &Server{
		opts:    opts,
		catalog: catalog,
		blobs:   blobs,
		log:     log.With().Str("component", "devserver").Logger(),
	}
}

// Router returns the HTTP handler for the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.With(s.requireUser).Get("/auth/current", s.handleCurrent)

		r.With(s.requireUser).Get("/users/exists/{name}", s.handleUserExists)

		r.Route("/images", func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/userOwnedImages", s.handleList(ScopeOwned))
			r.Get("/userOpenedToImages", s.handleList(ScopeOpenedTo))
			r.Get("/byId/{id}", s.handleGetImage)
			r.Post("/upload", s.handleUpload)
			r.Put("/updateImages", s.handleUpdate)
			r.Post("/deleteImages", s.handleDelete)
			r.Post("/multiuserShare", s.handleShare)
		})

		r.Route("/public", func(r chi.Router) {
			r.Use(s.optionalUser)
			r.Get("/publicImages", s.handleList(ScopePublic))
			r.Get("/publicImagesList", s.handlePublicIDs)
			r.Get("/standaloneShare/{id}", s.handleStandalone)
		})

		r.Get("/blobs/{key}", s.handleBlob)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in api.Credentials
	if !decode(w, r, &in) {
		return
	}
	acc, err := s.catalog.Login(in.UserName, in.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in api.Registration
	if !decode(w, r, &in) {
		return
	}
	acc, err := s.catalog.Register(in.UserName, in.UserEmail, in.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	s.log.Info().Str("user", acc.UserName).Msg("user registered")
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	acc, ok := s.catalog.Account(userFrom(r.Context()), bearerToken(r))
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

func (s *Server) handleUserExists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.ExistsResponse{Exists: s.catalog.UserExists(chi.URLParam(r, "name"))})
}

func (s *Server) handleList(scope Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := queryUint(r, "currentPage", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		size, err := queryUint(r, "imagesPerPage", defaultPageSize)
		if err != nil || size == 0 {
			writeError(w, http.StatusBadRequest, "imagesPerPage must be a positive integer")
			return
		}

		images, total, filtered := s.catalog.List(scope, userFrom(r.Context()), page, size, r.URL.Query().Get("filter"))
		writeJSON(w, http.StatusOK, api.ListResponse{
			Images:               images,
			FilteredImagesNumber: &total,
			AllFilteredImagesID:  filtered,
		})
	}
}

func queryUint(r *http.Request, key string, fallback uint) (uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return uint(n), nil
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.Get(userFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ImageResponse{Image: &rec})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart form")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no images in form")
		return
	}

	user := userFrom(r.Context())
	base := s.publicURL(r)
	out := make([]image.Record, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file "+fh.Filename)
			return
		}

		rec, err := s.store(r.Context(), user, base, fh.Filename, data)
		if err != nil {
			s.log.Error().Err(err).Str("file", fh.Filename).Msg("store upload")
			writeErr(w, err)
			return
		}
		out = append(out, rec)
	}

	s.log.Info().Str("user", user).Int("count", len(out)).Msg("images uploaded")
	writeJSON(w, http.StatusOK, api.UploadResponse{NewImages: out})
}

func (s *Server) store(ctx context.Context, user, base, name string, data []byte) (image.Record, error) {
	hostingID := uuid.NewString()

	if err := s.blobs.Put(ctx, hostingID, Blob{Data: data, ContentType: http.DetectContentType(data)}); err != nil {
		return image.Record{}, err
	}

	small, err := thumbnail(data, s.opts.ThumbnailWidth)
	if err != nil {
		s.log.Debug().Err(err).Str("file", name).Msg("thumbnail failed, serving original")
		small = data
	}
	if err := s.blobs.Put(ctx, hostingID+thumbSuffix, Blob{Data: small, ContentType: http.DetectContentType(small)}); err != nil {
		return image.Record{}, err
	}

	return s.catalog.AddImage(user, image.Record{
		HostingID:    hostingID,
		URL:          base + BasePath + "/blobs/" + hostingID,
		ThumbnailURL: base + BasePath + "/blobs/" + hostingID + thumbSuffix,
		Info:         image.Info{Title: name},
	})
}

func (s *Server) publicURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return s.opts.PublicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in api.UpdateRequest
	if !decode(w, r, &in) {
		return
	}
	updated, err := s.catalog.Update(userFrom(r.Context()), in.ImagesToUpdate)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UpdateResponse{UpdatedImages: updated})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var in api.DeleteRequest
	if !decode(w, r, &in) {
		return
	}
	remaining, hosting, err := s.catalog.Delete(userFrom(r.Context()), in.ImagesToDelete)
	if err != nil {
		writeErr(w, err)
		return
	}

	for _, h := range hosting {
		for _, key := range []string{h, h + thumbSuffix} {
			if err := s.blobs.Delete(r.Context(), key); err != nil {
				s.log.Warn().Err(err).Str("key", key).Msg("delete blob")
			}
		}
	}
	writeJSON(w, http.StatusOK, api.DeleteResponse{NewImagesList: &remaining})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var in api.ShareRequest
	if !decode(w, r, &in) {
		return
	}
	if err := s.catalog.Share(userFrom(r.Context()), in.ImagesIDList, in.UsersList); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublicIDs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.PublicListResponse{PublicImagesList: s.catalog.PublicIDs()})
}

func (s *Server) handleStandalone(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.catalog.LinkShared(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "image not shared")
		return
	}
	s.serveBlob(w, r, rec.HostingID)
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	s.serveBlob(w, r, chi.URLParam(r, "key"))
}

func (s *Server) serveBlob(w http.ResponseWriter, r *http.Request, key string) {
	b, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			writeError(w, http.StatusNotFound, "blob not found")
			return
		}
		s.log.Error().Err(err).Str("key", key).Msg("read blob")
		writeError(w, http.StatusInternalServerError, "storage unavailable")
		return
	}
	w.Header().Set("Content-Type", b.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Data)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Message: msg})
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, image.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, image.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
