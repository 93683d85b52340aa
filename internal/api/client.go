// Package api is the HTTP client for the gallery backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Client talks to the gallery backend. A Client is immutable; WithSession
// returns a copy bound to a user.
type Client struct {
	baseURL string
	http    *http.Client
	session Session
	log     zerolog.Logger
}

// New creates an anonymous client for the backend at baseURL.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "api").Logger(),
	}
}

// WithSession returns a client that authenticates as s.
func (c *Client) WithSession(s Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session returns the bound session.
func (c *Client) Session() Session {
	return c.session
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for an account and token.
func (c *Client) Login(ctx context.Context, creds Credentials) (Account, error) {
	var acc Account
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &acc); err != nil {
		return Account{}, fmt.Errorf("login: %w", err)
	}
	if acc.UserToken == "" {
		return Account{}, fmt.Errorf("login: %w: no token", ErrMalformedResponse)
	}
	return acc, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, reg Registration) (Account, error) {
	var acc Account
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &acc); err != nil {
		return Account{}, fmt.Errorf("register: %w", err)
	}
	if acc.UserToken == "" {
		return Account{}, fmt.Errorf("register: %w: no token", ErrMalformedResponse)
	}
	return acc, nil
}

// CurrentAccount returns the account for the bound session's token.
func (c *Client) CurrentAccount(ctx context.Context) (Account, error) {
	var acc Account
	if err := c.do(ctx, http.MethodGet, "/auth/current", nil, nil, &acc); err != nil {
		return Account{}, fmt.Errorf("current account: %w", err)
	}
	if acc.UserToken == "" {
		acc.UserToken = c.session.Token
	}
	return acc, nil
}

func listPath(mode image.Mode) (string, error) {
	switch mode {
	case image.ModePersonal:
		return "/images/userOwnedImages", nil
	case image.ModeShared:
		return "/images/userOpenedToImages", nil
	case image.ModePublic:
		return "/public/publicImages", nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", image.ErrInvalidInput, mode)
	}
}

// ListImages fetches one page of images.
func (c *Client) ListImages(ctx context.Context, q image.PageQuery) (image.Page, error) {
	path, err := listPath(q.Mode)
	if err != nil {
		return image.Page{}, err
	}

	query := url.Values{}
	query.Set("currentPage", strconv.FormatUint(uint64(q.Page), 10))
	query.Set("imagesPerPage", strconv.FormatUint(uint64(q.PageSize), 10))
	query.Set("filter", q.Filter)

	var resp ListResponse
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return image.Page{}, fmt.Errorf("list images: %w", err)
	}
	if resp.FilteredImagesNumber == nil {
		return image.Page{}, fmt.Errorf("list images: %w: missing filteredImagesNumber", ErrMalformedResponse)
	}

	return image.Page{
		Images:        resp.Images,
		FilteredCount: *resp.FilteredImagesNumber,
		FilteredIDs:   resp.AllFilteredImagesID,
	}, nil
}

// GetImage fetches a single image by id.
func (c *Client) GetImage(ctx context.Context, id string) (image.Record, error) {
	var resp ImageResponse
	if err := c.do(ctx, http.MethodGet, "/images/byId/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return image.Record{}, fmt.Errorf("get image %s: %w", id, err)
	}
	if resp.Image == nil {
		return image.Record{}, fmt.Errorf("get image %s: %w: missing image", id, ErrMalformedResponse)
	}
	return *resp.Image, nil
}

// Upload sends files as a multipart form under the "images" field.
func (c *Client) Upload(ctx context.Context, files []image.Upload) ([]image.Record, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("upload: create part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("upload: write part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload: close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/images/upload", nil, &buf)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp UploadResponse
	if err := c.send(req, &resp); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if resp.NewImages == nil {
		return nil, fmt.Errorf("upload: %w: missing newImages", ErrMalformedResponse)
	}
	return resp.NewImages, nil
}

// UpdateImages sends partial metadata updates and returns the merged records.
func (c *Client) UpdateImages(ctx context.Context, updates []image.PartialUpdate) ([]image.Record, error) {
	var resp UpdateResponse
	if err := c.do(ctx, http.MethodPut, "/images/updateImages", nil, UpdateRequest{ImagesToUpdate: updates}, &resp); err != nil {
		return nil, fmt.Errorf("update images: %w", err)
	}
	if resp.UpdatedImages == nil {
		return nil, fmt.Errorf("update images: %w: missing updatedImages", ErrMalformedResponse)
	}
	return resp.UpdatedImages, nil
}

// DeleteImages deletes entries and returns the remaining owned ids.
func (c *Client) DeleteImages(ctx context.Context, entries []image.SelectionEntry) ([]string, error) {
	var resp DeleteResponse
	if err := c.do(ctx, http.MethodPost, "/images/deleteImages", nil, DeleteRequest{ImagesToDelete: entries}, &resp); err != nil {
		return nil, fmt.Errorf("delete images: %w", err)
	}
	if resp.NewImagesList == nil {
		return nil, fmt.Errorf("delete images: %w: missing newImagesList", ErrMalformedResponse)
	}
	return *resp.NewImagesList, nil
}

// MultiuserShare applies user share deltas to each image.
func (c *Client) MultiuserShare(ctx context.Context, imageIDs []string, users []image.ShareAction) error {
	body := ShareRequest{ImagesIDList: imageIDs, UsersList: users}
	if err := c.do(ctx, http.MethodPost, "/images/multiuserShare", nil, body, nil); err != nil {
		return fmt.Errorf("share images: %w", err)
	}
	return nil
}

// PublicImageIDs lists the id of every public image.
func (c *Client) PublicImageIDs(ctx context.Context) ([]string, error) {
	var resp PublicListResponse
	if err := c.do(ctx, http.MethodGet, "/public/publicImagesList", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("list public images: %w", err)
	}
	return resp.PublicImagesList, nil
}

// UserExists reports whether an account named name exists.
func (c *Client) UserExists(ctx context.Context, name string) (bool, error) {
	var resp ExistsResponse
	if err := c.do(ctx, http.MethodGet, "/users/exists/"+url.PathEscape(name), nil, nil, &resp); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return resp.Exists, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close response body")
		}
	}()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &StatusError{Method: req.Method, Path: req.URL.Path, Code: resp.StatusCode}
		var er ErrorResponse
		if json.Unmarshal(data, &er) == nil {
			serr.Message = er.Message
		}
		return serr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, req.URL.Path, err)
	}
	return nil
}
