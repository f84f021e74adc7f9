package partition

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/unstruct/idgen"
	"github.com/hazyhaar/unstruct/kit"
)

// maxUploadBytes caps multipart parsing of incoming uploads (256 MiB).
const maxUploadBytes = 256 << 20

// RegisterHTTP mounts the adapter's endpoints on a host router:
//
//	POST   /v1/partition         multipart "file" upload → {"text": …}
//	GET    /v1/partition/params  resolved options + endpoint diagnostics
//	PUT    /v1/partition/key     {"api_key": …} stores the credential
//	DELETE /v1/partition/key     removes the credential
//
// The module owns no listener; a host chassis mounts this router.
func (c *Client) RegisterHTTP(r chi.Router) {
	r.Post("/v1/partition", c.handlePartition)
	r.Get("/v1/partition/params", c.handleParams)
	r.Put("/v1/partition/key", c.handleSetKey)
	r.Delete("/v1/partition/key", c.handleDeleteKey)
}

func (c *Client) handlePartition(w http.ResponseWriter, r *http.Request) {
	ctx := kit.WithRequestID(r.Context(), idgen.Prefixed("req_", idgen.Default)())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse form: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	text, err := c.PartitionToText(ctx, file, header.Filename)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"file_name": header.Filename,
		"text":      text,
	})
}

func (c *Client) handleParams(w http.ResponseWriter, r *http.Request) {
	endpoint := DefaultServerURL
	if u := ServerURL(c.cfg.Env); u != "" {
		endpoint = u
	}
	resp := map[string]any{
		"params":     c.ResolvedParams(),
		"server_url": endpoint,
	}
	if c.cfg.Credentials != nil {
		key, err := APIKey(r.Context(), c.cfg.Credentials)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp["has_api_key"] = key != ""
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *Client) handleSetKey(w http.ResponseWriter, r *http.Request) {
	if c.cfg.Credentials == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no credential store configured"))
		return
	}
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, errors.New("api_key is required"))
		return
	}
	if err := SetAPIKey(r.Context(), c.cfg.Credentials, req.APIKey); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
}

func (c *Client) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	if c.cfg.Credentials == nil {
		writeError(w, http.StatusNotImplemented, errors.New("no credential store configured"))
		return
	}
	if err := DeleteAPIKey(r.Context(), c.cfg.Credentials); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// statusFor maps adapter errors onto HTTP statuses: build problems are
// the caller's, upstream failures are a bad gateway.
func statusFor(err error) int {
	var buildErr *RequestBuildError
	if errors.As(err, &buildErr) {
		return http.StatusBadRequest
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
