// CLAUDE:SUMMARY Thin client adapter for an Unstructured-compatible partition service: env-driven options, kvstore credential, multipart POST, elements joined to text.
// Package partition converts document files (PDF, DOCX, PPTX, images, …)
// into plain text by calling an Unstructured-compatible partitioning
// service. It is deliberately a thin adapter: credentials come from a
// key-value store, options from environment variables, and the response
// elements are flattened into one text blob for downstream ingestion.
//
// Usage:
//
//	store, _ := kvstore.Open("data/credentials.db")
//	client := partition.New(partition.Config{Credentials: store})
//
//	f, _ := os.Open("report.pdf")
//	defer f.Close()
//	text, err := client.PartitionToText(ctx, f, "report.pdf")
//
// The adapter performs no retries, no caching, and no local parsing.
// Timeouts belong to the injected HTTP client or the caller's context.
package partition

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/hazyhaar/unstruct/kit"
	"github.com/hazyhaar/unstruct/kvstore"
)

// Config configures the partition client.
type Config struct {
	// Credentials holds the service API key under CredentialKey.
	// Nil means no credential store: requests go out unauthenticated.
	Credentials kvstore.Store `json:"-" yaml:"-"`

	// Env reads environment variables. Defaults to os.Getenv.
	Env Env `json:"-" yaml:"-"`

	// HTTPClient performs the requests. Defaults to a plain
	// &http.Client{}; any timeout policy belongs to it or to the
	// caller's context.
	HTTPClient *http.Client `json:"-" yaml:"-"`

	// TablesAsMarkdown renders elements carrying table HTML as Markdown
	// tables instead of their flat text.
	TablesAsMarkdown bool `json:"tables_as_markdown" yaml:"tables_as_markdown"`

	// MaxResponseBytes caps how much of the service response is read.
	// Default: 32 MiB.
	MaxResponseBytes int64 `json:"max_response_bytes" yaml:"max_response_bytes"`

	// Logger for debug/warning/error messages. Defaults to slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Env == nil {
		c.Env = os.Getenv
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = 32 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client calls the partition service. Safe for concurrent use: every
// call resolves its configuration fresh and shares no mutable state.
type Client struct {
	cfg    Config
	render *renderer
}

// New creates a Client from config.
func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{cfg: cfg, render: newRenderer(cfg.TablesAsMarkdown)}
}

// PartitionToText sends the file to the partition service and returns
// the extracted text: every returned element rendered to its string
// form, joined with blank lines.
//
// The file handle is caller-owned: the adapter seeks to the start,
// reads it fully, and never closes it. Build failures surface as
// *RequestBuildError, non-200 responses and transport failures as
// *ServiceError. No retries, no partial text.
func (c *Client) PartitionToText(ctx context.Context, file io.ReadSeeker, fileName string) (string, error) {
	log := c.cfg.Logger
	if id := kit.GetRequestID(ctx); id != "" {
		log = log.With("request_id", id)
	}
	log.DebugContext(ctx, "partitioning file", "file_name", fileName)

	params := ResolveParams(c.cfg.Env, log)

	body, contentType, err := encodePayload(file, fileName, params)
	if err != nil {
		buildErr := &RequestBuildError{FileName: fileName, Err: err}
		log.ErrorContext(ctx, "building partition request failed",
			"file_name", fileName, "error", err)
		return "", buildErr
	}

	apiKey := ""
	if c.cfg.Credentials != nil {
		apiKey, err = APIKey(ctx, c.cfg.Credentials)
		if err != nil {
			return "", err
		}
	}

	endpoint := DefaultServerURL
	if u := ServerURL(c.cfg.Env); u != "" {
		endpoint = u
		log.DebugContext(ctx, "using custom partition server URL", "url", endpoint)
	}

	elements, err := c.call(ctx, log, endpoint, apiKey, contentType, body)
	if err != nil {
		return "", err
	}
	return c.render.joinText(elements), nil
}

// ResolvedParams returns the partition options the client would send
// right now, for diagnostics surfaces.
func (c *Client) ResolvedParams() Params {
	return ResolveParams(c.cfg.Env, c.cfg.Logger)
}
