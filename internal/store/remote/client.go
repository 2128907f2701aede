// Package remote persists the inventory document as a single JSON file in a
// content store reached over HTTPS (GitHub-contents-API shape: base64 payload
// plus an opaque version token exchanged on every write).
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pantry/internal/core"
	"pantry/internal/store"
)

const defaultBaseURL = "https://api.github.com"

// maxSaveAttempts bounds the reload-and-retry loop on version conflicts.
const maxSaveAttempts = 3

type Client struct {
	http    *http.Client
	baseURL string
	repo    string // "owner/name"
	path    string // file path inside the repository
	token   string
}

// Config carries the out-of-band credential and document locator.
type Config struct {
	BaseURL string
	Repo    string
	Path    string
	Token   string
	Timeout time.Duration
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Repo == "" || !strings.Contains(cfg.Repo, "/") {
		return nil, fmt.Errorf("invalid repository locator %q: expected owner/name", cfg.Repo)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("document path cannot be empty")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("credential token cannot be empty")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		repo:    cfg.Repo,
		path:    cfg.Path,
		token:   cfg.Token,
	}, nil
}

// contentEnvelope is the wire shape of the stored file.
type contentEnvelope struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type writeRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type writeResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (c *Client) contentURL() string {
	return c.baseURL + "/repos/" + c.repo + "/contents/" + c.path
}

// Fetch retrieves the current document together with its version token.
// A missing file is reported with an empty token and the default document.
func (c *Client) Fetch(ctx context.Context) (core.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentURL(), nil)
	if err != nil {
		return core.Document{}, "", fmt.Errorf("build fetch request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Document{}, "", fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	month := int(time.Now().Month())
	switch {
	case resp.StatusCode == http.StatusNotFound:
		slog.WarnContext(ctx, "Remote document missing, using defaults", "path", c.path)
		return core.DefaultDocument(month), "", nil
	case resp.StatusCode != http.StatusOK:
		return core.Document{}, "", fmt.Errorf("fetch document: unexpected status %d", resp.StatusCode)
	}

	var env contentEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return core.Document{}, "", fmt.Errorf("decode content envelope: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(env.Content, "\n", ""))
	if err != nil {
		slog.WarnContext(ctx, "Remote document not base64, using defaults", "path", c.path, "error", err)
		return core.DefaultDocument(month), env.SHA, nil
	}

	var doc core.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.WarnContext(ctx, "Remote document not valid JSON, using defaults", "path", c.path, "error", err)
		return core.DefaultDocument(month), env.SHA, nil
	}
	doc.Normalize(month)
	return doc, env.SHA, nil
}

// Load implements store.Loader. Decode failures degrade to the default
// document so the caller stays usable.
func (c *Client) Load(ctx context.Context) (core.Document, error) {
	doc, _, err := c.Fetch(ctx)
	return doc, err
}

// CompareAndSwap writes the document tagged with the expected version token.
// A stale token yields store.ErrConflict; the new token is returned on
// success. An empty expected token creates the file.
func (c *Client) CompareAndSwap(ctx context.Context, expectedToken string, doc core.Document) (string, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	body, err := json.Marshal(writeRequest{
		Message: "Update inventory",
		Content: base64.StdEncoding.EncodeToString(raw),
		SHA:     expectedToken,
	})
	if err != nil {
		return "", fmt.Errorf("encode write request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentURL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build write request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusConflict, http.StatusUnprocessableEntity:
		io.Copy(io.Discard, resp.Body)
		return "", store.ErrConflict
	default:
		return "", fmt.Errorf("write document: unexpected status %d", resp.StatusCode)
	}

	var wr writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", fmt.Errorf("decode write response: %w", err)
	}
	return wr.Content.SHA, nil
}

// Save implements store.Saver: re-fetch the current version token, then
// compare-and-swap, reloading and retrying on conflict. After the attempts
// are exhausted the conflict is surfaced to the caller.
func (c *Client) Save(ctx context.Context, doc core.Document) error {
	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		_, token, err := c.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("refresh version token: %w", err)
		}

		newToken, err := c.CompareAndSwap(ctx, token, doc)
		if err == nil {
			slog.DebugContext(ctx, "Document saved", "path", c.path, "token", newToken, "attempt", attempt)
			return nil
		}
		lastErr = err
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		slog.WarnContext(ctx, "Version conflict on save, retrying", "path", c.path, "attempt", attempt)
	}
	return fmt.Errorf("save document after %d attempts: %w", maxSaveAttempts, lastErr)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}
