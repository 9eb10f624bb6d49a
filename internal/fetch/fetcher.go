// Package fetch downloads remote résumés and reduces them to plain text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// Fetch outcomes, used as the metrics label.
const (
	ResultOK          = "ok"
	ResultEmpty       = "empty"
	ResultStatus      = "http_error"
	ResultTransport   = "transport_error"
	ResultUnsupported = "unsupported"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultMaxBytes = 20 << 20
)

type kind int

const (
	kindUnsupported kind = iota
	kindText
	kindHTML
	kindBinary
)

// Config holds fetcher settings.
type Config struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// Fetcher resolves, downloads and extracts résumé text.
type Fetcher struct {
	client    *http.Client
	extractor textExtractor
	maxBytes  int64
	userAgent string
	logger    *zap.Logger
}

// New creates a Fetcher.
func New(cfg Config, extractor textExtractor, logger *zap.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		extractor: extractor,
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// WithHTTPClient replaces the HTTP client.
func (f *Fetcher) WithHTTPClient(c *http.Client) *Fetcher {
	f.client = c
	return f
}

// FetchResumeText returns the text behind url, or "" on any failure.
// Failures are logged and counted, never returned.
func (f *Fetcher) FetchResumeText(ctx context.Context, url string) string {
	if strings.TrimSpace(url) == "" {
		return ""
	}

	text, err := f.Fetch(ctx, url)
	switch {
	case err == nil && text != "":
		metrics.FetchTotal.WithLabelValues(ResultOK).Inc()
		return text
	case err == nil:
		metrics.FetchTotal.WithLabelValues(ResultEmpty).Inc()
		f.logger.Info("résumé produced no text", zap.String("url", url))
	default:
		metrics.FetchTotal.WithLabelValues(resultLabel(err)).Inc()
		f.logger.Warn("résumé fetch failed", zap.String("url", url), zap.Error(err))
	}
	return ""
}

// Fetch downloads url (after RewriteForDownload) and extracts its text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	target := RewriteForDownload(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	contentType := resp.Header.Get("Content-Type")
	body := io.LimitReader(resp.Body, f.maxBytes)

	switch classify(contentType) {
	case kindHTML:
		return htmlText(body), nil
	case kindText:
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return strings.TrimSpace(strings.ToValidUTF8(strings.TrimPrefix(string(data), "\ufeff"), "")), nil
	case kindBinary:
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return f.extractor.Extract(data, contentType), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// classify buckets a Content-Type header. A missing header is treated as
// application/octet-stream.
func classify(contentType string) kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return kindBinary
	}
	switch {
	case strings.Contains(ct, "html"):
		return kindHTML
	case strings.HasPrefix(ct, "text/"),
		strings.Contains(ct, "json"),
		strings.Contains(ct, "csv"),
		strings.Contains(ct, "xml") && !strings.Contains(ct, "officedocument"):
		return kindText
	case strings.Contains(ct, "pdf"),
		strings.Contains(ct, "officedocument"),
		strings.Contains(ct, "msword"),
		strings.Contains(ct, "opendocument"),
		strings.Contains(ct, "octet-stream"),
		strings.Contains(ct, "zip"):
		return kindBinary
	}
	return kindUnsupported
}

func resultLabel(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return ResultStatus
	case errors.Is(err, ErrUnsupportedContentType):
		return ResultUnsupported
	default:
		return ResultTransport
	}
}
