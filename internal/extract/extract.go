// Package extract turns résumé blobs into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kailas-cloud/talentdex/internal/metrics"
)

// Strategy names, also used as the metrics label.
const (
	StrategyPDF         = "pdf"
	StrategyOffice      = "office"
	StrategyPDFFallback = "pdf_fallback"
	StrategyText        = "text"
	StrategyNone        = "none"
)

var (
	magicPDF = []byte("%PDF")
	magicZip = []byte("PK")
)

// inspection is what predicates see: sniffed format, advertised type, attempts so far.
type inspection struct {
	isPDF       bool
	isZip       bool
	contentType string
	attempted   map[string]bool
}

func (p *inspection) triedPDF() bool {
	return p.attempted[StrategyPDF]
}

// strategy is one (predicate, extractor) pair of the chain.
type strategy struct {
	name  string
	match func(p *inspection) bool
	run   func(buf []byte) (string, error)
}

// Extractor runs an ordered strategy chain. The first non-empty result wins.
type Extractor struct {
	chain  []strategy
	logger *zap.Logger
}

// New creates an Extractor with the PDF, office and plain-text strategies.
func New(logger *zap.Logger) *Extractor {
	return newExtractor(pdfText, docxText, logger)
}

func newExtractor(pdfFn, officeFn func([]byte) (string, error), logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		logger: logger,
		chain: []strategy{
			{
				name: StrategyPDF,
				match: func(p *inspection) bool {
					return p.isPDF || strings.Contains(p.contentType, "pdf")
				},
				run: pdfFn,
			},
			{
				name: StrategyOffice,
				match: func(p *inspection) bool {
					return p.isZip || isOfficeType(p.contentType)
				},
				run: officeFn,
			},
			{
				// sniffing may miss PDFs with leading garbage
				name:  StrategyPDFFallback,
				match: func(p *inspection) bool { return !p.triedPDF() },
				run:   pdfFn,
			},
			{
				name:  StrategyText,
				match: func(*inspection) bool { return true },
				run:   utf8Text,
			},
		},
	}
}

// Extract returns the text of buf, or "" when no strategy produced any.
// It never fails.
func (e *Extractor) Extract(buf []byte, contentType string) string {
	if len(buf) == 0 {
		metrics.ExtractTotal.WithLabelValues(StrategyNone).Inc()
		return ""
	}

	p := &inspection{
		isPDF:       bytes.HasPrefix(buf, magicPDF),
		isZip:       bytes.HasPrefix(buf, magicZip),
		contentType: strings.ToLower(contentType),
		attempted:   make(map[string]bool, len(e.chain)),
	}

	for _, s := range e.chain {
		if !s.match(p) {
			continue
		}
		p.attempted[s.name] = true
		if s.name == StrategyPDFFallback {
			p.attempted[StrategyPDF] = true
		}

		text, err := e.attempt(s, buf)
		if err != nil {
			e.logger.Debug("extraction strategy failed",
				zap.String("strategy", s.name),
				zap.String("content_type", contentType),
				zap.Error(err),
			)
			continue
		}
		if strings.TrimSpace(text) != "" {
			metrics.ExtractTotal.WithLabelValues(s.name).Inc()
			return strings.TrimSpace(text)
		}
	}

	metrics.ExtractTotal.WithLabelValues(StrategyNone).Inc()
	return ""
}

// attempt isolates one strategy: parser panics become errors.
func (e *Extractor) attempt(s strategy, buf []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", s.name, r)
		}
	}()
	return s.run(buf)
}

func isOfficeType(ct string) bool {
	switch {
	case strings.Contains(ct, "officedocument"),
		strings.Contains(ct, "msword"),
		strings.Contains(ct, "opendocument"),
		strings.Contains(ct, "wordprocessing"),
		strings.Contains(ct, "application/octet-stream"),
		strings.Contains(ct, "application/zip"):
		return true
	}
	return false
}

func pdfText(buf []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(out), nil
}

func docxText(buf []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		var line string
		switch it := item.(type) {
		case *docx.Paragraph:
			line = it.String()
		case *docx.Table:
			line = it.String()
		default:
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// utf8Text decodes buf as UTF-8, honoring a UTF-8 or UTF-16 BOM.
func utf8Text(buf []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, buf)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return strings.ToValidUTF8(string(out), ""), nil
}
