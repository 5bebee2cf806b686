package ingest

import (
	"context"
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/hashicorp/go-hclog"
)

// SourceKind distinguishes raw text sources from binary or page-image
// sources that need a text-extraction step.
type SourceKind string

const (
	KindText   SourceKind = "text"
	KindBinary SourceKind = "binary"
)

// TextExtractor runs primary text-layer extraction over binary source
// bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, raw []byte) (string, error)
}

// OCREngine recognizes text from binary source bytes over at most
// pageLimit leading pages. OCR is the dominant latency source, seconds
// per page, which is why the page range is bounded.
type OCREngine interface {
	Recognize(ctx context.Context, raw []byte, pageLimit int) (string, error)
}

// ExtractorConfig configures the extraction step.
type ExtractorConfig struct {
	// Primary is the text-layer extractor for binary sources. Nil
	// degrades binary sources to OCR only.
	Primary TextExtractor

	// OCR is the fallback engine. Nil degrades OCR to an empty string
	// rather than an error.
	OCR OCREngine

	// Floor is the character count below which a primary yield
	// triggers OCR fallback (default 100).
	Floor int

	// OCRPageLimit bounds the leading page range OCR may scan
	// (default 10).
	OCRPageLimit int

	Logger hclog.Logger
}

// Extractor turns raw source bytes into normalized text. Text sources
// pass through unchanged apart from normalization; binary sources get
// primary extraction with bounded OCR fallback, keeping whichever yield
// is longer.
type Extractor struct {
	primary      TextExtractor
	ocr          OCREngine
	floor        int
	ocrPageLimit int
	logger       hclog.Logger
}

// NewExtractor creates an extractor from cfg.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Floor == 0 {
		cfg.Floor = 100
	}
	if cfg.OCRPageLimit == 0 {
		cfg.OCRPageLimit = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}
	return &Extractor{
		primary:      cfg.Primary,
		ocr:          cfg.OCR,
		floor:        cfg.Floor,
		ocrPageLimit: cfg.OCRPageLimit,
		logger:       cfg.Logger.Named("extractor"),
	}
}

// Extract produces the document text for raw source bytes. Extraction
// anomalies degrade to shorter or empty text rather than failing; the
// only returned errors are context cancellations.
func (e *Extractor) Extract(ctx context.Context, raw []byte, kind SourceKind) (string, error) {
	if kind == KindText {
		return Normalize(string(raw)), nil
	}

	primary := ""
	if e.primary != nil {
		text, err := e.primary.ExtractText(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			e.logger.Warn("primary text extraction failed", "error", err)
		} else {
			primary = text
		}
	}

	if len(primary) >= e.floor {
		return Normalize(primary), nil
	}

	ocr, err := e.runOCR(ctx, raw)
	if err != nil {
		return "", err
	}

	// Keep whichever of the two yields more text.
	if len(ocr) > len(primary) {
		e.logger.Debug("ocr fallback selected",
			"primary_chars", len(primary), "ocr_chars", len(ocr))
		return Normalize(ocr), nil
	}
	return Normalize(primary), nil
}

// runOCR runs the bounded OCR fallback. A missing engine is silent
// degradation to an empty string, not an error.
func (e *Extractor) runOCR(ctx context.Context, raw []byte) (string, error) {
	if e.ocr == nil {
		return "", nil
	}
	text, err := e.ocr.Recognize(ctx, raw, e.ocrPageLimit)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		e.logger.Warn("ocr recognition failed", "error", err)
		return "", nil
	}
	return text, nil
}

// Normalize cleans extracted text: line endings are unified, control
// noise and emoji artifacts from OCR are stripped, and trailing
// per-line whitespace is removed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = gomoji.RemoveEmojis(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 0x20 {
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return strings.Join(lines, "\n")
}
