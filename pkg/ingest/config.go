package ingest

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/acervo-legal/acervo/pkg/parser"
)

// FileConfig is the on-disk ingestion configuration in HCL.
type FileConfig struct {
	Ingest *IngestBlock `hcl:"ingest,block"`
	Parser *ParserBlock `hcl:"parser,block"`
}

// IngestBlock tunes acquisition, extraction, and retry behavior.
type IngestBlock struct {
	CacheDir          string `hcl:"cache_dir,optional"`
	AcquireRetries    int    `hcl:"acquire_retries,optional"`
	UnitRetries       int    `hcl:"unit_retries,optional"`
	ExtractionFloor   int    `hcl:"extraction_floor,optional"`
	OCRPageLimit      int    `hcl:"ocr_page_limit,optional"`
	MinRequestDelayMS int    `hcl:"min_request_delay_ms,optional"`
	Workers           int    `hcl:"workers,optional"`
}

// ParserBlock tunes article segmentation.
type ParserBlock struct {
	ShortBodyLength     int `hcl:"short_body_length,optional"`
	DerogationMaxLength int `hcl:"derogation_max_length,optional"`
}

// LoadConfig loads an HCL configuration file.
func LoadConfig(filename string) (*FileConfig, error) {
	if filename == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", filename)
	}

	var cfg FileConfig
	if err := hclsimple.DecodeFile(filename, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	return &cfg, nil
}

// DecodeConfig decodes HCL configuration from bytes. The filename only
// selects the syntax and appears in diagnostics.
func DecodeConfig(filename string, src []byte) (*FileConfig, error) {
	var cfg FileConfig
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}

// MinRequestDelay returns the configured advisory delay.
func (b *IngestBlock) MinRequestDelay() time.Duration {
	return time.Duration(b.MinRequestDelayMS) * time.Millisecond
}

// ExtractorConfig converts the block into extractor settings.
func (b *IngestBlock) ExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Floor:        b.ExtractionFloor,
		OCRPageLimit: b.OCRPageLimit,
	}
}

// ParserConfig converts the block into parser settings.
func (b *ParserBlock) ParserConfig() parser.Config {
	cfg := parser.DefaultConfig()
	if b.ShortBodyLength > 0 {
		cfg.Segmenter.ShortBodyLength = b.ShortBodyLength
	}
	if b.DerogationMaxLength > 0 {
		cfg.Segmenter.DerogationMaxLength = b.DerogationMaxLength
	}
	return cfg
}
