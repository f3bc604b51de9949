// Package pipeline coordinates the two scan stages: OCR on the uploaded
// image, then structured parsing of the recognized text.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/ocr"
	"github.com/vsplit/vsplit/internal/parser"
)

// Processor coordinates OCR (text extract) then bill parse.
type Processor struct {
	Logger *slog.Logger
	OCR    *ocr.Recognizer
	Parser *parser.Parser
}

func NewProcessor(logger *slog.Logger, recognizer *ocr.Recognizer, p *parser.Parser) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, OCR: recognizer, Parser: p}
}

// ProcessImage runs OCR over the uploaded image and parses the text into a
// bill. The raw OCR result is returned alongside so callers can report the
// failure class when parsing produces nothing.
func (p *Processor) ProcessImage(ctx context.Context, image []byte, ext string, progress ocr.ProgressFunc) (*entity.Bill, entity.RawOCRResult, error) {
	logger := p.Logger
	if sid := common.SessionIDFromContext(ctx); sid != "" {
		logger = logger.With("session_id", sid)
	}

	raw, err := p.OCR.Recognize(ctx, image, ext, progress)
	if err != nil {
		logger.Error("processor.ocr.failed", "err", err)
		return nil, raw, err
	}
	logger.Info("processor.ocr.ok",
		"text_bytes", len(raw.Text),
		"confidence", raw.Confidence,
	)

	bill := p.Parser.Parse(raw.Text, raw.Confidence)
	if bill == nil {
		failure := parser.ExplainFailure(raw.Text, raw.Confidence)
		logger.Warn("processor.parse.failed", "failure", string(failure))
		return nil, raw, common.NewAppError(string(failure), failureMessage(failure), common.ErrUnprocessable)
	}
	logger.Info("processor.parse.ok", "items", len(bill.Items), "total", bill.Total)
	return bill, raw, nil
}

func failureMessage(f constants.ParseFailure) string {
	switch f {
	case constants.FailureEmptyText:
		return "no text could be read from the image"
	case constants.FailureLowConfidence:
		return "the image is too blurry or dark to read reliably"
	default:
		return "no bill items could be recognized in the text"
	}
}
