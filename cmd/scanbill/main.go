package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/ocr"
	"github.com/vsplit/vsplit/internal/parser"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)
	_ = godotenv.Load()

	textPath := flag.String("text", "", "parse a raw OCR text file instead of running tesseract")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var (
		text       string
		confidence float64
	)
	switch {
	case *textPath != "":
		raw, err := os.ReadFile(*textPath)
		if err != nil {
			logger.Error("read text file", "path", *textPath, "error", err)
			os.Exit(1)
		}
		text = string(raw)
		confidence = 100
	case flag.NArg() == 1:
		imagePath := flag.Arg(0)
		ext := constants.NormalizeExt(filepath.Ext(imagePath))
		if !constants.IsAllowedImage(ext) {
			logger.Error("unsupported image format", "path", imagePath)
			os.Exit(2)
		}
		image, err := os.ReadFile(imagePath)
		if err != nil {
			logger.Error("read image", "path", imagePath, "error", err)
			os.Exit(1)
		}

		cfg := common.LoadConfig()
		recognizer := ocr.NewRecognizer(ocr.Config{
			Tesseract:           cfg.OCR.Tesseract,
			TesseractLang:       cfg.OCR.TesseractLang,
			TessdataDir:         cfg.OCR.TessdataDir,
			Timeout:             cfg.OCR.Timeout,
			EnableTSVConfidence: cfg.OCR.TSVConfidence,
		}, logger)

		start := time.Now()
		res, err := recognizer.Recognize(ctx, image, ext, func(f float64) {
			fmt.Fprintf(os.Stderr, "ocr %3.0f%%\n", f*100)
		})
		if err != nil {
			logger.Error("ocr failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			os.Exit(1)
		}
		text = res.Text
		confidence = res.Confidence
	default:
		fmt.Fprintln(os.Stderr, "usage: scanbill <image> | scanbill -text <ocr.txt>")
		os.Exit(2)
	}

	bill := parser.New(logger).Parse(text, confidence)
	if bill == nil {
		failure := parser.ExplainFailure(text, confidence)
		logger.Error("no bill could be parsed", "failure", string(failure))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bill); err != nil {
		logger.Error("encode bill", "error", err)
		os.Exit(1)
	}
}
