package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vsplit/vsplit/internal/entity"
)

// Tesseract parameters tuned for receipt photographs: single uniform text
// block, LSTM+legacy engine, and a whitelist matching characters that
// actually occur on Indian restaurant bills.
const (
	defaultPSM       = 6
	defaultOEM       = 2
	defaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz ₹.,()-+/"
)

// DefaultTimeout bounds one recognition run. On expiry the external worker
// process is killed and a timeout error is surfaced.
const DefaultTimeout = 45 * time.Second

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	CharWhitelist string
	PSM           int
	OEM           int

	EnableTSVConfidence bool
	Timeout             time.Duration
	TempDir             string // scratch dir for uploaded images; "" = os.TempDir
}

// ProgressFunc receives recognition progress in [0,1].
type ProgressFunc func(fraction float64)

// Recognizer converts a receipt image to raw text plus a 0..100 confidence
// score using an external tesseract worker. The worker process and its
// scratch file are released on every exit path.
type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.CharWhitelist == "" {
		cfg.CharWhitelist = defaultWhitelist
	}
	if cfg.PSM <= 0 {
		cfg.PSM = defaultPSM
	}
	if cfg.OEM <= 0 {
		cfg.OEM = defaultOEM
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Recognizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs OCR over raw image bytes. Progress callbacks are coarse
// stage markers; the final value is always 1.0 on success. Cancelling ctx
// (or hitting the configured timeout) kills the worker process.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, ext string, progress ProgressFunc) (entity.RawOCRResult, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	tmp, err := os.CreateTemp(r.cfg.TempDir, "receipt-*."+ext)
	if err != nil {
		return entity.RawOCRResult{}, fmt.Errorf("scratch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return entity.RawOCRResult{}, fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return entity.RawOCRResult{}, fmt.Errorf("close scratch file: %w", err)
	}
	progress(0.15)

	txt, err := r.tesseractOCR(ctx, tmp.Name())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return entity.RawOCRResult{}, fmt.Errorf("ocr timed out after %s: %w", r.cfg.Timeout, ctx.Err())
		}
		return entity.RawOCRResult{}, err
	}
	txt = Normalize(txt)
	progress(0.85)

	// Blend TSV word confidence with the receipt-artifact heuristic,
	// weighting the engine's own estimate higher when available.
	var conf float64
	heur := heuristicConfidence(txt)
	if r.cfg.EnableTSVConfidence {
		if tsv, err2 := r.tesseractTSVConfidence(ctx, tmp.Name()); err2 == nil && tsv > 0 {
			conf = 0.7*tsv + 0.3*heur
		} else {
			conf = heur
		}
	} else {
		conf = heur
	}
	if conf > 100 {
		conf = 100
	}
	progress(1.0)

	r.logger.Info("ocr.ok",
		"bytes_in", len(image),
		"text_bytes", len(txt),
		"confidence", conf,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.RawOCRResult{Text: txt, Confidence: conf}, nil
}

func (r *Recognizer) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang,
		"--psm", strconv.Itoa(r.cfg.PSM),
		"--oem", strconv.Itoa(r.cfg.OEM),
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	if r.cfg.CharWhitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+r.cfg.CharWhitelist)
	}
	args = append(args, "-c", "preserve_interword_spaces=1")
	return args
}

func (r *Recognizer) tesseractOCR(ctx context.Context, path string) (string, error) {
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, r.baseArgs(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns the mean
// word confidence in 0..100.
func (r *Recognizer) tesseractTSVConfidence(ctx context.Context, path string) (float64, error) {
	args := append(r.baseArgs(path), "tsv")
	out, _, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// conf column is the last; the header line includes "conf"
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[len(cols)-1]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}
