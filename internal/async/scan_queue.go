package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
	"github.com/vsplit/vsplit/internal/ocr"
)

// Scanner turns an uploaded image into a bill. Satisfied by the pipeline
// processor; narrowed to an interface so queue tests can stub it.
type Scanner interface {
	ProcessImage(ctx context.Context, image []byte, ext string, progress ocr.ProgressFunc) (*entity.Bill, entity.RawOCRResult, error)
}

// SessionUpdater attaches a scanned bill to its session. Satisfied by the
// session service.
type SessionUpdater interface {
	AttachBill(ctx context.Context, sessionID string, bill *entity.Bill) error
}

// ScanQueue runs receipt scans off the request path with latest-wins
// semantics per session: re-uploading while a scan is still running cancels
// the in-flight OCR and drops any queued stale job. Only the newest photo of
// a bill matters.
type ScanQueue struct {
	proc     Scanner
	sessions SessionUpdater
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu       sync.Mutex
	closed   bool
	latest   map[string]uint64
	inflight map[string]inflightScan
	nextSeq  uint64
}

// inflightScan pairs a running scan's cancel func with the job sequence it
// belongs to, so a finishing superseded job cannot evict its replacement's
// entry.
type inflightScan struct {
	seq    uint64
	cancel context.CancelFunc
}

type Option func(*ScanQueue)

func WithWorkers(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ScanQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithScanTimeout(d time.Duration) Option {
	return func(q *ScanQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewScanQueue(proc Scanner, sessions SessionUpdater, logger *slog.Logger, opts ...Option) *ScanQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ScanQueue{
		proc:     proc,
		sessions: sessions,
		logger:   logger,
		workers:  2,
		timeout:  2 * time.Minute,
		ch:       make(chan Job, 64),
		latest:   make(map[string]uint64),
		inflight: make(map[string]inflightScan),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ScanQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("scan worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("scan worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ScanQueue) run(workerID int, job Job) {
	q.mu.Lock()
	if q.latest[job.SessionID] != job.seq {
		q.mu.Unlock()
		q.logger.Info("dropping superseded scan", "worker_id", workerID, "session_id", job.SessionID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	ctx = common.WithSessionID(ctx, job.SessionID)
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}
	q.inflight[job.SessionID] = inflightScan{seq: job.seq, cancel: cancel}
	q.mu.Unlock()

	defer func() {
		cancel()
		q.mu.Lock()
		// Only remove our own entry: a newer job may have registered since.
		if cur, ok := q.inflight[job.SessionID]; ok && cur.seq == job.seq {
			delete(q.inflight, job.SessionID)
		}
		q.mu.Unlock()
	}()

	bill, _, err := q.proc.ProcessImage(ctx, job.Image, job.Ext, nil)
	if err != nil {
		if ctx.Err() == context.Canceled {
			q.logger.Info("scan cancelled by newer upload", "worker_id", workerID, "session_id", job.SessionID)
			return
		}
		q.logger.Error("scan failed", "worker_id", workerID, "session_id", job.SessionID, "error", err)
		return
	}

	// A newer upload may have arrived while parsing ran.
	q.mu.Lock()
	stale := q.latest[job.SessionID] != job.seq
	q.mu.Unlock()
	if stale {
		q.logger.Info("discarding superseded scan result", "worker_id", workerID, "session_id", job.SessionID)
		return
	}

	if err := q.sessions.AttachBill(context.Background(), job.SessionID, bill); err != nil {
		q.logger.Error("attach bill failed", "worker_id", workerID, "session_id", job.SessionID, "error", err)
		return
	}
	q.logger.Info("scan processed", "worker_id", workerID, "session_id", job.SessionID, "items", len(bill.Items))
}

// Enqueue submits a scan, cancelling any in-flight scan for the same session.
func (q *ScanQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "session_id", job.SessionID)
		return nil
	}
	q.nextSeq++
	job.seq = q.nextSeq
	q.latest[job.SessionID] = job.seq
	if cur, ok := q.inflight[job.SessionID]; ok {
		cur.cancel()
		delete(q.inflight, job.SessionID)
	}
	q.mu.Unlock()

	select {
	case q.ch <- job:
		q.logger.Info("queued scan", "session_id", job.SessionID, "bytes", len(job.Image))
	default:
		q.logger.Warn("queue full, applying backpressure", "session_id", job.SessionID)
		q.ch <- job
	}
	return nil
}

func (q *ScanQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	for id, cur := range q.inflight {
		cur.cancel()
		delete(q.inflight, id)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
