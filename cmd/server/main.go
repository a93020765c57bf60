package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/kestrelworks/director/internal/archive"
	"github.com/kestrelworks/director/internal/config"
	"github.com/kestrelworks/director/internal/director"
	"github.com/kestrelworks/director/internal/director/output"
	"github.com/kestrelworks/director/internal/ingest"
	"github.com/kestrelworks/director/internal/mcp"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// pollInterval is how often the daemon checks snapshot.json for a new tick.
// The upstream simulator writes a tick's three files as a batch, so there is
// no benefit to polling faster than a human-imperceptible cadence.
const pollInterval = 200 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.MCP.Transport == "stdio" {
		logWriter = os.Stderr
	}
	if logPath := os.Getenv("DIRECTOR_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Runtime.LogLevel),
	}))

	directorCfg, err := director.Load(cfg.Runtime.DirectorConfigPath)
	if err != nil {
		logger.Error("failed to load director config", "error", err)
		os.Exit(1)
	}
	coreDirector, err := director.New(directorCfg, logger)
	if err != nil {
		logger.Error("invalid director config", "error", err)
		os.Exit(1)
	}
	guarded := newGuardedDirector(coreDirector)

	if err := ensureDBDir(cfg.Runtime.DBPath); err != nil {
		logger.Error("failed to prepare archive database path", "error", err)
		os.Exit(1)
	}
	db, err := archive.Open(cfg.Runtime.DBPath)
	if err != nil {
		logger.Error("failed to open archive database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run archive migrations", "error", err)
		os.Exit(1)
	}
	store := archive.NewSQLiteStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runID, err := store.StartRun(ctx, 0)
	if err != nil {
		logger.Error("failed to start archive run", "error", err)
		os.Exit(1)
	}
	logger.Info("archive run started", "run_id", runID)

	streamPath := filepath.Join(cfg.Runtime.OutputDir, "full_output.jsonl")
	writer, err := output.NewStreamWriter(streamPath)
	if err != nil {
		logger.Error("failed to open output stream", "error", err)
		os.Exit(1)
	}
	defer writer.Close()

	loop := &ingestLoop{
		director:  guarded,
		writer:    writer,
		store:     store,
		runID:     runID,
		logger:    logger,
		events:    ingest.NewEventTailer(filepath.Join(cfg.Input.Dir, "events.jsonl"), logger),
		tensions:  ingest.NewTensionsWatcher(filepath.Join(cfg.Input.Dir, "tensions.json")),
		snapshots: ingest.NewSnapshotWatcher(filepath.Join(cfg.Input.Dir, "snapshot.json")),
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.run(ctx)
	}()

	if cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(mcp.Config{
			Director: guarded,
			Archive:  store,
			RunID:    runID,
			Logger:   logger,
		})

		if cfg.MCP.Transport == "stdio" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runStdioMode(ctx, logger, mcpServer)
			}()
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runHTTPMode(ctx, logger, mcpServer, cfg.MCP.Host, cfg.MCP.Port)
			}()
		}
	}

	<-stop
	logger.Info("shutting down")
	cancel()
	wg.Wait()
}

// ingestLoop polls the run directory for new ticks and drives the Director
// pipeline, writing every tick's output to both the streaming writer and the
// archive.
type ingestLoop struct {
	director  *guardedDirector
	writer    *output.Writer
	store     archive.Store
	runID     string
	logger    *slog.Logger
	events    *ingest.EventTailer
	tensions  *ingest.TensionsWatcher
	snapshots *ingest.SnapshotWatcher
}

func (l *ingestLoop) run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *ingestLoop) tick(ctx context.Context) {
	snapshot, changed, err := l.snapshots.Poll()
	if err != nil {
		l.logger.Error("snapshot poll failed", "error", err)
		return
	}
	if !changed {
		return
	}

	events, err := l.events.Poll()
	if err != nil {
		l.logger.Error("event tail failed", "error", err)
	}
	tensions, err := l.tensions.Poll()
	if err != nil {
		l.logger.Error("tension poll failed", "error", err)
	}

	out, err := l.director.ProcessTick(events, tensions, snapshot)
	if err != nil {
		l.logger.Error("process tick failed", "tick", snapshot.Timestamp.Tick, "error", err)
		return
	}

	if err := l.writer.WriteTick(out); err != nil {
		l.logger.Error("output write failed", "tick", out.GeneratedAtTick, "error", err)
	}
	if err := l.writer.Flush(); err != nil {
		l.logger.Error("output flush failed", "tick", out.GeneratedAtTick, "error", err)
	}
	if err := l.store.RecordTick(ctx, l.runID, out); err != nil {
		l.logger.Error("archive record failed", "tick", out.GeneratedAtTick, "error", err)
	}
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting mcp stdio transport")

	transport := &sdkmcp.StdioTransport{}
	if err := mcpServer.Run(ctx, transport); err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
	}
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server, host string, port int) {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("mcp http shutdown error", "error", err)
		}
	}()

	logger.Info("mcp server listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("mcp server error", "error", err)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFileWriter struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newLogFileWriter(path string) (*logFileWriter, *os.File, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	writer := &logFileWriter{path: path, file: file}
	if err := writer.truncateIfNeeded(); err != nil {
		return nil, nil, err
	}
	return writer, file, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (w *logFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	if err := w.truncateIfNeeded(); err != nil {
		return n, err
	}
	return n, nil
}

func (w *logFileWriter) truncateIfNeeded() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= maxLogSizeBytes {
		return nil
	}
	if size <= keepLogSizeBytes {
		return nil
	}

	buf := make([]byte, keepLogSizeBytes)
	if _, err := w.file.Seek(size-keepLogSizeBytes, io.SeekStart); err != nil {
		return err
	}
	n, err := w.file.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(buf); err != nil {
		return err
	}
	_, err = w.file.Seek(0, io.SeekEnd)
	return err
}
