package gopack

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// Emitter writes rendered chunks through the file system.
//
// Writes are not atomic as a set: when a write fails, the remaining chunks
// are skipped and files written before the failure stay on disk.
type Emitter struct {
	fs       afero.Fs
	logger   *slog.Logger
	progress func(ProgressEvent)
}

// NewEmitter creates an emitter writing to fs. A nil logger disables logging.
func NewEmitter(fs afero.Fs, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Emitter{fs: fs, logger: logger}
}

// Emit ensures outputDir exists and writes each chunk to its file, in order.
// It returns the size in bytes of every written file.
func (e *Emitter) Emit(ctx context.Context, outputDir string, chunks []*Chunk) (map[string]int, error) {
	if err := e.fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: outputDir, Err: err}
	}

	sizes := make(map[string]int, len(chunks))
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(outputDir, chunk.File)
		if err := afero.WriteFile(e.fs, path, []byte(chunk.Source), 0o644); err != nil {
			return nil, &IOError{Op: "write", Path: path, Err: err}
		}
		sizes[chunk.File] = len(chunk.Source)
		e.logger.Info("asset written", "file", path, "bytes", len(chunk.Source))
		if e.progress != nil {
			e.progress(ProgressEvent{Type: ProgressAssetWritten, Entry: chunk.Name.String(), File: chunk.File})
		}
	}
	return sizes, nil
}

// Emit runs the emit hooks and writes the sealed chunks to outputDir.
func (c *Compilation) Emit(ctx context.Context, outputDir string) (map[string]int, error) {
	if !c.Sealed() || c.Chunks() == nil {
		return nil, fmt.Errorf("emit: compilation is not sealed")
	}
	c.cfg.hooks.callEmit(c)

	em := NewEmitter(c.cfg.fs, c.cfg.log())
	em.progress = c.cfg.onProgress
	return em.Emit(ctx, outputDir, c.Chunks())
}
