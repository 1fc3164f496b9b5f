package gopack

import (
	"context"
	"fmt"
)

// Seal freezes the graph and assembles one chunk per entry. It waits for
// entries still building, fails if any of them failed, and renders each
// chunk's runtime bundle into the compilation's assets.
func (c *Compilation) Seal(ctx context.Context) error {
	c.mu.Lock()
	if c.sealed {
		c.mu.Unlock()
		return ErrSealed
	}
	c.sealed = true
	c.mu.Unlock()

	c.inflight.Wait()

	c.mu.Lock()
	err, entries := c.err, append([]*Module(nil), c.entries...)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}

	c.cfg.hooks.callBeforeSeal(c)

	chunks := make([]*Chunk, 0, len(entries))
	assets := make(map[string]string, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := &Chunk{
			Name:    entry.Affinity,
			EntryID: entry.ID,
			File:    entry.Affinity.String() + c.cfg.extension,
			Modules: c.Closure(entry),
		}
		src, err := renderChunk(chunk, c.cfg.runtimeName)
		if err != nil {
			return fmt.Errorf("render chunk %s: %w", chunk.Name, err)
		}
		chunk.Source = src
		chunks = append(chunks, chunk)
		assets[chunk.File] = src

		c.cfg.log().Debug("chunk rendered",
			"file", chunk.File,
			"modules", len(chunk.Modules),
			"bytes", len(src))
		c.cfg.progress(ProgressEvent{Type: ProgressChunkDone, Entry: chunk.Name.String(), ModuleID: chunk.EntryID.String(), File: chunk.File})
	}

	c.mu.Lock()
	c.chunks = chunks
	c.assets = assets
	c.mu.Unlock()

	c.cfg.hooks.callAfterSeal(c)
	return nil
}
