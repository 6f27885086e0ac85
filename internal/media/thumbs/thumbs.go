// Package thumbs derives thumbnails for uploaded comic pages in the
// background, after the upload response has already been sent.
package thumbs

import (
	"context"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Job describes one thumbnail to derive. The caller resolves all paths and
// the public URL up front so workers touch no configuration.
type Job struct {
	ComicID        string
	StoredFilename string
	SourcePath     string
	ThumbPath      string
	ThumbURL       string
}

// Recorder persists the derived thumbnail back onto the comic's file entry.
type Recorder interface {
	SetFileThumbnail(ctx context.Context, comicID, storedFilename, thumbURL string, width, height int) error
}

// Config controls the deriver pool.
type Config struct {
	// MaxDimension is the bounding box a thumbnail must fit in.
	MaxDimension int
	// Workers is the number of goroutines deriving thumbnails.
	Workers int
	// QueueSize bounds the pending job channel. A full queue drops new
	// jobs rather than blocking the upload path.
	QueueSize int
}

func (c Config) withDefaults() Config {
	if c.MaxDimension <= 0 {
		c.MaxDimension = 320
	}
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	return c
}

// Deriver runs a bounded worker pool that decodes, shrinks, and stores
// thumbnails, then records the result. Failures are logged and swallowed:
// a comic without a thumbnail is valid and the source dimensions stay
// unknown until a derivation succeeds.
type Deriver struct {
	cfg      Config
	recorder Recorder
	logger   *slog.Logger

	jobs      chan Job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDeriver creates a deriver. Call Start before enqueueing work and Close
// on shutdown to drain the queue.
func NewDeriver(cfg Config, recorder Recorder, logger *slog.Logger) *Deriver {
	cfg = cfg.withDefaults()
	return &Deriver{
		cfg:      cfg,
		recorder: recorder,
		logger:   logger,
		jobs:     make(chan Job, cfg.QueueSize),
	}
}

// Start launches the worker goroutines.
func (d *Deriver) Start() {
	for range d.cfg.Workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				d.process(job)
			}
		}()
	}
}

// Enqueue submits a job without blocking. It reports false when the queue is
// full and the job was dropped; the comic simply keeps no thumbnail for that
// file.
func (d *Deriver) Enqueue(job Job) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		d.logger.Warn("thumbnail queue full, dropping job",
			"comic_id", job.ComicID,
			"file", job.StoredFilename)
		return false
	}
}

// Close stops accepting jobs and waits for in-flight derivations to finish.
func (d *Deriver) Close() {
	d.closeOnce.Do(func() {
		close(d.jobs)
	})
	d.wg.Wait()
}

func (d *Deriver) process(job Job) {
	width, height, err := d.derive(job)
	if err != nil {
		d.logger.Warn("thumbnail derivation failed",
			"comic_id", job.ComicID,
			"file", job.StoredFilename,
			"error", err)
		return
	}

	err = d.recorder.SetFileThumbnail(context.Background(), job.ComicID, job.StoredFilename, job.ThumbURL, width, height)
	if err != nil {
		// The comic may have been deleted while the job was queued.
		d.logger.Warn("failed to record thumbnail",
			"comic_id", job.ComicID,
			"file", job.StoredFilename,
			"error", err)
		return
	}

	d.logger.Debug("thumbnail derived",
		"comic_id", job.ComicID,
		"file", job.StoredFilename,
		"width", width,
		"height", height)
}

// derive reads the source, shrinks it, and writes the thumbnail file. It
// returns the source image dimensions.
func (d *Deriver) derive(job Job) (int, int, error) {
	src, err := os.Open(job.SourcePath)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	img, _, err := image.Decode(src)
	if err != nil {
		return 0, 0, err
	}

	bounds := img.Bounds()
	thumb := resize(img, d.cfg.MaxDimension)

	out, err := os.Create(job.ThumbPath)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	if err := encode(out, thumb, filepath.Ext(job.ThumbPath)); err != nil {
		os.Remove(job.ThumbPath)
		return 0, 0, err
	}

	return bounds.Dx(), bounds.Dy(), nil
}
