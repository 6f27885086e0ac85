package providers

import (
	"github.com/samber/do/v2"

	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/logger"
	"github.com/panelverse/panelverse-server/internal/media/thumbs"
)

// DeriverHandle wraps the thumbnail deriver with shutdown capability.
type DeriverHandle struct {
	*thumbs.Deriver
}

// Shutdown implements do.Shutdownable. Close drains the pending queue.
func (h *DeriverHandle) Shutdown() error {
	h.Deriver.Close()
	return nil
}

// ProvideThumbDeriver provides the background thumbnail worker pool, started.
func ProvideThumbDeriver(i do.Injector) (*DeriverHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	deriver := thumbs.NewDeriver(thumbs.Config{
		MaxDimension: cfg.Thumbs.MaxDimension,
		Workers:      cfg.Thumbs.Workers,
		QueueSize:    cfg.Thumbs.QueueSize,
	}, storeHandle.Store, log.Logger)
	deriver.Start()

	log.Info("Thumbnail deriver started",
		"workers", cfg.Thumbs.Workers,
		"queue_size", cfg.Thumbs.QueueSize,
		"max_dimension", cfg.Thumbs.MaxDimension)

	return &DeriverHandle{Deriver: deriver}, nil
}
