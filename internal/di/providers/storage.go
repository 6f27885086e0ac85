package providers

import (
	"github.com/samber/do/v2"

	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/logger"
	"github.com/panelverse/panelverse-server/internal/store"
	"github.com/panelverse/panelverse-server/internal/upload"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Storage.DataDir, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Storage.DataDir)

	return &StoreHandle{Store: db}, nil
}

// ProvideUploadPolicy provides the per-file upload rules.
func ProvideUploadPolicy(i do.Injector) (upload.Policy, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	policy := upload.NewPolicy(cfg.Upload.AllowedExtensions, cfg.Upload.MaxFileSize)

	log.Info("Upload policy configured",
		"max_file_size", policy.MaxSize(),
		"allowed_extensions", cfg.Upload.AllowedExtensions)

	return policy, nil
}

// ProvideUploadWriter provides the durable upload file writer.
func ProvideUploadWriter(i do.Injector) (*upload.Writer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	writer, err := upload.NewWriter(cfg.Storage.UploadDir, cfg.Storage.PublicPath)
	if err != nil {
		return nil, err
	}

	log.Info("Upload storage ready",
		"dir", cfg.Storage.UploadDir,
		"public_path", cfg.Storage.PublicPath)

	return writer, nil
}
