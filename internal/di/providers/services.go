package providers

import (
	"github.com/samber/do/v2"

	"github.com/panelverse/panelverse-server/internal/auth"
	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/logger"
	"github.com/panelverse/panelverse-server/internal/service"
	"github.com/panelverse/panelverse-server/internal/upload"
)

// ProvideTokenVerifier provides the bearer-token verifier.
func ProvideTokenVerifier(i do.Injector) (*auth.JWTVerifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewJWTVerifier(cfg.Auth.TokenSecret)
}

// ProvideCatalog provides the catalog service.
func ProvideCatalog(i do.Injector) (*service.Catalog, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	policy := do.MustInvoke[upload.Policy](i)
	writer := do.MustInvoke[*upload.Writer](i)
	deriverHandle := do.MustInvoke[*DeriverHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalog(storeHandle.Store, policy, writer, deriverHandle.Deriver, log.Logger), nil
}
