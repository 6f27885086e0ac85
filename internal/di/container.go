// Package di provides dependency injection configuration for the panelverse server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/panelverse/panelverse-server/internal/config"
	"github.com/panelverse/panelverse-server/internal/di/providers"
	"github.com/panelverse/panelverse-server/internal/logger"
	"github.com/panelverse/panelverse-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideUploadPolicy)
	do.Provide(injector, providers.ProvideUploadWriter)

	// Media workers
	do.Provide(injector, providers.ProvideThumbDeriver)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenVerifier)

	// Business services
	do.Provide(injector, providers.ProvideCatalog)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.DeriverHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.Catalog](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
