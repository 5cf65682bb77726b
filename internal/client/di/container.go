// Package di wires the workspace client's services with samber/do.
package di

import (
	"github.com/samber/do/v2"

	"prompthub/internal/client/api"
	"prompthub/internal/config"
)

// NewContainer registers every client provider. configPath is the YAML file
// read by the config provider.
func NewContainer(configPath string) *do.RootScope {
	injector := do.New()

	do.Provide(injector, func(do.Injector) (*config.ClientConfig, error) {
		return config.LoadClient(configPath)
	})
	do.Provide(injector, ProvideLogger)

	// Local persistence
	do.Provide(injector, ProvideLocalStore)
	do.Provide(injector, ProvideDraftStore)

	// Remote
	do.Provide(injector, ProvideAPIClient)
	do.Provide(injector, ProvideAuthClient)

	// Session
	do.Provide(injector, ProvideWorkspace)

	return injector
}

// Bootstrap builds every service so configuration and storage errors surface
// before the session starts.
func Bootstrap(injector *do.RootScope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverError(r)
		}
	}()
	_ = do.MustInvoke[*config.ClientConfig](injector)
	_ = do.MustInvoke[*Logger](injector)
	_ = do.MustInvoke[*LocalStoreHandle](injector)
	_ = do.MustInvoke[*DraftStoreHandle](injector)
	_ = do.MustInvoke[*api.Client](injector)
	_ = do.MustInvoke[*api.AuthClient](injector)
	_ = do.MustInvoke[*WorkspaceHandle](injector)
	return nil
}
