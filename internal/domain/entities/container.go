package entities

import (
	"go.uber.org/dig"
)

// SettingsFactory returns a fresh Settings for one invocation.
type SettingsFactory func() *Settings

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Settings are built per invocation by the controllers, so only the
	// defaults factory is shared
	return container.Provide(func() SettingsFactory { return DefaultSettings })
}
