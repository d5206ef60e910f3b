//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// SettingsBuilder helps create test settings with a fluent interface. It
// starts from entities.DefaultSettings with try-jobs disabled.
type SettingsBuilder struct {
	*testkit.BaseBuilder
	settings entities.Settings
}

// NewSettingsBuilder creates a new settings builder with sensible defaults.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		settings:    defaultTestSettings(),
	}
}

func defaultTestSettings() entities.Settings {
	settings := *entities.DefaultSettings()
	settings.Bots = []string{}
	return settings
}

// WithDownstreamPath sets the downstream checkout.
func (b *SettingsBuilder) WithDownstreamPath(path string) *SettingsBuilder {
	b.settings.DownstreamPath = path
	return b
}

// WithUpstreamURL sets the URL temporary upstream clones are made from.
func (b *SettingsBuilder) WithUpstreamURL(url string) *SettingsBuilder {
	b.settings.UpstreamURL = url
	return b
}

// WithUpstreamCheckoutPath sets a persistent upstream checkout.
func (b *SettingsBuilder) WithUpstreamCheckoutPath(path string) *SettingsBuilder {
	b.settings.UpstreamCheckoutPath = path
	return b
}

// WithSearchDepth sets how many upstream commits are searched.
func (b *SettingsBuilder) WithSearchDepth(depth int) *SettingsBuilder {
	b.settings.SearchDepth = depth
	return b
}

// WithBots sets the try-job bots.
func (b *SettingsBuilder) WithBots(bots ...string) *SettingsBuilder {
	b.settings.Bots = append([]string{}, bots...)
	return b
}

// WithSaveBranches controls whether working branches are kept.
func (b *SettingsBuilder) WithSaveBranches(save bool) *SettingsBuilder {
	b.settings.SaveBranches = save
	return b
}

// WithSkipUpload controls whether reviews are uploaded.
func (b *SettingsBuilder) WithSkipUpload(skip bool) *SettingsBuilder {
	b.settings.SkipUpload = skip
	return b
}

// WithGit sets the git executable.
func (b *SettingsBuilder) WithGit(git string) *SettingsBuilder {
	b.settings.Git = git
	return b
}

// Build creates the settings (satisfies testkit.Builder interface).
func (b *SettingsBuilder) Build() interface{} {
	return b.BuildSettings()
}

// BuildSettings creates the settings with a concrete return type.
func (b *SettingsBuilder) BuildSettings() *entities.Settings {
	settings := b.settings
	settings.Bots = append([]string{}, b.settings.Bots...)
	return &settings
}

// Reset clears the builder state, allowing it to be reused.
func (b *SettingsBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.settings = defaultTestSettings()
	return b
}

// Clone creates a deep copy of the SettingsBuilder.
func (b *SettingsBuilder) Clone() testkit.Builder {
	settings := b.settings
	settings.Bots = append([]string{}, b.settings.Bots...)
	return &SettingsBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		settings:    settings,
	}
}
