package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// ResolveController handles the "resolve" subcommand.
type ResolveController struct {
	command  commands.Resolve
	settings entities.SettingsFactory
}

// NewResolveController creates a new ResolveController.
func NewResolveController(command commands.Resolve, settings entities.SettingsFactory) *ResolveController {
	return &ResolveController{command: command, settings: settings}
}

func (it *ResolveController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "resolve",
		Short: "Print the Skia revision and hash a roll would target",
		Long: `Resolve --revision, --git-hash or the upstream tip to a revision/hash
pair and print it. The Chromium checkout is not read or modified.`,
	}
}

func (it *ResolveController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.settings)
	if err != nil {
		return err
	}
	req, err := revisionRequest(cmd)
	if err != nil {
		return err
	}
	_, err = it.command.Execute(commandContext(cmd), settings, req)
	return err
}

// AddFlags is a no-op; resolve only uses the global flags.
func (it *ResolveController) AddFlags(_ *cobra.Command) {}
