package controllers

import (
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// RollController handles the root command.
type RollController struct {
	command  commands.Roll
	settings entities.SettingsFactory
}

// NewRollController creates a new RollController.
func NewRollController(command commands.Roll, settings entities.SettingsFactory) *RollController {
	return &RollController{command: command, settings: settings}
}

// GetBind returns the Cobra command metadata for the roll controller.
func (it *RollController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "rolldeps",
		Short: "Roll the Skia revision pinned in Chromium's DEPS",
		Long: `Resolve a Skia revision, then upload two changes against the Chromium
checkout: a whitespace-only control change and the DEPS roll itself.

The Chromium checkout is restored to its original branch and stash
afterwards, whether or not the roll succeeded.`,
	}
}

// Execute runs a full roll.
func (it *RollController) Execute(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd, it.settings)
	if err != nil {
		return err
	}
	req, err := revisionRequest(cmd)
	if err != nil {
		return err
	}

	logger.Infof("Rolling %s in %s", settings.DependencyName, settings.DownstreamPath)
	result, err := it.command.Execute(commandContext(cmd), settings, req)
	if err != nil {
		return err
	}
	if result.UpToDate {
		logger.Infof("%s already pins revision %d", settings.ManifestPath, result.Target.Revision)
	}
	return nil
}

// AddFlags adds the roll-only flags to the given Cobra command.
func (it *RollController) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP(flagDownstreamPath, "c", "", "Path to the Chromium checkout (env "+entities.DownstreamPathEnv+")")
	flags.Bool(flagDeleteBranches, false, "Delete the working branches afterwards instead of keeping them")
	flags.Bool(flagSkipUpload, false, "Commit locally and print the upload commands instead of running them")
	flags.String(flagBots, strings.Join(entities.DefaultBots, ","),
		"Comma-separated try-job bots; empty disables try-jobs")
}
