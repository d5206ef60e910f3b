package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

const (
	flagConfig         = "config"
	flagVerbose        = "verbose"
	flagGitPath        = "git-path"
	flagUpstreamPath   = "skia-git-path"
	flagSearchDepth    = "search-depth"
	flagRevision       = "revision"
	flagGitHash        = "git-hash"
	flagDownstreamPath = "chromium-path"
	flagDeleteBranches = "delete-branches"
	flagSkipUpload     = "skip-cl-upload"
	flagBots           = "bots"
)

// AddGlobalFlags registers the flags every command shares on root.
func AddGlobalFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.String(flagConfig, "", "Path to config file (default: auto-detect)")
	flags.BoolP(flagVerbose, "v", false, "Echo every external command before running it")
	flags.String(flagGitPath, "git", "Git executable to run")
	flags.String(flagUpstreamPath, "",
		"Persistent Skia checkout to fetch into (env "+entities.UpstreamCheckoutPathEnv+"); "+
			"a temporary clone is used when unset")
	flags.Int(flagSearchDepth, entities.DefaultSearchDepth, "How many upstream commits to search for --revision")
	flags.IntP(flagRevision, "r", 0, "Skia SVN revision to roll to (default: latest)")
	flags.StringP(flagGitHash, "g", "", "Partial Skia git hash to roll to (default: latest)")
}

// loadSettings layers defaults, the config file, the environment and the
// explicitly set flags, in that order.
func loadSettings(cmd *cobra.Command, factory entities.SettingsFactory) (*entities.Settings, error) {
	settings := factory()
	flags := cmd.Flags()

	configPath, _ := flags.GetString(flagConfig)
	if configPath == "" {
		if found, err := entities.FindConfigFile(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
		if err := entities.LoadSettings(configPath, settings); err != nil {
			return nil, err
		}
	}

	if value := os.Getenv(entities.DownstreamPathEnv); value != "" {
		settings.DownstreamPath = value
	}
	if value := os.Getenv(entities.UpstreamCheckoutPathEnv); value != "" {
		settings.UpstreamCheckoutPath = value
	}

	if flags.Changed(flagGitPath) {
		settings.Git, _ = flags.GetString(flagGitPath)
	}
	if flags.Changed(flagUpstreamPath) {
		settings.UpstreamCheckoutPath, _ = flags.GetString(flagUpstreamPath)
	}
	if flags.Changed(flagSearchDepth) {
		settings.SearchDepth, _ = flags.GetInt(flagSearchDepth)
	}
	if flags.Changed(flagDownstreamPath) {
		settings.DownstreamPath, _ = flags.GetString(flagDownstreamPath)
	}
	if flags.Changed(flagDeleteBranches) {
		deleteBranches, _ := flags.GetBool(flagDeleteBranches)
		settings.SaveBranches = !deleteBranches
	}
	if flags.Changed(flagSkipUpload) {
		settings.SkipUpload, _ = flags.GetBool(flagSkipUpload)
	}
	if flags.Changed(flagBots) {
		raw, _ := flags.GetString(flagBots)
		settings.Bots = entities.ParseBots(raw)
	}
	if flags.Changed(flagVerbose) {
		settings.Verbose, _ = flags.GetBool(flagVerbose)
	}

	if settings.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}
	return settings, nil
}

func revisionRequest(cmd *cobra.Command) (entities.RevisionRequest, error) {
	revision, _ := cmd.Flags().GetInt(flagRevision)
	hash, _ := cmd.Flags().GetString(flagGitHash)
	req := entities.RevisionRequest{Revision: revision, PartialHash: hash}
	return req, req.Validate()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
