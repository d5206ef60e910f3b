package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUpstreamURL      = "https://skia.googlesource.com/skia.git"
	DefaultRevisionFormat   = "git-svn-id: http://skia.googlecode.com/svn/trunk@%d "
	DefaultBranchName       = "autogenerated_deps_roll_branch"
	DefaultSearchDepth      = 100
	DefaultRemote           = "origin"
	DefaultMainBranch       = "master"
	DefaultManifestPath     = "DEPS"
	DefaultDependencyName   = "skia"
	DefaultControlFile      = "build/whitespace_file.txt"
	DefaultReviewCC         = "skia-team@google.com"
	DownstreamPathEnv       = "CHROMIUM_CHECKOUT_PATH"
	UpstreamCheckoutPathEnv = "SKIA_GIT_CHECKOUT_PATH"
)

// DefaultBots are the try-job builders used when --bots is not given.
//
//nolint:gochecknoglobals // read-only default list
var DefaultBots = []string{
	"android_clang_dbg",
	"android_dbg",
	"android_rel",
	"cros_daisy",
	"linux",
	"linux_asan",
	"linux_chromeos",
	"linux_chromeos_asan",
	"linux_gpu",
	"linux_heapcheck",
	"linux_layout",
	"linux_layout_rel",
	"mac",
	"mac_asan",
	"mac_gpu",
	"mac_layout",
	"mac_layout_rel",
	"win",
	"win_gpu",
	"win_layout",
	"win_layout_rel",
}

// Settings is the resolved configuration of one invocation. Build it with
// DefaultSettings, optionally overlay a file with LoadSettings, apply flags,
// then call Validate. It is not modified afterwards.
type Settings struct {
	Git string `yaml:"git"`

	UpstreamURL          string `yaml:"upstream_url"`
	UpstreamRemote       string `yaml:"upstream_remote"`
	UpstreamBranch       string `yaml:"upstream_branch"`
	UpstreamCheckoutPath string `yaml:"upstream_checkout_path"`
	RevisionFormat       string `yaml:"revision_format"`
	SearchDepth          int    `yaml:"search_depth"`

	DownstreamPath   string `yaml:"downstream_path"`
	DownstreamRemote string `yaml:"downstream_remote"`
	DownstreamBranch string `yaml:"downstream_branch"`
	ManifestPath     string `yaml:"manifest_path"`
	DependencyName   string `yaml:"dependency_name"`
	ControlFile      string `yaml:"control_file"`

	DefaultBranchName string   `yaml:"default_branch_name"`
	SaveBranches      bool     `yaml:"save_branches"`
	SkipUpload        bool     `yaml:"skip_upload"`
	Verbose           bool     `yaml:"verbose"`
	Bots              []string `yaml:"bots"`
	ReviewCC          string   `yaml:"review_cc"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Git:               "git",
		UpstreamURL:       DefaultUpstreamURL,
		UpstreamRemote:    DefaultRemote,
		UpstreamBranch:    DefaultMainBranch,
		RevisionFormat:    DefaultRevisionFormat,
		SearchDepth:       DefaultSearchDepth,
		DownstreamRemote:  DefaultRemote,
		DownstreamBranch:  DefaultMainBranch,
		ManifestPath:      DefaultManifestPath,
		DependencyName:    DefaultDependencyName,
		ControlFile:       DefaultControlFile,
		DefaultBranchName: DefaultBranchName,
		SaveBranches:      true,
		Bots:              append([]string(nil), DefaultBots...),
		ReviewCC:          DefaultReviewCC,
	}
}

// envPlaceholder matches ${VAR_NAME} placeholders in config values.
var envPlaceholder = regexp.MustCompile(`\$\{([^}]+)}`) //nolint:gochecknoglobals // compiled once

// LoadSettings overlays the YAML file at path onto settings. Keys missing
// from the file keep their current value.
func LoadSettings(path string, settings *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read config file %q: %w", ErrConfiguration, path, err)
	}

	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return fmt.Errorf("%w: failed to parse config file: %w", ErrConfiguration, unmarshalErr)
	}

	settings.UpstreamCheckoutPath = expandEnv(settings.UpstreamCheckoutPath)
	settings.DownstreamPath = expandEnv(settings.DownstreamPath)
	settings.Git = expandEnv(settings.Git)
	return nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{".", ".config"}
	if homeDir != "" {
		locations = append(locations, homeDir, filepath.Join(homeDir, ".config"))
	}

	patterns := []string{".rolldeps.yaml", ".rolldeps.yml", "rolldeps.yaml", "rolldeps.yml"}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ParseBots splits a comma-separated bot list and drops empty entries, so an
// empty string disables try-jobs.
func ParseBots(raw string) []string {
	bots := []string{}
	for _, bot := range strings.Split(raw, ",") {
		if bot = strings.TrimSpace(bot); bot != "" {
			bots = append(bots, bot)
		}
	}
	return bots
}

// ManifestFields returns the patterns for the configured dependency.
func (s *Settings) ManifestFields() ManifestFields {
	return NewManifestFields(s.DependencyName)
}

// Tool returns the options every spawned tool shares.
func (s *Settings) Tool() ToolOptions {
	return ToolOptions{Git: s.Git, Verbose: s.Verbose}
}

// ValidateUpstream checks what the revision resolver needs.
func (s *Settings) ValidateUpstream() error {
	if s.Git == "" {
		return fmt.Errorf("%w: git executable must be set", ErrConfiguration)
	}
	if s.SearchDepth <= 0 {
		return fmt.Errorf("%w: search depth must be positive, got %d", ErrConfiguration, s.SearchDepth)
	}
	if s.UpstreamCheckoutPath == "" && s.UpstreamURL == "" {
		return fmt.Errorf("%w: either an upstream checkout path or an upstream URL is required", ErrConfiguration)
	}
	if s.UpstreamCheckoutPath != "" {
		if err := requireDir(s.UpstreamCheckoutPath, "upstream checkout path"); err != nil {
			return err
		}
	}
	if !strings.Contains(s.RevisionFormat, "%d") {
		return fmt.Errorf("%w: revision format %q has no %%d verb", ErrConfiguration, s.RevisionFormat)
	}
	for name, value := range map[string]string{
		"upstream remote": s.UpstreamRemote,
		"upstream branch": s.UpstreamBranch,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s must be set", ErrConfiguration, name)
		}
	}
	return nil
}

// Validate checks everything a full roll needs.
func (s *Settings) Validate() error {
	if err := s.ValidateUpstream(); err != nil {
		return err
	}
	if s.DownstreamPath == "" {
		return fmt.Errorf("%w: must specify the downstream checkout path (or set %s)", ErrConfiguration, DownstreamPathEnv)
	}
	if err := requireDir(s.DownstreamPath, "downstream checkout path"); err != nil {
		return err
	}
	for name, value := range map[string]string{
		"downstream remote":   s.DownstreamRemote,
		"downstream branch":   s.DownstreamBranch,
		"manifest path":       s.ManifestPath,
		"dependency name":     s.DependencyName,
		"control file":        s.ControlFile,
		"default branch name": s.DefaultBranchName,
	} {
		if value == "" {
			return fmt.Errorf("%w: %s must be set", ErrConfiguration, name)
		}
	}
	return nil
}

// ToolOptions are shared by every external tool invocation.
type ToolOptions struct {
	Git     string
	Verbose bool
}

func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrConfiguration, what, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s %q must be a directory", ErrConfiguration, what, path)
	}
	return nil
}

// expandEnv expands ${VAR} references, warning about unset variables.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envPlaceholder.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envPlaceholder.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// ReviewOptions configure the review-upload tool.
type ReviewOptions struct {
	Tool ToolOptions
	CC   string
}

// Review returns the options of the review-upload tool.
func (s *Settings) Review() ReviewOptions {
	return ReviewOptions{Tool: s.Tool(), CC: s.ReviewCC}
}
