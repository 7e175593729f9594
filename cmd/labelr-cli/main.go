// Command labelr-cli manages labelr datasets and runs interactive labeling
// sessions in the terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labelr/labelr/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3040"

var (
	apiClient *client.Client
	cliLog    = logrus.New()
	flagURL   string
	flagKey   string
	flagFmt   string
	flagLevel string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("labelr version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("labelr version %s-dev", version)
}

type configFile struct {
	// Flat format
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// resolve returns the url and key of the active profile, falling back to the
// flat fields.
func (c *configFile) resolve() (url, apiKey string) {
	url, apiKey = c.URL, c.APIKey
	if c.Profiles == nil {
		return url, apiKey
	}

	name := c.ActiveProfile
	if name == "" {
		name = "default"
	}

	if p, ok := c.Profiles[name]; ok {
		if p.URL != "" {
			url = p.URL
		}
		if p.APIKey != "" {
			apiKey = p.APIKey
		}
	}

	return url, apiKey
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "labelr-cli",
		Short:   "labelr CLI: manage datasets and label samples",
		Version: versionString(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return err
			}
			resolveConfig()
			var opts []client.Option
			if flagKey != "" {
				opts = append(opts, client.WithAPIKey(flagKey))
			}
			apiClient = client.New(flagURL, opts...)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "labelr server URL (env: LABELR_URL)")
	rootCmd.PersistentFlags().StringVar(&flagKey, "api-key", "", "API key (env: LABELR_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	skipClient := func(cmd *cobra.Command, args []string) error { return setupLogging() }

	initCmd := newInitCmd()
	initCmd.PersistentPreRunE = skipClient
	doctorCmd := newDoctorCmd()
	doctorCmd.PersistentPreRunE = skipClient

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(newDatasetCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newLabelCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() error {
	level, err := logrus.ParseLevel(flagLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLevel, err)
	}
	cliLog.SetLevel(level)
	cliLog.SetOutput(os.Stderr)
	return nil
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".labelr", "config.yaml"), nil
}

func loadConfigFile() (string, *configFile, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return cfgPath, nil, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfgPath, nil, err
	}
	return cfgPath, &cfg, nil
}

// resolveConfig fills flagURL and flagKey. A flag wins over the environment,
// which wins over the config file.
func resolveConfig() {
	flagURL, flagKey = resolveSettings(flagURL, flagKey)
}

func resolveSettings(url, apiKey string) (string, string) {
	if url == defaultURL {
		if v := os.Getenv("LABELR_URL"); v != "" {
			url = v
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("LABELR_API_KEY")
	}

	_, cfg, err := loadConfigFile()
	if err != nil {
		cliLog.WithError(err).Debug("no usable config file")
		return url, apiKey
	}

	fileURL, fileKey := cfg.resolve()
	if url == defaultURL && fileURL != "" {
		url = fileURL
	}
	if apiKey == "" && fileKey != "" {
		apiKey = fileKey
	}
	return url, apiKey
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
