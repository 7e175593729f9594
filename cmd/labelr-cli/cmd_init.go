package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labelr/labelr/client"
)

func newInitCmd() *cobra.Command {
	var (
		initURL    string
		initAPIKey string
		profile    string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up labelr CLI configuration",
		Long:  "Interactive setup wizard that writes a profile to ~/.labelr/config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			nonInteractive := initURL != ""
			return runInit(initURL, initAPIKey, profile, nonInteractive)
		},
	}

	cmd.Flags().StringVar(&initURL, "url", "", "Server URL (non-interactive mode)")
	cmd.Flags().StringVar(&initAPIKey, "api-key", "", "API key (non-interactive mode)")
	cmd.Flags().StringVar(&profile, "profile", "default", "Profile name to write")
	return cmd
}

func runInit(url, apiKey, profile string, nonInteractive bool) error {
	if !nonInteractive {
		fmt.Println("\n  labelr setup")
		fmt.Println("  ------------")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("  Server URL [%s]: ", defaultURL)
		line, _ := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			url = line
		}

		fmt.Print("  API key (empty if the server runs without one): ")
		keyLine, _ := reader.ReadString('\n')
		apiKey = strings.TrimSpace(keyLine)
	}

	if url == "" {
		url = defaultURL
	}

	if !nonInteractive {
		fmt.Print("\n  Testing connection... ")
	}

	ver, err := testConnection(url, apiKey)
	if err != nil {
		if !nonInteractive {
			fmt.Println("failed")
		}
		return fmt.Errorf("connection failed: %w", err)
	}

	if !nonInteractive {
		fmt.Printf("connected (%s)\n", ver)
	}

	cfgPath, err := writeConfig(profile, url, apiKey)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if nonInteractive {
		fmt.Printf("Config saved to %s\n", cfgPath)
	} else {
		fmt.Printf("\n  Config saved to %s\n", cfgPath)
		fmt.Println()
		fmt.Println("  Next steps:")
		fmt.Println("    labelr-cli doctor             # Full diagnostic check")
		fmt.Println("    labelr-cli dataset list       # See your datasets")
		fmt.Println("    labelr-cli label <dataset-id> # Start labeling")
		fmt.Println()
	}

	return nil
}

// testConnection checks the server and, through the stats route, the key.
func testConnection(url, apiKey string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := client.New(url, client.WithAPIKey(apiKey))

	health, err := c.Health(ctx)
	if err != nil {
		return "", err
	}

	if _, err := c.Stats(ctx); err != nil {
		return "", err
	}

	if health.Version == "" {
		return "unknown", nil
	}
	return health.Version, nil
}

// writeConfig stores url and apiKey under profile, keeping other profiles,
// and makes it the active profile.
func writeConfig(profile, url, apiKey string) (string, error) {
	cfgPath, err := configPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o700); err != nil {
		return "", err
	}

	cfg := configFile{}
	if _, existing, err := loadConfigFile(); err == nil {
		cfg.Profiles = existing.Profiles
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]configProfile)
	}

	cfg.Profiles[profile] = configProfile{URL: url, APIKey: apiKey}
	cfg.ActiveProfile = profile

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		return "", err
	}

	return cfgPath, nil
}
