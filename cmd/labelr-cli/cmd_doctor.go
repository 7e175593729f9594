package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/labelr/labelr/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server, and auth",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor() error {
	fmt.Println("\nlabelr doctor")
	fmt.Println("=============")

	results := doctorChecks()

	fmt.Println()
	allPassed := true
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Printf("[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Printf("       Hint: %s\n", r.Hint)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Println("All checks passed.")
	return nil
}

func doctorChecks() []checkResult {
	var results []checkResult

	cfgPath, _, cfgErr := loadConfigFile()
	if cfgErr != nil {
		results = append(results, checkResult{
			Name: "Config file", Detail: cfgPath,
			Hint: "Run: labelr-cli init",
		})
	} else {
		results = append(results, checkResult{
			Name: "Config file", Passed: true,
			Detail: fmt.Sprintf("found (%s)", cfgPath),
		})
	}

	url, apiKey := resolveSettings(flagURL, flagKey)
	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: url})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := client.New(url, client.WithAPIKey(apiKey))

	health, err := c.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Detail: url,
			Hint: fmt.Sprintf("Is the labelr server running?\n       Error: %v", err),
		})
	}

	results = append(results, checkResult{
		Name: "Server reachable", Passed: health.Database == "connected",
		Detail: fmt.Sprintf("%s, database %s", health.Version, health.Database),
		Hint:   "The server is up but cannot reach its database",
	})

	_, err = c.Stats(ctx)
	switch {
	case err == nil:
		detail := "valid"
		if apiKey == "" {
			detail = "server accepts requests without a key"
		}
		results = append(results, checkResult{Name: "Authentication", Passed: true, Detail: detail})
	case statusIs(err, 401):
		results = append(results, checkResult{
			Name: "Authentication",
			Hint: "Set --api-key, LABELR_API_KEY, or run labelr-cli init",
		})
	default:
		results = append(results, checkResult{
			Name: "Authentication",
			Hint: fmt.Sprintf("Unexpected error: %v", err),
		})
	}

	return results
}

func statusIs(err error, code int) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

