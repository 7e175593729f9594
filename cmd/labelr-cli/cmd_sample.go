package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/labelr/labelr/client"
)

// sampleBatchSize stays below the server's per-request cap.
const sampleBatchSize = 1000

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Manage samples",
	}
	cmd.AddCommand(sampleAddCmd())
	cmd.AddCommand(sampleListCmd())
	cmd.AddCommand(sampleGetCmd())
	return cmd
}

func sampleAddCmd() *cobra.Command {
	var (
		file  string
		jsonl bool
		texts []string
	)
	cmd := &cobra.Command{
		Use:   "add <dataset-id>",
		Short: "Add samples to a dataset",
		Long: `Add samples from --text flags or a file.

A plain file holds one sample text per line. With --jsonl every line is a
JSON object {"original_id": "...", "text": "..."}. Use --file - for stdin.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			samples := make([]client.NewSample, 0, len(texts))
			for _, t := range texts {
				samples = append(samples, client.NewSample{Text: t})
			}

			if file != "" {
				r := io.Reader(os.Stdin)
				if file != "-" {
					f, err := os.Open(file)
					if err != nil {
						fatal("open samples file", err)
					}
					defer f.Close()
					r = f
				}
				parsed, err := readSamples(r, jsonl)
				if err != nil {
					fatal("read samples", err)
				}
				samples = append(samples, parsed...)
			}

			if len(samples) == 0 {
				fatal("add samples", fmt.Errorf("no samples given; use --text or --file"))
			}

			added := 0
			for start := 0; start < len(samples); start += sampleBatchSize {
				end := min(start+sampleBatchSize, len(samples))
				n, err := apiClient.Samples.Add(context.Background(), args[0], samples[start:end])
				if err != nil {
					fatal(fmt.Sprintf("add samples (after %d added)", added), err)
				}
				added += n
				cliLog.WithField("added", added).Debug("sample batch added")
			}

			output(map[string]int{"added": added}, fmt.Sprint(added))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File with samples (- for stdin)")
	cmd.Flags().BoolVar(&jsonl, "jsonl", false, "Parse the file as JSON lines")
	cmd.Flags().StringArrayVar(&texts, "text", nil, "Sample text (repeatable)")
	return cmd
}

// readSamples reads one sample per non-blank line.
func readSamples(r io.Reader, jsonl bool) ([]client.NewSample, error) {
	var samples []client.NewSample

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if !jsonl {
			samples = append(samples, client.NewSample{Text: text})
			continue
		}

		var s client.NewSample
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if s.Text == "" {
			return nil, fmt.Errorf("line %d: text is required", line)
		}
		samples = append(samples, s)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

func sampleListCmd() *cobra.Command {
	var (
		offset    int
		limit     int
		labeled   bool
		unlabeled bool
	)
	cmd := &cobra.Command{
		Use:   "list <dataset-id>",
		Short: "List a page of samples",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts := &client.SampleListOptions{Offset: offset, Limit: limit}
			switch {
			case labeled && unlabeled:
				fatal("list samples", fmt.Errorf("--labeled and --unlabeled are exclusive"))
			case labeled:
				opts.Labeled = &labeled
			case unlabeled:
				f := false
				opts.Labeled = &f
			}

			page, err := apiClient.Samples.List(context.Background(), args[0], opts)
			if err != nil {
				fatal("list samples", err)
			}
			ids := make([]string, len(page.Samples))
			for i, s := range page.Samples {
				ids[i] = s.ID
			}
			output(page, strings.Join(ids, "\n"), func() {
				rows := make([][]string, len(page.Samples))
				for i, s := range page.Samples {
					rows[i] = []string{s.ID, s.OriginalID, truncate(s.Text, 60), fmt.Sprint(s.Labels != nil)}
				}
				formatTable([]string{"ID", "ORIGINAL", "TEXT", "LABELED"}, rows)
			})
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset into the queue")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().BoolVar(&labeled, "labeled", false, "Only labeled samples")
	cmd.Flags().BoolVar(&unlabeled, "unlabeled", false, "Only unlabeled samples")
	return cmd
}

func sampleGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <dataset-id> <sample-id>",
		Short: "Get a sample",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			s, err := apiClient.Samples.Get(context.Background(), args[0], args[1])
			if err != nil {
				fatal("get sample", err)
			}
			output(s, s.ID)
		},
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
