package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/labelr/labelr/client"
)

func newDatasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets",
	}
	cmd.AddCommand(datasetListCmd())
	cmd.AddCommand(datasetGetCmd())
	cmd.AddCommand(datasetCreateCmd())
	cmd.AddCommand(datasetDeleteCmd())
	cmd.AddCommand(datasetExportCmd())
	return cmd
}

func datasetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List datasets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			datasets, err := apiClient.Datasets.List(context.Background())
			if err != nil {
				fatal("list datasets", err)
			}
			ids := make([]string, len(datasets))
			for i, d := range datasets {
				ids[i] = d.ID
			}
			output(datasets, strings.Join(ids, "\n"), func() {
				rows := make([][]string, len(datasets))
				for i, d := range datasets {
					rows[i] = []string{d.ID, d.Name, d.CreatedAt.Format(time.DateOnly)}
				}
				formatTable([]string{"ID", "NAME", "CREATED"}, rows)
			})
		},
	}
}

func datasetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a dataset with its labels and progress",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ds, err := apiClient.Datasets.Get(context.Background(), args[0])
			if err != nil {
				fatal("get dataset", err)
			}
			output(ds, ds.ID, func() {
				fmt.Printf("%s  %s  %s labeled\n\n", ds.ID, ds.Name, percent(ds.LabeledPercent))
				formatTable([]string{"LABEL", "VARIANT", "RANGE"}, labelRows(ds.Labels))
			})
		},
	}
}

func labelRows(labels []client.LabelDefinition) [][]string {
	rows := make([][]string, len(labels))
	for i, l := range labels {
		rng := ""
		if l.Variant == client.VariantNumerical && l.Minimum != nil && l.Maximum != nil && l.Interval != nil {
			rng = fmt.Sprintf("%g..%g step %g", *l.Minimum, *l.Maximum, *l.Interval)
		}
		rows[i] = []string{l.Name, l.Variant, rng}
	}
	return rows
}

func datasetCreateCmd() *cobra.Command {
	var (
		description string
		labelSpecs  []string
		labelsFile  string
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a dataset",
		Long: `Create a dataset with a label schema.

Labels are given as --label name:boolean or --label name:numerical:min:max:interval,
in schema order, or as a YAML list in --labels-file.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := &client.CreateDatasetRequest{Name: args[0], Description: description}
			if labelsFile != "" {
				labels, err := readLabelsFile(labelsFile)
				if err != nil {
					fatal("read labels file", err)
				}
				req.Labels = labels
			}
			for _, s := range labelSpecs {
				l, err := parseLabelSpec(s)
				if err != nil {
					fatal("parse label", err)
				}
				req.Labels = append(req.Labels, l)
			}

			ds, err := apiClient.Datasets.Create(context.Background(), req)
			if err != nil {
				var apiErr *client.APIError
				if errors.As(err, &apiErr) {
					for field, msg := range apiErr.Fields {
						fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
					}
				}
				fatal("create dataset", err)
			}
			output(ds, ds.ID)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Dataset description")
	cmd.Flags().StringArrayVar(&labelSpecs, "label", nil, "Label definition (repeatable)")
	cmd.Flags().StringVar(&labelsFile, "labels-file", "", "YAML file with a list of label definitions")
	return cmd
}

// parseLabelSpec parses name:boolean or name:numerical:min:max:interval.
func parseLabelSpec(s string) (client.LabelDefinition, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return client.LabelDefinition{}, fmt.Errorf("label %q: want name:variant", s)
	}

	def := client.LabelDefinition{Name: parts[0], Variant: parts[1]}

	switch def.Variant {
	case client.VariantBoolean:
		if len(parts) != 2 {
			return def, fmt.Errorf("label %q: boolean labels take no range", s)
		}
	case client.VariantNumerical:
		if len(parts) != 5 {
			return def, fmt.Errorf("label %q: want name:numerical:min:max:interval", s)
		}
		bounds := make([]*float64, 3)
		for i, raw := range parts[2:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return def, fmt.Errorf("label %q: %q is not a number", s, raw)
			}
			bounds[i] = &v
		}
		def.Minimum, def.Maximum, def.Interval = bounds[0], bounds[1], bounds[2]
	default:
		return def, fmt.Errorf("label %q: variant must be boolean or numerical", s)
	}

	return def, nil
}

func readLabelsFile(path string) ([]client.LabelDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []client.LabelDefinition
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return labels, nil
}

func datasetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dataset and all its samples",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Datasets.Delete(context.Background(), args[0]); err != nil {
				fatal("delete dataset", err)
			}
			output(map[string]string{"status": "deleted", "dataset_id": args[0]}, args[0])
		},
	}
}

func datasetExportCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a dataset's labeled samples as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if outputPath == "-" {
				return apiClient.Datasets.Export(ctx, args[0], os.Stdout)
			}

			if outputPath == "" {
				outputPath = fmt.Sprintf("labelr-%s-%s.csv", args[0],
					time.Now().UTC().Format("20060102T150405Z"))
			}

			f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}

			if err := apiClient.Datasets.Export(ctx, args[0], f); err != nil {
				f.Close()
				os.Remove(outputPath)
				return fmt.Errorf("export failed: %w", err)
			}

			if err := f.Close(); err != nil {
				return fmt.Errorf("writing export file: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Exported %s to %s\n", args[0], outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: labelr-<id>-<timestamp>.csv, use - for stdout)")

	return cmd
}
