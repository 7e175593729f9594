package client

import (
	"context"
	"net/url"
	"strconv"
)

// SampleService handles sample queries and label writes.
type SampleService struct {
	c *Client
}

// List returns one page of a dataset's samples. The server returns one
// sample when no limit is given.
func (s *SampleService) List(ctx context.Context, datasetID string, opts *SampleListOptions) (*SamplePage, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Offset > 0 {
			params.Set("offset", strconv.Itoa(opts.Offset))
		}
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Labeled != nil {
			params.Set("labeled", strconv.FormatBool(*opts.Labeled))
		}
	}

	var page SamplePage
	if err := s.c.get(ctx, datasetPath(datasetID, "samples"), params, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// NextUnlabeled returns the unlabeled sample at offset in the dataset's
// queue, or nil when the queue has no sample there.
func (s *SampleService) NextUnlabeled(ctx context.Context, datasetID string, offset int) (*Sample, SampleMetadata, error) {
	unlabeled := false

	page, err := s.List(ctx, datasetID, &SampleListOptions{Offset: offset, Limit: 1, Labeled: &unlabeled})
	if err != nil {
		return nil, SampleMetadata{}, err
	}

	if len(page.Samples) == 0 {
		return nil, page.Metadata, nil
	}

	return &page.Samples[0], page.Metadata, nil
}

// Get returns one sample.
func (s *SampleService) Get(ctx context.Context, datasetID, sampleID string) (*Sample, error) {
	var sample Sample
	if err := s.c.get(ctx, datasetPath(datasetID, "samples", sampleID), nil, &sample); err != nil {
		return nil, err
	}

	return &sample, nil
}

// Label replaces a sample's labels.
func (s *SampleService) Label(ctx context.Context, datasetID, sampleID string, labels map[string]float64) (*Sample, error) {
	var sample Sample

	body := map[string]any{"labels": labels}
	if err := s.c.put(ctx, datasetPath(datasetID, "samples", sampleID), body, &sample); err != nil {
		return nil, err
	}

	return &sample, nil
}

// Add inserts samples into a dataset and returns how many were added.
func (s *SampleService) Add(ctx context.Context, datasetID string, samples []NewSample) (int, error) {
	var resp struct {
		Added int `json:"added"`
	}

	body := map[string]any{"samples": samples}
	if err := s.c.post(ctx, datasetPath(datasetID, "samples"), body, &resp); err != nil {
		return 0, err
	}

	return resp.Added, nil
}
