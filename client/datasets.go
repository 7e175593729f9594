package client

import (
	"context"
	"io"
)

// DatasetService handles dataset operations.
type DatasetService struct {
	c *Client
}

// List returns all datasets, newest first.
func (s *DatasetService) List(ctx context.Context) ([]Dataset, error) {
	var resp struct {
		Datasets []Dataset `json:"datasets"`
	}
	if err := s.c.get(ctx, "/api/v1/datasets", nil, &resp); err != nil {
		return nil, err
	}

	return resp.Datasets, nil
}

// Get returns a dataset with its label schema and progress.
func (s *DatasetService) Get(ctx context.Context, id string) (*DatasetDetail, error) {
	var ds DatasetDetail
	if err := s.c.get(ctx, datasetPath(id), nil, &ds); err != nil {
		return nil, err
	}

	return &ds, nil
}

// Create creates a dataset. Rejected label definitions come back as an
// *APIError whose Fields name each offending field.
func (s *DatasetService) Create(ctx context.Context, req *CreateDatasetRequest) (*DatasetDetail, error) {
	var ds DatasetDetail
	if err := s.c.post(ctx, "/api/v1/datasets", req, &ds); err != nil {
		return nil, err
	}

	return &ds, nil
}

// Delete removes a dataset and all its samples.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	return s.c.del(ctx, datasetPath(id))
}

// Export writes the dataset's labeled samples to w as CSV.
func (s *DatasetService) Export(ctx context.Context, id string, w io.Writer) error {
	return s.c.stream(ctx, datasetPath(id, "export"), w)
}
