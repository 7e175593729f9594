package models_test

import (
	"strings"
	"testing"

	"github.com/labelr/labelr/internal/models"
)

func ptr[T any](v T) *T { return &v }

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func assertErrorContains(t *testing.T, err error, want string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}

	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

func TestCreateDatasetRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateDatasetRequest
		wantErr string
	}{
		{name: "valid", req: models.CreateDatasetRequest{Name: "tweets", Description: "d"}},
		{name: "blank name", req: models.CreateDatasetRequest{Name: "   "}, wantErr: "name is required"},
		{name: "name too long", req: models.CreateDatasetRequest{Name: strings.Repeat("x", 256)}, wantErr: "exceeds maximum length"},
		{name: "description too long", req: models.CreateDatasetRequest{Name: "a", Description: strings.Repeat("x", 10001)}, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestCreateSamplesRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     models.CreateSamplesRequest
		wantErr string
	}{
		{name: "valid", req: models.CreateSamplesRequest{Samples: []models.NewSample{{OriginalID: "1", Text: "hi"}}}},
		{name: "empty", req: models.CreateSamplesRequest{}, wantErr: "at least one sample"},
		{name: "missing text", req: models.CreateSamplesRequest{Samples: []models.NewSample{{OriginalID: "1"}}}, wantErr: "text is required"},
		{name: "original id too long", req: models.CreateSamplesRequest{Samples: []models.NewSample{{OriginalID: strings.Repeat("x", 256), Text: "a"}}}, wantErr: "exceeds maximum length"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr != "" {
				assertErrorContains(t, err, tc.wantErr)
				return
			}
			assertNoError(t, err)
		})
	}
}

func TestLabelSampleRequest_Validate(t *testing.T) {
	req := models.LabelSampleRequest{}
	assertErrorContains(t, req.Validate(), "labels are required")

	req.Labels = map[string]float64{}
	assertNoError(t, req.Validate())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                 string
		offset, limit, total int
		wantNext             *int
	}{
		{name: "first of many", offset: 0, limit: 1, total: 3, wantNext: ptr(1)},
		{name: "last item", offset: 2, limit: 1, total: 3},
		{name: "empty queue", offset: 0, limit: 1, total: 0},
		{name: "past the end", offset: 5, limit: 1, total: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := models.NewPagination(tc.offset, tc.limit, tc.total)

			if tc.wantNext == nil {
				if p.NextOffset != nil {
					t.Fatalf("NextOffset = %d, want nil", *p.NextOffset)
				}
				return
			}

			if p.NextOffset == nil || *p.NextOffset != *tc.wantNext {
				t.Fatalf("NextOffset = %v, want %d", p.NextOffset, *tc.wantNext)
			}
		})
	}
}

func TestLabelDefinition_Accepts(t *testing.T) {
	score := models.LabelDefinition{
		Name: "Score", Variant: models.VariantNumerical,
		Minimum: ptr(-1.0), Maximum: ptr(1.0), Interval: ptr(0.5),
	}
	news := models.LabelDefinition{Name: "News", Variant: models.VariantBoolean}

	if !score.Accepts(-1) || !score.Accepts(1) || !score.Accepts(0.5) {
		t.Error("numerical label rejected an in-range value")
	}

	if score.Accepts(1.5) {
		t.Error("numerical label accepted an out-of-range value")
	}

	if !news.Accepts(0) || !news.Accepts(1) {
		t.Error("boolean label rejected 0 or 1")
	}

	if news.Accepts(0.5) {
		t.Error("boolean label accepted 0.5")
	}
}
