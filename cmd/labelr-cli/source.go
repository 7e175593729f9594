package main

import (
	"context"
	"sync"

	"github.com/labelr/labelr/client"
	"github.com/labelr/labelr/internal/models"
	"github.com/labelr/labelr/internal/session"
)

var _ session.SampleSource = (*sampleSource)(nil)

// sampleSource serves a labeling session from the REST API and remembers
// which samples this process wrote so their events can be told apart.
type sampleSource struct {
	samples *client.SampleService

	mu    sync.Mutex
	wrote map[string]int
}

func newSampleSource(samples *client.SampleService) *sampleSource {
	return &sampleSource{samples: samples, wrote: make(map[string]int)}
}

func (s *sampleSource) FetchUnlabeledSample(ctx context.Context, datasetID string, offset int) (*models.Sample, models.SampleMetadata, error) {
	sample, meta, err := s.samples.NextUnlabeled(ctx, datasetID, offset)
	if err != nil {
		return nil, models.SampleMetadata{}, err
	}

	if sample == nil {
		return nil, toMetadata(meta), nil
	}

	m := toSample(datasetID, *sample)

	return &m, toMetadata(meta), nil
}

func (s *sampleSource) FetchSampleByID(ctx context.Context, datasetID, sampleID string) (*models.Sample, error) {
	sample, err := s.samples.Get(ctx, datasetID, sampleID)
	if err != nil {
		return nil, err
	}

	m := toSample(datasetID, *sample)

	return &m, nil
}

func (s *sampleSource) WriteLabels(ctx context.Context, datasetID, sampleID string, labels map[string]float64) error {
	// Marked before the request; the event can arrive before the response.
	s.mark(sampleID, 1)

	if _, err := s.samples.Label(ctx, datasetID, sampleID, labels); err != nil {
		s.mark(sampleID, -1)
		return err
	}

	return nil
}

func (s *sampleSource) mark(sampleID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.addLocked(sampleID, delta)
}

func (s *sampleSource) addLocked(sampleID string, delta int) {
	s.wrote[sampleID] += delta
	if s.wrote[sampleID] <= 0 {
		delete(s.wrote, sampleID)
	}
}

// ownWrite consumes one pending write of sampleID, if any.
func (s *sampleSource) ownWrite(sampleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.wrote[sampleID] == 0 {
		return false
	}

	s.addLocked(sampleID, -1)

	return true
}

// labeledElsewhere forwards the ids of samples labeled by other sessions.
// events must come from a live subscription so nothing predates the session.
// The returned channel closes with events.
func labeledElsewhere(events <-chan client.Event, src *sampleSource) <-chan string {
	out := make(chan string, cap(events))

	go func() {
		defer close(out)

		for evt := range events {
			p, err := client.DecodeSampleLabeled(evt)
			if err != nil {
				cliLog.WithError(err).Debug("ignoring event")
				continue
			}

			if src.ownWrite(p.SampleID) {
				continue
			}

			out <- p.SampleID
		}
	}()

	return out
}

func toSample(datasetID string, s client.Sample) models.Sample {
	return models.Sample{
		ID:         s.ID,
		DatasetID:  datasetID,
		OriginalID: s.OriginalID,
		Text:       s.Text,
		Labels:     s.Labels,
	}
}

func toMetadata(m client.SampleMetadata) models.SampleMetadata {
	return models.SampleMetadata{
		LabeledPercent: m.LabeledPercent,
		Pagination: models.Pagination{
			Offset:     m.Pagination.Offset,
			Limit:      m.Pagination.Limit,
			NextOffset: m.Pagination.NextOffset,
			Total:      m.Pagination.Total,
		},
	}
}

func toDatasetDetail(d client.DatasetDetail) models.DatasetDetail {
	labels := make([]models.LabelDefinition, len(d.Labels))
	for i, l := range d.Labels {
		labels[i] = models.LabelDefinition{
			Name:     l.Name,
			Variant:  models.Variant(l.Variant),
			Minimum:  l.Minimum,
			Maximum:  l.Maximum,
			Interval: l.Interval,
		}
	}

	return models.DatasetDetail{
		Dataset: models.Dataset{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			CreatedAt:   d.CreatedAt,
		},
		Labels:         labels,
		LabeledPercent: d.LabeledPercent,
	}
}
