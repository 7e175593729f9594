package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/models"
)

var errRemote = errors.New("remote unavailable")

type labelWrite struct {
	sampleID string
	labels   map[string]float64
}

// fakeSource is an in-memory SampleSource over a fixed queue. Writing labels
// does not remove a sample from the queue, so offsets stay stable.
type fakeSource struct {
	mu sync.Mutex

	queue  []string
	stored map[string]map[string]float64

	unlabeledCalls []int
	byIDCalls      []string
	writes         []labelWrite

	fetchErr error
	byIDErr  error
	writeErr error

	// When gate is set, calls matching gateOffset (or any write, with
	// gateWrites) signal entered and block until gate is closed.
	gate       chan struct{}
	entered    chan struct{}
	gateOffset int
	gateWrites bool
}

func newFakeSource(ids ...string) *fakeSource {
	return &fakeSource{
		queue:      ids,
		stored:     make(map[string]map[string]float64),
		gateOffset: -1,
	}
}

func (f *fakeSource) arm(offset int, writes bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 1)
	f.gateOffset = offset
	f.gateWrites = writes
}

func (f *fakeSource) wait(gated bool) {
	if !gated {
		return
	}

	f.entered <- struct{}{}
	<-f.gate
}

func (f *fakeSource) sample(id string) *models.Sample {
	var labels map[string]float64
	if stored, ok := f.stored[id]; ok {
		labels = make(map[string]float64, len(stored))
		for k, v := range stored {
			labels[k] = v
		}
	}

	return &models.Sample{ID: id, Text: "text of " + id, Labels: labels}
}

func (f *fakeSource) FetchUnlabeledSample(_ context.Context, _ string, offset int) (*models.Sample, models.SampleMetadata, error) {
	f.mu.Lock()
	f.unlabeledCalls = append(f.unlabeledCalls, offset)
	gated := f.gate != nil && offset == f.gateOffset
	f.mu.Unlock()

	f.wait(gated)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetchErr != nil {
		return nil, models.SampleMetadata{}, f.fetchErr
	}

	meta := models.SampleMetadata{Pagination: models.NewPagination(offset, 1, len(f.queue))}
	if offset >= len(f.queue) {
		return nil, meta, nil
	}

	return f.sample(f.queue[offset]), meta, nil
}

func (f *fakeSource) FetchSampleByID(_ context.Context, _, sampleID string) (*models.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byIDCalls = append(f.byIDCalls, sampleID)
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}

	return f.sample(sampleID), nil
}

func (f *fakeSource) WriteLabels(_ context.Context, _, sampleID string, labels map[string]float64) error {
	f.mu.Lock()
	f.writes = append(f.writes, labelWrite{sampleID: sampleID, labels: labels})
	gated := f.gate != nil && f.gateWrites
	f.mu.Unlock()

	f.wait(gated)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}

	f.stored[sampleID] = labels

	return nil
}

func (f *fakeSource) counts() (unlabeled, byID, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.unlabeledCalls), len(f.byIDCalls), len(f.writes)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}
