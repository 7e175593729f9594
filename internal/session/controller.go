// Package session implements the labeling session: which sample is on screen,
// the label edits made to it, and navigation through the unlabeled queue and
// the history of visited samples.
//
// A Controller allows at most one remote operation in flight. Triggers that
// arrive while one is pending are ignored rather than queued. History is only
// changed once the store has answered, and answers that arrive after the
// session was reset are dropped.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/labelr/labelr/internal/labelschema"
	"github.com/labelr/labelr/internal/models"
)

// Status is the display state of a session.
type Status int

// Session statuses.
const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusReady
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// State is a snapshot of a session returned by every Controller operation.
type State struct {
	Status         Status
	DatasetID      string
	Current        *models.Sample
	History        []string
	Cursor         int
	CanGoBack      bool
	Boolean        map[string]bool
	Numerical      map[string]float64
	Pagination     *models.Pagination
	LabeledPercent float64
	Pending        bool
}

// AtLiveEdge reports whether the next forward move fetches a new sample.
func (s State) AtLiveEdge() bool {
	return s.Cursor == 0
}

// Controller owns the state of one labeling session.
type Controller struct {
	mu     sync.Mutex
	source SampleSource
	log    *logrus.Logger

	datasetID string
	schema    *labelschema.Schema
	status    Status
	current   *models.Sample
	history   History
	buffer    *EditBuffer
	meta      *models.SampleMetadata

	pending bool
	loading bool
	epoch   uint64
}

// NewController creates a Controller reading from source.
func NewController(source SampleSource, log *logrus.Logger) *Controller {
	return &Controller{
		source: source,
		log:    log,
		buffer: NewEditBuffer(nil, nil),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stateLocked()
}

// LoadInitial starts or resumes a session on a dataset. With an empty history
// it fetches the first unlabeled sample; otherwise it re-fetches the entry
// under the cursor. Switching to another dataset starts a fresh session. An
// exhausted session on the same dataset stays exhausted until ResetHistory.
func (c *Controller) LoadInitial(ctx context.Context, datasetID string, schema *labelschema.Schema) (State, error) {
	c.mu.Lock()

	if c.pending {
		return c.ignoreLocked("load")
	}

	if datasetID == c.datasetID && c.status == StatusExhausted {
		return c.ignoreLocked("load")
	}

	if datasetID != c.datasetID {
		c.history.Reset()
		c.current = nil
		c.meta = nil
		c.status = StatusUninitialized
		c.epoch++
	}

	c.datasetID = datasetID
	c.schema = schema
	c.buffer = NewEditBuffer(schema, c.current)

	id, resume := c.history.Current()
	epoch := c.beginLocked(true)
	c.mu.Unlock()

	if resume {
		sample, err := c.source.FetchSampleByID(ctx, datasetID, id)

		return c.complete(epoch, err, func() {
			c.showLocked(sample)
		})
	}

	sample, meta, err := c.source.FetchUnlabeledSample(ctx, datasetID, 0)

	return c.complete(epoch, err, func() {
		c.applyQueueLocked(sample, meta)
	})
}

// ResetHistory forgets every visited sample and fetches the first unlabeled
// sample again. It is the only way out of the exhausted state, and it
// supersedes any operation still in flight.
func (c *Controller) ResetHistory(ctx context.Context) (State, error) {
	c.mu.Lock()

	if c.status == StatusUninitialized && c.datasetID == "" {
		return c.ignoreLocked("reset")
	}

	c.epoch++
	epoch := c.beginLocked(true)
	datasetID := c.datasetID
	c.mu.Unlock()

	sample, meta, err := c.source.FetchUnlabeledSample(ctx, datasetID, 0)

	return c.complete(epoch, err, func() {
		c.history.Reset()
		c.applyQueueLocked(sample, meta)
	})
}

// Next moves forward. At the live edge it fetches the next unlabeled sample;
// otherwise it moves one step toward the live edge and re-fetches that sample.
func (c *Controller) Next(ctx context.Context) (State, error) {
	c.mu.Lock()

	if c.pending || c.status != StatusReady {
		return c.ignoreLocked("next")
	}

	return c.forwardLocked(ctx, c.beginLocked(false))
}

// Prev moves one step back through the history and re-fetches that sample.
// It is a no-op at the oldest entry.
func (c *Controller) Prev(ctx context.Context) (State, error) {
	c.mu.Lock()

	if c.pending || c.status != StatusReady || !c.history.CanGoBack() {
		return c.ignoreLocked("prev")
	}

	id, _ := c.history.Older()
	datasetID := c.datasetID
	epoch := c.beginLocked(false)
	c.mu.Unlock()

	sample, err := c.source.FetchSampleByID(ctx, datasetID, id)

	return c.complete(epoch, err, func() {
		c.history.StepBack()
		c.showLocked(sample)
	})
}

// SaveAndContinue writes the buffered labels of the sample on screen and then
// moves forward as Next does.
func (c *Controller) SaveAndContinue(ctx context.Context) (State, error) {
	c.mu.Lock()

	if c.pending || c.status != StatusReady || c.current == nil {
		return c.ignoreLocked("save")
	}

	labels := c.buffer.Merge()
	sampleID := c.current.ID
	datasetID := c.datasetID
	epoch := c.beginLocked(false)
	c.mu.Unlock()

	if err := c.source.WriteLabels(ctx, datasetID, sampleID, labels); err != nil {
		return c.complete(epoch, err, nil)
	}

	c.log.WithFields(logrus.Fields{"dataset_id": datasetID, "sample_id": sampleID}).Debug("labels saved")

	c.mu.Lock()
	if epoch != c.epoch {
		return c.staleLocked()
	}

	return c.forwardLocked(ctx, epoch)
}

// SelectBooleanLabel toggles the boolean label at 1-based position in schema
// order. It is a no-op when position is out of range or no sample is shown.
func (c *Controller) SelectBooleanLabel(position int) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.buffer.Toggle(position)
	}

	return c.stateLocked()
}

// SetNumericalLabel sets a numerical label of the sample on screen.
func (c *Controller) SetNumericalLabel(name string, value float64) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return c.stateLocked(), nil
	}

	err := c.buffer.SetValue(name, value)

	return c.stateLocked(), err
}

// StepNumericalLabel moves a numerical label by steps intervals within its range.
func (c *Controller) StepNumericalLabel(name string, steps int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return c.stateLocked(), nil
	}

	_, err := c.buffer.Step(name, steps)

	return c.stateLocked(), err
}

// forwardLocked issues the forward fetch. It is entered with the lock held
// and the operation already begun, and returns with the lock released.
func (c *Controller) forwardLocked(ctx context.Context, epoch uint64) (State, error) {
	datasetID := c.datasetID

	if c.history.AtLiveEdge() {
		offset := c.nextOffsetLocked()
		c.mu.Unlock()

		sample, meta, err := c.source.FetchUnlabeledSample(ctx, datasetID, offset)

		return c.complete(epoch, err, func() {
			c.applyQueueLocked(sample, meta)
		})
	}

	id, _ := c.history.Newer()
	c.mu.Unlock()

	sample, err := c.source.FetchSampleByID(ctx, datasetID, id)

	return c.complete(epoch, err, func() {
		c.history.StepForward()
		c.showLocked(sample)
	})
}

// nextOffsetLocked is the queue offset of the next unlabeled sample: one past
// the offset of the last queue response, or 1 when there was none.
func (c *Controller) nextOffsetLocked() int {
	last := 0
	if c.meta != nil {
		last = c.meta.Pagination.Offset
	}

	return last + 1
}

// beginLocked marks an operation in flight and returns the epoch it belongs to.
func (c *Controller) beginLocked(loading bool) uint64 {
	c.pending = true
	c.loading = loading

	return c.epoch
}

// complete applies the outcome of a remote call begun at epoch. Results of a
// superseded epoch are dropped without touching state. On error the state is
// left as it was.
func (c *Controller) complete(epoch uint64, err error, apply func()) (State, error) {
	c.mu.Lock()

	if epoch != c.epoch {
		return c.staleLocked()
	}

	defer c.mu.Unlock()

	c.pending = false
	c.loading = false

	if err != nil {
		c.log.WithError(err).WithField("dataset_id", c.datasetID).Warn("session operation failed")

		return c.stateLocked(), err
	}

	if apply != nil {
		apply()
	}

	return c.stateLocked(), nil
}

// applyQueueLocked handles a response from the unlabeled queue.
func (c *Controller) applyQueueLocked(sample *models.Sample, meta models.SampleMetadata) {
	c.meta = &meta

	if sample == nil {
		c.current = nil
		c.status = StatusExhausted
		c.buffer = NewEditBuffer(c.schema, nil)

		return
	}

	if id, ok := c.history.Current(); !ok || id != sample.ID {
		c.history.Push(sample.ID)
	}

	c.showLocked(sample)
}

// showLocked puts sample on screen and rebuilds the edit buffer from it.
func (c *Controller) showLocked(sample *models.Sample) {
	c.current = sample
	c.status = StatusReady
	c.buffer = NewEditBuffer(c.schema, sample)
}

func (c *Controller) ignoreLocked(op string) (State, error) {
	defer c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"op": op, "pending": c.pending, "status": c.status.String()}).Debug("session operation ignored")

	return c.stateLocked(), nil
}

func (c *Controller) staleLocked() (State, error) {
	defer c.mu.Unlock()

	c.log.WithField("dataset_id", c.datasetID).Debug("discarding response for superseded session")

	return c.stateLocked(), nil
}

func (c *Controller) stateLocked() State {
	s := State{
		Status:    c.status,
		DatasetID: c.datasetID,
		History:   c.history.Entries(),
		Cursor:    c.history.Cursor(),
		CanGoBack: c.history.CanGoBack(),
		Boolean:   c.buffer.BooleanState(),
		Numerical: c.buffer.NumericalState(),
		Pending:   c.pending,
	}

	if c.loading {
		s.Status = StatusLoading
	}

	if c.current != nil {
		cur := *c.current
		s.Current = &cur
	}

	if c.meta != nil {
		p := c.meta.Pagination
		s.Pagination = &p
		s.LabeledPercent = c.meta.LabeledPercent
	}

	return s
}
