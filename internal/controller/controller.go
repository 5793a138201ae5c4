// Package controller implements the two-step circle selection of a
// conversion page: commit a value on a first circle, click a second circle
// to convert. One Controller serves one page session.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/history"
	"github.com/sp-meter/circles/internal/logger"
	"github.com/sp-meter/circles/internal/render"
)

const recordTimeout = 5 * time.Second

// Options configures optional collaborators of a Controller.
type Options struct {
	Logger    *zap.SugaredLogger
	Recorder  Recorder
	SessionID string
}

// slot tracks the newest request issued for a region. Responses carrying an
// older sequence number are dropped.
type slot struct {
	seq    uint64
	cancel context.CancelFunc
}

// Controller owns the selection state of one page session. Event methods
// are safe for concurrent use; they are serialized internally. Backend
// requests run in their own goroutines and write their region only if no
// newer request or reset touched it meanwhile.
type Controller struct {
	page     *catalog.Page
	api      backend.API
	view     View
	render   *render.Renderer
	log      *zap.SugaredLogger
	recorder Recorder
	session  string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	sel     Selection
	tooltip string
	slots   map[Region]*slot
	closed  bool
}

// New creates a Controller for page that talks to api and draws into view.
func New(page *catalog.Page, api backend.API, view View, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	session := opts.SessionID
	if session == "" {
		session = uuid.New().String()
	}
	log := logger.OrNop(opts.Logger).With(logger.FieldPage, page.ID, logger.FieldSession, session)

	return &Controller{
		page:     page,
		api:      api,
		view:     view,
		render:   render.New(page),
		log:      log,
		recorder: opts.Recorder,
		session:  session,
		ctx:      ctx,
		cancel:   cancel,
		slots: map[Region]*slot{
			RegionExplanation: {},
			RegionResult:      {},
		},
	}
}

// SessionID identifies this controller in logs and history.
func (c *Controller) SessionID() string { return c.session }

// Page returns the page this controller serves.
func (c *Controller) Page() *catalog.Page { return c.page }

// State returns the current state machine position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the committed first unit, if any.
func (c *Controller) Selection() (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel, c.state == FirstChosen
}

// ActiveTooltip returns the label of the open tooltip, or "".
func (c *Controller) ActiveTooltip() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Click handles a click on the circle with label: it opens the tooltip while
// Idle and converts from the first selection once one is committed.
func (c *Controller) Click(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := c.lookup(label)
	if err != nil {
		return err
	}
	if c.state == Idle {
		c.openTooltip(u)
		return nil
	}
	return c.selectSecond(u)
}

// OpenTooltip closes any open tooltip and opens the one of label.
func (c *Controller) OpenTooltip(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := c.lookup(label)
	if err != nil {
		return err
	}
	c.openTooltip(u)
	return nil
}

// Confirm commits input as the value of the circle with label. A blank input
// is ignored. A supported unit triggers an asynchronous description lookup
// for the explanation region; an unsupported one shows a fixed message.
// Either way the controller is FirstChosen afterwards.
func (c *Controller) Confirm(label, input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := c.lookup(label)
	if err != nil {
		return err
	}
	value := strings.TrimSpace(input)
	if value == "" {
		return nil
	}

	c.sel = Selection{Label: u.Label, Name: u.Name, Value: value}
	c.state = FirstChosen
	c.view.SetTooltip(u.Label, false)
	if c.tooltip == u.Label {
		c.tooltip = ""
	}

	c.log.Debugw("first unit committed", logger.FieldUnit, u.Name, "value", value)

	id, ok := c.page.IDFor(u.Name)
	if !ok {
		c.claim(RegionExplanation)
		c.view.SetRegion(RegionExplanation, c.render.NoDescription())
		c.recordAsync(history.Entry{
			Kind:     history.KindInfo,
			FromName: u.Name,
			Outcome:  history.OutcomeUnmapped,
		})
		return nil
	}

	ctx, seq := c.start(RegionExplanation)
	c.wg.Add(1)
	go c.fetchInfo(ctx, seq, u.Name, id)
	return nil
}

// Select converts the committed first value into the unit of label. The
// same circle as the first selection is a no-op. The controller stays
// FirstChosen so further clicks convert the same value again.
func (c *Controller) Select(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	u, err := c.lookup(label)
	if err != nil {
		return err
	}
	if c.state != FirstChosen {
		return ErrNothingSelected
	}
	return c.selectSecond(u)
}

// Reset clears the selection, both regions and every tooltip input.
// Tooltip visibility is left alone. Requests still in flight are cancelled
// and their responses discarded.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.sel = Selection{}
	c.state = Idle
	for _, r := range []Region{RegionExplanation, RegionResult} {
		c.claim(r)
		c.view.SetRegion(r, "")
	}
	c.view.ClearInputs()
	c.log.Debug("selection reset")
	return nil
}

// Dismiss closes the open tooltip, if any.
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.tooltip != "" {
		c.view.SetTooltip(c.tooltip, false)
		c.tooltip = ""
	}
	return nil
}

// Wait blocks until every in-flight request and history write finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight requests and waits for their goroutines. Events
// after Close return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}

// lookup resolves a circle label. Callers hold c.mu.
func (c *Controller) lookup(label string) (catalog.Unit, error) {
	if c.closed {
		return catalog.Unit{}, ErrClosed
	}
	u, ok := c.page.Unit(label)
	if !ok {
		return catalog.Unit{}, errors.Wrapf(ErrUnknownControl, "%q on page %s", label, c.page.ID)
	}
	return u, nil
}

func (c *Controller) openTooltip(u catalog.Unit) {
	if c.tooltip != "" && c.tooltip != u.Label {
		c.view.SetTooltip(c.tooltip, false)
	}
	c.tooltip = u.Label
	c.view.SetTooltip(u.Label, true)
}

func (c *Controller) selectSecond(u catalog.Unit) error {
	first := c.sel
	if u.Label == first.Label {
		return nil
	}

	entry := history.Entry{
		Kind:     history.KindConversion,
		FromName: first.Name,
		ToName:   u.Name,
		Value:    first.Value,
	}

	value, err := c.page.PrepareValue(first.Value)
	if err != nil {
		c.claim(RegionResult)
		c.view.SetRegion(RegionResult, c.render.InvalidNumber())
		entry.Outcome = history.OutcomeInvalidNumber
		c.recordAsync(entry)
		return nil
	}

	fromID, toID, err := c.page.Resolve(first.Name, u.Name)
	if err != nil {
		c.claim(RegionResult)
		c.view.SetRegion(RegionResult, c.render.NoConversion())
		entry.FromID, _ = c.page.IDFor(first.Name)
		entry.ToID, _ = c.page.IDFor(u.Name)
		entry.Outcome = history.OutcomeUnmapped
		c.recordAsync(entry)
		return nil
	}

	entry.FromID, entry.ToID, entry.Value = fromID, toID, value
	ctx, seq := c.start(RegionResult)
	c.wg.Add(1)
	go c.fetchConversion(ctx, seq, entry)
	return nil
}

func (c *Controller) fetchInfo(ctx context.Context, seq uint64, name, id string) {
	defer c.wg.Done()

	started := time.Now()
	info, err := c.api.Info(ctx, id)

	var html string
	if err == nil {
		html, err = c.render.Explanation(info)
	}
	if err != nil {
		html = c.render.DescriptionUnavailable()
	}

	entry := history.Entry{
		Kind:     history.KindInfo,
		FromName: name,
		FromID:   id,
		Outcome:  outcomeOf(err),
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Result = info.Name.String()
	}

	c.deliver(RegionExplanation, seq, html, started, err)
	c.record(entry)
}

func (c *Controller) fetchConversion(ctx context.Context, seq uint64, entry history.Entry) {
	defer c.wg.Done()

	started := time.Now()
	conv, err := c.api.Convert(ctx, entry.FromID, entry.ToID, entry.Value)

	var html string
	if err == nil {
		html, err = c.render.Result(entry.FromName, entry.ToName, conv)
	}
	if err != nil {
		html = c.render.ConversionFailed(err)
	}

	entry.Outcome = outcomeOf(err)
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Result = conv.Result.String()
	}

	c.deliver(RegionResult, seq, html, started, err)
	c.record(entry)
}

// deliver writes a response into region unless a newer request or reset
// claimed the region after seq was issued.
func (c *Controller) deliver(region Region, seq uint64, html string, started time.Time, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.With(
		logger.FieldRegion, region,
		logger.FieldSeq, seq,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	)

	s := c.slots[region]
	if c.closed || s.seq != seq {
		log.Debugw("dropping stale response", "current_seq", s.seq)
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if err != nil {
		log.Warnw("backend request failed", "error", err)
	} else {
		log.Debug("backend request completed")
	}
	c.view.SetRegion(region, html)
}

// claim invalidates whatever request currently owns region. Callers hold c.mu.
func (c *Controller) claim(region Region) uint64 {
	s := c.slots[region]
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
	return s.seq
}

// start claims region for a new request. Callers hold c.mu.
func (c *Controller) start(region Region) (context.Context, uint64) {
	seq := c.claim(region)
	ctx, cancel := context.WithCancel(c.ctx)
	c.slots[region].cancel = cancel
	return ctx, seq
}

func (c *Controller) recordAsync(entry history.Entry) {
	if c.recorder == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.record(entry)
	}()
}

func (c *Controller) record(entry history.Entry) {
	if c.recorder == nil {
		return
	}
	entry.Page = c.page.ID
	entry.SessionID = c.session

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := c.recorder.Record(ctx, entry); err != nil {
		c.log.Warnw("recording history failed", "error", err)
	}
}

func outcomeOf(err error) history.Outcome {
	switch {
	case err == nil:
		return history.OutcomeOK
	case errors.Is(err, context.Canceled):
		return history.OutcomeCancelled
	default:
		return history.OutcomeFailed
	}
}
