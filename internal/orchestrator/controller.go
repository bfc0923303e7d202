package orchestrator

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/trendguard/trendguard/internal/insight"
	"github.com/trendguard/trendguard/internal/model"
)

// Transport is the remote analysis service as seen by the controller.
// *api.Client implements it.
type Transport interface {
	AnalyzeCampaign(ctx context.Context, in model.CampaignInput) (*model.CampaignResult, error)
	ListTrends(ctx context.Context) (*model.TrendList, error)
	AnalyzeTrend(ctx context.Context, trendName string) (*model.TrendAnalysis, error)
	CheckTrendHealth(ctx context.Context, trendName string) (*model.TrendHealth, error)
	CompareHashtags(ctx context.Context, hashtags []string, platform model.Platform) (*model.HashtagComparison, error)
	HealthCheck(ctx context.Context) (*model.ServiceHealth, error)
}

// Workflow names.
const (
	Campaign  = "campaign"
	TrendList = "trend_list"
	Trend     = "trend"
)

// Event describes one workflow transition.
type Event struct {
	Workflow string `json:"workflow"`
	Status   Status `json:"status"`
	Ticket   Ticket `json:"ticket"`
	Subject  string `json:"subject,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithOnChange registers fn for every transition. fn runs on the event loop
// and must not call back into the Controller.
func WithOnChange(fn func(Event)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the campaign, trend-list and trend-analysis workflows.
// Every transition is applied on a single event-loop goroutine; callers and
// transport goroutines communicate with it only by posting messages.
type Controller struct {
	transport Transport
	log       *zap.Logger
	onChange  func(Event)

	ctx    context.Context
	cancel context.CancelFunc
	inbox  chan func()
	done   chan struct{}
	calls  sync.WaitGroup
	once   sync.Once

	// Owned by the loop.
	campaign  *Workflow[insight.CampaignView]
	trendList *Workflow[insight.TrendListView]
	trend     *Workflow[insight.TrendView]
	selected  string
	waiters   map[string][]chan struct{}
}

// New starts a Controller. Cancelling parent has the same effect as Stop
// except that Stop also waits for outstanding transport calls.
func New(parent context.Context, t Transport, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		transport: t,
		log:       zap.NewNop(),
		ctx:       ctx,
		cancel:    cancel,
		inbox:     make(chan func()),
		done:      make(chan struct{}),
		campaign:  NewWorkflow[insight.CampaignView](Campaign, FallbackAnalysis),
		trendList: NewWorkflow[insight.TrendListView](TrendList, FallbackTrendList),
		trend:     NewWorkflow[insight.TrendView](Trend, FallbackAnalysis),
		waiters:   make(map[string][]chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	go c.run()
	return c
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case fn := <-c.inbox:
			fn()
		case <-c.ctx.Done():
			return
		}
	}
}

// Stop shuts the loop down, cancels in-flight calls and waits for them to
// return. Completions arriving after Stop are discarded. Stop is idempotent.
func (c *Controller) Stop() {
	c.once.Do(func() {
		c.cancel()
		<-c.done
		c.calls.Wait()
	})
}

// post runs fn on the loop and waits for it. It reports false when the
// loop has exited; fn is then not run.
func (c *Controller) post(fn func()) bool {
	ran := make(chan struct{})
	select {
	case c.inbox <- func() { fn(); close(ran) }:
		<-ran
		return true
	case <-c.done:
		return false
	}
}

// read runs a read-only fn on the loop, or directly once the loop is gone.
func (c *Controller) read(fn func()) {
	if !c.post(fn) {
		fn()
	}
}

// ─── Submissions ──────────────────────────────────────────────────────────────

// SubmitCampaign validates in and starts a campaign analysis. A
// *model.ValidationError is returned without touching the workflow.
func (c *Controller) SubmitCampaign(in model.CampaignInput) (Ticket, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	var t Ticket
	ok := c.post(func() {
		t = c.campaign.Submit()
		c.changed(c.campaign.View(), in.Topic)
		c.launch(func(ctx context.Context) func() {
			res, err := c.transport.AnalyzeCampaign(ctx, in)
			return func() { c.settleCampaign(t, res, err) }
		})
	})
	if !ok {
		return 0, ErrStopped
	}
	return t, nil
}

// LoadTrends starts a fetch of the trend catalogue.
func (c *Controller) LoadTrends() (Ticket, error) {
	var t Ticket
	ok := c.post(func() {
		t = c.trendList.Submit()
		c.changed(c.trendList.View(), "")
		c.launch(func(ctx context.Context) func() {
			res, err := c.transport.ListTrends(ctx)
			return func() { c.settleTrendList(t, res, err) }
		})
	})
	if !ok {
		return 0, ErrStopped
	}
	return t, nil
}

// SelectTrend makes name the selected trend and starts its analysis. Any
// analysis still in flight for a previous selection is superseded.
func (c *Controller) SelectTrend(name string) (Ticket, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &model.ValidationError{Fields: []model.FieldError{{Field: "trend_name", Message: "is required"}}}
	}
	var t Ticket
	ok := c.post(func() {
		c.selected = name
		t = c.trend.Submit()
		c.changed(c.trend.View(), name)
		c.launch(func(ctx context.Context) func() {
			res, err := c.transport.AnalyzeTrend(ctx, name)
			return func() { c.settleTrend(t, name, res, err) }
		})
	})
	if !ok {
		return 0, ErrStopped
	}
	return t, nil
}

// launch runs call on its own goroutine and posts the completion it returns
// back to the loop. Must be called from the loop.
func (c *Controller) launch(call func(ctx context.Context) func()) {
	c.calls.Add(1)
	go func() {
		defer c.calls.Done()
		complete := call(c.ctx)
		c.post(complete)
	}()
}

// ─── Completions (loop only) ──────────────────────────────────────────────────

func (c *Controller) settleCampaign(t Ticket, res *model.CampaignResult, err error) {
	if c.dropStale(Campaign, t, c.campaign.Stale(t)) {
		return
	}
	if err != nil {
		c.campaign.Fail(t, err)
	} else {
		c.campaign.Succeed(t, insight.AssembleCampaign(res))
	}
	c.settled(c.campaign.View(), "")
}

func (c *Controller) settleTrendList(t Ticket, res *model.TrendList, err error) {
	if c.dropStale(TrendList, t, c.trendList.Stale(t)) {
		return
	}
	if err != nil {
		c.trendList.Fail(t, err)
	} else {
		var trends []model.TrendSummary
		if res != nil {
			trends = res.Trends
		}
		c.trendList.Succeed(t, insight.AssembleTrendList(trends))
	}
	c.settled(c.trendList.View(), "")
}

func (c *Controller) settleTrend(t Ticket, name string, res *model.TrendAnalysis, err error) {
	if c.dropStale(Trend, t, c.trend.Stale(t)) {
		return
	}
	if err != nil {
		c.trend.Fail(t, err)
	} else {
		v := insight.AssembleTrend(res)
		if v.TrendName == "" {
			v.TrendName = name
		}
		c.trend.Succeed(t, v)
	}
	c.settled(c.trend.View(), name)
}

func (c *Controller) dropStale(workflow string, t Ticket, stale bool) bool {
	if stale {
		c.log.Debug("stale response dropped", zap.String("workflow", workflow), zap.Uint64("ticket", uint64(t)))
	}
	return stale
}

func (c *Controller) settled(v viewHeader, subject string) {
	c.changed(v, subject)
	name := v.header().Workflow
	for _, w := range c.waiters[name] {
		close(w)
	}
	delete(c.waiters, name)
}

// viewHeader lets transitions of any workflow be reported uniformly.
type viewHeader interface {
	header() Event
}

func (v View[T]) header() Event {
	return Event{Workflow: v.Workflow, Status: v.Status, Ticket: v.Ticket, Message: v.Error}
}

func (c *Controller) changed(v viewHeader, subject string) {
	ev := v.header()
	ev.Subject = subject
	c.log.Debug("workflow transition",
		zap.String("workflow", ev.Workflow),
		zap.String("status", string(ev.Status)),
		zap.Uint64("ticket", uint64(ev.Ticket)),
		zap.String("subject", subject),
	)
	if c.onChange != nil {
		c.onChange(ev)
	}
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// CampaignView returns a snapshot of the campaign workflow.
func (c *Controller) CampaignView() View[insight.CampaignView] {
	var v View[insight.CampaignView]
	c.read(func() { v = c.campaign.View() })
	return v
}

// TrendListView returns a snapshot of the trend-list workflow.
func (c *Controller) TrendListView() View[insight.TrendListView] {
	var v View[insight.TrendListView]
	c.read(func() { v = c.trendList.View() })
	return v
}

// TrendView returns a snapshot of the trend-analysis workflow.
func (c *Controller) TrendView() View[insight.TrendView] {
	var v View[insight.TrendView]
	c.read(func() { v = c.trend.View() })
	return v
}

// Selected returns the name of the selected trend, or "".
func (c *Controller) Selected() string {
	var s string
	c.read(func() { s = c.selected })
	return s
}

// Reset returns a settled workflow to Idle and reports whether it changed.
// Unknown workflow names report false.
func (c *Controller) Reset(workflow string) bool {
	var changed bool
	c.post(func() {
		switch workflow {
		case Campaign:
			changed = c.campaign.Reset()
			if changed {
				c.changed(c.campaign.View(), "")
			}
		case TrendList:
			changed = c.trendList.Reset()
			if changed {
				c.changed(c.trendList.View(), "")
			}
		case Trend:
			changed = c.trend.Reset()
			if changed {
				c.selected = ""
				c.changed(c.trend.View(), "")
			}
		}
	})
	return changed
}

// Await blocks until the latest request of workflow has settled, ctx is
// done or the controller stops. An idle or settled workflow returns at once.
func (c *Controller) Await(ctx context.Context, workflow string) error {
	var ch chan struct{}
	ok := c.post(func() {
		var status Status
		switch workflow {
		case Campaign:
			status = c.campaign.Status()
		case TrendList:
			status = c.trendList.Status()
		case Trend:
			status = c.trend.Status()
		}
		if status != StatusLoading {
			return
		}
		ch = make(chan struct{})
		c.waiters[workflow] = append(c.waiters[workflow], ch)
	})
	if !ok {
		return ErrStopped
	}
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}
