package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/trendguard/trendguard/internal/model"
	"github.com/trendguard/trendguard/internal/orchestrator"
	"github.com/trendguard/trendguard/internal/pipeline"
	"github.com/trendguard/trendguard/internal/render"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive session over the campaign and trend workflows",
	Long: `Start a line-oriented session. Requests run in the background and every
workflow transition is printed as it happens; a settled result is
rendered automatically.

Commands:
  list                   load the trend catalogue
  select <TREND_NAME>    analyze a trend (supersedes any pending selection)
  campaign <FILE>        submit a campaign read from a JSON file
  status                 show every workflow's state
  show <WORKFLOW>        render the current result (campaign|trend_list|trend)
  reset <WORKFLOW>       return a settled workflow to idle
  wait                   block until nothing is loading
  help                   print this list
  quit                   end the session (pending requests are awaited)

Selecting a new trend while one is loading drops the older response.`,
	Example: `  trendguard watch
  printf 'list\nselect planking\nwait\n' | trendguard watch --format md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		s := newSession(cmd.OutOrStdout(), resolveFormat(deps.Config.Format))
		ctrl := deps.NewController(cmd.Context(), orchestrator.WithOnChange(s.notify))
		s.ctrl = ctrl
		s.start()

		interactive := false
		if f, ok := cmd.InOrStdin().(*os.File); ok {
			interactive = pipeline.IsTTY(f)
		}
		err = s.run(cmd.Context(), cmd.InOrStdin(), interactive)
		ctrl.Stop()
		s.close()
		return err
	},
}

var workflows = []string{orchestrator.Campaign, orchestrator.TrendList, orchestrator.Trend}

// session serialises output from the input loop and the event printer.
// Events are queued without bound so the controller loop never blocks on
// the printer, which itself reads snapshots back from the controller.
type session struct {
	mu     sync.Mutex
	out    io.Writer
	format string
	ctrl   *orchestrator.Controller

	qmu     sync.Mutex
	cond    *sync.Cond
	queue   []orchestrator.Event
	queued  int
	printed int
	closed  bool
	done    chan struct{}
}

func newSession(out io.Writer, format string) *session {
	s := &session{out: out, format: format, done: make(chan struct{})}
	s.cond = sync.NewCond(&s.qmu)
	return s
}

// notify runs on the controller loop; it only queues the event.
func (s *session) notify(ev orchestrator.Event) {
	s.qmu.Lock()
	s.queue = append(s.queue, ev)
	s.queued++
	s.qmu.Unlock()
	s.cond.Broadcast()
}

func (s *session) start() {
	go func() {
		defer close(s.done)
		for {
			s.qmu.Lock()
			for len(s.queue) == 0 && !s.closed {
				s.cond.Wait()
			}
			if len(s.queue) == 0 {
				s.qmu.Unlock()
				return
			}
			ev := s.queue[0]
			s.queue = s.queue[1:]
			s.qmu.Unlock()

			s.printEvent(ev)

			s.qmu.Lock()
			s.printed++
			s.qmu.Unlock()
			s.cond.Broadcast()
		}
	}()
}

// flush blocks until every event queued so far has been printed.
func (s *session) flush() {
	s.qmu.Lock()
	target := s.queued
	for s.printed < target && !s.closed {
		s.cond.Wait()
	}
	s.qmu.Unlock()
}

// close drains the queue. Call it after the controller has stopped.
func (s *session) close() {
	s.qmu.Lock()
	s.closed = true
	s.qmu.Unlock()
	s.cond.Broadcast()
	<-s.done
}

func (s *session) printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, a...)
}

func (s *session) printEvent(ev orchestrator.Event) {
	line := fmt.Sprintf("→ %s #%d %s", ev.Workflow, ev.Ticket, ev.Status)
	if ev.Subject != "" {
		line += " (" + ev.Subject + ")"
	}
	if ev.Status == orchestrator.StatusFailed && ev.Message != "" {
		line += ": " + ev.Message
	}
	s.printf("%s\n", line)
	if ev.Status == orchestrator.StatusSuccess {
		s.show(ev.Workflow, ev.Ticket)
	}
}

// show renders the workflow's snapshot. A non-zero ticket restricts output
// to that request so superseded results are never shown.
func (s *session) show(workflow string, ticket orchestrator.Ticket) {
	result, current, ok := s.snapshot(workflow)
	if !ok {
		s.printf("nothing to show for %s\n", workflow)
		return
	}
	if ticket != 0 && current != ticket {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := render.Render(s.out, result, s.format); err != nil {
		fmt.Fprintf(s.out, "render: %v\n", err)
	}
}

func (s *session) snapshot(workflow string) (*model.Result, orchestrator.Ticket, bool) {
	var (
		data    any
		kind    string
		ticket  orchestrator.Ticket
		present bool
	)
	switch workflow {
	case orchestrator.Campaign:
		v := s.ctrl.CampaignView()
		data, kind, ticket, present = v.Result, model.KindCampaign, v.Ticket, v.Result != nil
	case orchestrator.TrendList:
		v := s.ctrl.TrendListView()
		data, kind, ticket, present = v.Result, model.KindTrendList, v.Ticket, v.Result != nil
	case orchestrator.Trend:
		v := s.ctrl.TrendView()
		data, kind, ticket, present = v.Result, model.KindTrend, v.Ticket, v.Result != nil
	}
	if !present {
		return nil, 0, false
	}
	return &model.Result{Kind: kind, GeneratedAt: time.Now(), Command: "watch", Data: data}, ticket, true
}

func (s *session) status() {
	rows := [][]string{}
	for _, wf := range workflows {
		var status orchestrator.Status
		var ticket orchestrator.Ticket
		var msg string
		switch wf {
		case orchestrator.Campaign:
			v := s.ctrl.CampaignView()
			status, ticket, msg = v.Status, v.Ticket, v.Error
		case orchestrator.TrendList:
			v := s.ctrl.TrendListView()
			status, ticket, msg = v.Status, v.Ticket, v.Error
		case orchestrator.Trend:
			v := s.ctrl.TrendView()
			status, ticket, msg = v.Status, v.Ticket, v.Error
			if sel := s.ctrl.Selected(); sel != "" {
				msg = strings.TrimSpace(sel + " " + msg)
			}
		}
		rows = append(rows, []string{wf, string(status), fmt.Sprintf("#%d", ticket), msg})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		fmt.Fprintf(s.out, "  %-10s  %-7s  %-4s  %s\n", r[0], r[1], r[2], strings.TrimSpace(r[3]))
	}
}

// wait blocks until no workflow is loading and their transitions have been
// printed.
func (s *session) wait(ctx context.Context) error {
	for _, wf := range workflows {
		if err := s.ctrl.Await(ctx, wf); err != nil {
			return err
		}
	}
	s.flush()
	return nil
}

// run reads commands until quit, EOF or ctx is done, then awaits whatever
// is still loading.
func (s *session) run(ctx context.Context, in io.Reader, interactive bool) error {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if interactive {
			s.printf("trendguard> ")
		}
		var line string
		var ok bool
		select {
		case line, ok = <-lines:
		case <-ctx.Done():
			return nil
		}
		if !ok {
			return s.wait(ctx)
		}
		verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(verb) {
		case "":
		case "list":
			s.report(s.ctrl.LoadTrends())
		case "select":
			s.report(s.ctrl.SelectTrend(arg))
		case "campaign":
			s.submitCampaign(arg)
		case "status":
			s.status()
		case "show":
			s.show(arg, 0)
		case "reset":
			if !s.ctrl.Reset(arg) {
				s.printf("%s is not settled (or unknown)\n", arg)
			}
		case "wait":
			if err := s.wait(ctx); err != nil {
				return err
			}
		case "help", "?":
			s.printf("commands: list, select <trend>, campaign <file>, status, show <workflow>, reset <workflow>, wait, quit\n")
		case "quit", "exit", "q":
			return s.wait(ctx)
		default:
			s.printf("unknown command %q (try help)\n", verb)
		}
	}
}

func (s *session) report(_ orchestrator.Ticket, err error) {
	if err != nil {
		s.printf("error: %v\n", err)
	}
}

func (s *session) submitCampaign(path string) {
	if path == "" {
		s.printf("error: campaign needs a JSON file\n")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		s.printf("error: %v\n", err)
		return
	}
	in, err := pipeline.ReadCampaignInput(f)
	_ = f.Close()
	if err != nil {
		s.printf("error: %v\n", err)
		return
	}
	if in.Platform == "" {
		in.Platform = model.PlatformInstagram
	}
	if in.PlannedDurationDays == 0 {
		in.PlannedDurationDays = 30
	}
	s.report(s.ctrl.SubmitCampaign(*in))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
