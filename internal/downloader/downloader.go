package downloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/chronicle"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/filter"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/history"
	chttp "github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/http"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/organizer"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/progress"
	"github.com/uzairbcm/chronicle-android-bulk-data-downloader/internal/storage"
)

// State is the lifecycle phase of an orchestrator run.
type State string

const (
	StateIdle       State = "idle"
	StateRunning    State = "running"
	StateCancelling State = "cancelling"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
	StateFailed     State = "failed"
)

// minStudyIDLength is the length of a Chronicle study UUID.
const minStudyIDLength = 36

// Params carries everything one run needs.
type Params struct {
	// DownloadFolder is where data files are written.
	DownloadFolder string

	// StudyID identifies the Chronicle study.
	StudyID string

	// Token is the bearer token sent with every request.
	Token string

	// DataTypes lists the selected data types in dispatch order.
	DataTypes []chronicle.DataType

	// FilterMode selects inclusive or exclusive participant filtering.
	FilterMode chronicle.FilterType

	// FilterList holds the case-insensitive substring matchers.
	FilterList []string

	// DeleteZeroByte enables the zero-byte file purge after organizing.
	DeleteZeroByte bool
}

// Sink receives asynchronous run notifications. Implementations must
// not block; they are called from the download worker.
type Sink interface {
	// Progress reports the current percentage and status line.
	Progress(percent int, text string)

	// Error reports a terminal failure.
	Error(err error)

	// Completed reports a normal finish, after archival.
	Completed()

	// Cancelled reports that a cancellation request was honored.
	Cancelled()
}

// ValidationError is a pre-flight parameter failure. No network or
// filesystem activity happens before validation passes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// errRunCancelled propagates a cancellation observation up the call
// chain. It never reaches the Sink as an error.
var errRunCancelled = errors.New("downloader: run cancelled")

// Options configures an Orchestrator.
type Options struct {
	// BaseURL is the Chronicle API endpoint. Defaults to the
	// production API.
	BaseURL string

	// RateLimitDelay is the pause after each successful download and
	// the backoff base for retries.
	RateLimitDelay time.Duration

	// MaxRetries is how many times one download is retried after a
	// retryable failure.
	MaxRetries int

	// HTTPOptions configures the shared HTTP client.
	HTTPOptions chttp.Options

	// History, when set, records every completed download.
	History history.Repository

	// Events, when set, receives run events for external observers.
	Events *progress.Broadcaster

	// Logf receives skip-not-fail notices. Nil discards them.
	Logf func(format string, args ...any)
}

// Orchestrator drives one study download end to end: participant
// enumeration, filtering, the serialized download loop, and the
// archival passes. A single Orchestrator runs one study at a time.
type Orchestrator struct {
	opts    Options
	clients *chttp.Manager

	// gate is the single permit serializing all HTTP requests.
	gate chan struct{}

	cancelled atomic.Bool
	now       func() time.Time

	mu      sync.Mutex
	runID   string
	state   State
	percent int
	text    string
}

// New creates an Orchestrator with the given options.
func New(opts Options) *Orchestrator {
	if opts.BaseURL == "" {
		opts.BaseURL = chronicle.DefaultBaseURL
	}
	if opts.RateLimitDelay <= 0 {
		opts.RateLimitDelay = chttp.RateLimitDelay
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = chttp.MaxRetries
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return &Orchestrator{
		opts:    opts,
		clients: chttp.NewManager(opts.HTTPOptions),
		gate:    make(chan struct{}, 1),
		now:     time.Now,
		state:   StateIdle,
	}
}

// Snapshot is a point-in-time view of the orchestrator for status
// queries.
type Snapshot struct {
	RunID   string `json:"run_id"`
	State   State  `json:"state"`
	Percent int    `json:"percent"`
	Text    string `json:"text,omitempty"`
}

// Status returns the current run snapshot.
func (o *Orchestrator) Status() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{RunID: o.runID, State: o.state, Percent: o.percent, Text: o.text}
}

// Cancel requests cooperative cancellation. The flag is honored before
// each dispatch and after the request permit is acquired; an in-flight
// request always finishes on its own first.
func (o *Orchestrator) Cancel() {
	o.cancelled.Store(true)
	o.mu.Lock()
	if o.state == StateRunning {
		o.state = StateCancelling
	}
	snap := Snapshot{RunID: o.runID, State: o.state, Percent: o.percent, Text: o.text}
	o.mu.Unlock()
	o.publish(snap)
}

// Run executes one full download run and reports the outcome through
// sink. It blocks until the run reaches a terminal state; callers
// wanting asynchrony run it in a goroutine.
func (o *Orchestrator) Run(ctx context.Context, params Params, sink Sink) {
	o.mu.Lock()
	if o.state == StateRunning || o.state == StateCancelling {
		o.mu.Unlock()
		sink.Error(errors.New("downloader: a run is already active"))
		return
	}
	o.runID = uuid.NewString()
	o.state = StateRunning
	o.percent = 0
	o.text = ""
	o.mu.Unlock()
	o.cancelled.Store(false)

	err := o.run(ctx, params, sink)

	// Release the client before any terminal notification goes out.
	o.clients.Close()

	switch {
	case errors.Is(err, errRunCancelled):
		o.setState(StateCancelled)
		sink.Cancelled()
	case err != nil:
		o.setState(StateFailed)
		sink.Error(err)
	default:
		o.setState(StateCompleted)
		sink.Completed()
	}
}

func (o *Orchestrator) run(ctx context.Context, params Params, sink Sink) error {
	if err := validate(params); err != nil {
		return err
	}
	o.report(sink, 0, "")

	participants, err := o.fetchParticipants(ctx, params)
	if err != nil {
		return err
	}

	filtered, err := filter.Apply(participants, params.FilterMode, params.FilterList)
	if errors.Is(err, filter.ErrNoParticipants) {
		return fmt.Errorf("no participant IDs with data available to download were found after filtering, double check your filter and the participants in your study: %w", err)
	}
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, params.DownloadFolder)
	if err != nil {
		return err
	}
	defer store.Close()

	total := len(filtered) * len(params.DataTypes)
	completed := 0
	o.report(sink, progress.Percent(completed, total), progress.Status(10, completed, total))

	for _, participantID := range filtered {
		if o.cancelled.Load() {
			return errRunCancelled
		}
		for _, dataType := range params.DataTypes {
			if o.cancelled.Load() {
				return errRunCancelled
			}

			size, name, err := o.downloadOne(ctx, params, store, participantID, dataType)
			if err != nil {
				return err
			}

			completed++
			percent := progress.Percent(completed, total)
			o.report(sink, percent, progress.Status(percent, completed, total))

			if o.opts.History != nil {
				rec := history.Record{
					RunID:         o.runID,
					StudyID:       strings.TrimSpace(params.StudyID),
					ParticipantID: participantID,
					DataType:      dataType,
					File:          name,
					Bytes:         size,
					DownloadedAt:  o.now(),
				}
				if err := o.opts.History.Save(ctx, rec); err != nil {
					o.opts.Logf("recording download history: %v", err)
				}
			}
		}
	}

	if o.cancelled.Load() {
		return errRunCancelled
	}

	org := organizer.New(organizer.Options{
		Folder:         params.DownloadFolder,
		Selected:       params.DataTypes,
		DeleteZeroByte: params.DeleteZeroByte,
		Logf:           o.opts.Logf,
	})

	o.report(sink, 90, progress.Status(90, completed, total))
	if err := org.Archive(o.now()); err != nil {
		return err
	}
	o.report(sink, 95, progress.Status(95, completed, total))
	if err := org.Organize(); err != nil {
		return err
	}
	o.report(sink, 100, progress.Status(100, completed, total))
	return nil
}

func validate(params Params) error {
	if params.DownloadFolder == "" {
		return &ValidationError{Reason: "Please select a download folder."}
	}
	if len(strings.TrimSpace(params.StudyID)) < minStudyIDLength {
		return &ValidationError{Reason: "Please enter a valid Chronicle study ID."}
	}
	if params.FilterMode == chronicle.FilterInclusive && len(params.FilterList) == 0 {
		return &ValidationError{Reason: "Please enter a valid list of participant IDs to *include* when the *inclusive* list checkbox is checked."}
	}
	if len(params.DataTypes) == 0 {
		return &ValidationError{Reason: "Please select at least one type of data to download."}
	}
	return nil
}

// fetchParticipants enumerates every participant with data available.
// The stats request is not retried; a failure here fails the run.
func (o *Orchestrator) fetchParticipants(ctx context.Context, params Params) ([]string, error) {
	url := chronicle.StatsURL(o.opts.BaseURL, strings.TrimSpace(params.StudyID))
	body, err := o.fetch(ctx, url, params.Token)
	if err != nil {
		return nil, err
	}

	// Keyed by an internal identifier we do not care about; only the
	// participantId of each entry matters.
	var stats map[string]struct {
		ParticipantID string `json:"participantId"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("decode participant stats: %w", err)
	}

	ids := make([]string, 0, len(stats))
	for _, entry := range stats {
		ids = append(ids, entry.ParticipantID)
	}
	return ids, nil
}

// downloadOne fetches a single participant×data-type export with
// bounded retry, writes it to the store, then pauses for the rate
// limit. Returns the byte count and output filename.
func (o *Orchestrator) downloadOne(ctx context.Context, params Params, store *storage.Sink, participantID string, dataType chronicle.DataType) (int64, string, error) {
	url, err := chronicle.DownloadURL(o.opts.BaseURL, strings.TrimSpace(params.StudyID), participantID, dataType)
	if err != nil {
		return 0, "", err
	}

	for attempt := 0; ; attempt++ {
		body, err := o.fetch(ctx, url, params.Token)
		if err == nil {
			name, err := chronicle.OutputFileName(participantID, dataType, o.now())
			if err != nil {
				return 0, "", err
			}
			if err := store.WriteFile(ctx, name, body); err != nil {
				return 0, "", err
			}
			if err := sleepCtx(ctx, o.opts.RateLimitDelay); err != nil {
				return 0, "", err
			}
			return int64(len(body)), name, nil
		}

		if errors.Is(err, errRunCancelled) {
			return 0, "", err
		}
		if attempt >= o.opts.MaxRetries || !chttp.Retryable(err) {
			return 0, "", fmt.Errorf("download %s for %s: %w", dataType, participantID, err)
		}

		// A broken connection can poison the pooled client; status
		// errors leave it usable.
		if chttp.IsTransport(err) {
			o.clients.Recreate()
		}
		if err := sleepCtx(ctx, chttp.BackoffDelay(attempt, o.opts.RateLimitDelay)); err != nil {
			return 0, "", err
		}
	}
}

// fetch issues one authorized GET under the global request permit.
func (o *Orchestrator) fetch(ctx context.Context, url, token string) ([]byte, error) {
	o.gate <- struct{}{}
	defer func() { <-o.gate }()

	if o.cancelled.Load() {
		return nil, errRunCancelled
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))

	resp, err := o.clients.Acquire().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &chttp.StatusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (o *Orchestrator) setState(state State) {
	o.mu.Lock()
	o.state = state
	snap := Snapshot{RunID: o.runID, State: o.state, Percent: o.percent, Text: o.text}
	o.mu.Unlock()
	o.publish(snap)
}

func (o *Orchestrator) report(sink Sink, percent int, text string) {
	o.mu.Lock()
	o.percent = percent
	o.text = text
	snap := Snapshot{RunID: o.runID, State: o.state, Percent: percent, Text: text}
	o.mu.Unlock()

	sink.Progress(percent, text)
	o.publish(snap)
}

func (o *Orchestrator) publish(snap Snapshot) {
	if o.opts.Events == nil {
		return
	}
	o.opts.Events.Publish(progress.Event{
		RunID:   snap.RunID,
		State:   string(snap.State),
		Percent: snap.Percent,
		Text:    snap.Text,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
