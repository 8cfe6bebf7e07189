package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/model"
	"taskflow/internal/source"
	"taskflow/internal/store"
)

// SyncState represents the current state of a backend sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the current sync state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync operation completes. Tasks is
// the full refreshed snapshot; the app hands it to the reminder scheduler
// for a teardown-and-rebuild pass.
type SyncResultMsg struct {
	Tasks     []model.Task
	Companies []model.Company
	Error     error
	AuthError string
}

// fetchTimeout is the maximum time allowed for a single fetch operation.
const fetchTimeout = 30 * time.Second

// Poller periodically refreshes the task and company snapshot from the
// backend into the local cache.
type Poller struct {
	store     store.Store
	src       source.Source
	interval  time.Duration
	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a new Poller refreshing from src into s every interval.
func New(s store.Store, src source.Source, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Poller{
		store:     s,
		src:       src,
		interval:  interval,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the polling goroutine and returns a subscription command
// that waits on the result channel and returns SyncResultMsg messages to
// the Bubble Tea runtime.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.poll()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
	return nil
}

// Status returns the current sync status.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// poll runs the polling loop.
func (p *Poller) poll() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial fetch immediately.
	p.fetchAndUpsert()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetchAndUpsert()
		case <-p.triggerCh:
			p.fetchAndUpsert()
		}
	}
}

// fetchAndUpsert performs a single fetch, upserts results into the local
// cache, and sends a SyncResultMsg on the result channel.
func (p *Poller) fetchAndUpsert() {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	tasks, err := p.src.FetchTasks(ctx)
	if err != nil {
		p.setStatus(SyncError, err)

		if source.IsAuthError(err) {
			p.sendResult(SyncResultMsg{
				Error: err,
				AuthError: fmt.Sprintf(
					"authentication expired: %v. Update your API token.", err,
				),
			})
			return
		}

		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	companies, err := p.src.FetchCompanies(ctx)
	if err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	if err := p.store.UpsertTasks(ctx, tasks); err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(SyncResultMsg{Error: err})
		return
	}
	if err := p.store.UpsertCompanies(ctx, companies); err != nil {
		p.setStatus(SyncError, err)
		p.sendResult(SyncResultMsg{Error: err})
		return
	}

	p.setStatus(SyncIdle, nil)
	p.sendResult(SyncResultMsg{Tasks: tasks, Companies: companies})
}

// setStatus updates the sync status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle && err == nil {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// This should be called after processing a SyncResultMsg to continue
// listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
