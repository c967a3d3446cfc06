package progress

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// IndicatorConfig configures an Indicator.
type IndicatorConfig struct {
	StepInterval time.Duration
	Steps        []string
}

// DefaultIndicatorConfig returns the stock five steps advancing every 2 seconds.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		StepInterval: 2 * time.Second,
		Steps:        DefaultSteps,
	}
}

// AdvanceFunc is called from the ticker goroutine after the cursor moves.
type AdvanceFunc func(Snapshot)

// Indicator walks a cursor over a fixed list of steps on a timer. The cursor starts
// at 0 on Start, advances by one per tick, holds at the last step and returns to 0
// on Stop.
type Indicator struct {
	// runMutex serializes Start and Stop; mutex guards the cursor and is the only
	// lock the ticker goroutine takes.
	runMutex sync.Mutex
	mutex    sync.RWMutex

	config    IndicatorConfig
	logger    zerolog.Logger
	onAdvance AdvanceFunc

	cursor   int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewIndicator creates an idle indicator.
func NewIndicator(logger zerolog.Logger, config *IndicatorConfig) *Indicator {
	cfg := DefaultIndicatorConfig()
	if config != nil {
		if config.StepInterval > 0 {
			cfg.StepInterval = config.StepInterval
		}
		if len(config.Steps) > 0 {
			cfg.Steps = append([]string(nil), config.Steps...)
		}
	}

	return &Indicator{
		config: cfg,
		logger: logger.With().Str("component", "ProgressIndicator").Logger(),
	}
}

// SetOnAdvance registers the callback invoked on every cursor move. It must be set
// before Start.
func (ind *Indicator) SetOnAdvance(fn AdvanceFunc) {
	ind.mutex.Lock()
	defer ind.mutex.Unlock()
	ind.onAdvance = fn
}

// Start resets the cursor to the first step and starts the ticker. A running
// indicator is restarted.
func (ind *Indicator) Start() {
	ind.runMutex.Lock()
	defer ind.runMutex.Unlock()

	ind.stopLocked()

	ind.mutex.Lock()
	ind.cursor = 0
	ind.running = true
	ind.ticker = time.NewTicker(ind.config.StepInterval)
	ind.stopChan = make(chan struct{})
	ind.doneChan = make(chan struct{})
	ticker, stopChan, doneChan := ind.ticker, ind.stopChan, ind.doneChan
	ind.mutex.Unlock()

	ind.logger.Debug().Dur("interval", ind.config.StepInterval).Msg("Progress indicator started")

	go ind.tickLoop(ticker, stopChan, doneChan)
}

// Stop tears down the ticker, waits for the tick goroutine to exit and resets the
// cursor. Stopping an idle indicator is a no-op apart from the reset.
func (ind *Indicator) Stop() {
	ind.runMutex.Lock()
	defer ind.runMutex.Unlock()

	ind.stopLocked()
}

func (ind *Indicator) stopLocked() {
	ind.mutex.Lock()
	wasRunning := ind.running
	stopChan, doneChan, ticker := ind.stopChan, ind.doneChan, ind.ticker
	ind.running = false
	ind.ticker = nil
	ind.stopChan = nil
	ind.doneChan = nil
	ind.mutex.Unlock()

	if wasRunning {
		ticker.Stop()
		close(stopChan)
		<-doneChan
		ind.logger.Debug().Msg("Progress indicator stopped")
	}

	ind.mutex.Lock()
	ind.cursor = 0
	ind.mutex.Unlock()
}

// IsRunning reports whether the ticker is active.
func (ind *Indicator) IsRunning() bool {
	ind.mutex.RLock()
	defer ind.mutex.RUnlock()
	return ind.running
}

// Snapshot returns the current cursor and step list.
func (ind *Indicator) Snapshot() Snapshot {
	ind.mutex.RLock()
	defer ind.mutex.RUnlock()
	return ind.snapshotLocked()
}

func (ind *Indicator) snapshotLocked() Snapshot {
	return Snapshot{
		Running: ind.running,
		Cursor:  ind.cursor,
		Steps:   append([]string(nil), ind.config.Steps...),
	}
}

func (ind *Indicator) tickLoop(ticker *time.Ticker, stopChan chan struct{}, doneChan chan struct{}) {
	defer close(doneChan)

	for {
		select {
		case <-stopChan:
			return
		case <-ticker.C:
			ind.advance(stopChan)
		}
	}
}

func (ind *Indicator) advance(stopChan chan struct{}) {
	ind.mutex.Lock()
	// Stop may have won the race for the lock
	if !ind.running || ind.stopChan != stopChan {
		ind.mutex.Unlock()
		return
	}

	if ind.cursor >= len(ind.config.Steps)-1 {
		ind.mutex.Unlock()
		return
	}
	ind.cursor++
	snapshot := ind.snapshotLocked()
	callback := ind.onAdvance
	ind.mutex.Unlock()

	ind.logger.Debug().Int("cursor", snapshot.Cursor).Str("step", snapshot.Current()).Msg("Progress advanced")

	if callback != nil {
		callback(snapshot)
	}
}
