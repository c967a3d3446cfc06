package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndicator(interval time.Duration) *Indicator {
	return NewIndicator(zerolog.Nop(), &IndicatorConfig{StepInterval: interval})
}

func TestIndicator_New(t *testing.T) {
	ind := NewIndicator(zerolog.Nop(), nil)
	snap := ind.Snapshot()

	assert.False(t, snap.Running)
	assert.Equal(t, 0, snap.Cursor)
	assert.Equal(t, DefaultSteps, snap.Steps)
	assert.Equal(t, "Initializing scan", snap.Current())
	assert.Equal(t, 2*time.Second, ind.config.StepInterval)
}

func TestIndicator_AdvancesAndHoldsAtLastStep(t *testing.T) {
	ind := newTestIndicator(5 * time.Millisecond)
	defer ind.Stop()

	ind.Start()
	require.Eventually(t, func() bool {
		return ind.Snapshot().Cursor == len(DefaultSteps)-1
	}, time.Second, time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	snap := ind.Snapshot()
	assert.True(t, snap.Running)
	assert.Equal(t, len(DefaultSteps)-1, snap.Cursor)
	assert.Equal(t, "Generating AI summary", snap.Current())
}

func TestIndicator_StopResetsCursor(t *testing.T) {
	ind := newTestIndicator(5 * time.Millisecond)

	ind.Start()
	require.Eventually(t, func() bool { return ind.Snapshot().Cursor >= 2 }, time.Second, time.Millisecond)

	ind.Stop()
	snap := ind.Snapshot()
	assert.False(t, snap.Running)
	assert.Equal(t, 0, snap.Cursor)

	// no ticks after stop
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, ind.Snapshot().Cursor)
}

func TestIndicator_RestartBeginsAtFirstStep(t *testing.T) {
	ind := newTestIndicator(5 * time.Millisecond)
	defer ind.Stop()

	ind.Start()
	require.Eventually(t, func() bool { return ind.Snapshot().Cursor >= 3 }, time.Second, time.Millisecond)

	ind.Stop()
	ind.config.StepInterval = time.Hour
	ind.Start()
	assert.Equal(t, 0, ind.Snapshot().Cursor)
	assert.True(t, ind.IsRunning())
}

func TestIndicator_StopIdempotent(t *testing.T) {
	ind := newTestIndicator(time.Hour)
	ind.Stop()
	ind.Start()
	ind.Stop()
	ind.Stop()
	assert.False(t, ind.IsRunning())
}

func TestIndicator_OnAdvance(t *testing.T) {
	ind := newTestIndicator(5 * time.Millisecond)

	var mu sync.Mutex
	var cursors []int
	ind.SetOnAdvance(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		cursors = append(cursors, s.Cursor)
	})

	ind.Start()
	require.Eventually(t, func() bool { return ind.Snapshot().Cursor == len(DefaultSteps)-1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	ind.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4}, cursors, "callback fires once per move and never while holding")
}

func TestIndicator_CustomSteps(t *testing.T) {
	ind := NewIndicator(zerolog.Nop(), &IndicatorConfig{StepInterval: 5 * time.Millisecond, Steps: []string{"a", "b"}})
	defer ind.Stop()

	ind.Start()
	require.Eventually(t, func() bool { return ind.Snapshot().Current() == "b" }, time.Second, time.Millisecond)
}

func TestFormatSnapshot(t *testing.T) {
	assert.Equal(t, "⏳ [██░░░] 2/5 Checking SSL certificate", FormatSnapshot(Snapshot{Cursor: 1, Steps: DefaultSteps}))
	assert.Equal(t, "", FormatSnapshot(Snapshot{}))
}

func TestDisplay_SkipsDuplicates(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, zerolog.Nop(), true)

	d.Show(Snapshot{Cursor: 0, Steps: DefaultSteps})
	d.Show(Snapshot{Cursor: 0, Steps: DefaultSteps})
	d.Show(Snapshot{Cursor: 1, Steps: DefaultSteps})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Initializing scan")
	assert.Contains(t, lines[1], "Checking SSL certificate")

	d.Reset()
	d.Show(Snapshot{Cursor: 1, Steps: DefaultSteps})
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestDisplay_Disabled(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplay(&buf, zerolog.Nop(), false)
	d.Show(Snapshot{Cursor: 0, Steps: DefaultSteps})
	assert.Empty(t, buf.String())
}
