package engine

import "time"

// Mock is a test double for the Engine.
type Mock struct {
	cb Callbacks

	loaded   bool
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64
	rate     float64

	loadErr error
	playErr error

	loadCalls   []string
	seekCalls   []time.Duration
	stopCalls   int
	closeCalls  int
	volumeCalls []float64
	rateCalls   []float64
}

// NewMock creates a new mock engine for testing.
func NewMock() *Mock {
	return &Mock{volume: 1, rate: 1}
}

func (m *Mock) SetCallbacks(cb Callbacks) { m.cb = cb }

func (m *Mock) Load(url string) error {
	m.loadCalls = append(m.loadCalls, url)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.loaded = true
	m.playing = false
	m.position = 0
	return nil
}

func (m *Mock) Play() error {
	if !m.loaded {
		return ErrNoTrack
	}
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	if m.cb.OnPlayState != nil {
		m.cb.OnPlayState(true)
	}
	return nil
}

func (m *Mock) Pause() {
	if !m.playing {
		return
	}
	m.playing = false
	if m.cb.OnPlayState != nil {
		m.cb.OnPlayState(false)
	}
}

func (m *Mock) Stop() {
	m.stopCalls++
	wasPlaying := m.playing
	m.loaded = false
	m.playing = false
	m.position = 0
	if wasPlaying && m.cb.OnPlayState != nil {
		m.cb.OnPlayState(false)
	}
}

func (m *Mock) Seek(pos time.Duration) {
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
}

func (m *Mock) SetVolume(level float64) {
	m.volumeCalls = append(m.volumeCalls, level)
	m.volume = level
}

func (m *Mock) SetRate(rate float64) {
	m.rateCalls = append(m.rateCalls, rate)
	m.rate = rate
}

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) Close() { m.closeCalls++ }

// Test helpers

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetPlayError(err error) { m.playErr = err }

func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

func (m *Mock) LoadCalls() []string { return m.loadCalls }

func (m *Mock) SeekCalls() []time.Duration { return m.seekCalls }

func (m *Mock) StopCalls() int { return m.stopCalls }

func (m *Mock) CloseCalls() int { return m.closeCalls }

func (m *Mock) Volume() float64 { return m.volume }

func (m *Mock) Rate() float64 { return m.rate }

func (m *Mock) Playing() bool { return m.playing }

func (m *Mock) Loaded() bool { return m.loaded }

// SimulateTime reports a position update as if the ticker fired.
func (m *Mock) SimulateTime(pos, dur time.Duration) {
	m.position = pos
	m.duration = dur
	if m.cb.OnTime != nil {
		m.cb.OnTime(pos, dur)
	}
}

// SimulateEnded simulates the current track finishing.
func (m *Mock) SimulateEnded() {
	m.playing = false
	if m.cb.OnEnded != nil {
		m.cb.OnEnded()
	}
}

// SimulateError simulates a mid-playback decode failure.
func (m *Mock) SimulateError(err error) {
	if m.cb.OnError != nil {
		m.cb.OnError(err)
	}
}
