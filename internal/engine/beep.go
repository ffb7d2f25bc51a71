package engine

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"go.uber.org/zap"
)

const (
	// engineRate is the fixed speaker sample rate. Sources at other rates
	// are resampled, which also gives us playback-rate control for free.
	engineRate beep.SampleRate = 44100

	resampleQuality = 4
	spoolTimeout    = 60 * time.Second
	tickInterval    = 500 * time.Millisecond

	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
	extOGA  = ".oga"
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(engineRate, engineRate.N(time.Second/10))
	})
	return speakerErr
}

// Player is the beep-backed Engine. It spools the audio URL to a temp file
// before decoding so the streamer can seek.
type Player struct {
	// loadMu serializes whole Load calls. Teardown, spool, decode and
	// install must not interleave between two loads, or the later install
	// can be overwritten by a stale one and leak its temp file.
	loadMu sync.Mutex

	mu sync.Mutex
	cb Callbacks

	httpClient *http.Client
	log        *zap.Logger

	file      *os.File
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	volume    *effects.Volume

	playing     bool
	ended       bool
	volumeLevel float64
	rate        float64

	// gen increments on every Load and Stop; signals from a previous
	// handle carry a stale gen and are dropped.
	gen        uint64
	errGen     uint64
	finishedCh chan uint64
	quit       chan struct{}
	closeOnce  sync.Once
}

// New creates a beep-backed player. The speaker is initialized on first Load.
func New(log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{
		httpClient:  &http.Client{Timeout: spoolTimeout},
		log:         log.Named("engine"),
		volumeLevel: 1,
		rate:        1,
		finishedCh:  make(chan uint64, 1),
		quit:        make(chan struct{}),
	}
	go p.endedLoop()
	go p.tickLoop()
	return p
}

// SetCallbacks installs the callback set. Must be called before Load.
func (p *Player) SetCallbacks(cb Callbacks) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// Load fetches the URL, decodes it and queues it on the speaker, paused.
// Any previous handle is torn down first.
func (p *Player) Load(rawURL string) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.Stop()

	f, ext, err := p.spool(rawURL)
	if err != nil {
		return fmt.Errorf("fetch audio: %w", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case extMP3:
		streamer, format, err = mp3.Decode(f)
	case extFLAC:
		streamer, format, err = flac.Decode(f)
	case extOGG, extOGA:
		streamer, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		name := f.Name()
		f.Close()
		os.Remove(name)
		return fmt.Errorf("decode audio: %w", err)
	}

	if err := initSpeaker(); err != nil {
		streamer.Close()
		name := f.Name()
		f.Close()
		os.Remove(name)
		return fmt.Errorf("init speaker: %w", err)
	}

	p.mu.Lock()
	p.file = f
	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	p.resampler = beep.Resample(resampleQuality, format.SampleRate, engineRate, p.ctrl)
	if p.rate != 1 {
		p.resampler.SetRatio(p.baseRatioLocked() * p.rate)
	}
	p.volume = &effects.Volume{
		Streamer: p.resampler,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
	}
	p.gen++
	gen := p.gen
	out := p.volume
	p.mu.Unlock()

	p.log.Debug("loaded audio",
		zap.String("format", strings.TrimPrefix(ext, ".")),
		zap.Duration("duration", format.SampleRate.D(streamer.Len())))

	speaker.Play(beep.Seq(out, beep.Callback(func() {
		// Fires under the speaker lock; only signal, never call out.
		select {
		case p.finishedCh <- gen:
		default:
		}
	})))

	return nil
}

// Play unpauses the loaded handle. After a natural end the handle is
// re-queued on the speaker, so a Seek(0) followed by Play replays it.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.ctrl == nil {
		p.mu.Unlock()
		return ErrNoTrack
	}
	ctrl := p.ctrl
	requeue := p.ended
	p.ended = false
	if requeue {
		p.gen++
	}
	gen := p.gen
	out := p.volume
	p.playing = true
	cb := p.cb
	p.mu.Unlock()

	speaker.Lock()
	ctrl.Paused = false
	speaker.Unlock()

	if requeue {
		speaker.Play(beep.Seq(out, beep.Callback(func() {
			select {
			case p.finishedCh <- gen:
			default:
			}
		})))
	}

	if cb.OnPlayState != nil {
		cb.OnPlayState(true)
	}
	return nil
}

// Pause pauses the loaded handle.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.ctrl == nil || !p.playing {
		p.mu.Unlock()
		return
	}
	ctrl := p.ctrl
	p.playing = false
	cb := p.cb
	p.mu.Unlock()

	speaker.Lock()
	ctrl.Paused = true
	speaker.Unlock()

	if cb.OnPlayState != nil {
		cb.OnPlayState(false)
	}
}

// Stop tears the current handle down and releases the spool file.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.streamer == nil {
		p.mu.Unlock()
		return
	}

	speaker.Clear()

	p.streamer.Close()
	name := p.file.Name()
	p.file.Close()
	os.Remove(name)

	p.file = nil
	p.streamer = nil
	p.ctrl = nil
	p.resampler = nil
	p.volume = nil
	p.ended = false
	p.gen++

	wasPlaying := p.playing
	p.playing = false
	cb := p.cb
	p.mu.Unlock()

	if wasPlaying && cb.OnPlayState != nil {
		cb.OnPlayState(false)
	}
}

// Seek moves to an absolute position, clamped to the track bounds.
func (p *Player) Seek(pos time.Duration) {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	p.mu.Unlock()
	if streamer == nil {
		return
	}

	n := format.SampleRate.N(pos)

	speaker.Lock()
	if n < 0 {
		n = 0
	}
	if l := streamer.Len(); n >= l {
		n = max(l-1, 0)
	}
	_ = streamer.Seek(n)
	speaker.Unlock()
}

// SetVolume sets the volume level (0.0 to 1.0).
func (p *Player) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	p.mu.Lock()
	p.volumeLevel = level
	volume := p.volume
	p.mu.Unlock()

	if volume != nil {
		speaker.Lock()
		volume.Volume = levelToVolume(level)
		speaker.Unlock()
	}
}

// SetRate sets the playback speed multiplier. Values <= 0 are ignored.
func (p *Player) SetRate(rate float64) {
	if rate <= 0 {
		return
	}

	p.mu.Lock()
	p.rate = rate
	resampler := p.resampler
	ratio := p.baseRatioLocked() * rate
	p.mu.Unlock()

	if resampler != nil {
		speaker.Lock()
		resampler.SetRatio(ratio)
		speaker.Unlock()
	}
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	p.mu.Unlock()
	if streamer == nil {
		return 0
	}
	// Read without the speaker lock; may be slightly stale but never deadlocks.
	return format.SampleRate.D(streamer.Position())
}

// Duration returns the length of the loaded track.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	streamer := p.streamer
	format := p.format
	p.mu.Unlock()
	if streamer == nil {
		return 0
	}
	return format.SampleRate.D(streamer.Len())
}

// Close stops playback and shuts down the engine goroutines. Idempotent.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		p.Stop()
		close(p.quit)
	})
}

func (p *Player) baseRatioLocked() float64 {
	if p.format.SampleRate == 0 {
		return 1
	}
	return float64(p.format.SampleRate) / float64(engineRate)
}

// endedLoop delivers OnEnded outside the speaker lock, dropping signals
// from handles that were torn down before the signal arrived.
func (p *Player) endedLoop() {
	for {
		select {
		case <-p.quit:
			return
		case gen := <-p.finishedCh:
			p.mu.Lock()
			live := gen == p.gen && p.streamer != nil
			if live {
				p.ended = true
				p.playing = false
			}
			cb := p.cb
			p.mu.Unlock()
			if live && cb.OnEnded != nil {
				cb.OnEnded()
			}
		}
	}
}

// tickLoop reports position while playing and surfaces streamer errors,
// at most once per handle.
func (p *Player) tickLoop() {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-p.quit:
			return
		case <-t.C:
		}

		p.mu.Lock()
		streamer := p.streamer
		format := p.format
		playing := p.playing
		gen := p.gen
		cb := p.cb
		p.mu.Unlock()

		if streamer == nil || !playing {
			continue
		}

		if cb.OnTime != nil {
			cb.OnTime(format.SampleRate.D(streamer.Position()), format.SampleRate.D(streamer.Len()))
		}

		if err := streamer.Err(); err != nil {
			p.mu.Lock()
			reported := p.errGen == gen
			if !reported {
				p.errGen = gen
			}
			p.mu.Unlock()
			if !reported && cb.OnError != nil {
				cb.OnError(err)
			}
		}
	}
}

// spool downloads the URL into a temp file so decoding can seek.
func (p *Player) spool(rawURL string) (*os.File, string, error) {
	resp, err := p.httpClient.Get(rawURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	ext := sourceExt(rawURL, resp.Header.Get("Content-Type"))

	f, err := os.CreateTemp("", "pulse-*"+ext)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		name := f.Name()
		f.Close()
		os.Remove(name)
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		name := f.Name()
		f.Close()
		os.Remove(name)
		return nil, "", err
	}
	return f, ext, nil
}

// sourceExt picks the decoder from the URL path extension, falling back to
// the response content type. Unknown sources are treated as MP3, the
// dominant format in the catalog.
func sourceExt(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case extMP3, extFLAC, extOGG, extOGA:
			return ext
		}
	}
	switch {
	case strings.Contains(contentType, "flac"):
		return extFLAC
	case strings.Contains(contentType, "ogg"):
		return extOGG
	default:
		return extMP3
	}
}

// levelToVolume converts a 0.0-1.0 level to beep's base-2 volume scale.
// 1.0 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> -10 (effectively silent).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
