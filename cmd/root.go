// Package cmd wires the daemon together and runs it.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muzikax/pulse/internal/api"
	"github.com/muzikax/pulse/internal/config"
	"github.com/muzikax/pulse/internal/engine"
	"github.com/muzikax/pulse/internal/logger"
	"github.com/muzikax/pulse/internal/mpris"
	"github.com/muzikax/pulse/internal/notify"
	"github.com/muzikax/pulse/internal/scrobble"
	"github.com/muzikax/pulse/internal/session"
	"github.com/muzikax/pulse/internal/state"
	"github.com/muzikax/pulse/internal/track"
)

// scrobbleThreshold is the minimum listening time before a track change
// submits the previous track to Last.fm.
const scrobbleThreshold = 30 * time.Second

// actionContact is the notification action key for the creator contact
// link of a preview-limited beat.
const actionContact = "contact"

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse is the MuzikaX playback daemon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env does not override variables already set in the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if token := os.Getenv("PULSE_API_TOKEN"); token != "" {
		cfg.AuthToken = token
	}

	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L()

	stateMgr, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer stateMgr.Close()

	backend := api.New(cfg.APIURL, cfg.AuthToken, log)
	eng := engine.New(log)

	sess := session.New(eng, backend, log)
	defer sess.Close()

	lastTrackID := restorePrefs(sess, stateMgr, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sess.LoadUserData(ctx)

	if lastTrackID != "" {
		go func() {
			raw, err := backend.Track(ctx, lastTrackID)
			if err != nil {
				log.Debug("last track restore failed", zap.String("track", lastTrackID), zap.Error(err))
				return
			}
			sess.RestoreTrack(track.Resolve(raw))
		}()
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(sess)
		if err != nil {
			log.Warn("mpris unavailable", zap.Error(err))
		} else {
			defer adapter.Close()
		}
	}

	actions := newPreviewActions()
	var notifier notify.Notifier
	if cfg.NotifyEnabled() {
		notifier, err = notify.New(actions.invoke)
		if err != nil {
			log.Warn("notifications unavailable", zap.Error(err))
		}
	}

	var scrobbler *scrobble.Client
	if cfg.HasLastfmConfig() {
		scrobbler = scrobble.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		if cfg.Lastfm.SessionKey != "" {
			scrobbler.SetSessionKey(cfg.Lastfm.SessionKey)
		}
	}

	log.Info("pulse started",
		zap.String("api_url", cfg.APIURL),
		zap.Bool("authenticated", backend.HasToken()),
		zap.Bool("scrobbling", scrobbler != nil && scrobbler.IsAuthenticated()),
	)

	runEventLoop(ctx, sess, stateMgr, notifier, actions, scrobbler, log)

	log.Info("pulse stopping")
	return nil
}

// restorePrefs applies saved volume, rate and loop mode to a fresh
// session and returns the saved last track id, if any, so the caller can
// reinstate it once the backend is reachable.
func restorePrefs(sess *session.Session, stateMgr *state.Manager, log *zap.Logger) string {
	prefs, err := stateMgr.Prefs()
	if err != nil {
		log.Warn("failed to load saved preferences", zap.Error(err))
		return ""
	}
	if prefs == nil {
		return ""
	}

	sess.SetVolume(prefs.Volume)
	if err := sess.SetPlaybackRate(prefs.Rate); err != nil {
		log.Warn("saved playback rate rejected", zap.Float64("rate", prefs.Rate))
	}
	sess.SetLooping(prefs.Looping)
	return prefs.LastTrackID
}

// previewActions maps posted preview notifications to the creator contact
// URL they advertise, so a click on the notification action opens it.
type previewActions struct {
	mu   sync.Mutex
	urls map[uint32]string
}

func newPreviewActions() *previewActions {
	return &previewActions{urls: make(map[uint32]string)}
}

func (p *previewActions) set(id uint32, url string) {
	p.mu.Lock()
	p.urls[id] = url
	p.mu.Unlock()
}

// invoke runs on the notification bus goroutine.
func (p *previewActions) invoke(id uint32, key string) {
	if key != actionContact {
		return
	}
	p.mu.Lock()
	url := p.urls[id]
	p.mu.Unlock()
	if url != "" {
		_ = openBrowser(url)
	}
}

func runEventLoop(
	ctx context.Context,
	sess *session.Session,
	stateMgr *state.Manager,
	notifier notify.Notifier,
	actions *previewActions,
	scrobbler *scrobble.Client,
	log *zap.Logger,
) {
	sub := sess.Subscribe()

	var notifyID uint32
	var trackStarted time.Time

	savePrefs := func() {
		snap := sess.Snapshot()
		prefs := state.Prefs{
			Volume:  snap.Volume,
			Rate:    snap.Rate,
			Looping: snap.Looping,
		}
		if snap.Current != nil {
			prefs.LastTrackID = snap.Current.ID
		}
		stateMgr.SavePrefs(prefs)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return

		case e := <-sub.TrackChanged:
			if scrobbler != nil && scrobbler.IsAuthenticated() && e.Previous != nil &&
				!trackStarted.IsZero() && time.Since(trackStarted) >= scrobbleThreshold {
				prev := *e.Previous
				started := trackStarted
				go func() {
					err := scrobbler.Scrobble(scrobble.Track{
						Artist:    prev.Artist,
						Title:     prev.Title,
						Duration:  prev.Duration,
						Timestamp: started,
					})
					if err != nil {
						log.Warn("scrobble failed", zap.String("track", prev.Title), zap.Error(err))
					}
				}()
			}

			if e.Current != nil {
				trackStarted = time.Now()
				cur := *e.Current

				if scrobbler != nil && scrobbler.IsAuthenticated() {
					go func() {
						err := scrobbler.UpdateNowPlaying(scrobble.Track{
							Artist:   cur.Artist,
							Title:    cur.Title,
							Duration: cur.Duration,
						})
						if err != nil {
							log.Debug("now playing update failed", zap.Error(err))
						}
					}()
				}

				if notifier != nil {
					id, err := notifier.Notify(notify.Notification{
						Title:      cur.Title,
						Body:       cur.Artist,
						Icon:       cur.CoverImage,
						Timeout:    5000,
						ReplacesID: notifyID,
						Urgency:    notify.UrgencyLow,
					})
					if err == nil && id != 0 {
						notifyID = id
					}
				}
			} else {
				trackStarted = time.Time{}
			}

			savePrefs()

		case <-sub.StateChanged:
			savePrefs()

		case e := <-sub.PreviewLimited:
			if notifier != nil {
				n := notify.Notification{
					Title:   "Preview ended",
					Body:    e.Prompt.Message,
					Timeout: 10000,
					Urgency: notify.UrgencyNormal,
				}
				if e.Prompt.ContactURL != "" {
					n.Actions = []notify.Action{{Key: actionContact, Label: "Contact creator"}}
				}
				id, err := notifier.Notify(n)
				if err == nil && id != 0 && e.Prompt.ContactURL != "" {
					actions.set(id, e.Prompt.ContactURL)
				}
			}

		case e := <-sub.Notices:
			if notifier != nil && e.Kind != session.NoticeError {
				_, _ = notifier.Notify(notify.Notification{
					Title:   "Pulse",
					Body:    e.Message,
					Timeout: 3000,
					Urgency: notify.UrgencyLow,
				})
			}

		case e := <-sub.Errors:
			log.Warn("playback error",
				zap.String("op", e.Op),
				zap.String("track", e.TrackID),
				zap.Error(e.Err),
			)
		}
	}
}
