package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/metrics"
)

type mountedForm struct {
	form     *RegistrationForm
	lastSeen time.Time
}

type mountedBrowser struct {
	browser  *TableBrowser
	cancel   context.CancelFunc
	lastSeen time.Time
}

// ScreenRegistry tracks mounted form and browser instances.
// Unmounting a browser cancels its background load. Instances nobody has
// looked up for longer than the idle TTL are unmounted by the sweeper.
type ScreenRegistry struct {
	api             TableAPI
	sink            EventSink
	log             *logrus.Logger
	notificationTTL time.Duration
	now             func() time.Time

	mu       sync.Mutex
	forms    map[string]*mountedForm
	browsers map[string]*mountedBrowser

	StopChan chan struct{}
}

func NewScreenRegistry(api TableAPI, sink EventSink, log *logrus.Logger, notificationTTL time.Duration) *ScreenRegistry {
	return &ScreenRegistry{
		api:             api,
		sink:            sink,
		log:             loggerOr(log),
		notificationTTL: notificationTTL,
		now:             time.Now,
		forms:           make(map[string]*mountedForm),
		browsers:        make(map[string]*mountedBrowser),
		StopChan:        make(chan struct{}),
	}
}

// MountForm -> create a form and load its zone list. A zone load failure
// is part of the form state, so it does not fail the mount.
func (sr *ScreenRegistry) MountForm(ctx context.Context) *RegistrationForm {
	form := NewRegistrationForm(uuid.NewString(), sr.api, sr.sink, sr.log, sr.notificationTTL)

	sr.mu.Lock()
	sr.forms[form.ID] = &mountedForm{form: form, lastSeen: sr.now()}
	sr.mu.Unlock()
	metrics.MountedComponents.WithLabelValues(ComponentForm).Inc()

	_ = form.LoadZones(ctx)
	return form
}

// Form -> look up a mounted form; counts as activity for the idle sweep
func (sr *ScreenRegistry) Form(id string) (*RegistrationForm, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	m, ok := sr.forms[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	m.lastSeen = sr.now()
	return m.form, nil
}

func (sr *ScreenRegistry) UnmountForm(id string) error {
	sr.mu.Lock()
	_, ok := sr.forms[id]
	delete(sr.forms, id)
	sr.mu.Unlock()
	if !ok {
		return ErrInstanceNotFound
	}
	metrics.MountedComponents.WithLabelValues(ComponentForm).Dec()
	return nil
}

// MountBrowser -> create a browser and start its table load. With wait the
// load finishes before returning; otherwise it runs in the background until
// done or until the browser is unmounted.
func (sr *ScreenRegistry) MountBrowser(ctx context.Context, wait bool) *TableBrowser {
	browser := NewTableBrowser(uuid.NewString(), sr.api, sr.sink, sr.log)
	bctx, cancel := context.WithCancel(context.Background())

	sr.mu.Lock()
	sr.browsers[browser.ID] = &mountedBrowser{browser: browser, cancel: cancel, lastSeen: sr.now()}
	sr.mu.Unlock()
	metrics.MountedComponents.WithLabelValues(ComponentBrowser).Inc()

	if wait {
		// Gagal load hanya di-log; browser tetap tampil kosong
		_ = browser.LoadTables(ctx)
		return browser
	}

	// Tandai loading sebelum goroutine jalan supaya snapshot pertama konsisten
	browser.beginLoad()
	go func() {
		_ = browser.LoadTables(bctx)
	}()
	return browser
}

// Browser -> look up a mounted browser; counts as activity for the idle sweep
func (sr *ScreenRegistry) Browser(id string) (*TableBrowser, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	m, ok := sr.browsers[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	m.lastSeen = sr.now()
	return m.browser, nil
}

func (sr *ScreenRegistry) UnmountBrowser(id string) error {
	sr.mu.Lock()
	m, ok := sr.browsers[id]
	delete(sr.browsers, id)
	sr.mu.Unlock()
	if !ok {
		return ErrInstanceNotFound
	}
	m.cancel()
	metrics.MountedComponents.WithLabelValues(ComponentBrowser).Dec()
	return nil
}

// Counts -> number of mounted forms and browsers
func (sr *ScreenRegistry) Counts() (forms, browsers int) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return len(sr.forms), len(sr.browsers)
}

// SweepIdle -> unmount every instance not looked up within maxIdle
func (sr *ScreenRegistry) SweepIdle(maxIdle time.Duration) (forms, browsers int) {
	cutoff := sr.now().Add(-maxIdle)
	var cancels []context.CancelFunc

	sr.mu.Lock()
	for id, m := range sr.forms {
		if m.lastSeen.Before(cutoff) {
			delete(sr.forms, id)
			forms++
		}
	}
	for id, m := range sr.browsers {
		if m.lastSeen.Before(cutoff) {
			delete(sr.browsers, id)
			cancels = append(cancels, m.cancel)
			browsers++
		}
	}
	sr.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	metrics.MountedComponents.WithLabelValues(ComponentForm).Sub(float64(forms))
	metrics.MountedComponents.WithLabelValues(ComponentBrowser).Sub(float64(browsers))

	if forms > 0 || browsers > 0 {
		sr.log.WithFields(logrus.Fields{
			"forms":    forms,
			"browsers": browsers,
			"max_idle": maxIdle.String(),
		}).Info("idle screen instances unmounted")
	}
	return forms, browsers
}

// StartIdleSweep -> run SweepIdle every interval until Stop. maxIdle <= 0 disables it.
func (sr *ScreenRegistry) StartIdleSweep(interval, maxIdle time.Duration) {
	if maxIdle <= 0 {
		sr.log.Info("screen idle sweep disabled")
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sr.SweepIdle(maxIdle)
			case <-sr.StopChan:
				return
			}
		}
	}()
}

func (sr *ScreenRegistry) Stop() {
	close(sr.StopChan)
}
