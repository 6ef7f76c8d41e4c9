// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stagehand/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// Manager hands out browser sessions. Each Acquire launches its own Chrome
// process and tab; nothing is pooled or shared between sessions.
type Manager struct {
	logger  *zap.Logger
	browser config.BrowserConfig
	network config.NetworkConfig

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager creates a manager. No browser is started until Acquire.
func NewManager(cfg config.Interface, logger *zap.Logger) *Manager {
	return &Manager{
		logger:   logger.Named("browser_manager"),
		browser:  cfg.Browser(),
		network:  cfg.Network(),
		sessions: make(map[string]*Session),
	}
}

// Acquire launches a browser, opens a tab and returns it ready for use.
func (m *Manager) Acquire(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	log := m.logger.With(zap.String("session_id", id[:8]))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), m.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Debugf),
	)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	s := &Session{
		id:            id,
		logger:        log,
		tabCtx:        tabCtx,
		tabCancel:     cancel,
		expectTimeout: m.browser.ExpectTimeout,
		pollInterval:  m.browser.PollInterval,
		navTimeout:    m.network.NavigationTimeout,
	}
	if s.pollInterval <= 0 {
		s.pollInterval = 100 * time.Millisecond
	}
	if s.navTimeout <= 0 {
		s.navTimeout = 30 * time.Second
	}

	if err := m.open(ctx, s); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.wg.Add(1)
	s.onClose = func() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		m.wg.Done()
	}

	log.Info("Browser session acquired.")
	return s, nil
}

// open starts the browser behind s and applies per-session settings. The
// first chromedp.Run must use the tab context itself: the browser process is
// bound to whatever context allocates it.
func (m *Manager) open(ctx context.Context, s *Session) error {
	launched := make(chan error, 1)
	go func() { launched <- chromedp.Run(s.tabCtx) }()

	timeout := m.browser.LaunchTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	select {
	case err := <-launched:
		if err != nil {
			return fmt.Errorf("browser failed to start: %w", err)
		}
	case <-time.After(timeout):
		return fmt.Errorf("browser did not start within %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if len(m.network.Headers) == 0 {
		return nil
	}
	headers := make(network.Headers, len(m.network.Headers))
	for k, v := range m.network.Headers {
		headers[k] = v
	}
	return s.run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
	)
}

// Release closes a session obtained from Acquire.
func (m *Manager) Release(ctx context.Context, s *Session) error {
	if s == nil {
		return nil
	}
	if err := s.Close(ctx); err != nil {
		return fmt.Errorf("failed to release browser session %s: %w", s.ID(), err)
	}
	m.logger.Info("Browser session released.", zap.String("session_id", s.ID()[:8]))
	return nil
}

// Provider opens and closes pages for actors. *Manager implements it.
type Provider interface {
	OpenPage(ctx context.Context) (Page, error)
	ClosePage(ctx context.Context, p Page) error
}

var _ Provider = (*Manager)(nil)

// OpenPage is Acquire behind the Page interface.
func (m *Manager) OpenPage(ctx context.Context) (Page, error) {
	s, err := m.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ClosePage releases p. Pages not created by this manager are just closed.
func (m *Manager) ClosePage(ctx context.Context, p Page) error {
	if s, ok := p.(*Session); ok {
		return m.Release(ctx, s)
	}
	return p.Close(ctx)
}

// Shutdown closes any sessions still open and waits for them, bounded by ctx
// and a fixed grace period.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	if len(open) > 0 {
		m.logger.Warn("Closing sessions that were never released.", zap.Int("count", len(open)))
	}
	for _, s := range open {
		_ = s.Close(Detach(ctx))
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	select {
	case <-done:
		return nil
	case <-waitCtx.Done():
		return fmt.Errorf("browser manager shutdown: %w", waitCtx.Err())
	}
}

func (m *Manager) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if m.browser.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(m.browser.ExecPath))
	}
	flags := allocatorFlags(m.browser, m.network, runtime.GOOS)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}
	return opts
}

// allocatorFlags resolves the Chrome command-line flags layered on top of
// chromedp's defaults. Later entries in Args override built-in flags.
func allocatorFlags(b config.BrowserConfig, n config.NetworkConfig, goos string) map[string]interface{} {
	flags := map[string]interface{}{
		"headless":                  b.Headless,
		"disable-gpu":               b.Headless,
		"ignore-certificate-errors": n.IgnoreTLSErrors,
		"disable-extensions":        true,
	}

	// Container-friendly defaults; Chrome's sandbox needs privileges CI
	// runners rarely grant.
	if goos == "linux" {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
		flags["disable-setuid-sandbox"] = true
	}

	for _, arg := range b.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimLeft(parts[0], "-")
		if name == "" {
			continue
		}
		if len(parts) == 2 {
			flags[name] = parts[1]
		} else {
			flags[name] = true
		}
	}
	return flags
}
