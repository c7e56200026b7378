// Package browser owns the shared headless Chromium instance used for
// feed crawls. The browser is launched lazily on first use and reused
// across crawls; each crawl gets its own incognito context and tab.
package browser

import (
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"reelscraper/pkg/errors"
	"reelscraper/pkg/logger"
)

// Manager guards a single browser handle behind a mutex
type Manager struct {
	mu       sync.Mutex
	headless bool
	browser  *rod.Browser
	logger   logger.Logger
}

// NewManager creates a Manager; the browser is not launched until
// Browser is first called.
func NewManager(headless bool, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		headless: headless,
		logger:   log,
	}
}

// Browser returns the shared browser handle, launching Chromium on
// first call.
func (m *Manager) Browser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		return m.browser, nil
	}

	l := launcher.New().
		Headless(m.headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errors.Newf(errors.ErrorTypeUnknown, "failed to connect to browser: %v", err)
	}

	m.logger.InfoWithFields("browser launched", map[string]interface{}{
		"headless":    m.headless,
		"control_url": controlURL,
	})

	m.browser = browser
	return m.browser, nil
}

// Close shuts the browser down. A later Browser call relaunches it.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser == nil {
		return
	}

	if err := m.browser.Close(); err != nil {
		m.logger.WarnWithFields("browser close failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	m.browser = nil
}
