package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in a headless Chrome so that client-side
// rendered team pages produce text. The browser starts on first use.
type BrowserFetcher struct {
	bin     string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	browser *rod.Browser
	launch  *launcher.Launcher
}

// NewBrowserFetcher creates a browser fetcher. An empty bin lets the
// launcher find or download a browser.
func NewBrowserFetcher(bin string, timeout time.Duration, logger *zap.Logger) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserFetcher{bin: bin, timeout: timeout, logger: logger}
}

func (f *BrowserFetcher) ensureStarted() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	l := launcher.New().Headless(true)
	if f.bin != "" {
		l = l.Bin(f.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	// The browser outlives any single fetch, so it is not bound to a request context
	browser := rod.New().ControlURL(controlURL).Context(context.Background())
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	f.browser = browser
	f.launch = l
	f.logger.Debug("headless browser started", zap.String("control_url", controlURL))
	return browser, nil
}

// Fetch implements PageFetcher. Pages always render scripts here.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string, _ bool) (string, bool, error) {
	browser, err := f.ensureStarted()
	if err != nil {
		return "", false, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return "", false, fmt.Errorf("incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	tab, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", false, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = tab.Close() }()

	page := tab.Context(ctx).Timeout(f.timeout)
	defer page.CancelTimeout()

	if err := page.Navigate(rawURL); err != nil {
		f.logger.Debug("browser navigation failed", zap.String("url", rawURL), zap.Error(err))
		return "", false, nil
	}
	if err := page.WaitLoad(); err != nil {
		f.logger.Debug("browser load failed", zap.String("url", rawURL), zap.Error(err))
		return "", false, nil
	}

	doc, err := page.HTML()
	if err != nil {
		f.logger.Debug("read rendered html failed", zap.String("url", rawURL), zap.Error(err))
		return "", false, nil
	}

	text, err := HTMLToText(strings.NewReader(doc))
	if err != nil || text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// Close shuts the browser down if it was started
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil
	}
	err := f.browser.Close()
	f.launch.Kill()
	f.browser = nil
	f.launch = nil
	return err
}
