package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"github.com/cecobask/wizardlite/internal/config"
	"github.com/cecobask/wizardlite/internal/locate"
	"github.com/cecobask/wizardlite/internal/xpath"
)

type Rod struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *slog.Logger
}

func NewRod(ctx context.Context, conf config.Browser, proxy string, logger *slog.Logger) (*Rod, error) {
	l := launcher.New().Headless(*conf.Headless).Bin(getBrowserPathOrFallback(*conf.Path)).
		Set("disable-component-update").
		Set("disable-domain-reliability").
		Set("disable-print-preview").
		Set("disable-search-engine-choice-screen").
		Set("hide-scrollbars").
		Set("mute-audio").
		Set("no-default-browser-check").
		Set("no-pings")
	if proxy != "" {
		l = l.Proxy(proxy)
	}
	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failure launching browser: %w", err)
	}
	browser := rod.New().Context(ctx).ControlURL(browserURL).Trace(*conf.Trace)
	if err = browser.Connect(); err != nil {
		return nil, fmt.Errorf("failure connecting to browser: %w", err)
	}
	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failure opening stealth page: %w", err)
	}
	logger.Info("launched new browser instance",
		slog.String("engine", config.BrowserEngineRod),
		slog.String("url", browserURL),
		slog.Bool("headless", *conf.Headless),
		slog.Bool("trace", *conf.Trace),
		slog.String("path", *conf.Path),
	)
	return &Rod{
		browser: browser,
		page:    page,
		logger:  logger,
	}, nil
}

func (r *Rod) Navigate(url string) error {
	if err := r.page.Navigate(url); err != nil {
		return fmt.Errorf("failure navigating to url %s: %w", url, err)
	}
	if err := r.page.WaitLoad(); err != nil {
		return fmt.Errorf("failure waiting for page %s to load: %w", url, err)
	}
	return nil
}

// FindElement performs a single lookup without waiting. A missing element yields nil.
func (r *Rod) FindElement(by locate.Strategy, target string) (any, error) {
	query, isXPath := rodQuery(by, target)
	var (
		has     bool
		element *rod.Element
		err     error
	)
	if isXPath {
		has, element, err = r.page.HasX(query)
	} else {
		has, element, err = r.page.Has(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failure finding element %s: %w", query, err)
	}
	if !has {
		return nil, nil
	}
	return element, nil
}

func (r *Rod) ExecuteScript(script string) (any, error) {
	res, err := r.page.Eval("() => {\n" + script + "\n}")
	if err != nil {
		return nil, fmt.Errorf("failure evaluating script: %w", err)
	}
	return res.Value.Val(), nil
}

func (r *Rod) Close() error {
	return r.browser.Close()
}

// rodQuery translates a strategy into a css selector, or an xpath expression when the bool is true.
func rodQuery(by locate.Strategy, target string) (string, bool) {
	literal := xpath.Literal(target)
	switch by {
	case locate.ID:
		return "//*[@id=" + literal + "]", true
	case locate.Name:
		return "//*[@name=" + literal + "]", true
	case locate.ClassName:
		return "//*[contains(concat(' ', normalize-space(@class), ' '), concat(' ', " + literal + ", ' '))]", true
	case locate.LinkText:
		return "//a[normalize-space(.)=" + literal + "]", true
	case locate.PartialLinkText:
		return "//a[contains(., " + literal + ")]", true
	case locate.XPath:
		return target, true
	default:
		return target, false
	}
}

func getBrowserPathOrFallback(path string) string {
	if path != "" {
		return path
	}
	if browserPath, found := launcher.LookPath(); found {
		return browserPath
	}
	return ""
}
