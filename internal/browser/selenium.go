package browser

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"github.com/cecobask/wizardlite/internal/config"
	"github.com/cecobask/wizardlite/internal/locate"
	"github.com/cecobask/wizardlite/internal/logger"
)

const remoteURL = "http://127.0.0.1:%d/wd/hub"

var seleniumBy = map[locate.Strategy]string{
	locate.ClassName:       selenium.ByClassName,
	locate.CSSSelector:     selenium.ByCSSSelector,
	locate.ID:              selenium.ByID,
	locate.LinkText:        selenium.ByLinkText,
	locate.Name:            selenium.ByName,
	locate.PartialLinkText: selenium.ByPartialLinkText,
	locate.TagName:         selenium.ByTagName,
	locate.XPath:           selenium.ByXPATH,
}

type Selenium struct {
	service *selenium.Service
	driver  selenium.WebDriver
	logger  *slog.Logger
}

func NewSelenium(conf config.Browser, proxy string, logger *slog.Logger) (*Selenium, error) {
	if *conf.DriverPath == "" {
		return nil, fmt.Errorf("field 'BROWSER_DRIVERPATH' is required for the %s engine", config.BrowserEngineSelenium)
	}
	caps, err := seleniumCapabilities(conf, proxy)
	if err != nil {
		return nil, err
	}
	selenium.SetDebug(*conf.Trace)
	service, err := selenium.NewChromeDriverService(*conf.DriverPath, *conf.Port)
	if err != nil {
		return nil, fmt.Errorf("failure starting chromedriver service: %w", err)
	}
	driver, err := selenium.NewRemote(caps, fmt.Sprintf(remoteURL, *conf.Port))
	if err != nil {
		_ = service.Stop()
		return nil, fmt.Errorf("failure connecting to chromedriver: %w", err)
	}
	logger.Info("launched new browser instance",
		slog.String("engine", config.BrowserEngineSelenium),
		slog.String("driver", *conf.DriverPath),
		slog.Int("port", *conf.Port),
		slog.Bool("headless", *conf.Headless),
	)
	return &Selenium{
		service: service,
		driver:  driver,
		logger:  logger,
	}, nil
}

func (s *Selenium) Navigate(url string) error {
	if err := s.driver.Get(url); err != nil {
		return fmt.Errorf("failure navigating to url %s: %w", url, err)
	}
	return nil
}

func (s *Selenium) FindElement(by locate.Strategy, target string) (any, error) {
	using, ok := seleniumBy[by]
	if !ok {
		return nil, locate.NewInvalidStrategyError(string(by))
	}
	element, err := s.driver.FindElement(using, target)
	if err != nil {
		return nil, err
	}
	return element, nil
}

func (s *Selenium) ExecuteScript(script string) (any, error) {
	res, err := s.driver.ExecuteScript(script, nil)
	if err != nil {
		return nil, fmt.Errorf("failure executing script: %w", err)
	}
	return res, nil
}

func (s *Selenium) Close() error {
	if err := s.driver.Quit(); err != nil {
		s.logger.Warn("failure quitting webdriver session", logger.Error(err))
	}
	return s.service.Stop()
}

func seleniumCapabilities(conf config.Browser, proxy string) (selenium.Capabilities, error) {
	caps := selenium.Capabilities{
		"browserName": "chrome",
	}
	chromeCaps := chrome.Capabilities{
		Path: *conf.Path,
		Args: []string{
			"--disable-search-engine-choice-screen",
			"--mute-audio",
			"--no-default-browser-check",
		},
	}
	if *conf.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless")
	}
	caps.AddChrome(chromeCaps)
	if proxy != "" {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("failure parsing proxy url: %w", err)
		}
		caps.AddProxy(selenium.Proxy{
			Type: selenium.Manual,
			HTTP: u.Host,
			SSL:  u.Host,
		})
	}
	return caps, nil
}
