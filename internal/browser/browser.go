package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cecobask/wizardlite/internal/config"
	"github.com/cecobask/wizardlite/internal/locate"
)

type Session interface {
	Navigate(url string) error
	FindElement(by locate.Strategy, target string) (any, error)
	ExecuteScript(script string) (any, error)
	Close() error
}

// New starts a session on the engine named in conf. proxy is a raw proxy url and may be empty.
func New(ctx context.Context, conf config.Browser, proxy string, logger *slog.Logger) (Session, error) {
	var (
		session Session
		err     error
	)
	switch *conf.Engine {
	case config.BrowserEngineRod:
		session, err = NewRod(ctx, conf, proxy, logger)
	case config.BrowserEngineSelenium:
		session, err = NewSelenium(conf, proxy, logger)
	default:
		err = fmt.Errorf("unsupported browser engine %s", *conf.Engine)
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}
