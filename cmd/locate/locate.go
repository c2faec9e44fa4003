package locate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cecobask/wizardlite/cmd"
	"github.com/cecobask/wizardlite/internal/browser"
	"github.com/cecobask/wizardlite/internal/chromedriver"
	"github.com/cecobask/wizardlite/internal/config"
	locator "github.com/cecobask/wizardlite/internal/locate"
	"github.com/cecobask/wizardlite/internal/logger"
	"github.com/cecobask/wizardlite/internal/xpath"
)

var errNothingToLocate = errors.New("nothing to locate: provide --text or --target")

type options struct {
	url     string
	html    string
	by      string
	target  string
	text    string
	timeout time.Duration
}

func NewCommand(ctx context.Context) *cobra.Command {
	var (
		conf *config.Config
		opts options
	)
	command := &cobra.Command{
		Use:   cmd.CommandNameLocate,
		Short: "Locate an element by text or locator and wait until it is visible",
		PreRunE: func(c *cobra.Command, args []string) error {
			confPath, err := c.Flags().GetString(cmd.FlagNameConfigFile)
			if err != nil {
				return err
			}
			if conf, err = config.New(confPath, true); err != nil {
				return fmt.Errorf("error loading config: %w", err)
			}
			if c.Flags().Changed(cmd.FlagNameLocateEngine) {
				engine, err := c.Flags().GetString(cmd.FlagNameLocateEngine)
				if err != nil {
					return err
				}
				conf.Browser.Engine = &engine
			}
			if err = conf.Validate(); err != nil {
				return fmt.Errorf("error validating config: %w", err)
			}
			if !c.Flags().Changed(cmd.FlagNameLocateTimeout) {
				opts.timeout = *conf.Locate.Timeout
			}
			if *conf.Browser.DriverPath == "" {
				driverPath := filepath.Join(*conf.Driver.Dir, chromedriver.DriverFileName)
				conf.Browser.DriverPath = &driverPath
			}
			return opts.validate()
		},
		RunE: func(c *cobra.Command, args []string) error {
			verbose, err := c.Flags().GetBool(cmd.FlagNameVerbose)
			if err != nil {
				return err
			}
			log := logger.NewLogger(c.ErrOrStderr(), verbose)
			if opts.html != "" {
				return runStatic(c.OutOrStdout(), opts)
			}
			s, err := browser.New(ctx, conf.Browser, *conf.Driver.Proxy, log)
			if err != nil {
				return fmt.Errorf("error starting browser session: %w", err)
			}
			defer func() {
				if err := s.Close(); err != nil {
					log.Warn("failure closing browser session", logger.Error(err))
				}
			}()
			if err = s.Navigate(opts.url); err != nil {
				return err
			}
			return run(c.OutOrStdout(), s, locator.NewEngine(log), opts, log)
		},
	}
	command.Flags().StringVar(&opts.url, cmd.FlagNameLocateURL, "", "page to open in the browser")
	command.Flags().StringVar(&opts.html, cmd.FlagNameLocateHTML, "", "static html file to search instead of a live page")
	command.Flags().StringVar(&opts.by, cmd.FlagNameLocateBy, string(locator.XPath), "locator strategy used with --target")
	command.Flags().StringVar(&opts.target, cmd.FlagNameLocateTarget, "", "locator value to wait for")
	command.Flags().StringVar(&opts.text, cmd.FlagNameLocateText, "", "visible text of the element to locate")
	command.Flags().DurationVar(&opts.timeout, cmd.FlagNameLocateTimeout, config.LocateTimeoutDefault, "how long to wait for the element")
	command.Flags().String(cmd.FlagNameLocateEngine, config.BrowserEngineRod, "browser engine: rod or selenium")
	return command
}

func (o options) validate() error {
	if o.html != "" {
		if o.text == "" {
			return fmt.Errorf("flag --%s requires --%s", cmd.FlagNameLocateHTML, cmd.FlagNameLocateText)
		}
		return nil
	}
	if o.url == "" {
		return fmt.Errorf("one of --%s or --%s is required", cmd.FlagNameLocateURL, cmd.FlagNameLocateHTML)
	}
	if o.text == "" && o.target == "" {
		return errNothingToLocate
	}
	return nil
}

func runStatic(out io.Writer, opts options) error {
	f, err := os.Open(opts.html)
	if err != nil {
		return fmt.Errorf("error opening html file: %w", err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return fmt.Errorf("error parsing html file: %w", err)
	}
	match, err := xpath.Find(doc, opts.text)
	if err != nil {
		return fmt.Errorf("error searching html file: %w", err)
	}
	if match == nil {
		return fmt.Errorf("no element in %s contains text %q", opts.html, opts.text)
	}
	path := xpath.Path(match)
	if err = roundTrip(doc, match, path); err != nil {
		return err
	}
	fmt.Fprintln(out, path)
	return nil
}

// roundTrip fails unless path resolves back to the matched element.
func roundTrip(doc *goquery.Document, match *goquery.Selection, path string) error {
	resolved, err := xpath.Resolve(doc, path)
	if err != nil {
		return fmt.Errorf("error resolving path %s: %w", path, err)
	}
	if resolved.Get(0) != match.Get(0) {
		return fmt.Errorf("path %s resolves to a different element", path)
	}
	return nil
}

type session interface {
	locator.Finder
	xpath.ScriptExecutor
}

// run resolves --text into a positional path when given, then waits on the resulting locator.
func run(out io.Writer, s session, engine *locator.Engine, opts options, log *slog.Logger) error {
	by, target := opts.by, opts.target
	if opts.text != "" {
		path, found, err := xpath.LocateByText(s, opts.text, log)
		if err != nil {
			return fmt.Errorf("error locating element by text: %w", err)
		}
		if !found {
			return fmt.Errorf("no element contains text %q", opts.text)
		}
		color.New(color.FgCyan).Fprintln(out, path)
		if target == "" {
			by, target = string(locator.XPath), path
		}
	}
	if err := engine.WaitUntilVisible(s, by, target, opts.timeout); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "element %s is visible\n", target)
	return nil
}
