package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/lakehouse-client/api"
	"github.com/jrsteele09/lakehouse-client/auth"
	"github.com/jrsteele09/lakehouse-client/internal/config"
	"github.com/jrsteele09/lakehouse-client/internal/metrics"
	"github.com/jrsteele09/lakehouse-client/internal/transport"
	"github.com/jrsteele09/lakehouse-client/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
)

type options struct {
	email       string
	password    string
	method      string
	data        string
	endpoint    string
	quiet       bool
	showMetrics bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	c, err := config.Load()
	if err != nil {
		return err
	}
	if !opts.quiet {
		displayAppname(stderr, c.GetAppName())
	}
	logger := newLogger(stderr, c.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m, err := metrics.NewClient(reg)
	if err != nil {
		return err
	}

	httpClient, err := transport.NewClient(c)
	if err != nil {
		return err
	}

	store := session.NewStore(session.WithLogger(logger))
	svc, err := auth.NewService(c, store,
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger),
		auth.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	client, err := api.NewClient(c, store, svc,
		api.WithLogger(logger),
		api.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	if err := svc.Login(ctx, opts.email, opts.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.Logout(logoutCtx); err != nil {
			logger.Warn().Err(err).Msg("Logout failed")
		}
	}()

	req := api.Request{Method: opts.method, Endpoint: opts.endpoint}
	if opts.data != "" {
		req.Body = json.RawMessage(opts.data)
	}

	var out json.RawMessage
	if err := client.Send(ctx, req, &out); err != nil {
		return err
	}
	if err := printJSON(stdout, out); err != nil {
		return err
	}

	if opts.showMetrics {
		return writeMetrics(stderr, reg)
	}
	return nil
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("lakehouse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lakehouse -email EMAIL [-password PASSWORD] [-method GET] [-data JSON] /endpoint")
		fs.PrintDefaults()
	}

	var opts options
	fs.StringVar(&opts.email, "email", os.Getenv("LAKEHOUSE_EMAIL"), "account email (LAKEHOUSE_EMAIL)")
	fs.StringVar(&opts.password, "password", "", "account password (default $LAKEHOUSE_PASSWORD)")
	fs.StringVar(&opts.method, "method", "GET", "HTTP method")
	fs.StringVar(&opts.data, "data", "", "JSON request body")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print the banner")
	fs.BoolVar(&opts.showMetrics, "metrics", false, "print client counters to stderr when done")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.password == "" {
		opts.password = os.Getenv("LAKEHOUSE_PASSWORD")
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, errors.New("exactly one endpoint is required")
	}
	opts.endpoint = fs.Arg(0)
	if !strings.HasPrefix(opts.endpoint, "/") {
		opts.endpoint = "/" + opts.endpoint
	}
	if opts.data != "" && !json.Valid([]byte(opts.data)) {
		return options{}, errors.New("-data is not valid JSON")
	}
	return opts, nil
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
