package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/kompare/internal/comparator"
	"github.com/mcncl/kompare/internal/config"
	"github.com/mcncl/kompare/internal/errors"
	"github.com/mcncl/kompare/internal/formatter"
	"github.com/mcncl/kompare/internal/log"
	"github.com/mcncl/kompare/internal/models"
	"github.com/mcncl/kompare/internal/parser"
	"github.com/mcncl/kompare/internal/presenter"
	"github.com/mcncl/kompare/internal/sorter"
)

// Version information
const (
	Version = "0.1.0"
)

// stdinName is the argument that reads a document from stdin
const stdinName = "-"

// CLI defines the command-line interface
type CLI struct {
	Config  string           `help:"Path to a config file. Defaults to the nearest .kompare.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Compare CompareCmd `cmd:"" help:"Compare two JSON documents."`
	Format  FormatCmd  `cmd:"" help:"Pretty print or minify a JSON document."`
	Sort    SortCmd    `cmd:"" help:"Sort object keys of a JSON document."`
}

// Context holds the runtime context
type Context struct {
	Debug      bool
	ConfigPath string
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// loadConfig resolves the config for a command. A config file that sets
// dev.debug turns on debug logging even without --debug.
func (ctx *Context) loadConfig(o config.Overrides) (*config.Config, error) {
	o.Debug = ctx.Debug
	cfg, err := config.LoadConfigWithCLI(ctx.ConfigPath, o)
	if err != nil {
		return nil, err
	}
	if cfg.Dev.Debug && !ctx.Debug {
		stderr := ctx.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		log.InitLoggerTo(stderr, os.Getenv(log.EnvVar), true)
		log.Debugf("debug logging enabled by config")
	}
	return cfg, nil
}

// CompareCmd compares LEFT with RIGHT
type CompareCmd struct {
	Left  string `arg:"" help:"Left JSON document, or - for stdin."`
	Right string `arg:"" help:"Right JSON document, or - for stdin."`

	Format      string   `help:"Output format: text, html, json or unified." short:"f"`
	Color       string   `help:"Color text output: auto, always or never."`
	Stats       bool     `help:"Append a summary of added, removed and changed values."`
	SortKeys    bool     `help:"Sort object keys of both documents before comparing." short:"s"`
	Ignore      []string `help:"Skip a path and everything below it. Repeatable." short:"i" sep:"none"`
	MaxDepth    int      `help:"Stop descending below this nesting depth. 0 means no limit."`
	Concurrency int      `help:"Compare top level members on up to this many goroutines."`
	Indent      string   `help:"Indent used by the unified format."`
	ExitCode    bool     `help:"Exit with status 1 when the documents differ." short:"e"`
	Swap        bool     `help:"Swap LEFT and RIGHT."`
}

// Run compares the two documents and writes the result to stdout
func (c *CompareCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(config.Overrides{
		Format:      c.Format,
		Color:       c.Color,
		Indent:      c.Indent,
		Stats:       c.Stats,
		SortKeys:    c.SortKeys,
		IgnorePaths: c.Ignore,
		MaxDepth:    c.MaxDepth,
		Concurrency: c.Concurrency,
	})
	if err != nil {
		return err
	}

	docs, err := loadDocuments(context.Background(), ctx.Stdin, c.Left, c.Right)
	if err != nil {
		return err
	}
	left, right := docs[0], docs[1]
	if c.Swap {
		left, right = right, left
	}

	if cfg.Compare.SortKeys {
		left.Root = sorter.SortKeys(left.Root)
		right.Root = sorter.SortKeys(right.Root)
	}

	diffs := comparator.Compare(left.Root, right.Root,
		comparator.WithIgnorePaths(cfg.Compare.IgnorePaths...),
		comparator.WithMaxDepth(cfg.Compare.MaxDepth),
		comparator.WithConcurrency(cfg.Compare.Concurrency),
	)
	log.WithField("diffs", len(diffs)).Debugf("compared %s with %s", left.Name, right.Name)

	p := &presenter.Presenter{
		Format:    presenter.Format(cfg.Output.Format),
		Color:     presenter.ColorMode(cfg.Output.Color),
		Formatter: formatter.NewFormatterWithIndent(cfg.Output.Indent),
		ShowStats: cfg.Output.Stats,
	}
	if err := p.Write(ctx.Stdout, left, right, diffs); err != nil {
		return err
	}

	if c.ExitCode && len(diffs) > 0 {
		return errors.ErrDifferent
	}
	return nil
}

// FormatCmd pretty prints FILE
type FormatCmd struct {
	File   string `arg:"" optional:"" help:"JSON document, or - for stdin." default:"-"`
	Minify bool   `help:"Write the compact form instead." short:"m"`
	Indent string `help:"Indent string. Defaults to the configured indent."`
}

// Run writes the formatted document to stdout
func (c *FormatCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(config.Overrides{Indent: c.Indent})
	if err != nil {
		return err
	}

	doc, err := loadDocument(ctx.Stdin, c.File)
	if err != nil {
		return err
	}
	return writeValue(ctx.Stdout, doc.Root, c.Minify, cfg.Output.Indent)
}

// SortCmd writes FILE with object keys sorted
type SortCmd struct {
	File   string `arg:"" optional:"" help:"JSON document, or - for stdin." default:"-"`
	Minify bool   `help:"Write the compact form instead." short:"m"`
	Indent string `help:"Indent string. Defaults to the configured indent."`
}

// Run writes the sorted document to stdout
func (c *SortCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(config.Overrides{Indent: c.Indent})
	if err != nil {
		return err
	}

	doc, err := loadDocument(ctx.Stdin, c.File)
	if err != nil {
		return err
	}
	return writeValue(ctx.Stdout, sorter.SortKeys(doc.Root), c.Minify, cfg.Output.Indent)
}

func main() {
	var cli CLI
	app := kong.Must(&cli,
		kong.Name("kompare"),
		kong.Description("Structural diff for JSON documents"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
		kong.Exit(func(code int) {
			// Usage errors exit 2 like every other failure
			if code != 0 {
				code = 2
			}
			os.Exit(code)
		}),
	)

	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	log.InitLogger(cli.Debug)

	err = kctx.Run(&Context{
		Debug:      cli.Debug,
		ConfigPath: cli.Config,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	})
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode follows diff(1): 0 for no differences, 1 for differences and 2
// for trouble. Errors are reported on stderr.
func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, errors.ErrDifferent):
		return 1
	default:
		log.WithError(err).Debug("command failed")
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: kompare --help\n")
		return 2
	}
}

// loadDocuments reads every path concurrently. At most one path may be stdin.
func loadDocuments(ctx context.Context, stdin io.Reader, paths ...string) ([]models.Document, error) {
	stdinCount := 0
	for _, p := range paths {
		if p == stdinName {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return nil, errors.NewInputError("both documents cannot be read from stdin", errors.ErrStdinTwice)
	}

	docs := make([]models.Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := loadDocument(stdin, p)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// loadDocument reads path, or stdin when path is "-"
func loadDocument(stdin io.Reader, path string) (models.Document, error) {
	if path != stdinName {
		return parser.ParseFile(path)
	}

	// An interactive terminal has nothing piped in
	if f, ok := stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return models.Document{}, errors.NewInputError("failed to access stdin", err)
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}
	return parser.ReadDocument("stdin", stdin)
}

// writeValue writes v indented, or compact when minify is set
func writeValue(w io.Writer, v models.Value, minify bool, indent string) error {
	f := formatter.NewFormatterWithIndent(indent)

	var out string
	var err error
	if minify {
		out, err = f.Minify(v)
		out += "\n"
	} else {
		out, err = f.Format(v)
	}
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
