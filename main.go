package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	stderrors "errors"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mwhite/xml2jsonl/internal/config"
	"github.com/mwhite/xml2jsonl/internal/errors"
	"github.com/mwhite/xml2jsonl/internal/extractor"
	"github.com/mwhite/xml2jsonl/internal/formatter"
	"github.com/mwhite/xml2jsonl/internal/simplifier"
)

// CLI defines the command-line interface
var CLI struct {
	Input    string   `help:"Path to input XML file. If not specified, reads from stdin." short:"i" type:"path"`
	Output   string   `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Tag      []string `help:"Tag local name to extract as a unit, at any depth. Repeatable; disables --all." short:"t"`
	Root     bool     `help:"Also emit the root element itself (shallow, without children)." short:"r"`
	All      bool     `help:"Emit every direct child of the root." default:"true" negatable:""`
	Simplify bool     `help:"Apply the simplifying transform to every emitted object." short:"s"`
	Keys     string   `help:"Re-case output keys: none, snake, camel or kebab." default:"none" enum:"none,snake,camel,kebab"`
	Config   string   `help:"Path to config file. Defaults to the nearest .xml2jsonl.yml." short:"c" type:"path"`
	Debug    bool     `help:"Enable debug logging." short:"d"`
	Version  bool     `help:"Show version information." short:"v"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
}

// Version information
const (
	Version = "0.2.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("xml2jsonl"),
		kong.Description("A tool to convert XML documents to JSON Lines, one object per element"),
		kong.UsageOnError(),
	)

	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Usage has already been shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("xml2jsonl version %s\n", Version)
		return
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	cfg, err := resolveConfig()
	if err == nil {
		err = run(&Context{Config: cfg})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: xml2jsonl --help\n")
		os.Exit(1)
	}
}

// resolveConfig loads the config file (if any) and applies flag overrides.
func resolveConfig() (*config.Config, error) {
	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg := config.NewConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Debug().Str("path", path).Msg("loaded config file")
	}

	// Flags layer on top of the config file. Boolean flags can only turn
	// behavior on; the config file is the place to turn it on permanently.
	if len(CLI.Tag) > 0 {
		cfg.Tags = CLI.Tag
		cfg.IncludeAll = false
	}
	if !CLI.All {
		cfg.IncludeAll = false
	}
	if CLI.Root {
		cfg.IncludeRoot = true
	}
	if CLI.Simplify {
		cfg.Simplify = true
	}
	if CLI.Keys != string(formatter.KeyStyleNone) {
		cfg.Keys = CLI.Keys
	}
	if CLI.Debug {
		cfg.Dev.Debug = true
	}

	if cfg.Dev.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return cfg, nil
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config

	in, closeIn, err := openInput()
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput()
	if err != nil {
		return err
	}

	style, err := formatter.ParseKeyStyle(cfg.Keys)
	if err != nil {
		return err
	}

	ex := extractor.New(in, extractor.Options{
		IncludeAllChildren: cfg.IncludeAll,
		IncludeRoot:        cfg.IncludeRoot,
		SelectedTags:       cfg.Tags,
	})
	fm := formatter.New(out, style)

	units := 0
	for {
		unit, err := ex.Next()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Lines already written stay valid; the output is a prefix of
			// what a successful run would have produced.
			closeOut()
			return err
		}
		if cfg.Simplify {
			unit, err = simplifier.Simplify(unit)
			if err != nil {
				closeOut()
				return err
			}
		}
		if err := fm.WriteUnit(unit); err != nil {
			closeOut()
			return err
		}
		units++
	}
	log.Debug().Int("units", units).Msg("conversion complete")
	return closeOut()
}

// openInput selects the XML source: a file when -i is given, piped stdin
// otherwise.
func openInput() (io.Reader, func(), error) {
	if CLI.Input != "" {
		file, err := os.Open(CLI.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, errors.NewInputError(
					fmt.Sprintf("file '%s' not found", CLI.Input),
					errors.ErrFileNotFound,
				)
			}
			return nil, nil, errors.NewInputError(
				fmt.Sprintf("failed to open file '%s'", CLI.Input), err)
		}
		stat, err := file.Stat()
		if err != nil {
			_ = file.Close()
			return nil, nil, errors.NewInputError(
				fmt.Sprintf("failed to get file stats for '%s'", CLI.Input), err)
		}
		if stat.Size() == 0 {
			_ = file.Close()
			return nil, nil, errors.NewInputError(
				fmt.Sprintf("input file '%s' is empty", CLI.Input),
				errors.ErrFileEmpty,
			)
		}
		return file, func() { _ = file.Close() }, nil
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, nil, errors.NewInputError("failed to access stdin", err)
	}
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal with nothing piped in
		return nil, nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	return os.Stdin, func() {}, nil
}

// openOutput selects the JSON Lines sink: a file when -o is given, stdout
// otherwise. The returned close function flushes and may be called more
// than once.
func openOutput() (io.Writer, func() error, error) {
	var w io.Writer = os.Stdout
	var file *os.File
	if CLI.Output != "" {
		f, err := os.Create(CLI.Output)
		if err != nil {
			return nil, nil, errors.NewOutputError(
				fmt.Sprintf("failed to create file '%s'", CLI.Output), err)
		}
		file = f
		w = f
	}
	buf := bufio.NewWriter(w)
	closed := false
	closeFn := func() error {
		if closed {
			return nil
		}
		closed = true
		if err := buf.Flush(); err != nil {
			return errors.NewOutputError("failed to flush output", err)
		}
		if file != nil {
			if err := file.Close(); err != nil {
				return errors.NewOutputError(
					fmt.Sprintf("failed to close file '%s'", CLI.Output), err)
			}
		}
		return nil
	}
	return buf, closeFn, nil
}
