/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command rtxdump loads package manifests into a catalog and prints the
// resulting namespaces, classes, fields, methods and enums.
//
//	rtxdump [-log-level debug] [-log-format json] [-tokens] geo.yaml base.yaml
//
// Manifests are declared in argument order, so imported packages come first.
// Naming is configured from RTX_* environment variables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"dirpx.dev/rtx/catalog"
	"dirpx.dev/rtx/config"
	"dirpx.dev/rtx/manifest"
	"dirpx.dev/rtx/token"
)

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		code := 1
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			code = exitErr.code
		}
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "rtxdump:", err)
		}
		os.Exit(code)
	}
}

// run parses args, loads every manifest and writes the dump to outW.
// Logs go to errW.
func run(outW, errW io.Writer, args []string) error {
	fs := flag.NewFlagSet("rtxdump", flag.ContinueOnError)
	fs.SetOutput(errW)
	level := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	format := fs.String("log-format", "", "log format: text or json (default text on a terminal, json otherwise)")
	shortNames := fs.Bool("short-names", false, "name Go types by the last import path element")
	tokens := fs.Bool("tokens", false, "also list every token of the universe")
	if err := fs.Parse(args); err != nil {
		return &exitError{code: 2, err: err}
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return &exitError{code: 2, err: errors.New("no manifest given")}
	}

	if *format == "" {
		*format = defaultFormat(errW)
	}
	logger, err := newLogger(*level, *format, errW)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	opts := []config.Option{}
	if *shortNames {
		opts = append(opts, config.WithShortNames(true))
	}
	cfg, err := config.FromEnv(opts...)
	if err != nil {
		return err
	}
	token.SetComparison(cfg.Compare)
	uni := token.NewUniverse(cfg, nil)
	cat := catalog.New(catalog.WithUniverse(uni), catalog.WithLogger(logger))

	for _, path := range fs.Args() {
		p, err := manifest.Load(path)
		if err != nil {
			return err
		}
		if err := cat.Declare(p); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("manifest loaded", "path", path, "package", p.Package, "version", p.Version)
	}

	dump(outW, cat)
	if *tokens {
		fmt.Fprintln(outW, "tokens")
		for _, t := range uni.Tokens() {
			fmt.Fprintf(outW, "  %s\n", t)
		}
	}
	return nil
}

// dump writes the namespace tree of c.
func dump(w io.Writer, c *catalog.Catalog) {
	for _, ns := range c.Namespaces() {
		if len(ns.Classes) == 0 && len(ns.Enums) == 0 {
			continue
		}
		fmt.Fprintf(w, "namespace %s\n", ns.Name)
		for _, id := range ns.Classes {
			cls, _ := c.Class(id)
			fmt.Fprintf(w, "  class %s", cls.Name)
			if sup, ok := c.Class(cls.Super); ok {
				fmt.Fprintf(w, " : %s", sup.QualifiedName)
			}
			if len(cls.Annotations) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(cls.Annotations, ", "))
			}
			fmt.Fprintln(w)
			for _, fid := range cls.Fields {
				f, _ := c.Field(fid)
				fmt.Fprintf(w, "    field %s %s", f.Name, f.Type)
				if f.HasOffset {
					fmt.Fprintf(w, " @%d", f.Offset)
				}
				fmt.Fprintln(w)
			}
			for _, mid := range cls.Methods {
				m, _ := c.Method(mid)
				fmt.Fprintf(w, "    method %s\n", m.Signature)
			}
		}
		for _, id := range ns.Enums {
			e, _ := c.Enum(id)
			fmt.Fprintf(w, "  enum %s {%s}\n", e.Name, strings.Join(e.Values, ", "))
		}
	}
}

// defaultFormat picks text for terminals and json for everything else.
func defaultFormat(w io.Writer) string {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "text"
	}
	return "json"
}

// newLogger creates a logger writing to w. It does not touch the default logger.
func newLogger(levelStr, formatStr string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return nil, fmt.Errorf("invalid -log-level %q", levelStr)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch formatStr {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid -log-format %q", formatStr)
	}
}
