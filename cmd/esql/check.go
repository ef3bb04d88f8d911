package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sambeau/esql/config"
	"github.com/sambeau/esql/pkg/esql/ast"
	perrors "github.com/sambeau/esql/pkg/esql/errors"
	"github.com/sambeau/esql/pkg/esql/esql"
)

// checker parses query files and reports the outcome.
type checker struct {
	opts   []esql.Option
	stdout io.Writer
	stderr io.Writer
	log    logrus.FieldLogger

	check bool // Errors only
	tree  bool
	json  bool
}

// jsonResult is one line of --json output.
type jsonResult struct {
	File  string             `json:"file"`
	OK    bool               `json:"ok"`
	Query string             `json:"query,omitempty"`
	Nodes map[string]int     `json:"nodes,omitempty"`
	Error *perrors.EsqlError `json:"error,omitempty"`
}

// checkFiles parses every file. ok is false if any query failed to
// parse; ioFailed is true if any file could not be read.
func (c *checker) checkFiles(files []string) (ok, ioFailed bool) {
	ok = true
	for _, filename := range files {
		content, err := os.ReadFile(filename)
		if err != nil {
			fmt.Fprintf(c.stderr, "Error reading %s: %v\n", filename, err)
			ioFailed = true
			continue
		}
		if !c.checkSource(filename, string(content)) {
			ok = false
		}
	}
	return ok, ioFailed
}

// checkSource parses one query and prints the result.
func (c *checker) checkSource(name, source string) bool {
	opts := append(c.opts[:len(c.opts):len(c.opts)], esql.WithFilename(name))
	stmts, err := esql.Parse(source, opts...)

	if c.json {
		c.printJSON(name, stmts, err)
		return err == nil
	}

	if err != nil {
		printError(c.stderr, source, err)
		return false
	}
	c.log.WithField("file", name).Info("query ok")

	switch {
	case c.check:
	case c.tree:
		ast.Fprint(c.stdout, stmts)
	default:
		fmt.Fprintln(c.stdout, stmts.String())
	}
	return true
}

func (c *checker) printJSON(name string, stmts *ast.Statements, err error) {
	res := jsonResult{File: name, OK: err == nil}
	if err != nil {
		if e, ok := perrors.As(err); ok {
			res.Error = e
		} else {
			res.Error = &perrors.EsqlError{Message: err.Error()}
		}
	} else if !c.check {
		res.Query = stmts.String()
		res.Nodes = ast.Count(stmts)
	}

	data, jerr := json.Marshal(res)
	if jerr != nil {
		fmt.Fprintf(c.stderr, "Error formatting JSON: %v\n", jerr)
		return
	}
	c.stdout.Write(append(data, '\n'))
}

// printError prints a parse error with the offending source line
func printError(w io.Writer, source string, err error) {
	e, ok := perrors.As(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	io.WriteString(w, e.PrettyString())
	io.WriteString(w, "\n")
	io.WriteString(w, e.SourceContext(source))
}

// expandTargets replaces directory arguments with the files beneath them
// that match one of patterns. File arguments are kept as given.
func expandTargets(args []string, patterns config.StringOrSlice) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported when they are read
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Skip hidden directories
				if strings.HasPrefix(d.Name(), ".") && path != arg {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesAny(patterns, d.Name()) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func matchesAny(patterns config.StringOrSlice, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
