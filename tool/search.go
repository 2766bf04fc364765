package tool

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SearchToolOption configures the search tool.
type SearchToolOption func(*searchToolConfig)

type searchToolConfig struct {
	basePath        string
	maxResults      int
	includePatterns []string
	excludePatterns []string
}

// WithSearchPath sets the base path for searches.
func WithSearchPath(path string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.basePath = path
	}
}

// WithMaxResults limits the number of search results.
// Default is 100.
func WithMaxResults(n int) SearchToolOption {
	return func(c *searchToolConfig) {
		c.maxResults = n
	}
}

// WithIncludePatterns sets doublestar patterns for files to include,
// matched against paths relative to the search root.
func WithIncludePatterns(patterns ...string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.includePatterns = patterns
	}
}

// WithExcludePatterns sets doublestar patterns for files to exclude.
func WithExcludePatterns(patterns ...string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.excludePatterns = patterns
	}
}

func applySearchOpts(opts []SearchToolOption) *searchToolConfig {
	cfg := &searchToolConfig{maxResults: 100}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.basePath == "" {
		cfg.basePath = "."
	}
	return cfg
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (c *searchToolConfig) shouldInclude(rel string) bool {
	if matchAny(c.excludePatterns, rel) {
		return false
	}
	return len(c.includePatterns) == 0 || matchAny(c.includePatterns, rel)
}

// SearchArgs are the arguments of the search_files tool.
type SearchArgs struct {
	Pattern     string `json:"pattern" jsonschema:"required,description=Regex pattern to search for"`
	Path        string `json:"path,omitempty" jsonschema:"description=Directory to search in relative to the search root"`
	FilePattern string `json:"file_pattern,omitempty" jsonschema:"description=Glob for file paths such as **/*.go"`
}

// SearchMatch is one matching line.
type SearchMatch struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// SearchResult is the output of the search_files tool. Preliminary results
// report the matches found so far with Done unset.
type SearchResult struct {
	Pattern   string        `json:"pattern"`
	Count     int           `json:"count"`
	Truncated bool          `json:"truncated,omitempty"`
	Done      bool          `json:"done"`
	Matches   []SearchMatch `json:"matches"`
}

var errSearchLimit = errors.New("search limit reached")

// NewSearchTool creates a tool for searching file contents with a regex. It
// reports a preliminary result after each file with matches.
func NewSearchTool(opts ...SearchToolOption) Tool {
	cfg := applySearchOpts(opts)

	return Stream("search_files", "Search for a pattern in file contents",
		func(ctx context.Context, args SearchArgs) iter.Seq2[any, error] {
			return func(yield func(any, error) bool) {
				re, err := regexp.Compile(args.Pattern)
				if err != nil {
					yield(nil, err)
					return
				}
				root := cfg.basePath
				if args.Path != "" {
					root = filepath.Join(cfg.basePath, args.Path)
				}

				result := SearchResult{Pattern: args.Pattern}
				snapshot := func() SearchResult {
					s := result
					s.Matches = append([]SearchMatch(nil), result.Matches...)
					return s
				}

				stopped := false
				err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
					if err != nil || d.IsDir() {
						return nil
					}
					if err := ctx.Err(); err != nil {
						return err
					}
					rel, _ := filepath.Rel(cfg.basePath, path)
					rel = filepath.ToSlash(rel)
					if args.FilePattern != "" {
						if ok, _ := doublestar.Match(args.FilePattern, rel); !ok {
							return nil
						}
					}
					if !cfg.shouldInclude(rel) {
						return nil
					}

					found, limit := searchFile(path, rel, re, cfg.maxResults-len(result.Matches))
					if len(found) == 0 {
						return nil
					}
					result.Matches = append(result.Matches, found...)
					result.Count = len(result.Matches)
					if limit {
						result.Truncated = true
						return errSearchLimit
					}
					if !yield(snapshot(), nil) {
						stopped = true
						return fs.SkipAll
					}
					return nil
				})
				if stopped {
					return
				}
				if err != nil && !errors.Is(err, errSearchLimit) {
					yield(nil, err)
					return
				}
				result.Done = true
				yield(snapshot(), nil)
			}
		})
}

// searchFile returns up to limit matches in the file and whether the limit
// was hit.
func searchFile(path, rel string, re *regexp.Regexp, limit int) ([]SearchMatch, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var matches []SearchMatch
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		if len(line) > 200 {
			line = line[:200] + "..."
		}
		matches = append(matches, SearchMatch{File: rel, Line: lineNum, Content: strings.TrimSpace(line)})
		if len(matches) >= limit {
			return matches, true
		}
	}
	return matches, false
}

// StandardTools returns the file, HTTP and search tools.
func StandardTools(fileOpts []FileToolOption, httpOpts []HTTPToolOption, searchOpts []SearchToolOption) []Tool {
	tools := FileTools(fileOpts...)
	tools = append(tools, NewHTTPTool(httpOpts...))
	return append(tools, NewSearchTool(searchOpts...))
}
