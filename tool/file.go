package tool

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileToolOption configures file tools.
type FileToolOption func(*fileToolConfig)

type fileToolConfig struct {
	basePath          string
	allowedExtensions []string
	maxFileSize       int64
	approveWrites     bool
}

// WithBasePath restricts file operations to a specific directory.
// All paths will be resolved relative to this base path.
func WithBasePath(path string) FileToolOption {
	return func(c *fileToolConfig) {
		c.basePath = path
	}
}

// WithAllowedExtensions restricts file operations to specific file extensions.
func WithAllowedExtensions(exts ...string) FileToolOption {
	return func(c *fileToolConfig) {
		c.allowedExtensions = exts
	}
}

// WithMaxFileSize sets the maximum file size for read/write operations.
// Default is 10MB.
func WithMaxFileSize(bytes int64) FileToolOption {
	return func(c *fileToolConfig) {
		c.maxFileSize = bytes
	}
}

// WithUnapprovedWrites lets write_file run without an approval request.
func WithUnapprovedWrites() FileToolOption {
	return func(c *fileToolConfig) {
		c.approveWrites = false
	}
}

func applyFileOpts(opts []FileToolOption) *fileToolConfig {
	cfg := &fileToolConfig{
		maxFileSize:   10 * 1024 * 1024,
		approveWrites: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *fileToolConfig) resolvePath(path string) (string, error) {
	path = filepath.Clean(path)
	if c.basePath == "" {
		return path, nil
	}

	basePath := filepath.Clean(c.basePath)
	fullPath := filepath.Join(basePath, path)
	rel, err := filepath.Rel(basePath, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q is outside base path %q", path, basePath)
	}
	return fullPath, nil
}

func (c *fileToolConfig) checkExtension(path string) error {
	if len(c.allowedExtensions) == 0 {
		return nil
	}
	ext := filepath.Ext(path)
	for _, allowed := range c.allowedExtensions {
		if ext == allowed || ext == "."+allowed {
			return nil
		}
	}
	return fmt.Errorf("extension %q not allowed", ext)
}

// readLineRange reads lines start..end (1-based, inclusive) from r.
// A zero end reads to the end of the input.
func readLineRange(r io.Reader, start, end int, maxSize int64) ([]byte, error) {
	if start < 1 {
		start = 1
	}
	if end > 0 && end < start {
		return nil, fmt.Errorf("end_line (%d) must be >= start_line (%d)", end, start)
	}

	scanner := bufio.NewScanner(r)
	var result strings.Builder
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < start {
			continue
		}
		if end > 0 && lineNum > end {
			break
		}
		line := scanner.Text()
		if int64(result.Len()+len(line)+1) > maxSize {
			return nil, fmt.Errorf("line range content exceeds maximum size %d", maxSize)
		}
		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if lineNum < start {
		return nil, fmt.Errorf("start_line %d is beyond file length (%d lines)", start, lineNum)
	}
	return []byte(result.String()), nil
}

// ReadFileArgs are the arguments of the read_file tool.
type ReadFileArgs struct {
	Path      string `json:"path" jsonschema:"required,description=Path to the file to read"`
	Encoding  string `json:"encoding,omitempty" jsonschema:"enum=utf-8,enum=base64,description=Output encoding"`
	StartLine int    `json:"start_line,omitempty" jsonschema:"minimum=1,description=1-based line number to start reading from"`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"minimum=1,description=1-based line number to stop reading at (inclusive)"`
}

// NewReadFileTool creates a tool for reading file contents.
func NewReadFileTool(opts ...FileToolOption) Tool {
	cfg := applyFileOpts(opts)

	return Func("read_file", "Read the contents of a file",
		func(ctx context.Context, args ReadFileArgs) (any, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return nil, err
			}
			if err := cfg.checkExtension(path); err != nil {
				return nil, err
			}

			info, err := os.Stat(path)
			if err != nil {
				return nil, err
			}
			if info.Size() > cfg.maxFileSize {
				return nil, fmt.Errorf("file size %d exceeds maximum %d", info.Size(), cfg.maxFileSize)
			}

			f, err := os.Open(path)
			if err != nil {
				return nil, err
			}
			defer f.Close()

			var content []byte
			if args.StartLine > 0 || args.EndLine > 0 {
				content, err = readLineRange(f, args.StartLine, args.EndLine, cfg.maxFileSize)
			} else {
				content, err = io.ReadAll(io.LimitReader(f, cfg.maxFileSize))
			}
			if err != nil {
				return nil, err
			}

			if args.Encoding == "base64" {
				return base64.StdEncoding.EncodeToString(content), nil
			}
			return string(content), nil
		})
}

// WriteFileArgs are the arguments of the write_file tool.
type WriteFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=Path to the file to write"`
	Content string `json:"content" jsonschema:"required,description=Content to write to the file"`
	Mode    string `json:"mode,omitempty" jsonschema:"enum=overwrite,enum=append,description=Write mode"`
}

// WriteFileResult is the output of the write_file tool.
type WriteFileResult struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
	Mode         string `json:"mode"`
}

// NewWriteFileTool creates a tool for writing file contents. Writes require
// approval unless WithUnapprovedWrites is given; reviewers may edit the
// input before approving.
func NewWriteFileTool(opts ...FileToolOption) Tool {
	cfg := applyFileOpts(opts)

	var toolOpts []Option
	if cfg.approveWrites {
		toolOpts = append(toolOpts, RequireApproval(), Editable())
	}

	return Func("write_file", "Write content to a file",
		func(ctx context.Context, args WriteFileArgs) (any, error) {
			path, err := cfg.resolvePath(args.Path)
			if err != nil {
				return nil, err
			}
			if err := cfg.checkExtension(path); err != nil {
				return nil, err
			}
			if int64(len(args.Content)) > cfg.maxFileSize {
				return nil, fmt.Errorf("content size %d exceeds maximum %d", len(args.Content), cfg.maxFileSize)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}

			mode := args.Mode
			flag := os.O_CREATE | os.O_TRUNC | os.O_WRONLY
			if mode == "append" {
				flag = os.O_APPEND | os.O_CREATE | os.O_WRONLY
			} else {
				mode = "overwrite"
			}

			f, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				return nil, err
			}
			defer f.Close()

			n, err := f.WriteString(args.Content)
			if err != nil {
				return nil, err
			}
			return WriteFileResult{Path: path, BytesWritten: n, Mode: mode}, nil
		}, toolOpts...)
}

// ListDirArgs are the arguments of the list_directory tool.
type ListDirArgs struct {
	Path      string `json:"path" jsonschema:"required,description=Directory path to list"`
	Recursive bool   `json:"recursive,omitempty" jsonschema:"description=Include subdirectories"`
}

// DirEntry is one entry of a list_directory result.
type DirEntry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

// NewListDirTool creates a tool for listing directory contents.
func NewListDirTool(opts ...FileToolOption) Tool {
	cfg := applyFileOpts(opts)

	return Func("list_directory", "List the contents of a directory",
		func(ctx context.Context, args ListDirArgs) (any, error) {
			root, err := cfg.resolvePath(args.Path)
			if err != nil {
				return nil, err
			}

			var entries []DirEntry
			if !args.Recursive {
				des, err := os.ReadDir(root)
				if err != nil {
					return nil, err
				}
				for _, de := range des {
					entries = append(entries, dirEntry(de.Name(), de))
				}
				return entries, nil
			}

			err = filepath.WalkDir(root, func(path string, de os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if path == root {
					return nil
				}
				rel, _ := filepath.Rel(root, path)
				entries = append(entries, dirEntry(filepath.ToSlash(rel), de))
				return nil
			})
			if err != nil {
				return nil, err
			}
			return entries, nil
		})
}

func dirEntry(name string, de os.DirEntry) DirEntry {
	e := DirEntry{Name: name, IsDir: de.IsDir()}
	if !de.IsDir() {
		if info, err := de.Info(); err == nil {
			e.Size = info.Size()
		}
	}
	return e
}

// FileTools returns read_file, write_file and list_directory.
func FileTools(opts ...FileToolOption) []Tool {
	return []Tool{
		NewReadFileTool(opts...),
		NewWriteFileTool(opts...),
		NewListDirTool(opts...),
	}
}
