// Package file exposes reading and writing of text files as tools.
package file

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/datacrew/genai/textclip"
	svc "github.com/viant/datacrew/genai/tool/service"
)

// Name identifies the file tool service namespace
const Name = "file"

// Service reads and writes files through afs, so any registered scheme works.
type Service struct {
	fs afs.Service
}

// New creates a file service
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// ReadInput defines a file to read.
type ReadInput struct {
	Path      string `json:"path" validate:"required" description:"Path or URL of the file to read"`
	StartLine int    `json:"start_line,omitempty" validate:"gte=0" description:"First line to read, 1-based"`
	LineCount int    `json:"line_count,omitempty" validate:"gte=0" description:"Number of lines to read, all remaining when empty"`
}

// ReadOutput holds the file content.
type ReadOutput struct {
	Content string `json:"content"`
}

func (o *ReadOutput) Text() string { return o.Content }

// WriteInput defines content to write.
type WriteInput struct {
	Path      string `json:"path" validate:"required" description:"Path or URL of the file to write"`
	Content   string `json:"content" description:"Content to write"`
	Overwrite bool   `json:"overwrite,omitempty" description:"Replace the file when it already exists"`
}

// WriteOutput reports the written location.
type WriteOutput struct {
	Path string `json:"path"`
	Size int    `json:"size"`
}

func (o *WriteOutput) Text() string {
	return fmt.Sprintf("Content successfully written to %s", o.Path)
}

// Name returns service name
func (s *Service) Name() string { return Name }

// Methods declares available tool methods
func (s *Service) Methods() svc.Signatures {
	return []svc.Signature{
		{Name: "FileReader", Description: "Read the contents of a file", Input: reflect.TypeOf(&ReadInput{}), Output: reflect.TypeOf(&ReadOutput{})},
		{Name: "FileWriter", Description: "Write content to a file", Input: reflect.TypeOf(&WriteInput{}), Output: reflect.TypeOf(&WriteOutput{})},
	}
}

// Method resolves an executable method by name
func (s *Service) Method(name string) (svc.Executable, error) {
	switch strings.ToLower(name) {
	case "filereader":
		return s.read, nil
	case "filewriter":
		return s.write, nil
	default:
		return nil, svc.NewMethodNotFoundError(name)
	}
}

func (s *Service) read(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ReadInput)
	if !ok {
		return svc.NewInvalidInputError(in)
	}
	output, ok := out.(*ReadOutput)
	if !ok {
		return svc.NewInvalidOutputError(out)
	}
	location := strings.TrimSpace(input.Path)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return fmt.Errorf("file not found at path: %s", location)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", location, err)
	}
	start := input.StartLine
	if start == 0 {
		start = 1
	}
	if output.Content, err = textclip.Lines(string(data), start, input.LineCount); err != nil {
		return fmt.Errorf("failed to read %s: %w", location, err)
	}
	return nil
}

func (s *Service) write(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*WriteInput)
	if !ok {
		return svc.NewInvalidInputError(in)
	}
	output, ok := out.(*WriteOutput)
	if !ok {
		return svc.NewInvalidOutputError(out)
	}
	location := strings.TrimSpace(input.Path)
	if !input.Overwrite {
		exists, err := s.fs.Exists(ctx, location)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", location, err)
		}
		if exists {
			return fmt.Errorf("file %s already exists and overwrite was not requested", location)
		}
	}
	if err := Upload(ctx, s.fs, location, []byte(input.Content)); err != nil {
		return err
	}
	output.Path = location
	output.Size = len(input.Content)
	return nil
}

// Upload writes data to URL, creating the parent folder as needed.
func Upload(ctx context.Context, fs afs.Service, URL string, data []byte) error {
	parent, _ := url.Split(URL, file.Scheme)
	if strings.TrimSpace(parent) != "" {
		exists, err := fs.Exists(ctx, parent)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", parent, err)
		}
		if !exists {
			if err := fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
				return fmt.Errorf("failed to create %s: %w", parent, err)
			}
		}
	}
	if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", URL, err)
	}
	return nil
}
