// Package dataframe exposes dataset loading, analysis and charting as tools.
package dataframe

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/afs"
	svc "github.com/viant/datacrew/genai/tool/service"
	"github.com/viant/datacrew/genai/tool/service/file"
	"github.com/viant/datacrew/internal/chart"
	"github.com/viant/datacrew/internal/dataframe"
)

// Name identifies the dataframe tool service namespace
const Name = "dataframe"

// Service loads datasets into a shared store and runs analysis operations on them.
type Service struct {
	fs    afs.Service
	store *Store
}

// New creates a dataframe service; a nil store starts an empty one.
func New(fs afs.Service, store *Store) *Service {
	if fs == nil {
		fs = afs.New()
	}
	if store == nil {
		store = NewStore()
	}
	return &Service{fs: fs, store: store}
}

// Store returns the frames loaded by this service.
func (s *Service) Store() *Store { return s.store }

// LoadInput defines a dataset to load.
type LoadInput struct {
	FilePath string `json:"file_path" validate:"required" description:"Path or URL of a CSV, Excel (.xlsx) or JSON dataset"`
}

// LoadOutput describes the loaded dataset.
type LoadOutput struct {
	dataframe.Info
}

func (o *LoadOutput) Text() string { return indent(o.Info) }

// AnalyzeInput selects an analysis operation.
type AnalyzeInput struct {
	Operation  string                 `json:"operation" validate:"required" description:"One of info, describe, correlation, groupby, query, summary"`
	Parameters map[string]interface{} `json:"parameters,omitempty" description:"Operation parameters: describe{percentiles}, groupby{columns, aggregation}, query{filter, limit}; source selects a loaded dataset other than the latest"`
}

// AnalyzeOutput holds the operation result.
type AnalyzeOutput struct {
	Result interface{} `json:"result"`
}

func (o *AnalyzeOutput) Text() string { return indent(o.Result) }

// VisualizeInput selects a chart.
type VisualizeInput struct {
	PlotType   string                 `json:"plot_type" validate:"required" description:"One of histogram, scatter, bar, line, correlation_heatmap, boxplot"`
	Parameters map[string]interface{} `json:"parameters,omitempty" description:"Plot parameters: histogram{column, bins, kde}, scatter{x, y, hue}, bar{x, y}, line{x, y}, correlation_heatmap{show_values, colormap: coolwarm, blue_red, purple_orange, green_purple, blue_tan, green_red, blackbody, hot, extended_blackbody, kindlmann, extended_kindlmann, add _r to reverse}, boxplot{column, group_by}; source selects a loaded dataset other than the latest"`
	SavePath   string                 `json:"save_path,omitempty" description:"Where to save the image, defaults to visualization.png"`
}

// VisualizeOutput reports the saved chart location.
type VisualizeOutput struct {
	Path string `json:"path"`
}

func (o *VisualizeOutput) Text() string { return "Visualization saved to " + o.Path }

// Name returns service name
func (s *Service) Name() string { return Name }

// Methods declares available tool methods
func (s *Service) Methods() svc.Signatures {
	return []svc.Signature{
		{Name: "DataFrameLoader", Description: "Load a dataset from a file path into a DataFrame and return basic information", Input: reflect.TypeOf(&LoadInput{}), Output: reflect.TypeOf(&LoadOutput{})},
		{Name: "DataFrameAnalyzer", Description: "Analyze the loaded DataFrame and return insights", Input: reflect.TypeOf(&AnalyzeInput{}), Output: reflect.TypeOf(&AnalyzeOutput{})},
		{Name: "DataVisualizer", Description: "Create visualizations from DataFrame data and save them to the specified path", Input: reflect.TypeOf(&VisualizeInput{}), Output: reflect.TypeOf(&VisualizeOutput{})},
	}
}

// Method resolves an executable method by name
func (s *Service) Method(name string) (svc.Executable, error) {
	switch strings.ToLower(name) {
	case "dataframeloader":
		return s.load, nil
	case "dataframeanalyzer":
		return s.analyze, nil
	case "datavisualizer":
		return s.visualize, nil
	default:
		return nil, svc.NewMethodNotFoundError(name)
	}
}

func (s *Service) load(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*LoadInput)
	if !ok {
		return svc.NewInvalidInputError(in)
	}
	output, ok := out.(*LoadOutput)
	if !ok {
		return svc.NewInvalidOutputError(out)
	}
	frame, err := dataframe.Read(ctx, s.fs, strings.TrimSpace(input.FilePath))
	if err != nil {
		return fmt.Errorf("error loading dataset: %w", err)
	}
	s.store.Put(frame)
	output.Info = *frame.Info()
	return nil
}

func (s *Service) analyze(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AnalyzeInput)
	if !ok {
		return svc.NewInvalidInputError(in)
	}
	output, ok := out.(*AnalyzeOutput)
	if !ok {
		return svc.NewInvalidOutputError(out)
	}
	frame, err := s.store.Get(source(input.Parameters))
	if err != nil {
		return err
	}
	result, err := frame.Analyze(input.Operation, input.Parameters)
	if err != nil {
		return err
	}
	output.Result = result
	return nil
}

func (s *Service) visualize(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*VisualizeInput)
	if !ok {
		return svc.NewInvalidInputError(in)
	}
	output, ok := out.(*VisualizeOutput)
	if !ok {
		return svc.NewInvalidOutputError(out)
	}
	frame, err := s.store.Get(source(input.Parameters))
	if err != nil {
		return err
	}
	savePath := strings.TrimSpace(input.SavePath)
	if savePath == "" {
		savePath = chart.DefaultPath
	}
	data, err := chart.Render(frame, chart.Spec{Type: input.PlotType, Parameters: input.Parameters}, chart.Format(savePath))
	if err != nil {
		return err
	}
	if err = file.Upload(ctx, s.fs, savePath, data); err != nil {
		return fmt.Errorf("error creating visualization: %w", err)
	}
	output.Path = savePath
	return nil
}

func source(params map[string]interface{}) string {
	value, _ := params["source"].(string)
	return strings.TrimSpace(value)
}

func indent(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
