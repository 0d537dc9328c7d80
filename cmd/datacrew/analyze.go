package datacrew

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/datacrew/service/analysis"
)

const previewLines = 10

// analysisOptions are appended to every analysis service, tests use it to
// replace the model.
var analysisOptions []analysis.Option

// AnalyzeCmd runs the crew against a dataset and previews the report.
type AnalyzeCmd struct {
	Data       string `short:"d" long:"data" description:"dataset path or URL (csv, xlsx, json)" required:"true"`
	Question   string `short:"q" long:"question" description:"analysis question to answer" required:"true"`
	Output     string `short:"o" long:"output" description:"report location (default: final_analysis_report.md)"`
	Agents     string `short:"a" long:"agents" description:"crew definitions YAML replacing the built-in agents"`
	Transcript string `long:"transcript" description:"JSON file receiving every task output"`
	Shared

	out io.Writer
}

func (a *AnalyzeCmd) Execute(_ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	overrides := map[string]interface{}{}
	if a.Output != "" {
		overrides["crew.output"] = a.Output
	}
	if a.Agents != "" {
		overrides["crew.definitions"] = a.Agents
	}
	if a.Transcript != "" {
		overrides["crew.transcript"] = a.Transcript
	}
	cfg, ctx, err := a.setup(ctx, overrides)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Initializing Data Analysis Crew...")
	fs := afs.New()
	options := append([]analysis.Option{analysis.WithFileSystem(fs)}, analysisOptions...)
	service, err := analysis.New(cfg, options...)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Starting analysis of dataset: %s\n", a.Data)
	fmt.Fprintf(a.out, "Question to answer: %s\n", a.Question)
	reportPath, err := service.RunCrew(ctx, a.Data, a.Question)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\nAnalysis complete!")
	fmt.Fprintf(a.out, "Report saved to: %s\n", reportPath)

	data, err := fs.DownloadWithURL(ctx, reportPath)
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", reportPath, err)
	}
	fmt.Fprintln(a.out, "\nReport Preview:")
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
	for _, line := range preview(data, previewLines) {
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintln(a.out, strings.Repeat("-", 40))
	fmt.Fprintf(a.out, "See full report at %s\n", reportPath)
	return nil
}

// preview returns up to limit trimmed lines of data.
func preview(data []byte, limit int) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() && len(lines) < limit {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	return lines
}
