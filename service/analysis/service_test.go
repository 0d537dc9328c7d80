package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/internal/config"
)

const salesCSV = `region,units,price
North,10,2.5
South,20,3.5
North,30,4.5
`

const report = "# Final Report\n\nAverage units sold is 20 (source: sales.csv)."

type fakeModel struct {
	mux      sync.Mutex
	requests []*llm.GenerateRequest
	respond  func(request *llm.GenerateRequest) (*llm.GenerateResponse, error)
}

func (m *fakeModel) Generate(ctx context.Context, request *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mux.Lock()
	m.requests = append(m.requests, request)
	m.mux.Unlock()
	return m.respond(request)
}

func (m *fakeModel) Implements(feature string) bool { return true }

func text(content string) *llm.GenerateResponse {
	return &llm.GenerateResponse{
		Model:   "fake",
		Choices: []llm.Choice{{Message: llm.NewAssistantMessage(content)}},
		Usage:   &llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}
}

func toolCall(id, name string, args map[string]interface{}) *llm.GenerateResponse {
	message := llm.NewAssistantMessage("")
	message.ToolCalls = []llm.ToolCall{llm.NewToolCall(id, name, args)}
	return &llm.GenerateResponse{Model: "fake", Choices: []llm.Choice{{Message: message}}}
}

// analystModel loads the dataset as the engineer, describes it as the analyst
// and writes the report as the research specialist.
func analystModel(dataset string) *fakeModel {
	return &fakeModel{respond: func(request *llm.GenerateRequest) (*llm.GenerateResponse, error) {
		system := request.Messages[0].Content
		last := request.Messages[len(request.Messages)-1]
		switch {
		case strings.HasPrefix(system, "You are Data Engineer"):
			if last.Role == llm.RoleTool {
				return text("Dataset prepared: 3 rows, 3 columns."), nil
			}
			return toolCall("call_1", "DataFrameLoader", map[string]interface{}{"file_path": dataset}), nil
		case strings.HasPrefix(system, "You are Data Analyst"):
			if last.Role == llm.RoleTool {
				return text("Average units sold is 20."), nil
			}
			return toolCall("call_2", "DataFrameAnalyzer", map[string]interface{}{"operation": "describe"}), nil
		default:
			return text(report), nil
		}
	}}
}

func newConfig(t *testing.T, apiKey string) *config.Config {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := config.Load(config.Options{Overrides: map[string]interface{}{"openai.api_key": apiKey}})
	require.NoError(t, err)
	return cfg
}

func TestNew(t *testing.T) {
	_, err := New(newConfig(t, ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingAPIKey))

	_, err = New(nil)
	assert.Error(t, err)

	service, err := New(newConfig(t, "sk-test"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOutput, service.Output())
	assert.Equal(t, []string{"FileReader", "FileWriter", "DataFrameLoader", "DataFrameAnalyzer", "DataVisualizer"}, service.Registry().Names())
}

func TestDataAnalysisCrew_CreateAgents(t *testing.T) {
	service, err := New(newConfig(t, "sk-test"))
	require.NoError(t, err)
	agents, err := service.CreateAgents()
	require.NoError(t, err)

	testCases := []struct {
		id    string
		role  string
		tools []string
	}{
		{id: "data_engineer", role: "Data Engineer", tools: []string{"FileReader", "DataFrameLoader"}},
		{id: "data_analyst", role: "Data Analyst", tools: []string{"DataFrameAnalyzer", "DataVisualizer"}},
		{id: "research_specialist", role: "Research Specialist", tools: []string{"FileReader", "FileWriter"}},
	}
	require.Len(t, agents, len(testCases))
	for i, testCase := range testCases {
		t.Run(testCase.id, func(t *testing.T) {
			actual := agents[i]
			assert.Equal(t, testCase.id, actual.ID)
			assert.Equal(t, testCase.role, actual.Role)
			assert.Equal(t, testCase.tools, actual.Tools)
			assert.Equal(t, 15, actual.MaxIterations)
			assert.NotEmpty(t, actual.Goal)
			assert.NotEmpty(t, actual.Backstory)
		})
	}
}

func TestDataAnalysisCrew_CreateTasks(t *testing.T) {
	service, err := New(newConfig(t, "sk-test"))
	require.NoError(t, err)
	tasks, err := service.CreateTasks("data/sales.csv", "Which region sells most?")
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "data_preparation", tasks[0].Name)
	assert.Equal(t, "data_engineer", tasks[0].Agent.ID)
	assert.Contains(t, tasks[0].Description, "data/sales.csv")
	assert.Equal(t, "data_analysis", tasks[1].Name)
	assert.Equal(t, "data_analyst", tasks[1].Agent.ID)
	assert.Contains(t, tasks[1].Description, `"Which region sells most?"`)
	assert.Equal(t, "final_report", tasks[2].Name)
	assert.Equal(t, "research_specialist", tasks[2].Agent.ID)
	for _, task := range tasks {
		assert.NotContains(t, task.Description, "{data_source}")
		assert.NotContains(t, task.Description, "{analysis_question}")
	}
}

func TestDataAnalysisCrew_RunCrew(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(salesCSV), 0o644))
	output := filepath.Join(dir, "out", "report.md")
	transcript := filepath.Join(dir, "out", "transcript.json")
	model := analystModel(dataset)

	service, err := New(newConfig(t, "sk-test"), WithModel(model), WithOutput(output), WithTranscript(transcript))
	require.NoError(t, err)
	path, err := service.RunCrew(context.Background(), dataset, "What is the average number of units sold?")
	require.NoError(t, err)
	assert.Equal(t, output, path)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, report, string(data))
	assert.Len(t, model.requests, 5)

	// the loader result reaches the engineer as a tool message
	loaded := model.requests[1].Messages[len(model.requests[1].Messages)-1]
	assert.Equal(t, llm.RoleTool, loaded.Role)
	assert.Contains(t, loaded.Content, `"shape"`)

	// the research specialist sees both earlier answers
	final := model.requests[4].Messages[1].Content
	assert.Contains(t, final, "Dataset prepared: 3 rows, 3 columns.")
	assert.Contains(t, final, "Average units sold is 20.")

	data, err = os.ReadFile(transcript)
	require.NoError(t, err)
	var actual struct {
		ID    string `json:"id"`
		Tasks []struct {
			Task      string `json:"task"`
			Agent     string `json:"agent"`
			Output    string `json:"output"`
			ToolCalls []struct {
				Name  string `json:"name"`
				Error string `json:"error"`
			} `json:"toolCalls"`
		} `json:"tasks"`
		Usage map[string]struct {
			Calls int `json:"calls"`
		} `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(data, &actual))
	assert.NotEmpty(t, actual.ID)
	require.Len(t, actual.Tasks, 3)
	assert.Equal(t, "data_preparation", actual.Tasks[0].Task)
	require.Len(t, actual.Tasks[0].ToolCalls, 1)
	assert.Equal(t, "DataFrameLoader", actual.Tasks[0].ToolCalls[0].Name)
	assert.Empty(t, actual.Tasks[0].ToolCalls[0].Error)
	require.Len(t, actual.Tasks[1].ToolCalls, 1)
	assert.Equal(t, "DataFrameAnalyzer", actual.Tasks[1].ToolCalls[0].Name)
	assert.Empty(t, actual.Tasks[1].ToolCalls[0].Error)
	assert.Equal(t, report, actual.Tasks[2].Output)
	assert.Equal(t, 3, actual.Usage["fake"].Calls)
}

func TestDataAnalysisCrew_CreateAgents_Temperature(t *testing.T) {
	dir := t.TempDir()
	definitions := filepath.Join(dir, "crew.yaml")
	require.NoError(t, os.WriteFile(definitions, []byte(`agents:
  - id: cold
    role: Cold
    goal: stay deterministic
    temperature: 0
  - id: warm
    role: Warm
    goal: inherit the default
tasks:
  - name: only
    agent: cold
    description: go
`), 0o644))
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := config.Load(config.Options{Overrides: map[string]interface{}{"openai.api_key": "sk-test", "openai.temperature": 0.7}})
	require.NoError(t, err)
	service, err := New(cfg, WithDefinitions(definitions))
	require.NoError(t, err)
	agents, err := service.CreateAgents()
	require.NoError(t, err)

	testCases := []struct {
		id     string
		expect float64
	}{
		{id: "cold", expect: 0},
		{id: "warm", expect: 0.7},
	}
	require.Len(t, agents, len(testCases))
	for i, testCase := range testCases {
		t.Run(testCase.id, func(t *testing.T) {
			require.NotNil(t, agents[i].Temperature)
			assert.Equal(t, testCase.expect, *agents[i].Temperature)
		})
	}
}

func TestDataAnalysisCrew_RunCrew_FreshDatasets(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "first.csv")
	require.NoError(t, os.WriteFile(dataset, []byte(salesCSV), 0o644))
	transcript := filepath.Join(dir, "transcript.json")

	var skipLoad bool
	loading := analystModel(dataset)
	model := &fakeModel{respond: func(request *llm.GenerateRequest) (*llm.GenerateResponse, error) {
		if skipLoad && strings.HasPrefix(request.Messages[0].Content, "You are Data Engineer") {
			return text("Nothing to prepare."), nil
		}
		return loading.respond(request)
	}}
	service, err := New(newConfig(t, "sk-test"), WithModel(model), WithOutput(filepath.Join(dir, "report.md")), WithTranscript(transcript))
	require.NoError(t, err)

	testCases := []struct {
		description string
		skipLoad    bool
		expectErr   string
	}{
		{description: "engineer loads the dataset", skipLoad: false},
		{description: "engineer skips the loader", skipLoad: true, expectErr: "no dataset loaded"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			skipLoad = testCase.skipLoad
			_, err := service.RunCrew(context.Background(), dataset, "What is the average number of units sold?")
			require.NoError(t, err)

			data, err := os.ReadFile(transcript)
			require.NoError(t, err)
			var actual struct {
				Tasks []struct {
					ToolCalls []struct {
						Name  string `json:"name"`
						Error string `json:"error"`
					} `json:"toolCalls"`
				} `json:"tasks"`
			}
			require.NoError(t, json.Unmarshal(data, &actual))
			require.Len(t, actual.Tasks, 3)
			require.Len(t, actual.Tasks[1].ToolCalls, 1)
			assert.Equal(t, "DataFrameAnalyzer", actual.Tasks[1].ToolCalls[0].Name)
			if testCase.expectErr == "" {
				assert.Empty(t, actual.Tasks[1].ToolCalls[0].Error)
				return
			}
			assert.Contains(t, actual.Tasks[1].ToolCalls[0].Error, testCase.expectErr)
		})
	}
}

func TestDataAnalysisCrew_RunCrew_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := filepath.Join(dir, "crew.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("process: hierarchical\nagents: []\n"), 0o644))

	testCases := []struct {
		description string
		options     []Option
		dataSource  string
		question    string
		expectErr   string
	}{
		{description: "empty data source", question: "q", expectErr: "data source was empty"},
		{description: "empty question", dataSource: "a.csv", expectErr: "analysis question was empty"},
		{description: "invalid definitions", options: []Option{WithDefinitions(invalid)}, dataSource: "a.csv", question: "q", expectErr: "unsupported process: hierarchical"},
		{description: "missing definitions", options: []Option{WithDefinitions(filepath.Join(dir, "none.yaml"))}, dataSource: "a.csv", question: "q", expectErr: "failed to load crew definitions"},
		{
			description: "model failure",
			options: []Option{WithModel(&fakeModel{respond: func(request *llm.GenerateRequest) (*llm.GenerateResponse, error) {
				return nil, errors.New("rate limited")
			}}), WithOutput(filepath.Join(dir, "never.md"))},
			dataSource: "a.csv",
			question:   "q",
			expectErr:  "rate limited",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			options := append([]Option{WithModel(analystModel("a.csv"))}, testCase.options...)
			service, err := New(newConfig(t, "sk-test"), options...)
			require.NoError(t, err)
			_, err = service.RunCrew(context.Background(), testCase.dataSource, testCase.question)
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.expectErr)
		})
	}
	_, err := os.Stat(filepath.Join(dir, "never.md"))
	assert.True(t, os.IsNotExist(err))
}
