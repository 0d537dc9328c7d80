package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/viant/datacrew/genai/agent"
	"github.com/viant/datacrew/genai/llm"
	"github.com/viant/datacrew/genai/tool"
	"github.com/viant/datacrew/genai/usage"
)

// ErrEmptyAnswer is returned when a model finishes a task without content.
var ErrEmptyAnswer = errors.New("model returned an empty final answer")

const finalAnswerPrompt = "You have used the maximum number of steps allowed for this task. " +
	"Do not call any more tools. Now give your best complete final answer to the task."

// executor drives one agent through one task.
type executor struct {
	agent  *agent.Agent
	model  llm.Model
	tools  *tool.Registry
	usage  *usage.Aggregator
	logger zerolog.Logger
}

func (e *executor) log() *zerolog.Event {
	if e.agent.Verbose {
		return e.logger.Info()
	}
	return e.logger.Debug()
}

// run returns the final answer, the number of model calls and the tool calls made.
func (e *executor) run(ctx context.Context, prompt string) (string, int, []ToolCall, error) {
	system, err := e.agent.SystemPrompt()
	if err != nil {
		return "", 0, nil, err
	}
	messages := llm.Messages{llm.NewSystemMessage(system), llm.NewUserMessage(prompt)}
	options := &llm.Options{Model: e.agent.Model, Temperature: e.agent.Temperature}
	if e.tools != nil {
		options.Tools = e.tools.Tools()
	}
	if len(options.Tools) > 0 {
		options.ToolChoice = llm.NewAutoToolChoice()
	}

	var calls []ToolCall
	iterations := e.agent.Iterations()
	for i := 0; i < iterations; i++ {
		message, err := e.generate(ctx, messages, options)
		if err != nil {
			return "", i + 1, calls, err
		}
		if len(message.ToolCalls) == 0 {
			answer, err := finalAnswer(message)
			return answer, i + 1, calls, err
		}
		messages.Append(*message)
		for _, call := range message.ToolCalls {
			record := e.call(ctx, &call)
			calls = append(calls, record)
			messages.Append(llm.NewToolResultMessage(call))
		}
	}

	e.log().Int("iterations", iterations).Msg("iteration limit reached, requesting final answer")
	messages.Append(llm.NewUserMessage(finalAnswerPrompt))
	forced := *options
	if len(forced.Tools) > 0 {
		forced.ToolChoice = llm.NewNoneToolChoice()
	}
	message, err := e.generate(ctx, messages, &forced)
	if err != nil {
		return "", iterations + 1, calls, err
	}
	answer, err := finalAnswer(message)
	return answer, iterations + 1, calls, err
}

func (e *executor) generate(ctx context.Context, messages llm.Messages, options *llm.Options) (*llm.Message, error) {
	request := &llm.GenerateRequest{Messages: append([]llm.Message(nil), messages...), Options: options}
	response, err := e.model.Generate(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("agent %v: generate failed: %w", e.agent.ID, err)
	}
	if response.Usage != nil && e.usage != nil {
		model := response.Model
		if model == "" {
			model = options.Model
		}
		e.usage.OnUsage(model, response.Usage)
	}
	message := response.Message()
	if message == nil {
		return nil, fmt.Errorf("agent %v: model returned no choices", e.agent.ID)
	}
	return message, nil
}

// call executes a tool call in place; failures become the call error so the model can react.
func (e *executor) call(ctx context.Context, call *llm.ToolCall) ToolCall {
	name := call.ToolName()
	record := ToolCall{Name: name}
	args, err := call.DecodeArguments()
	if err != nil {
		call.Error = fmt.Sprintf("invalid arguments for %s: %v", name, err)
		record.Error = call.Error
		e.logger.Warn().Str("tool", name).Err(err).Msg("tool call arguments rejected")
		return record
	}
	record.Arguments = args
	e.log().Str("tool", name).Interface("arguments", args).Msg("calling tool")
	if e.tools == nil {
		err = fmt.Errorf("tool %q not registered", name)
	} else {
		call.Result, err = e.tools.Execute(ctx, name, args)
	}
	if err != nil {
		call.Result = ""
		call.Error = err.Error()
		record.Error = call.Error
		e.logger.Warn().Str("tool", name).Err(err).Msg("tool call failed")
		return record
	}
	if call.Result == "" {
		call.Result = "(no output)"
	}
	record.Result = call.Result
	e.log().Str("tool", name).Int("bytes", len(call.Result)).Msg("tool call completed")
	return record
}

func finalAnswer(message *llm.Message) (string, error) {
	answer := strings.TrimSpace(message.Content)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
