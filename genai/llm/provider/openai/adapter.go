package openai

import (
	"github.com/viant/datacrew/genai/llm"
)

// ToRequest converts an llm.GenerateRequest to a chat/completions Request
func ToRequest(request *llm.GenerateRequest) *Request {
	req := &Request{}
	if request == nil {
		return req
	}
	if opts := request.Options; opts != nil {
		if opts.Model != "" {
			req.Model = opts.Model
		}
		if opts.MaxTokens > 0 {
			req.MaxTokens = opts.MaxTokens
		}
		if opts.TopP > 0 {
			req.TopP = opts.TopP
		}
		// zero is a valid temperature, only nil falls back to the client default
		if opts.Temperature != nil {
			temperature := *opts.Temperature
			req.Temperature = &temperature
		}
		if len(opts.StopWords) > 0 {
			req.Stop = opts.StopWords
		}
		if len(opts.Tools) > 0 {
			req.Tools = make([]Tool, len(opts.Tools))
			for i, tool := range opts.Tools {
				def := tool.Definition
				def.Normalize()
				req.Tools[i] = Tool{
					Type: "function",
					Function: ToolDefinition{
						Name:        def.Name,
						Description: def.Description,
						Parameters:  def.Parameters,
					},
				}
			}
		}
		req.ToolChoice = toToolChoice(opts.ToolChoice, len(req.Tools) > 0)
	}

	req.Messages = make([]Message, 0, len(request.Messages))
	for _, msg := range request.Messages {
		req.Messages = append(req.Messages, toMessage(msg))
	}
	return req
}

func toToolChoice(choice llm.ToolChoice, hasTools bool) interface{} {
	if !hasTools {
		return nil
	}
	switch choice.Type {
	case "none", "auto", "required":
		return choice.Type
	case "function":
		if choice.Function == nil {
			return nil
		}
		return map[string]interface{}{
			"type":     "function",
			"function": map[string]interface{}{"name": choice.Function.Name},
		}
	}
	return nil
}

func toMessage(msg llm.Message) Message {
	result := Message{
		Role:       msg.Role.String(),
		Name:       msg.Name,
		ToolCallId: msg.ToolCallId,
	}
	// tool message name is not accepted by the chat API
	if msg.Role == llm.RoleTool {
		result.Name = ""
	}
	if msg.Content != "" || len(msg.ToolCalls) == 0 {
		result.Content = msg.Content
	}
	if len(msg.ToolCalls) > 0 {
		result.ToolCalls = make([]ToolCall, len(msg.ToolCalls))
		for i, call := range msg.ToolCalls {
			arguments := call.Function.Arguments
			if arguments == "" && call.Arguments != nil {
				arguments = llm.NewFunctionCall(call.ToolName(), call.Arguments).Arguments
			}
			result.ToolCalls[i] = ToolCall{
				ID:   call.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      call.ToolName(),
					Arguments: arguments,
				},
			}
		}
	}
	return result
}

// ToLLMSResponse converts a Response to an llm.GenerateResponse
func ToLLMSResponse(resp *Response) *llm.GenerateResponse {
	llmsResp := &llm.GenerateResponse{
		Choices: make([]llm.Choice, len(resp.Choices)),
		Model:   resp.Model,
	}
	for i, choice := range resp.Choices {
		message := llm.Message{
			Role: llm.MessageRole(choice.Message.Role),
			Name: choice.Message.Name,
		}
		if content, ok := choice.Message.Content.(string); ok {
			message.Content = content
		}
		if len(choice.Message.ToolCalls) > 0 {
			message.ToolCalls = make([]llm.ToolCall, len(choice.Message.ToolCalls))
			for j, call := range choice.Message.ToolCalls {
				toolCall := llm.ToolCall{
					ID:   call.ID,
					Name: call.Function.Name,
					Type: call.Type,
					Function: llm.FunctionCall{
						Name:      call.Function.Name,
						Arguments: call.Function.Arguments,
					},
				}
				// malformed arguments are surfaced to the caller at execution time
				_, _ = toolCall.DecodeArguments()
				message.ToolCalls[j] = toolCall
			}
		}
		llmsResp.Choices[i] = llm.Choice{
			Index:        choice.Index,
			Message:      message,
			FinishReason: choice.FinishReason,
		}
	}
	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		llmsResp.Usage = &llm.Usage{
			PromptTokens:              resp.Usage.PromptTokens,
			CompletionTokens:          resp.Usage.CompletionTokens,
			TotalTokens:               resp.Usage.TotalTokens,
			PromptCachedTokens:        resp.Usage.PromptTokensDetails.CachedTokens,
			CompletionReasoningTokens: resp.Usage.CompletionTokensDetails.ReasoningTokens,
		}
	}
	return llmsResp
}
