package api

const (
	mockCompletionID     = "mock-123"
	mockCompletionObject = "chat.completion"
	mockModel            = "mock-4o-mini"
	serverErrorType      = "server_error"
)

// ChatCompletionRequest mirrors the OpenAI chat completions request body.
// The mock only decodes it for logging.
type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the blocking OpenAI response format.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

// Choice wraps a single completion result.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ErrorResponse is the OpenAI-style error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the error message and category.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewChatCompletionResponse builds the fixed mock completion around content.
func NewChatCompletionResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:      mockCompletionID,
		Object:  mockCompletionObject,
		Created: 0,
		Model:   mockModel,
		Choices: []Choice{
			{
				Index: 0,
				Message: Message{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: "stop",
			},
		},
	}
}
