package dto

// SerperSearchRequest is the body of a Serper search call.
type SerperSearchRequest struct {
	Q    string `json:"q"`
	Num  int    `json:"num"`
	Type string `json:"type"`
	TBS  string `json:"tbs,omitempty"`
}

type SerperOrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Source  string `json:"source"`
}

type SerperSearchResponse struct {
	Organic []SerperOrganicResult `json:"organic"`
	News    []SerperOrganicResult `json:"news"`
}

// HuggingFaceRequest is the inference API body.
type HuggingFaceRequest struct {
	Inputs string `json:"inputs"`
}

// HuggingFaceLabel is one scored label of a text-classification model.
type HuggingFaceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AlphaVantageDailyResponse mirrors TIME_SERIES_DAILY.
type AlphaVantageDailyResponse struct {
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	ErrorMessage string                       `json:"Error Message"`
}

// AlphaVantageIndicatorResponse mirrors the SMA/RSI/MACD endpoints. The series key
// varies per function ("Technical Analysis: SMA", ...), so it is decoded loosely.
type AlphaVantageIndicatorResponse map[string]interface{}

// IndicatorPoint is the latest reading of an indicator function.
type IndicatorPoint struct {
	Date   string
	Values map[string]float64
}

type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIChatRequest struct {
	Model          string            `json:"model"`
	Messages       []OpenAIMessage   `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type OpenAIChatResponse struct {
	Choices []struct {
		Message OpenAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
