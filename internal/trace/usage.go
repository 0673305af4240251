package trace

// Usage captures LLM token accounting for one call, surfaced to an
// LLMInterceptor. UsageFrom recognizes two accessor-method shapes on a
// response value, GetUsage() Usage and Usage() Usage; usage held only in
// a struct field is not read.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// usageStruct matches a response type exposing usage through a GetUsage
// method.
type usageStruct interface {
	GetUsage() Usage
}

// usageMethod matches a response type exposing usage through a zero-arg
// Usage method that returns this package's Usage.
type usageMethod interface {
	Usage() Usage
}

// UsageFrom extracts a Usage record from an arbitrary LLM response value,
// returning the zero Usage if the value exposes neither recognized shape.
func UsageFrom(resp any) Usage {
	switch t := resp.(type) {
	case usageStruct:
		return t.GetUsage()
	case usageMethod:
		return t.Usage()
	default:
		return Usage{}
	}
}
