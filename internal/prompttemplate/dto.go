package prompttemplate

type CreatePromptDTO struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

// UpdatePromptDTO only applies the non-empty fields.
type UpdatePromptDTO struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
}

type PromptResponse struct {
	Message string          `json:"message"`
	Prompt  *PromptTemplate `json:"prompt"`
}

type PromptsResponse struct {
	Message string            `json:"message"`
	Prompts []*PromptTemplate `json:"prompts"`
}
