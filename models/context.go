package models

type ContextPostRequest struct {
	Text string `json:"text"`
	// K is the number of segments to return. Zero uses the server default.
	K int `json:"k,omitempty"`
}

type ContextPostResponse struct {
	Results []ContextSegment `json:"results"`
}

type ContextSegment struct {
	Index      int     `json:"index"`
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Similarity float32 `json:"similarity"`
}
