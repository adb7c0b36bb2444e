package model

// FixedQAEntry is one curated answer with the question phrasings that should
// select it. The curated list is loaded once at startup and stays immutable
// for the process lifetime.
type FixedQAEntry struct {
	Questions []string `json:"questions"`
	Answer    string   `json:"answer"`
}
