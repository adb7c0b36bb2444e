package model

type QueryKind string

const (
	KindFixed   QueryKind = "fixed"
	KindRAG     QueryKind = "rag"
	KindTool    QueryKind = "tool"
	KindGeneral QueryKind = "general"
	KindError   QueryKind = "error"
)

// QueryResult is the final answer for one query. It is created fresh per
// request and never mutated after construction; Evidence carries the
// retrieved chunks formatted for user-facing verification, empty when the
// answer was not grounded on retrieval.
type QueryResult struct {
	Text     string    `json:"text"`
	Evidence string    `json:"evidence,omitempty"`
	Kind     QueryKind `json:"kind"`
}

type ClassKind string

const (
	ClassAnswer   ClassKind = "answer"
	ClassTool     ClassKind = "tool"
	ClassNeedsRAG ClassKind = "needs_rag"
	ClassError    ClassKind = "error"
)

// Classification is the router's decision for one query. Exactly one variant
// is active, selected by Kind:
//   - ClassAnswer: Text holds the final answer text.
//   - ClassTool: Tool/Params name the tool invocation that produced Text.
//   - ClassNeedsRAG: Message tells the user to retry with retrieval enabled.
//   - ClassError: Message holds a user-readable failure description.
type Classification struct {
	Kind    ClassKind
	Text    string
	Tool    string
	Params  string
	Message string
}

// ResultKind maps a classification onto the query-result taxonomy seen by
// callers.
func (c Classification) ResultKind() QueryKind {
	switch c.Kind {
	case ClassTool:
		return KindTool
	case ClassError:
		return KindError
	default:
		return KindGeneral
	}
}

// DisplayText returns the text a caller should show for this classification.
func (c Classification) DisplayText() string {
	switch c.Kind {
	case ClassNeedsRAG, ClassError:
		return c.Message
	default:
		return c.Text
	}
}
