package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassificationResultKind(t *testing.T) {
	require.Equal(t, KindTool, Classification{Kind: ClassTool}.ResultKind())
	require.Equal(t, KindError, Classification{Kind: ClassError}.ResultKind())
	require.Equal(t, KindGeneral, Classification{Kind: ClassAnswer}.ResultKind())
	require.Equal(t, KindGeneral, Classification{Kind: ClassNeedsRAG}.ResultKind())
}

func TestClassificationDisplayText(t *testing.T) {
	require.Equal(t, "answer", Classification{Kind: ClassAnswer, Text: "answer"}.DisplayText())
	require.Equal(t, "retry", Classification{Kind: ClassNeedsRAG, Message: "retry"}.DisplayText())
	require.Equal(t, "oops", Classification{Kind: ClassError, Message: "oops"}.DisplayText())
}

func TestWindow(t *testing.T) {
	history := []Message{
		{Role: RoleUser, Content: "m0"},
		{Role: RoleAssistant, Content: "m1"},
		{Role: RoleUser, Content: "m2"},
	}
	require.Equal(t, history, Window(history, 5))
	require.Equal(t, history, Window(history, 0))
	require.Equal(t, history[1:], Window(history, 2))
}
