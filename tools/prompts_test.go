package tools

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptRequest(args map[string]string) *mcp.GetPromptRequest {
	return &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Arguments: args}}
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestExplainConcept(t *testing.T) {
	res, err := explainConcept(context.Background(), promptRequest(map[string]string{"concept": "Server Components"}))
	require.NoError(t, err)

	text := promptText(t, res)
	assert.Contains(t, text, `"Server Components"`)
	assert.Contains(t, text, "intermediate level")
	assert.Contains(t, text, "search_docs")

	res, err = explainConcept(context.Background(), promptRequest(map[string]string{"concept": "ISR", "level": "advanced"}))
	require.NoError(t, err)
	assert.Contains(t, promptText(t, res), "advanced level")
}

func TestExplainConcept_Invalid(t *testing.T) {
	_, err := explainConcept(context.Background(), promptRequest(map[string]string{}))
	assert.Error(t, err)

	_, err = explainConcept(context.Background(), promptRequest(map[string]string{"concept": "ISR", "level": "expert"}))
	assert.Error(t, err)
}

func TestQuickStart(t *testing.T) {
	for useCase := range quickStartPrompts {
		res, err := quickStart(context.Background(), promptRequest(map[string]string{"use_case": useCase}))
		require.NoError(t, err, useCase)
		assert.Contains(t, promptText(t, res), "search_docs")
	}

	_, err := quickStart(context.Background(), promptRequest(map[string]string{"use_case": "gaming"}))
	assert.Error(t, err)
}

func TestRegisterDocTools(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "0.0.0"}, nil)
	svc := newTestService(t, defaultFiles(), nil)

	assert.NotPanics(t, func() { RegisterDocTools(server, svc) })
}
