package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// quickStartPrompts maps a use case to its request text
var quickStartPrompts = map[string]string{
	"new-project": "I want to start a new project. Show me the setup steps, project structure, and essential concepts I need to know.",
	"migration":   "I want to migrate my existing app. Show me migration strategies, compatibility considerations, and a step-by-step guide.",
	"performance": "I want to optimize my app's performance. Show me performance best practices, optimization techniques, and monitoring approaches.",
	"deployment":  "I want to deploy my app. Show me deployment options, configuration, and best practices for different platforms.",
	"seo":         "I want to improve SEO in my app. Show me SEO features, metadata configuration, and optimization techniques.",
}

var explanationLevels = []string{"beginner", "intermediate", "advanced"}

type promptEntry struct {
	prompt  *mcp.Prompt
	handler mcp.PromptHandler
}

var prompts = []promptEntry{
	{
		prompt: &mcp.Prompt{
			Name:        "explain_concept",
			Description: "Get a comprehensive explanation of a framework concept with examples",
			Arguments: []*mcp.PromptArgument{
				{Name: "concept", Description: "The concept to explain (e.g. Server Components, App Router, Data Fetching)", Required: true},
				{Name: "level", Description: "Explanation depth: beginner, intermediate or advanced (default: intermediate)"},
			},
		},
		handler: explainConcept,
	},
	{
		prompt: &mcp.Prompt{
			Name:        "quick_start",
			Description: "Get started based on your use case",
			Arguments: []*mcp.PromptArgument{
				{Name: "use_case", Description: "One of: new-project, migration, performance, deployment, seo", Required: true},
			},
		},
		handler: quickStart,
	},
}

func registerPrompts(server *mcp.Server) {
	for _, p := range prompts {
		server.AddPrompt(p.prompt, p.handler)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}
}

func explainConcept(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	concept := strings.TrimSpace(req.Params.Arguments["concept"])
	if concept == "" {
		return nil, fmt.Errorf("concept is required")
	}

	level := req.Params.Arguments["level"]
	if level == "" {
		level = "intermediate"
	}
	valid := false
	for _, l := range explanationLevels {
		valid = valid || l == level
	}
	if !valid {
		return nil, fmt.Errorf("unknown level %q (valid: %s)", level, strings.Join(explanationLevels, ", "))
	}

	text := fmt.Sprintf("Please explain %q at a %s level. Include:\n"+
		"1. What it is\n2. Why it's useful\n3. How to use it with code examples\n4. Best practices\n5. Common pitfalls to avoid\n\n"+
		"Use the search_docs tool to find relevant documentation.", concept, level)

	return userPrompt("Explain "+concept, text), nil
}

func quickStart(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	useCase := req.Params.Arguments["use_case"]
	text, ok := quickStartPrompts[useCase]
	if !ok {
		return nil, fmt.Errorf("unknown use_case %q", useCase)
	}

	return userPrompt("Quick start: "+useCase, text+"\n\nUse search_docs to find relevant documentation and provide specific examples."), nil
}
