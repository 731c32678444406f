package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/teamwork/internal/presentation/graph"
	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func ref(kind domain.Kind, name string) domain.Ref {
	return domain.Ref{Kind: kind, Name: name}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []graph.Node
		contains []string
		excludes []string
	}{
		{
			name: "Shapes by kind",
			nodes: []graph.Node{
				{Ref: ref(domain.KindDelegator, "signup")},
				{Ref: ref(domain.KindFetcher, "profile")},
				{Ref: ref(domain.KindInvestigator, "checks")},
				{Ref: ref(domain.KindError, "assertions")},
				{Ref: ref(domain.KindWorker, "email")},
			},
			contains: []string{
				`delegator__signup(("signup<br/><small>delegator</small>"))`,
				`fetcher__profile[/"profile<br/><small>fetcher</small>"/]`,
				`investigator__checks{"checks<br/><small>investigator</small>"}`,
				`error__assertions[["assertions<br/><small>error</small>"]]`,
				`worker__email["email<br/><small>worker</small>"]`,
			},
			excludes: []string{"classDef"},
		},
		{
			name: "Dependency edges",
			nodes: []graph.Node{
				{Ref: ref(domain.KindDelegator, "signup"), Dependencies: []domain.Ref{ref(domain.KindWorker, "email")}},
				{Ref: ref(domain.KindWorker, "email")},
			},
			contains: []string{"delegator__signup --> worker__email"},
		},
		{
			name: "Missing dependency",
			nodes: []graph.Node{
				{Ref: ref(domain.KindDelegator, "signup"), Dependencies: []domain.Ref{ref(domain.KindFetcher, "ghost")}},
				{Ref: ref(domain.KindDelegator, "other"), Dependencies: []domain.Ref{ref(domain.KindFetcher, "ghost")}},
			},
			contains: []string{
				`fetcher__ghost["fetcher:ghost?"]`,
				"delegator__signup -.-> fetcher__ghost",
				"delegator__other -.-> fetcher__ghost",
				"class fetcher__ghost missing;",
			},
		},
		{
			name: "Warned component",
			nodes: []graph.Node{
				{Ref: ref(domain.KindWorker, "legacy-email"), Warned: true},
			},
			contains: []string{"class worker__legacy_email warned;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.GenerateMermaid(tt.nodes)
			assert.True(t, strings.HasPrefix(out, "graph TD\n"))
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestGenerateMermaid_MissingDeclaredOnce(t *testing.T) {
	out := graph.GenerateMermaid([]graph.Node{
		{Ref: ref(domain.KindDelegator, "a"), Dependencies: []domain.Ref{ref(domain.KindWorker, "x")}},
		{Ref: ref(domain.KindDelegator, "b"), Dependencies: []domain.Ref{ref(domain.KindWorker, "x")}},
	})
	assert.Equal(t, 1, strings.Count(out, `worker__x["worker:x?"]`))
}
