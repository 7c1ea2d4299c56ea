package output

import (
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/store"
)

func TestRenderItemsetTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name     string
		itemsets []miner.ScoredItemset
		relative bool
		contains []string
	}{
		{
			name:     "empty itemsets",
			itemsets: nil,
			contains: []string{"No frequent itemsets found"},
		},
		{
			name: "relative support",
			itemsets: []miner.ScoredItemset{
				{Items: miner.Itemset{"A", "B"}, Support: 0.6},
			},
			relative: true,
			contains: []string{"Size", "Itemset", "{A, B}", "0.600"},
		},
		{
			name: "absolute support uses separators",
			itemsets: []miner.ScoredItemset{
				{Items: miner.Itemset{"bread"}, Support: 12345},
			},
			contains: []string{"{bread}", "12,345"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RenderItemsetTable(tt.itemsets, tt.relative)

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("RenderItemsetTable() missing expected string %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestRenderLevels(t *testing.T) {
	levels := []miner.Level{
		{Size: 1, Candidates: 3, Survivors: []miner.ScoredItemset{
			{Items: miner.Itemset{"A"}, Support: 8},
			{Items: miner.Itemset{"B"}, Support: 7},
		}},
		{Size: 2, Candidates: 1, Survivors: []miner.ScoredItemset{
			{Items: miner.Itemset{"A", "B"}, Support: 6},
		}},
	}

	result := RenderLevels(levels, false)
	for _, expected := range []string{"Level 1: 2 of 3 candidates frequent", "Level 2: 1 of 1", "{A, B}"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderLevels() missing %q\nGot:\n%s", expected, result)
		}
	}

	if got := RenderLevels(nil, false); !strings.Contains(got, "No frequent itemsets") {
		t.Errorf("RenderLevels(nil) = %q", got)
	}
}

func TestRenderRuleTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	rules := []miner.Rule{
		{LHS: miner.Itemset{"A"}, RHS: miner.Itemset{"B"}, Support: 0.6, Confidence: 0.75},
		{LHS: miner.Itemset{"B"}, RHS: miner.Itemset{"A"}, Support: 0.6, Confidence: 0.857},
	}

	result := RenderRuleTable(rules, true)
	for _, expected := range []string{"If", "Then", "{A}", "=>", "{B}", "0.600", "0.750", "0.857"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderRuleTable() missing %q\nGot:\n%s", expected, result)
		}
	}
	if strings.Contains(result, "\033[") {
		t.Error("RenderRuleTable() should not emit ANSI codes when NO_COLOR is set")
	}

	if got := RenderRuleTable(nil, true); !strings.Contains(got, "No association rules") {
		t.Errorf("RenderRuleTable(nil) = %q", got)
	}

	// The rule order must be preserved.
	if strings.Index(result, "0.750") > strings.Index(result, "0.857") {
		t.Error("RenderRuleTable() must keep mining order")
	}
}

func TestRenderRunTable(t *testing.T) {
	runs := []*store.Run{
		{
			ID:                  "0b6f3f9e-1111-4a4a-9c9c-000000000001",
			CreatedAt:           time.Now().Add(-2 * time.Hour),
			Source:              "baskets",
			SupportThreshold:    0.5,
			ConfidenceThreshold: 0.7,
			RelativeSupport:     true,
			ItemsetCount:        1,
			RuleCount:           2,
		},
	}

	result := RenderRunTable(runs)
	for _, expected := range []string{"0b6f3f9e", "2 hours ago", "baskets", "0.500/0.70"} {
		if !strings.Contains(result, expected) {
			t.Errorf("RenderRunTable() missing %q\nGot:\n%s", expected, result)
		}
	}

	if got := RenderRunTable(nil); !strings.Contains(got, "No saved runs") {
		t.Errorf("RenderRunTable(nil) = %q", got)
	}
}

func TestRenderRunSummary(t *testing.T) {
	run := &store.Run{
		ID:                  "r1",
		Source:              "baskets",
		SupportThreshold:    3,
		ConfidenceThreshold: 0.5,
		RowCount:            12000,
		ItemsetCount:        4,
		RuleCount:           9,
	}
	got := RenderRunSummary(run)
	for _, expected := range []string{"r1", "baskets", "12,000 rows", "support >= 3", "4 itemsets", "9 rules"} {
		if !strings.Contains(got, expected) {
			t.Errorf("RenderRunSummary() missing %q in %q", expected, got)
		}
	}
}

func TestGetConfidenceColor(t *testing.T) {
	tests := []struct {
		conf float64
		want string
	}{
		{0.95, colorGreen},
		{0.9, colorGreen},
		{0.75, colorYellow},
		{0.3, colorRed},
		{0, colorGray},
	}
	for _, tt := range tests {
		if got := getConfidenceColor(tt.conf); got != tt.want {
			t.Errorf("getConfidenceColor(%v) = %q, want %q", tt.conf, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"{bread, milk, eggs}", 10, "{bread,..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "never"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-1 * time.Minute), "1 minute ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-24 * time.Hour), "1 day ago"},
		{now.Add(-14 * 24 * time.Hour), "2 weeks ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
