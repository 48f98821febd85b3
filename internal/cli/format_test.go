package cli

import (
	"strings"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "USD", "$1,234.50"},
		{15.99, "usd", "$15.99"},
		{0, "CNY", "¥0.00"},
		{-3, "USD", "-$3.00"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.code); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestFormatMoney_UnknownCode(t *testing.T) {
	got := FormatMoney(5, "ZZZ")
	if !strings.HasSuffix(got, " ZZZ") {
		t.Errorf("FormatMoney(5, ZZZ) = %q, want code suffix", got)
	}
}

func TestFormatCost_Compact(t *testing.T) {
	if got := FormatCost(12345.67, "USD"); got != "$12,346" {
		t.Errorf("FormatCost = %q, want $12,346", got)
	}
	if got := FormatCost(9.5, "USD"); got != "$9.50" {
		t.Errorf("FormatCost = %q, want $9.50", got)
	}
}

func TestFormatDue(t *testing.T) {
	if got := FormatDue(0); got != "today" {
		t.Errorf("FormatDue(0) = %q", got)
	}
	if got := FormatDue(1); got != "tomorrow" {
		t.Errorf("FormatDue(1) = %q", got)
	}
	if got := FormatDue(3); !strings.HasSuffix(got, "from now") {
		t.Errorf("FormatDue(3) = %q", got)
	}
	if got := FormatDue(-4); !strings.HasSuffix(got, "overdue") {
		t.Errorf("FormatDue(-4) = %q", got)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1, "subscription", "subscriptions"); got != "1 subscription" {
		t.Errorf("got %q", got)
	}
	if got := FormatCount(1200, "subscription", "subscriptions"); got != "1,200 subscriptions" {
		t.Errorf("got %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{0, 5, 10})
	if []rune(got)[2] != '█' || []rune(got)[0] != '▁' {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty input should render nothing")
	}
}

func TestRenderTable_AlignsByDisplayWidth(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Name", "Price"},
		Rows:    [][]string{{"Netflix", "¥15.00"}, {"Domain", "¥100.00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "Netflix") || !strings.Contains(out, "¥100.00") {
		t.Errorf("missing cells:\n%s", out)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0%"},
		{0.25, "25.0%"},
		{1.0 / 3, "33.3%"},
		{1, "100.0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	got := RenderProgressBar(3, 10, 20)
	if !strings.HasSuffix(got, "] 3/10") {
		t.Errorf("RenderProgressBar = %q, want a 3/10 suffix", got)
	}
	if n := strings.Count(got, "█"); n != 6 {
		t.Errorf("filled cells = %d, want 6", n)
	}
	if n := strings.Count(got, "░"); n != 14 {
		t.Errorf("empty cells = %d, want 14", n)
	}

	if n := strings.Count(RenderProgressBar(15, 10, 8), "█"); n != 8 {
		t.Errorf("overflow filled cells = %d, want 8", n)
	}
	if got := RenderProgressBar(1, 0, 8); got != "" {
		t.Errorf("RenderProgressBar with zero total = %q, want empty", got)
	}
}
