package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// writeImport creates a temp import file and returns a DiscoveredFile for it.
func writeImport(t *testing.T, name, content string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	format, _ := FormatOf(path)
	return DiscoveredFile{Path: path, Format: format}
}

func TestParseFile_YAMLDocument(t *testing.T) {
	df := writeImport(t, "subs.yaml", `
subscriptions:
  - name: Netflix
    price: 15.99
    currency: usd
    cycle: monthly
    next_due_date: 2024-02-01
  - name: Domain
    price: 60
    cycle: yearly
    next_due_date: "2024-08-10"
    created_at: 2023-08-10T12:00:00Z
`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Subscriptions) != 2 {
		t.Fatalf("got %d subscriptions, want 2", len(result.Subscriptions))
	}

	netflix := result.Subscriptions[0]
	if netflix.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", netflix.Currency)
	}
	if netflix.Cycle != model.CycleMonthly {
		t.Errorf("Cycle = %v, want monthly", netflix.Cycle)
	}
	if got := netflix.NextDueDate.String(); got != "2024-02-01" {
		t.Errorf("NextDueDate = %s", got)
	}

	domain := result.Subscriptions[1]
	if domain.Currency != model.DefaultCurrency {
		t.Errorf("Currency = %q, want default", domain.Currency)
	}
	want := time.Date(2023, time.August, 10, 12, 0, 0, 0, time.UTC)
	if !domain.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", domain.CreatedAt, want)
	}
}

func TestParseFile_YAMLBareList(t *testing.T) {
	df := writeImport(t, "subs.yml", `
- name: Spotify
  price: 9.99
  cycle: monthly
  next_due_date: 2024-03-05
`)
	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Subscriptions) != 1 || result.Subscriptions[0].Name != "Spotify" {
		t.Fatalf("got %+v", result.Subscriptions)
	}
}

func TestParseFile_JSONForms(t *testing.T) {
	list := writeImport(t, "list.json",
		`[{"name":"A","price":1,"cycle":"monthly","next_due_date":"2024-01-01"}]`)
	doc := writeImport(t, "doc.json",
		`{"subscriptions":[{"name":"B","price":2,"cycle":"quarterly","next_due_date":"2024-01-01"}]}`)

	for _, df := range []DiscoveredFile{list, doc} {
		result := ParseFile(df)
		if result.Err != nil {
			t.Fatalf("%s: %v", df.Path, result.Err)
		}
		if len(result.Subscriptions) != 1 {
			t.Fatalf("%s: got %d subscriptions", df.Path, len(result.Subscriptions))
		}
	}
}

func TestParseFile_InvalidRecordsSkipped(t *testing.T) {
	df := writeImport(t, "mixed.json", `[
		{"name":"Good","price":5,"cycle":"monthly","next_due_date":"2024-01-01"},
		{"name":"","price":5,"cycle":"monthly","next_due_date":"2024-01-01"},
		{"name":"BadCycle","price":5,"cycle":"weekly","next_due_date":"2024-01-01"},
		{"name":"BadDate","price":5,"cycle":"monthly","next_due_date":"01/02/2024"}
	]`)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if len(result.Subscriptions) != 1 {
		t.Errorf("got %d subscriptions, want 1", len(result.Subscriptions))
	}
	if result.ParseErrors != 3 {
		t.Errorf("ParseErrors = %d, want 3", result.ParseErrors)
	}
}

func TestParseFile_Malformed(t *testing.T) {
	df := writeImport(t, "broken.json", `{"subscriptions": [`)
	if result := ParseFile(df); result.Err == nil {
		t.Fatal("expected a file-level error")
	}
}

func TestParseFile_Empty(t *testing.T) {
	df := writeImport(t, "empty.yaml", "\n")
	result := ParseFile(df)
	if result.Err != nil || len(result.Subscriptions) != 0 {
		t.Fatalf("got %+v", result)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	subs := []model.Subscription{{
		Name:        "Netflix",
		Price:       15.99,
		Currency:    "USD",
		Cycle:       model.CycleMonthly,
		NextDueDate: model.NewDate(2024, time.February, 1),
		CreatedAt:   time.Date(2023, time.May, 1, 8, 30, 0, 0, time.UTC),
	}}

	for _, format := range []Format{FormatYAML, FormatJSON} {
		var buf bytes.Buffer
		if err := Encode(&buf, format, subs); err != nil {
			t.Fatalf("%s: Encode: %v", format, err)
		}
		raws, err := Decode(buf.Bytes(), format)
		if err != nil {
			t.Fatalf("%s: Decode: %v", format, err)
		}
		if len(raws) != 1 {
			t.Fatalf("%s: got %d records", format, len(raws))
		}
		got, err := raws[0].Convert()
		if err != nil {
			t.Fatalf("%s: Convert: %v", format, err)
		}
		if got.Name != "Netflix" || got.Price != 15.99 || !got.CreatedAt.Equal(subs[0].CreatedAt) {
			t.Errorf("%s: round trip = %+v", format, got)
		}
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "notes.txt", ".hidden.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "c.yaml"), []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "a.json" || files[0].Format != FormatJSON {
		t.Errorf("files[0] = %+v", files[0])
	}
	if filepath.Base(files[1].Path) != "b.yaml" || files[1].Format != FormatYAML {
		t.Errorf("files[1] = %+v", files[1])
	}
}
