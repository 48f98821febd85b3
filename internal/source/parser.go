// Package source reads and writes subscription lists as YAML or JSON files.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// ParseResult holds the output of parsing a single import file.
type ParseResult struct {
	Subscriptions []model.Subscription
	ParseErrors   int
	Errors        []error
	Err           error
}

// ParseFile reads an import file. A file-level failure is reported in Err;
// records that fail validation are counted and skipped so the rest of the
// file still imports.
func ParseFile(df DiscoveredFile) ParseResult {
	data, err := os.ReadFile(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}

	raws, err := Decode(data, df.Format)
	if err != nil {
		return ParseResult{Err: fmt.Errorf("%s: %w", df.Path, err)}
	}

	var result ParseResult
	for i, raw := range raws {
		sub, err := raw.Convert()
		if err != nil {
			result.ParseErrors++
			result.Errors = append(result.Errors, fmt.Errorf("%s: record %d: %w", df.Path, i+1, err))
			continue
		}
		result.Subscriptions = append(result.Subscriptions, sub)
	}
	return result
}

// Decode parses data as a subscription document. Both a bare list and a
// {"subscriptions": [...]} document are accepted.
func Decode(data []byte, format Format) ([]RawSubscription, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch format {
	case FormatJSON:
		if trimmed[0] == '[' {
			var list []RawSubscription
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("decoding json: %w", err)
			}
			return list, nil
		}
		var doc Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
		return doc.Subscriptions, nil

	case FormatYAML, "":
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			var list []RawSubscription
			if err := node.Content[0].Decode(&list); err != nil {
				return nil, fmt.Errorf("decoding yaml: %w", err)
			}
			return list, nil
		}
		var doc Document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		return doc.Subscriptions, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Convert validates a raw record and turns it into a Subscription. An empty
// currency defaults to model.DefaultCurrency; an empty created_at is left
// zero for the store to fill in.
func (r RawSubscription) Convert() (model.Subscription, error) {
	sub := model.Subscription{
		Name:     strings.TrimSpace(r.Name),
		Price:    r.Price,
		Currency: strings.ToUpper(strings.TrimSpace(r.Currency)),
		Cycle:    model.ParseCycle(r.Cycle),
		RawCycle: r.Cycle,
		Notes:    r.Notes,
	}
	if sub.Currency == "" {
		sub.Currency = model.DefaultCurrency
	}

	if r.NextDueDate != "" {
		due, err := model.ParseDate(r.NextDueDate)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("%w: %v", model.ErrInvalid, err)
		}
		sub.NextDueDate = due
	}

	if r.CreatedAt != "" {
		created, err := parseTimestamp(r.CreatedAt)
		if err != nil {
			return model.Subscription{}, fmt.Errorf("%w: %v", model.ErrInvalid, err)
		}
		sub.CreatedAt = created
	}

	if err := sub.Validate(); err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

// FromModel is the inverse of Convert, used for export.
func FromModel(s model.Subscription) RawSubscription {
	raw := RawSubscription{
		Name:        s.Name,
		Price:       s.Price,
		Currency:    s.Currency,
		Cycle:       s.CycleLabel(),
		NextDueDate: s.NextDueDate.String(),
		Notes:       s.Notes,
	}
	if !s.CreatedAt.IsZero() {
		raw.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return raw
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	model.DateLayout,
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
