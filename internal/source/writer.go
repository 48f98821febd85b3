package source

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ShawnMa123/manage-my-service-subscription/internal/model"
)

// Encode writes subs to w as a subscription document that Decode reads back.
func Encode(w io.Writer, format Format, subs []model.Subscription) error {
	doc := Document{Subscriptions: make([]RawSubscription, 0, len(subs))}
	for _, s := range subs {
		doc.Subscriptions = append(doc.Subscriptions, FromModel(s))
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q", format)
}
