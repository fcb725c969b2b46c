package codec

import (
	"fmt"
	"strings"
)

// Item is one encoded bill line item: a description plus its amount
// rendered as a plain decimal string. The codec does not interpret
// amounts; parsing them is the caller's concern.
type Item struct {
	Description string
	Amount      string
}

// EncodeItems packs line items into the nested sub-format carried inside a
// single record field: items joined with "|", each one "description:amount".
// Colons inside the description become "-" and pipes become "/" first, so
// the separators stay unambiguous.
//
// The substitution is lossy: after a round trip an original "-" in a
// description is indistinguishable from an original ":". This is a known
// limitation of the format, kept for compatibility with existing files.
func EncodeItems(items []Item) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, it := range items {
		desc := strings.ReplaceAll(it.Description, ":", "-")
		desc = strings.ReplaceAll(desc, "|", "/")
		parts[i] = desc + ":" + it.Amount
	}
	return strings.Join(parts, "|")
}

// DecodeItems unpacks the nested sub-format: split on "|", then on the
// first ":" within each chunk, reversing the encode substitution ("-" back
// to ":", "/" back to "|") on the description. An empty input decodes to no
// items; a chunk without a colon is malformed.
func DecodeItems(s string) ([]Item, error) {
	if s == "" {
		return nil, nil
	}

	chunks := strings.Split(s, "|")
	items := make([]Item, 0, len(chunks))
	for i, chunk := range chunks {
		if chunk == "" {
			return nil, fmt.Errorf("item %d is empty", i+1)
		}
		desc, amount, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("item %d (%q) has no amount separator", i+1, chunk)
		}
		desc = strings.ReplaceAll(desc, "-", ":")
		desc = strings.ReplaceAll(desc, "/", "|")
		items = append(items, Item{Description: desc, Amount: amount})
	}
	return items, nil
}
