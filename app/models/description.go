package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// DescriptionKind tells a structured item list from free text.
type DescriptionKind int

const (
	DescriptionPlain DescriptionKind = iota
	DescriptionStructured
)

func (k DescriptionKind) String() string {
	if k == DescriptionStructured {
		return "structured"
	}
	return "plain"
}

// itemSeparator splits a plain description into items.
const itemSeparator = ", "

// Description is either a list of selected items or a single text payload
// such as "Item: PEN, Quantity: 2". The zero value is an empty plain text.
type Description struct {
	kind  DescriptionKind
	text  string
	items []string
}

func PlainDescription(text string) Description {
	return Description{kind: DescriptionPlain, text: text}
}

func StructuredDescription(items ...string) Description {
	return Description{kind: DescriptionStructured, items: append([]string(nil), items...)}
}

// ItemQuantity is the description written for a single catalog item.
func ItemQuantity(item string, quantity int) Description {
	return PlainDescription(fmt.Sprintf("Item: %s, Quantity: %d", item, quantity))
}

// ParseDescription decodes a stored description. A JSON array of strings is
// structured; a JSON string is unwrapped to plain text; anything else is
// plain text as-is. It never fails.
func ParseDescription(raw string) Description {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "["):
		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			return StructuredDescription(items...)
		}
	case strings.HasPrefix(trimmed, `"`):
		var text string
		if err := json.Unmarshal([]byte(trimmed), &text); err == nil {
			return PlainDescription(text)
		}
	}

	return PlainDescription(raw)
}

func (d Description) Kind() DescriptionKind { return d.kind }

func (d Description) IsStructured() bool { return d.kind == DescriptionStructured }

// Items returns the structured items, or the plain text split on ", ".
func (d Description) Items() []string {
	if d.kind == DescriptionStructured {
		return append([]string(nil), d.items...)
	}
	if d.text == "" {
		return nil
	}
	return strings.Split(d.text, itemSeparator)
}

// Text renders the description for humans.
func (d Description) Text() string {
	if d.kind == DescriptionStructured {
		return strings.Join(d.items, itemSeparator)
	}
	return d.text
}

func (d Description) String() string { return d.Text() }

// Encode is the stored form. Plain text that would read back as JSON is
// quoted so ParseDescription(d.Encode()) always yields d.
func (d Description) Encode() string {
	if d.kind == DescriptionStructured {
		items := d.items
		if items == nil {
			items = []string{}
		}
		b, _ := json.Marshal(items)
		return string(b)
	}

	if !ParseDescription(d.text).Equal(PlainDescription(d.text)) {
		b, _ := json.Marshal(d.text)
		return string(b)
	}
	return d.text
}

// Equal reports whether both descriptions have the same kind and content.
func (d Description) Equal(other Description) bool {
	if d.kind != other.kind {
		return false
	}
	if d.kind == DescriptionPlain {
		return d.text == other.text
	}
	if len(d.items) != len(other.items) {
		return false
	}
	for i := range d.items {
		if d.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// ─── database ────────────────────────────────────────────────────────────────

func (Description) GormDataType() string { return "text" }

func (d Description) Value() (driver.Value, error) {
	return d.Encode(), nil
}

func (d *Description) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = PlainDescription("")
	case string:
		*d = ParseDescription(v)
	case []byte:
		*d = ParseDescription(string(v))
	default:
		return fmt.Errorf("description: cannot scan %T", src)
	}
	return nil
}

// ─── JSON ────────────────────────────────────────────────────────────────────

type descriptionJSON struct {
	Kind  string   `json:"kind"`
	Text  string   `json:"text"`
	Items []string `json:"items"`
}

func (d Description) MarshalJSON() ([]byte, error) {
	items := d.Items()
	if items == nil {
		items = []string{}
	}
	return json.Marshal(descriptionJSON{Kind: d.kind.String(), Text: d.Text(), Items: items})
}

// UnmarshalJSON accepts a string (plain), an array of strings (structured)
// or the object form produced by MarshalJSON.
func (d *Description) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*d = PlainDescription(text)
	case strings.HasPrefix(trimmed, "["):
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*d = StructuredDescription(items...)
	case strings.HasPrefix(trimmed, "{"):
		var obj descriptionJSON
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.Kind == DescriptionStructured.String() {
			*d = StructuredDescription(obj.Items...)
		} else {
			*d = PlainDescription(obj.Text)
		}
	case trimmed == "null":
		*d = PlainDescription("")
	default:
		return fmt.Errorf("description: unsupported JSON %s", trimmed)
	}
	return nil
}
