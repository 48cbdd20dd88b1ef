package detect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Counts maps keywords to positive occurrence counts. Keys iterate in the
// order they were first set, which keeps alert ordering reproducible.
// The zero value is an empty set of counts ready to use.
type Counts struct {
	keys   []string
	values map[string]int
}

// CountsFromMap builds Counts from a plain map. Keys are ordered
// lexically since a map carries no order of its own.
func CountsFromMap(m map[string]int) Counts {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var c Counts
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// Set records n occurrences of keyword. A non-positive n removes the keyword,
// since an absent keyword already means zero.
func (c *Counts) Set(keyword string, n int) {
	if n <= 0 {
		if _, ok := c.values[keyword]; ok {
			delete(c.values, keyword)
			c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == keyword })
		}
		return
	}
	if c.values == nil {
		c.values = make(map[string]int)
	}
	if _, ok := c.values[keyword]; !ok {
		c.keys = append(c.keys, keyword)
	}
	c.values[keyword] = n
}

// Get returns the count for keyword and whether it is present.
func (c Counts) Get(keyword string) (int, bool) {
	n, ok := c.values[keyword]
	return n, ok
}

// Keys returns the keywords in insertion order.
func (c Counts) Keys() []string {
	return slices.Clone(c.keys)
}

// Len returns the number of keywords with a positive count.
func (c Counts) Len() int {
	return len(c.keys)
}

// Map returns a copy of the counts as a plain map.
func (c Counts) Map() map[string]int {
	m := make(map[string]int, len(c.values))
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the counts as a JSON object in insertion order.
func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", c.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of counts, keeping the key order of
// the document.
func (c *Counts) UnmarshalJSON(data []byte) error {
	*c = Counts{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("keyword counts: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("keyword counts: expected key, got %v", tok)
		}

		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return fmt.Errorf("keyword counts: value for %q: %w", key, err)
		}
		n, err := num.Int64()
		if err != nil {
			return fmt.Errorf("keyword counts: value for %q: %w", key, err)
		}
		c.Set(key, int(n))
	}

	_, err = dec.Token()
	return err
}
