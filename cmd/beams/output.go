package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// render writes v to w as text, JSON or YAML.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return renderText(w, v)
	default:
		return fmt.Errorf("unknown output format %q: want text, json or yaml", format)
	}
}

// renderText prints top-level keys of a JSON object one per line, sorted.
// Nested values are printed as compact JSON.
func renderText(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		val := obj[k]
		if s, ok := val.(string); ok {
			fmt.Fprintf(w, "%s: %s\n", k, s)
			continue
		}
		b, _ := json.Marshal(val)
		fmt.Fprintf(w, "%s: %s\n", k, b)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
