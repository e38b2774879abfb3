package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	JSON = "json"
	EDN  = "edn"
	YAML = "yaml"
)

// Names lists the accepted --format values.
func Names() []string { return []string{JSON, EDN, YAML} }

// Normalize maps aliases ("yml", "") onto a known format name.
func Normalize(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", JSON:
		return JSON, nil
	case EDN:
		return EDN, nil
	case YAML, "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown format: %s (want %s)", name, strings.Join(Names(), "|"))
	}
}

// Write renders v as json (default), edn or yaml. yaml output is always
// block style, so pretty only affects the other two.
func Write(w io.Writer, v any, format string, pretty bool) error {
	name, err := Normalize(format)
	if err != nil {
		return err
	}
	switch name {
	case EDN:
		return WriteEDN(w, v, pretty)
	case YAML:
		return WriteYAML(w, v)
	default:
		return WriteJSON(w, v, pretty)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
