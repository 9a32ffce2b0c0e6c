// Package rules holds the naming conventions of the Corte Certo material
// database: which INI key carries the material name, which brand token is
// stripped from it, and which marker character prefixes material codes.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/material-list/constants"
	"github.com/joseph-ayodele/material-list/internal/common"
)

// Encoding names accepted in Rules.Encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin-1"
	EncodingISO88591    = "iso-8859-1"
	EncodingCP1252      = "cp1252"
	EncodingWindows1252 = "windows-1252"
)

// Rules configures extraction and rendering.
type Rules struct {
	FieldKey   string   `json:"field_key"`
	BrandToken string   `json:"brand_token"`
	Marker     string   `json:"marker"`
	ConfigExt  string   `json:"config_ext"`
	Encodings  []string `json:"encodings"`
	Title      string   `json:"title"`
	Credit     string   `json:"credit"`
}

// Default returns the conventions used by the Corte Certo exporter.
func Default() Rules {
	return Rules{
		FieldKey:   "CAMPO1",
		BrandToken: "MDF",
		Marker:     "M",
		ConfigExt:  constants.ExtINI,
		Encodings:  []string{EncodingUTF8, EncodingLatin1, EncodingCP1252},
		Title:      "Lista de Materiais (Ordenada Alfabeticamente)",
		Credit:     "© RedBlack",
	}
}

// Ext returns the config extension normalized (lowercase, no dot).
func (r Rules) Ext() string {
	return constants.NormalizeExt(r.ConfigExt)
}

// CleanLabel trims value, removes every brand token and trims again.
func (r Rules) CleanLabel(value string) string {
	value = strings.TrimSpace(value)
	if r.BrandToken != "" {
		value = strings.ReplaceAll(value, r.BrandToken, "")
	}
	return strings.TrimSpace(value)
}

// CodeFromStem removes every marker character from a filename stem.
func (r Rules) CodeFromStem(stem string) string {
	if r.Marker == "" {
		return stem
	}
	return strings.ReplaceAll(stem, r.Marker, "")
}

// Load reads a JSON rules file, validates it against the rules schema and
// overlays the fields it sets on Default().
func Load(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, common.ConfigError("read rules file", err)
	}
	return Parse(data)
}

// Parse is Load for in-memory JSON.
func Parse(data []byte) (Rules, error) {
	if err := validate(data); err != nil {
		return Rules{}, common.ConfigError("invalid rules", err)
	}
	r := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Rules{}, common.ConfigError("decode rules", err)
	}
	return r, nil
}

func validate(data []byte) error {
	b, err := json.Marshal(Schema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("rules do not match schema: %w", err)
	}
	return nil
}

// Schema returns the JSON Schema for a rules file as a generic map.
func Schema() map[string]any {
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"field_key":   map[string]any{"type": "string", "minLength": 1, "pattern": `^[^=\s]+$`},
			"brand_token": map[string]any{"type": "string"},
			"marker":      map[string]any{"type": "string", "maxLength": 1},
			"config_ext":  map[string]any{"type": "string", "pattern": `^\.?[A-Za-z0-9]+$`},
			"encodings": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "string",
					"enum": []string{EncodingUTF8, EncodingLatin1, EncodingISO88591, EncodingCP1252, EncodingWindows1252},
				},
			},
			"title":  nonEmpty,
			"credit": map[string]any{"type": "string"},
		},
	}
}
