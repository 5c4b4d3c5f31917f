package signature

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gamemode/internal/input"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Format names a persistence encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml, yml and toml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// record is the on-disk form. Numbers are stored as hex strings.
type record struct {
	Name          string `json:"name" yaml:"name" toml:"name"`
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind"`
	Message       string `json:"message" yaml:"message" toml:"message"`
	Payload       string `json:"payload" yaml:"payload" toml:"payload"`
	PayloadMask   string `json:"payload_mask" yaml:"payload_mask" toml:"payload_mask"`
	ExtraInfo     string `json:"extra_info" yaml:"extra_info" toml:"extra_info"`
	ExtraInfoMask string `json:"extra_info_mask" yaml:"extra_info_mask" toml:"extra_info_mask"`
}

type document struct {
	Signatures []record `json:"signatures" yaml:"signatures" toml:"signature"`
}

func hex(v uint64) string { return fmt.Sprintf("0x%X", v) }

func toRecord(s Signature) record {
	r := record{
		Name:          s.Name,
		Message:       hex(uint64(s.Message)),
		Payload:       hex(uint64(s.Payload)),
		PayloadMask:   hex(uint64(s.PayloadMask)),
		ExtraInfo:     hex(s.ExtraInfo),
		ExtraInfoMask: hex(s.ExtraInfoMask),
	}
	if s.Kind != input.KindUnknown {
		r.Kind = s.Kind.String()
	}
	return r
}

func (r record) signature() (Signature, error) {
	if r.Name == "" {
		return Signature{}, ErrEmptyName
	}
	s := Signature{Name: r.Name}
	if r.Kind != "" {
		k, err := input.ParseKind(r.Kind)
		if err != nil {
			return Signature{}, fmt.Errorf("signature %q: %w", r.Name, err)
		}
		s.Kind = k
	}

	fields := []struct {
		name string
		text string
		bits int
		set  func(uint64)
	}{
		{"message", r.Message, 32, func(v uint64) { s.Message = uint32(v) }},
		{"payload", r.Payload, 32, func(v uint64) { s.Payload = uint32(v) }},
		{"payload_mask", r.PayloadMask, 32, func(v uint64) { s.PayloadMask = uint32(v) }},
		{"extra_info", r.ExtraInfo, 64, func(v uint64) { s.ExtraInfo = v }},
		{"extra_info_mask", r.ExtraInfoMask, 64, func(v uint64) { s.ExtraInfoMask = v }},
	}
	for _, f := range fields {
		if f.text == "" {
			continue
		}
		v, err := strconv.ParseUint(f.text, 0, f.bits)
		if err != nil {
			return Signature{}, fmt.Errorf("signature %q: %s: %w", r.Name, f.name, err)
		}
		f.set(v)
	}
	return s, nil
}

// Marshal encodes sigs in the given format.
func Marshal(sigs []Signature, f Format) ([]byte, error) {
	doc := document{Signatures: make([]record, 0, len(sigs))}
	for _, s := range sigs {
		doc.Signatures = append(doc.Signatures, toRecord(s))
	}
	switch f {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Unmarshal decodes signatures written by Marshal.
func Unmarshal(data []byte, f Format) ([]Signature, error) {
	var doc document
	var err error
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s signatures: %w", f, err)
	}

	sigs := make([]Signature, 0, len(doc.Signatures))
	for _, r := range doc.Signatures {
		s, err := r.signature()
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, s)
	}
	return sigs, nil
}

// Load reads a signature file. A missing file yields no signatures.
func Load(path string) ([]Signature, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read signatures: %w", err)
	}
	return Unmarshal(data, f)
}

// Save writes sigs to path in the format implied by its extension.
func Save(path string, sigs []Signature) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(sigs, f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create signatures dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write signatures: %w", err)
	}
	return nil
}

// Merge adds every signature in sigs not already present by name and
// returns how many were added.
func (c *Catalog) Merge(sigs []Signature) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range sigs {
		if _, dup := c.names[s.Name]; dup {
			continue
		}
		if err := c.add(s); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
