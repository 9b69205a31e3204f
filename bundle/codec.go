// Package bundle implements portable share codes: a compressed reference
// set describing an install set, and the pipeline that reproduces it on
// another instance. A code carries project and version references only,
// never file contents.
package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"launcher-sync/registry"
)

// codePrefix tags the share code format version.
const codePrefix = "lsb1:"

// ErrBadCode marks a share code that cannot be decoded. Decode failures
// are fatal for an import attempt; nothing is partially processed.
var ErrBadCode = errors.New("invalid share code")

// Ref is one remote reference inside a bundle. VersionID pins an exact
// release; without it the importing side resolves the latest compatible
// one. Name is carried for display only.
type Ref struct {
	ProjectID string            `json:"projectId"`
	Provider  registry.Provider `json:"provider"`
	VersionID string            `json:"versionId,omitempty"`
	Name      string            `json:"name,omitempty"`
}

// Bundle is a decoded share code.
type Bundle struct {
	Name          string `json:"name"`
	GameVersion   string `json:"gameVersion"`
	Loader        string `json:"loader"`
	Mods          []Ref  `json:"mods,omitempty"`
	ResourcePacks []Ref  `json:"resourcepacks,omitempty"`
	ShaderPacks   []Ref  `json:"shaderpacks,omitempty"`
}

// ItemsFor returns the reference list of one content bucket.
func (b Bundle) ItemsFor(ct registry.ContentType) []Ref {
	switch ct {
	case registry.ContentMods:
		return b.Mods
	case registry.ContentResourcePacks:
		return b.ResourcePacks
	case registry.ContentShaderPacks:
		return b.ShaderPacks
	default:
		return nil
	}
}

// add appends a reference to the right bucket list.
func (b *Bundle) add(ct registry.ContentType, ref Ref) {
	switch ct {
	case registry.ContentMods:
		b.Mods = append(b.Mods, ref)
	case registry.ContentResourcePacks:
		b.ResourcePacks = append(b.ResourcePacks, ref)
	case registry.ContentShaderPacks:
		b.ShaderPacks = append(b.ShaderPacks, ref)
	}
}

// Total returns the number of references across all buckets.
func (b Bundle) Total() int {
	return len(b.Mods) + len(b.ResourcePacks) + len(b.ShaderPacks)
}

// Encode serializes a bundle into a share code.
func Encode(b Bundle) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to serialize bundle: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("failed to compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress bundle: %w", err)
	}

	return codePrefix + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a share code back into a Bundle. Any malformed input is
// reported as ErrBadCode.
func Decode(code string) (Bundle, error) {
	code = strings.TrimSpace(code)
	payload, ok := strings.CutPrefix(code, codePrefix)
	if !ok {
		return Bundle{}, fmt.Errorf("%w: missing %q prefix", ErrBadCode, codePrefix)
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrBadCode, err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrBadCode, err)
	}
	defer zr.Close()

	decoded, err := io.ReadAll(zr)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrBadCode, err)
	}

	var b Bundle
	if err := json.Unmarshal(decoded, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrBadCode, err)
	}
	return b, nil
}
