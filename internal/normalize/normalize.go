// internal/normalize/normalize.go
//
// Shape normalizer for semi-structured columns.
//
// Context
// -------
// The content tables grew up under a CMS that was not strict about column
// shapes.  A to-one relation embedded by a view may arrive as a JSON object,
// a single-element JSON array, or SQL NULL depending on how the view was
// authored.  A "tags" column is jsonb today but older rows still hold a
// JSON-encoded string (an array encoded twice).  Image URLs are free text
// pasted by editors.  Every helper in this package therefore returns a safe,
// concrete value and never an error: one corrupt row must not fail a whole
// list fetch.
//
// All repositories call through here at the scan boundary so the ambiguity
// never leaks past the data layer.
//
// Notes
// -----
//   - Helpers are pure and allocation-light; they are called once per row.
//   - Oxford commas, two spaces after periods.
package normalize

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

//
// To-one collapse
//

// ToOne collapses a to-one relation column to a single value.  The raw bytes
// may hold a JSON object, an array (first element wins), "null", or nothing
// at all.  Any shape that cannot be decoded yields nil.
func ToOne[T any](raw []byte) *T {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '[':
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil || len(list) == 0 {
			return nil
		}
		return &list[0]
	case '{':
		var one T
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil
		}
		return &one
	default:
		return nil
	}
}

//
// JSON column parsing
//

// StringList parses a column that should hold a JSON array of strings.  It
// accepts a plain jsonb array, a double-encoded array (a JSON string whose
// content is itself a JSON array), or NULL.  Anything else, including
// malformed JSON, yields an empty slice.  Non-string elements inside an
// otherwise valid array are skipped.
func StringList(raw []byte) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}
	}

	if trimmed[0] == '"' {
		// Double-encoded: unwrap the outer string, then parse its content.
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return []string{}
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}

	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []string{}
	}

	var elems []any
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []string{}
	}

	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ObjectMap parses a column that should hold a JSON object, tolerating the
// same encodings as StringList.  Failures yield an empty map.
func ObjectMap(raw []byte) map[string]any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return map[string]any{}
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}

	if len(trimmed) == 0 || trimmed[0] != '{' {
		return map[string]any{}
	}

	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return map[string]any{}
	}
	return out
}

//
// Image URL sanitization
//

// maxImageURLLen caps editor-supplied URLs; anything longer is junk or an
// injection attempt, not a real asset reference.
const maxImageURLLen = 2048

// blockedExtensions lists raster formats the front end cannot decode.
// Editors occasionally paste camera originals straight from the asset
// manager; serving those crashes the carousel's decoder.
var blockedExtensions = []string{".bmp", ".tif", ".tiff", ".heic", ".heif"}

// privateObjectMarker identifies storage objects that live in a
// non-public bucket.  Such URLs 403 for anonymous visitors, so they are
// rejected here instead of surfacing as broken images.
const privateObjectMarker = "/storage/v1/object/private/"

// ImageURL validates an editor-supplied image reference and returns it
// unchanged when acceptable.  Empty string means "no usable image": callers
// render a placeholder, never an error.  Rooted paths ("/images/…") are
// allowed for bundled assets; otherwise the URL must be http or https.
func ImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxImageURLLen {
		return ""
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, privateObjectMarker) {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		if u.Host == "" {
			return ""
		}
	case u.Scheme == "" && strings.HasPrefix(u.Path, "/"):
		// Bundled asset path.
	default:
		return ""
	}

	path := strings.ToLower(u.Path)
	for _, ext := range blockedExtensions {
		if strings.HasSuffix(path, ext) {
			return ""
		}
	}
	return s
}
