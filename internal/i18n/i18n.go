// Package i18n provides translated log and status messages from catalogs
// embedded in the binary. Catalogs are nested JSON flattened to dotted
// keys ("tor.bootstrap_complete"); lookups fall back to English and,
// failing that, return the key itself so a missing translation is
// visible but never fatal.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed langs/*.json
var langFS embed.FS

// Catalog resolves message keys for one selected language. It is safe
// for concurrent use; SetLanguage switches languages at runtime.
type Catalog struct {
	mu       sync.RWMutex
	lang     string
	current  map[string]string
	fallback map[string]string
}

// New builds a catalog for lang ("en", "fr", "es"). Unknown or empty
// languages get English.
func New(lang string) *Catalog {
	c := &Catalog{}
	c.load(lang)
	return c
}

// SetLanguage switches the catalog to lang.
func (c *Catalog) SetLanguage(lang string) {
	c.load(lang)
}

// Language returns the currently selected language code.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lang
}

// Get returns the message for a dotted key, falling back to English and
// then to the key itself.
func (c *Catalog) Get(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if msg, ok := c.current[key]; ok {
		return msg
	}
	if msg, ok := c.fallback[key]; ok {
		return msg
	}
	return key
}

// T returns the message for key with positional placeholders {0}, {1},
// ... replaced by args.
func (c *Catalog) T(key string, args ...any) string {
	msg := c.Get(key)
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), fmt.Sprint(arg))
	}
	return msg
}

func (c *Catalog) load(lang string) {
	switch lang {
	case "fr", "es":
	default:
		lang = "en"
	}

	current := loadCatalog(lang)
	var fallback map[string]string
	if lang == "en" {
		fallback = current
	} else {
		fallback = loadCatalog("en")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = lang
	c.current = current
	c.fallback = fallback
}

func loadCatalog(lang string) map[string]string {
	flat := make(map[string]string)

	data, err := langFS.ReadFile("langs/" + lang + ".json")
	if err != nil {
		return flat
	}

	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return flat
	}

	flatten(nested, "", flat)
	return flat
}

// flatten turns {"tor": {"connected": "ok"}} into {"tor.connected": "ok"}.
func flatten(value map[string]any, prefix string, out map[string]string) {
	for key, val := range value {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := val.(type) {
		case map[string]any:
			flatten(v, full, out)
		case string:
			out[full] = v
		}
	}
}
