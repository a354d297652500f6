// Package i18n resolves console messages from YAML catalogs.
//
// Each catalog file has one top-level key per language; nested keys are
// addressed with dots, so `schema: {done: ...}` under `en` is `schema.done`.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages/*.yaml
var messages embed.FS

// Translator resolves dot-separated message keys.
type Translator interface {
	T(key string) string
	Tf(key string, args ...any) string
}

// Catalog holds the messages of every loaded language.
type Catalog struct {
	messages    map[string]map[string]string
	defaultLang string
}

// Load reads the built-in catalogs.
func Load(defaultLang string) (*Catalog, error) {
	return LoadFromFS(messages, "messages", defaultLang)
}

// LoadFromFS reads every .yaml or .yml file directly under root.
// Later files override keys of earlier ones, in file name order.
func LoadFromFS(fsys fs.FS, root, defaultLang string) (*Catalog, error) {
	if defaultLang == "" {
		defaultLang = "en"
	}

	files, err := catalogFiles(fsys, root)
	if err != nil {
		return nil, err
	}

	c := &Catalog{messages: make(map[string]map[string]string), defaultLang: defaultLang}
	for _, name := range files {
		if err := c.merge(fsys, name); err != nil {
			return nil, err
		}
	}

	if len(c.messages[defaultLang]) == 0 {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	return c, nil
}

// Translator returns a translator for lang; unknown or blank languages get the default.
func (c *Catalog) Translator(lang string) Translator {
	if c == nil {
		return translator{}
	}

	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := c.messages[lang]; !ok {
		lang = c.defaultLang
	}

	return translator{primary: c.messages[lang], fallback: c.messages[c.defaultLang]}
}

func catalogFiles(fsys fs.FS, root string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("i18n: read dir %s: %w", root, err)
	}

	var files []string
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, path.Join(root, e.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("i18n: no yaml files found in %s", root)
	}

	sort.Strings(files)
	return files, nil
}

func (c *Catalog) merge(fsys fs.FS, name string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("i18n: read file %s: %w", name, err)
	}

	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("i18n: parse file %s: %w", name, err)
	}

	for lang, tree := range doc {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		if c.messages[lang] == nil {
			c.messages[lang] = make(map[string]string)
		}
		collect(c.messages[lang], "", tree)
	}

	return nil
}

// collect stores every string leaf of tree under its dotted path.
func collect(dst map[string]string, prefix string, tree map[string]any) {
	for k, v := range tree {
		if k == "" {
			continue
		}

		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch leaf := v.(type) {
		case string:
			dst[key] = leaf
		case map[string]any:
			collect(dst, key, leaf)
		}
	}
}

type translator struct {
	primary  map[string]string
	fallback map[string]string
}

// T returns the message for key, the default language's message, or key itself.
func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}

	if msg, ok := t.primary[key]; ok {
		return msg
	}
	if msg, ok := t.fallback[key]; ok {
		return msg
	}

	return key
}

func (t translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}
