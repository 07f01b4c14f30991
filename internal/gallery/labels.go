package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Labels maps gallery image file names to human-readable display labels,
// used for the roast prompt and response text. The mapping is optional; a
// missing entry falls back to a label derived from the file name.
type Labels struct {
	byFile map[string]string
}

// labelsFile is the YAML sidecar shape:
//
//	labels:
//	  face_12.jpg: "Mohanlal in Drishyam"
type labelsFile struct {
	Labels map[string]string `yaml:"labels"`
}

// LoadLabels reads the sidecar file. An empty path yields an empty mapping,
// which is not an error: labels are a cosmetic layer over the gallery.
func LoadLabels(path string) (*Labels, error) {
	if path == "" {
		return &Labels{byFile: map[string]string{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading labels file: %w", err)
	}

	var lf labelsFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing labels file: %w", err)
	}
	if lf.Labels == nil {
		lf.Labels = map[string]string{}
	}
	return &Labels{byFile: lf.Labels}, nil
}

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// For returns the display label for a gallery entry path. Unlabeled entries
// get a title-cased name derived from the file name, diacritics stripped and
// separators turned into spaces ("naslavaara_1.jpg" -> "Naslavaara 1").
func (l *Labels) For(entryPath string) string {
	base := filepath.Base(entryPath)
	if label, ok := l.byFile[base]; ok && label != "" {
		return label
	}

	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = removeDiacritics(name)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(name)
}

// Len returns the number of explicit labels.
func (l *Labels) Len() int {
	return len(l.byFile)
}
