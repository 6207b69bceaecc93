// Package evaluation scores the loaded model against labeled texts.
package evaluation

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DeafMist/fake-news-detector/backend/internal/classifier"
)

// Sample is one labeled text.
type Sample struct {
	Text  string           `json:"text"`
	Label classifier.Label `json:"label"`
}

// ParseLabel accepts Fake/Real in any case, or 1/0 with 1 meaning Fake.
func ParseLabel(raw string) (classifier.Label, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fake", "1":
		return classifier.Fake, nil
	case "real", "0":
		return classifier.Real, nil
	}
	return "", fmt.Errorf("unknown label %q", raw)
}

// SanityCorpus is a small hand-labeled set run when no data file is given.
func SanityCorpus() []Sample {
	return []Sample{
		{Text: "Government admits to microchipping population through vaccines. Share before deleted!", Label: classifier.Fake},
		{Text: "Scientists discover cure for all diseases using simple herb. Doctors hate this!", Label: classifier.Fake},
		{Text: "Breaking: Moon landing was faked in Hollywood studio. Evidence revealed!", Label: classifier.Fake},
		{Text: "Drink this before bed and lose 50 pounds in one week without exercise!", Label: classifier.Fake},
		{Text: "Congress passes infrastructure bill after months of negotiations. Legislation allocates funding.", Label: classifier.Real},
		{Text: "Stock market closes mixed as investors react to earnings reports. Tech sector gains.", Label: classifier.Real},
		{Text: "Federal Reserve raises interest rates by 0.25 percentage points to control inflation.", Label: classifier.Real},
		{Text: "Study published in medical journal shows benefits of regular exercise over five years.", Label: classifier.Real},
		{Text: "President announces new policy on climate change. Critics question effectiveness.", Label: classifier.Real},
		{Text: "Shocking revelation about celebrity. Sources confirm tragedy.", Label: classifier.Fake},
	}
}

// Load reads samples from a .csv, .jsonl or .ndjson file.
func Load(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".jsonl", ".ndjson":
		return ReadJSONL(f)
	}
	return nil, fmt.Errorf("unsupported corpus format %q", filepath.Ext(path))
}

// ReadCSV reads a CSV with a header naming "text" and "label" columns.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, errors.New(`header must contain "text" and "label" columns`)
	}

	var out []Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if textCol >= len(rec) || labelCol >= len(rec) {
			return nil, fmt.Errorf("line %d: missing columns", line)
		}
		label, err := ParseLabel(rec[labelCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Sample{Text: rec[textCol], Label: label})
	}
}

// ReadJSONL reads one {"text": ..., "label": ...} object per line.
func ReadJSONL(r io.Reader) ([]Sample, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out []Sample
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec struct {
			Text  string          `json:"text"`
			Label json.RawMessage `json:"label"`
		}
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		label, err := ParseLabel(strings.Trim(string(rec.Label), `"`))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Sample{Text: rec.Text, Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
