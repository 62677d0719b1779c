package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DateFormat = "2006-01-02"
	schemaURL  = "defelement://verification.schema.json"
)

//go:embed schema.json
var schemaText string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Metadata struct {
	Date string `json:"date"`
}

// Report is the verification.json document.
type Report struct {
	Metadata     Metadata `json:"metadata"`
	Verification Results  `json:"verification"`
}

func New(results Results, date time.Time) *Report {
	if results == nil {
		results = Results{}
	}
	return &Report{Metadata: Metadata{Date: date.Format(DateFormat)}, Verification: results}
}

// Marshal serializes the report in RFC 8785 canonical form, so that equal
// results always give identical bytes.
func (r *Report) Marshal() (data []byte, err error) {
	if data, err = json.Marshal(r); err != nil {
		return
	}
	return jcs.Transform(data)
}

func Write(path string, results Results, date time.Time) (err error) {
	var (
		data []byte
	)
	if data, err = New(results, date).Marshal(); err != nil {
		return
	}
	if err = Validate(data); err != nil {
		return fmt.Errorf("refusing to write an invalid report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if schemaErr = c.AddResource(schemaURL, strings.NewReader(schemaText)); schemaErr != nil {
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks a serialized report against the report schema.
func Validate(data []byte) (err error) {
	var (
		sch *jsonschema.Schema
		doc interface{}
	)
	if sch, err = compiledSchema(); err != nil {
		return
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		return
	}
	return sch.Validate(doc)
}

func Parse(data []byte) (r *Report, err error) {
	if err = Validate(data); err != nil {
		return
	}
	r = &Report{}
	err = json.Unmarshal(data, r)
	return
}

func Read(path string) (r *Report, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	if r, err = Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

type Level uint8

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

// LibrarySummary totals one library's outcomes over every element.
type LibrarySummary struct {
	Library                    string
	Elements                   int
	Pass, Fail, NotImplemented int
}

// Proportion is passes over decided examples, written "good / total".
func (s LibrarySummary) Proportion() string { return fmt.Sprintf("%d / %d", s.Pass, s.Pass+s.Fail) }

// Level buckets the pass rate: below 0.4 is low, above 0.9 high.
func (s LibrarySummary) Level() Level {
	var (
		p     float64
		total = s.Pass + s.Fail
	)
	if total > 0 {
		p = float64(s.Pass) / float64(total)
	}
	switch {
	case p < 0.4:
		return LevelLow
	case p > 0.9:
		return LevelHigh
	}
	return LevelMedium
}

// Summarize totals the report by library, sorted by library id.
func Summarize(r *Report) (summaries []LibrarySummary) {
	byLib := make(map[string]*LibrarySummary)
	for _, libs := range r.Verification {
		for lib, lists := range libs {
			s, ok := byLib[lib]
			if !ok {
				s = &LibrarySummary{Library: lib}
				byLib[lib] = s
			}
			s.Elements++
			s.Pass += len(lists.Pass)
			s.Fail += len(lists.Fail)
			s.NotImplemented += len(lists.NotImplemented)
		}
	}
	for _, s := range byLib {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Library < summaries[j].Library })
	return
}
