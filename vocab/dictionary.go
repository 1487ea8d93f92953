// Package vocab maps terms to dense ids and turns token lists into
// bag-of-words vectors.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/botirk38/softcosine/types"
)

// Ensure Dictionary implements the interfaces.
var (
	_ types.Vocabulary   = (*Dictionary)(nil)
	_ types.TermWeighter = (*IDF)(nil)
)

// Dictionary is a bijection between terms and ids 0..Len()-1 that also tracks
// document frequencies of the documents it was built from.
type Dictionary struct {
	ids       map[string]int
	terms     []string
	docFreq   []int
	totalDocs int
}

// New creates an empty Dictionary.
func New() *Dictionary {
	return &Dictionary{ids: make(map[string]int)}
}

// FromDocuments builds a Dictionary from tokenized documents.
// Ids are assigned in order of first appearance.
func FromDocuments(docs [][]string) *Dictionary {
	d := New()
	for _, doc := range docs {
		d.AddDocument(doc)
	}
	return d
}

// Add registers term and returns its id.
func (d *Dictionary) Add(term string) int {
	if id, ok := d.ids[term]; ok {
		return id
	}
	id := len(d.terms)
	d.ids[term] = id
	d.terms = append(d.terms, term)
	d.docFreq = append(d.docFreq, 0)
	return id
}

// AddDocument registers every token and updates document frequencies.
// Each unique token increments its DF by 1.
func (d *Dictionary) AddDocument(tokens []string) {
	seen := make(map[int]bool, len(tokens))
	for _, t := range tokens {
		id := d.Add(t)
		if !seen[id] {
			d.docFreq[id]++
			seen[id] = true
		}
	}
	d.totalDocs++
}

// Len returns the vocabulary size.
func (d *Dictionary) Len() int {
	return len(d.terms)
}

// ID returns the id of term.
func (d *Dictionary) ID(term string) (int, bool) {
	id, ok := d.ids[term]
	return id, ok
}

// Term returns the term with the given id.
func (d *Dictionary) Term(id int) (string, bool) {
	if id < 0 || id >= len(d.terms) {
		return "", false
	}
	return d.terms[id], true
}

// DocFreq returns the number of documents containing term id.
func (d *Dictionary) DocFreq(id int) int {
	if id < 0 || id >= len(d.docFreq) {
		return 0
	}
	return d.docFreq[id]
}

// TotalDocs returns the number of documents added.
func (d *Dictionary) TotalDocs() int {
	return d.totalDocs
}

// Doc2Bow converts tokens into a raw term-count vector.
// Tokens missing from the dictionary are ignored.
func (d *Dictionary) Doc2Bow(tokens []string) types.SparseVector {
	counts := make(map[int]float64, len(tokens))
	for _, t := range tokens {
		if id, ok := d.ids[t]; ok {
			counts[id]++
		}
	}
	return types.NewSparseVector(counts)
}

// IDF returns an inverse document frequency weighter over this dictionary.
func (d *Dictionary) IDF() *IDF {
	return &IDF{dict: d}
}

// IDF weights terms by log2(N / df). Terms never seen in a document weigh 0.
type IDF struct {
	dict *Dictionary
}

// Weight returns the IDF of term id.
func (w *IDF) Weight(id int) float64 {
	df := w.dict.DocFreq(id)
	if df == 0 || w.dict.totalDocs == 0 {
		return 0
	}
	return math.Log2(float64(w.dict.totalDocs) / float64(df))
}

// Apply multiplies every weight of v by its term IDF, dropping zero results.
func (w *IDF) Apply(v types.SparseVector) types.SparseVector {
	weights := make(map[int]float64, len(v))
	for _, c := range v {
		weights[c.Term] = c.Value * w.Weight(c.Term)
	}
	return types.NewSparseVector(weights)
}

// Tokenize lowercases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Save writes one term per line in id order.
func (d *Dictionary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range d.terms {
		if _, err := fmt.Fprintln(bw, t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads a dictionary written by Save. Line n holds the term with id n.
// Document frequencies are not restored.
func Load(r io.Reader) (*Dictionary, error) {
	d := New()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			return nil, fmt.Errorf("%w: empty term on line %d", types.ErrConfiguration, line)
		}
		if _, dup := d.ids[term]; dup {
			return nil, fmt.Errorf("%w: duplicate term %q on line %d", types.ErrConfiguration, term, line)
		}
		d.Add(term)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}
