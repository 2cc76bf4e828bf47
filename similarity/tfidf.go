package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// LexicalOptions controls the TF-IDF feature space.
type LexicalOptions struct {
	NgramMin int
	NgramMax int

	// MaxFeatures keeps only the most frequent terms across the corpus.
	// Nil keeps every term.
	MaxFeatures *int

	// Stemming applies the English Snowball stemmer to tokens before
	// n-grams are formed.
	Stemming bool
}

func (o LexicalOptions) ngramRange() (int, int) {
	lo, hi := o.NgramMin, o.NgramMax
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Lexical fits one TF-IDF space over childTexts followed by parentTexts and
// returns the cosine similarity of every child row against every parent row.
// Fitting jointly keeps both sides in the same feature space. An empty
// vocabulary yields a zero matrix of shape len(childTexts) × len(parentTexts).
func Lexical(childTexts, parentTexts []string, opts LexicalOptions) Matrix {
	m := NewMatrix(len(childTexts), len(parentTexts))
	if len(childTexts) == 0 || len(parentTexts) == 0 {
		return m
	}

	corpus := make([]string, 0, len(childTexts)+len(parentTexts))
	corpus = append(corpus, childTexts...)
	corpus = append(corpus, parentTexts...)

	vectors := tfidf(corpus, opts)
	if vectors == nil {
		return m
	}

	children, parents := vectors[:len(childTexts)], vectors[len(childTexts):]
	for i, c := range children {
		if len(c) == 0 {
			continue
		}
		row := m.Row(i)
		for j, p := range parents {
			row[j] = clamp(sparseDot(c, p))
		}
	}
	return m
}

// analyze returns the n-grams of one document.
func analyze(doc string, lo, hi int, stem bool) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		if stem {
			if stemmed, err := snowball.Stem(tok, "english", true); err == nil && stemmed != "" {
				tok = stemmed
			}
		}
		tokens = append(tokens, tok)
	}

	var grams []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// tfidf returns one L2-normalized sparse vector per document, or nil when
// the vocabulary is empty. Weights are raw counts times the smoothed idf
// ln((1+n)/(1+df)) + 1.
func tfidf(corpus []string, opts LexicalOptions) []sparseVector {
	lo, hi := opts.ngramRange()

	counts := make([]map[string]int, len(corpus))
	df := make(map[string]int)
	total := make(map[string]int)
	for d, doc := range corpus {
		c := make(map[string]int)
		for _, g := range analyze(doc, lo, hi, opts.Stemming) {
			c[g]++
			total[g]++
		}
		for g := range c {
			df[g]++
		}
		counts[d] = c
	}
	if len(df) == 0 {
		return nil
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	if opts.MaxFeatures != nil && *opts.MaxFeatures >= 0 && *opts.MaxFeatures < len(terms) {
		// most frequent first; stable keeps alphabetical order among ties
		sort.SliceStable(terms, func(i, j int) bool { return total[terms[i]] > total[terms[j]] })
		terms = terms[:*opts.MaxFeatures]
		sort.Strings(terms)
	}
	if len(terms) == 0 {
		return nil
	}

	n := float64(len(corpus))
	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		index[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	vectors := make([]sparseVector, len(corpus))
	for d, c := range counts {
		vec := make(sparseVector, 0, len(c))
		for g, cnt := range c {
			if i, ok := index[g]; ok {
				vec = append(vec, entry{index: i, weight: float64(cnt) * idf[i]})
			}
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].index < vec[b].index })

		var sum float64
		for _, e := range vec {
			sum += e.weight * e.weight
		}
		if sum > 0 {
			norm := math.Sqrt(sum)
			for k := range vec {
				vec[k].weight /= norm
			}
		}
		vectors[d] = vec
	}
	return vectors
}

type entry struct {
	index  int
	weight float64
}

// sparseVector holds non-zero weights ordered by feature index.
type sparseVector []entry

func sparseDot(a, b sparseVector) float64 {
	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].index == b[j].index:
			dot += a[i].weight * b[j].weight
			i++
			j++
		case a[i].index < b[j].index:
			i++
		default:
			j++
		}
	}
	return dot
}
