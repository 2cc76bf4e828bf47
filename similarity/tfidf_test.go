package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexical_Shape(t *testing.T) {
	m := Lexical(
		[]string{"view ecg waveform", "measure spo2", "configure alarms"},
		[]string{"display ecg waveform", "alarm limits"},
		LexicalOptions{NgramMin: 1, NgramMax: 3},
	)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Cols())
}

func TestLexical_Bounds(t *testing.T) {
	children := []string{"view ecg waveform", "measure spo2 saturation", "ecg ecg ecg", ""}
	parents := []string{"display ecg waveform", "spo2 saturation trend", "view ecg waveform"}

	m := Lexical(children, parents, LexicalOptions{NgramMin: 1, NgramMax: 2})
	for i := 0; i < m.Rows(); i++ {
		for _, v := range m.Row(i) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	assert.InDelta(t, 1.0, m.At(0, 2), 1e-9, "identical texts")
	assert.Greater(t, m.At(0, 0), m.At(0, 1))
	assert.Greater(t, m.At(1, 1), m.At(1, 0))
	assert.Equal(t, 0.0, m.At(3, 0), "empty child")
}

func TestLexical_EmptyCorpus(t *testing.T) {
	m := Lexical([]string{"", "  "}, []string{"", "the", "a"}, LexicalOptions{NgramMin: 1, NgramMax: 3})
	require.Equal(t, 2, m.Rows())
	require.Equal(t, 3, m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for _, v := range m.Row(i) {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestLexical_StopWordsAndShortTokens(t *testing.T) {
	m := Lexical([]string{"the system of a"}, []string{"x y z"}, LexicalOptions{NgramMin: 1, NgramMax: 1})
	assert.Equal(t, 0.0, m.At(0, 0))
}

func TestLexical_MaxFeatures(t *testing.T) {
	one := 1
	// "ecg" is the most frequent term, so it is the only feature kept.
	m := Lexical(
		[]string{"ecg waveform", "ecg"},
		[]string{"ecg trend"},
		LexicalOptions{NgramMin: 1, NgramMax: 1, MaxFeatures: &one},
	)
	assert.InDelta(t, 1.0, m.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, m.At(1, 0), 1e-9)
}

func TestLexical_Stemming(t *testing.T) {
	children := []string{"alarms triggered"}
	parents := []string{"alarm trigger"}

	plain := Lexical(children, parents, LexicalOptions{NgramMin: 1, NgramMax: 1})
	stemmed := Lexical(children, parents, LexicalOptions{NgramMin: 1, NgramMax: 1, Stemming: true})

	assert.Equal(t, 0.0, plain.At(0, 0))
	assert.InDelta(t, 1.0, stemmed.At(0, 0), 1e-9)
}

func TestAnalyze_Ngrams(t *testing.T) {
	grams := analyze("view the ecg waveform", 1, 2, false)
	assert.Equal(t, []string{"view", "ecg", "waveform", "view ecg", "ecg waveform"}, grams)
}

func TestTfidf_SmoothIDF(t *testing.T) {
	// Two documents sharing one term: "ecg" has df 2, "trend" df 1.
	vectors := tfidf([]string{"ecg", "ecg trend"}, LexicalOptions{NgramMin: 1, NgramMax: 1})
	require.Len(t, vectors, 2)

	// idf(ecg) = ln(3/3)+1 = 1, idf(trend) = ln(3/2)+1
	// doc 2 weights (1, 1.405465) normalized
	require.Len(t, vectors[0], 1)
	require.Len(t, vectors[1], 2)
	assert.InDelta(t, 1.0, vectors[0][0].weight, 1e-9)
	assert.InDelta(t, 0.579739, vectors[1][0].weight, 1e-6)
	assert.InDelta(t, 0.814802, vectors[1][1].weight, 1e-6)
	assert.Equal(t, 1, vectors[1][1].index)
}
