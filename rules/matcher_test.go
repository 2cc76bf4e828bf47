package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	lex := NewLexicon().
		Add("ECG", "ecg", "electrocardiogram").
		Add("SPO2", "spo2", "oximetry").
		Add("ALARM", "alarm", "alert")

	tests := []struct {
		name       string
		child      string
		parent     string
		wantGroups []string
	}{
		{
			name:       "synonyms in the same group",
			child:      "view ecg waveform",
			parent:     "display electrocardiogram signals",
			wantGroups: []string{"ECG"},
		},
		{
			name:       "groups reported in lexicon order",
			child:      "alarm when spo2 or ecg leads fail",
			parent:     "raise alert on oximetry and electrocardiogram faults",
			wantGroups: []string{"ECG", "SPO2", "ALARM"},
		},
		{
			name:       "keyword only on one side",
			child:      "view ecg waveform",
			parent:     "display trends",
			wantGroups: []string{},
		},
		{
			name:       "keywords from different groups",
			child:      "view ecg waveform",
			parent:     "display spo2 value",
			wantGroups: []string{},
		},
		{
			name:       "substring is not a token match",
			child:      "ecgs archive",
			parent:     "ecg archive",
			wantGroups: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(tt.child, tt.parent, lex)
			assert.Equal(t, tt.wantGroups, res.Groups)
			if len(tt.wantGroups) == 0 {
				assert.Nil(t, res.Score)
				assert.False(t, res.Matched())
				return
			}
			require.NotNil(t, res.Score)
			assert.Equal(t, RuleConfidence, *res.Score)
			assert.True(t, res.Matched())
		})
	}
}

func TestMatch_EmptyLexicon(t *testing.T) {
	res := Match("view ecg", "display ecg", NewLexicon())
	assert.Nil(t, res.Score)
	assert.Empty(t, res.Groups)

	res = Match("view ecg", "display ecg", nil)
	assert.Nil(t, res.Score)
}

func TestMatch_ScoresAreIndependent(t *testing.T) {
	lex := NewLexicon().Add("ECG", "ecg")
	a := Match("ecg", "ecg", lex)
	b := Match("ecg", "ecg", lex)
	require.NotNil(t, a.Score)
	*a.Score = 0
	assert.Equal(t, RuleConfidence, *b.Score)
}
