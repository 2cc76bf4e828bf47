package matching

import "github.com/poiesic/reqtrace/core"

// Fuse combines the three signals of one pair.
//
// With a rule score the result is the max of all three and the method is
// Fusion. Without one, the larger of embedding and TF-IDF wins; a tie goes
// to Embedding.
func Fuse(rule *float64, embedding, tfidf float64) (float64, core.Method) {
	if rule != nil {
		return max(*rule, embedding, tfidf), core.MethodFusion
	}
	if embedding >= tfidf {
		return embedding, core.MethodEmbedding
	}
	return tfidf, core.MethodLexical
}
