// Package matching ranks canonical (parent) requirements for each legacy
// (child) requirement.
//
// Every pair gets three signals: a lexicon rule hit, an embedding cosine and
// a TF-IDF cosine. Fuse combines them into one score and a method label, and
// the Ranker keeps the TopK parents per child.
//
//	r, err := matching.NewRanker(embedder, matching.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	matrix, err := r.Rank(ctx, children, parents, matching.Extras{})
package matching
