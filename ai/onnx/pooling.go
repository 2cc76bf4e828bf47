package onnx

type encoding struct {
	ids     []int
	mask    []int
	typeIDs []int
}

// truncate keeps the first maxLen-1 tokens and the final special token.
func truncate(enc encoding, maxLen int) encoding {
	n := len(enc.ids)
	if maxLen <= 0 || n <= maxLen {
		return enc
	}
	cut := func(s []int) []int {
		if len(s) != n {
			return s[:min(len(s), maxLen)]
		}
		out := make([]int, 0, maxLen)
		out = append(out, s[:maxLen-1]...)
		return append(out, s[n-1])
	}
	return encoding{ids: cut(enc.ids), mask: cut(enc.mask), typeIDs: cut(enc.typeIDs)}
}

// pad flattens encodings into row-major int64 tensors of equal length.
// Padding positions carry id 0 and mask 0.
func pad(encoded []encoding) (ids, mask, types []int64, seqLen int) {
	for _, enc := range encoded {
		seqLen = max(seqLen, len(enc.ids))
	}
	size := len(encoded) * seqLen
	ids = make([]int64, size)
	mask = make([]int64, size)
	types = make([]int64, size)

	for row, enc := range encoded {
		base := row * seqLen
		for i, id := range enc.ids {
			ids[base+i] = int64(id)
			if i < len(enc.mask) {
				mask[base+i] = int64(enc.mask[i])
			} else {
				mask[base+i] = 1
			}
			if i < len(enc.typeIDs) {
				types[base+i] = int64(enc.typeIDs[i])
			}
		}
	}
	return ids, mask, types, seqLen
}

// meanPool averages hidden states over unmasked positions.
// hidden is laid out as [batch][seqLen][dim].
func meanPool(hidden []float32, mask []int64, batch, seqLen, dim int) [][]float32 {
	pooled := make([][]float32, batch)
	for b := 0; b < batch; b++ {
		sum := make([]float64, dim)
		var count float64
		for s := 0; s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			count++
			offset := (b*seqLen + s) * dim
			for d := 0; d < dim; d++ {
				sum[d] += float64(hidden[offset+d])
			}
		}
		vec := make([]float32, dim)
		if count > 0 {
			for d := range vec {
				vec[d] = float32(sum[d] / count)
			}
		}
		pooled[b] = vec
	}
	return pooled
}
