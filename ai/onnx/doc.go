// Package onnx provides the local embedding backend.
//
// A sentence-transformers model exported to ONNX is run through onnxruntime.
// Texts are tokenized with the model's tokenizer.json, the last hidden state
// is mean-pooled over the attention mask and every vector is L2-normalized.
//
// The model directory layout is:
//
//	<LocalModelDir>/<LocalModel>/model.onnx
//	<LocalModelDir>/<LocalModel>/tokenizer.json
//
// The onnxruntime environment is process-wide. It is initialized by the first
// provider and destroyed when the last one is closed.
package onnx
