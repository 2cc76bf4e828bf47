package onnx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/poiesic/reqtrace/ai"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

const backendName = "onnx"

// Tensor names used by sentence-transformers exports.
const (
	inputIDs      = "input_ids"
	attentionMask = "attention_mask"
	tokenTypeIDs  = "token_type_ids"
	hiddenState   = "last_hidden_state"
)

// encodeBatchSize bounds the padded tensor built per session run.
const encodeBatchSize = 32

// Embedder implements ai.Embedder with a local ONNX sentence encoder.
type Embedder struct {
	session   *ort.DynamicAdvancedSession
	tokenizer *tokenizer.Tokenizer
	typeIDs   bool
	maxSeqLen int
	logger    *slog.Logger

	mu sync.Mutex // session runs are serialized
}

// newEmbedder is an internal constructor that returns the concrete type.
// A model that is not installed yields ai.ErrEmbeddingUnavailable.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.LocalConfigured() {
		return nil, ai.ErrEmbeddingUnavailable
	}

	modelPath, tokenizerPath := config.ModelPath(), config.TokenizerPath()
	for _, path := range []string{modelPath, tokenizerPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: local model %q not installed: %w", ai.ErrEmbeddingUnavailable, config.LocalModel, err)
		}
	}

	tk, err := pretrained.FromFile(tokenizerPath)
	if err != nil {
		return nil, ai.NewBackendError(backendName, fmt.Errorf("load tokenizer: %w", err))
	}

	if err := acquireRuntime(config.ONNXLibrary); err != nil {
		return nil, ai.NewBackendError(backendName, err)
	}

	inputs, _, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		_ = releaseRuntime()
		return nil, ai.NewBackendError(backendName, fmt.Errorf("inspect model: %w", err))
	}
	names := []string{inputIDs, attentionMask}
	typeIDs := slices.ContainsFunc(inputs, func(info ort.InputOutputInfo) bool {
		return info.Name == tokenTypeIDs
	})
	if typeIDs {
		names = append(names, tokenTypeIDs)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, names, []string{hiddenState}, nil)
	if err != nil {
		_ = releaseRuntime()
		return nil, ai.NewBackendError(backendName, fmt.Errorf("create session: %w", err))
	}

	return &Embedder{
		session:   session,
		tokenizer: tk,
		typeIDs:   typeIDs,
		maxSeqLen: config.MaxSeqLen,
		logger:    slog.Default().With("component", "onnx-embedder", "model", config.LocalModel),
	}, nil
}

// EmbedTexts encodes texts in fixed-size padded batches.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += encodeBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+encodeBatchSize, len(texts))
		batch, err := e.encodeBatch(texts[start:end])
		if err != nil {
			e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
			return nil, ai.NewBackendError(backendName, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *Embedder) encodeBatch(texts []string) ([][]float32, error) {
	encoded := make([]encoding, len(texts))
	for i, text := range texts {
		enc, err := e.tokenizer.EncodeSingle(text, true)
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		encoded[i] = truncate(encoding{
			ids:     enc.GetIds(),
			mask:    enc.GetAttentionMask(),
			typeIDs: enc.GetTypeIds(),
		}, e.maxSeqLen)
	}

	ids, mask, types, seqLen := pad(encoded)
	shape := ort.NewShape(int64(len(texts)), int64(seqLen))

	idsTensor, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, err
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, err
	}
	defer maskTensor.Destroy()

	inputs := []ort.Value{idsTensor, maskTensor}
	if e.typeIDs {
		typesTensor, err := ort.NewTensor(shape, types)
		if err != nil {
			return nil, err
		}
		defer typesTensor.Destroy()
		inputs = append(inputs, typesTensor)
	}

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run(inputs, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	defer outputs[0].Destroy()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	outShape := hidden.GetShape()
	if len(outShape) != 3 {
		return nil, fmt.Errorf("unexpected output shape %v", outShape)
	}

	pooled := meanPool(hidden.GetData(), mask, len(texts), seqLen, int(outShape[2]))
	for i := range pooled {
		pooled[i] = ai.NormalizeVector(pooled[i])
	}
	return pooled, nil
}

// Close destroys the session and releases the shared runtime.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	if rerr := releaseRuntime(); err == nil {
		err = rerr
	}
	return err
}
