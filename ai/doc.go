// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the embedding abstraction used by the matcher.
//
// The matcher depends only on the Embedder interface. Concrete backends live
// in sub-packages:
//
//   - ai/openai: Azure OpenAI or any OpenAI-compatible endpoint (LiteLLM proxy)
//   - ai/onnx: a local sentence encoder run through onnxruntime
//   - ai/mock: deterministic test doubles
//   - ai/provider: picks a backend from a Config
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, onnx.NewProvider, etc.) return
// INTERFACE types. Test utility constructors (mock.NewMockEmbedder) return
// CONCRETE types so tests can inject behavior and inspect call counts.
//
// # Backend Selection
//
// A remote backend wins when Config.RemoteConfigured reports true. Otherwise a
// local model is loaded when Config.LocalConfigured reports true. With neither,
// selection fails with ErrEmbeddingUnavailable. Failures raised by a chosen
// backend are wrapped in a BackendError and match ErrEmbeddingBackend.
//
//	cfg := ai.NewConfig(ai.WithAzure(endpoint, key, "", ""))
//	p, err := provider.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	vectors, err := p.Embedder().EmbedTexts(ctx, []string{"display ecg waveform"})
package ai
