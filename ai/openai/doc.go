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


// Package openai provides the remote embedding backend.
//
// It talks to Azure OpenAI or to any OpenAI-compatible endpoint (for example
// a LiteLLM proxy) through the langchaingo client. Inputs longer than
// Config.MaxInputTokens are cut with the cl100k_base tokenizer before they
// are sent.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithAzure("https://myresource.openai.azure.com/", key, "", ""),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
//
//	vectors, err := provider.Embedder().EmbedTexts(ctx, texts)
package openai
