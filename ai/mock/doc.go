// Package mock provides test doubles for the ai package interfaces.
//
// # Usage
//
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithVectors(map[string][]float32{
//	        "display ecg waveform": {1, 0},
//	    })
//
//	// Check what was sent
//	count := mockEmbedder.CallCount()
//	batches := mockEmbedder.Calls()
//
// # Default Behavior
//
//   - MockEmbedder: returns deterministic unit vectors based on a text hash
//   - MockProvider: wraps a MockEmbedder and records Close
package mock
