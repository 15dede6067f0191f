// Copyright 2025 Citymuse Contributors
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


package badger

import "github.com/citymuse/wayfinder/storage"

// NewMemoryStores creates an in-memory graph and embedding store for testing.
// Returns graphRepo, embeddingRepo, backend, and error.
// Caller must close both repos and the backend when done.
func NewMemoryStores(opts ...BackendOption) (storage.GraphRepository, storage.EmbeddingRepository, *Backend, error) {
	backend, err := OpenBackend("", true, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	graphRepo, err := NewGraphRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	embeddingRepo, err := NewEmbeddingRepository(backend)
	if err != nil {
		graphRepo.Close()
		backend.Close()
		return nil, nil, nil, err
	}

	return graphRepo, embeddingRepo, backend, nil
}
