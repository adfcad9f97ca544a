package auth

import "sync"

// MockStore is an in-memory credential store for testing
type MockStore struct {
	mu          sync.Mutex
	creds       *Credentials
	storeErr    error
	retrieveErr error
	deleteErr   error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// SetErrors configures the errors the store operations return
func (m *MockStore) SetErrors(storeErr, retrieveErr, deleteErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErr = storeErr
	m.retrieveErr = retrieveErr
	m.deleteErr = deleteErr
}

// Store saves the credentials in memory
func (m *MockStore) Store(creds *Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.storeErr != nil {
		return m.storeErr
	}

	copied := *creds
	m.creds = &copied
	return nil
}

// Retrieve returns the stored credentials
func (m *MockStore) Retrieve() (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	if m.creds == nil {
		return nil, ErrCredentialsNotFound
	}

	copied := *m.creds
	return &copied, nil
}

// Delete removes the stored credentials
func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.creds == nil {
		return ErrCredentialsNotFound
	}

	m.creds = nil
	return nil
}

// Exists checks if credentials are present
func (m *MockStore) Exists() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds != nil
}
