package fhirstore

import (
	"sync"
	"synclinic-service/internal/app/contracts"

	"go.uber.org/zap"
)

// targetClientProvider caches one client per target dataset URL so connection
// pools are shared across exports for the same tenant.
type targetClientProvider struct {
	mu      sync.Mutex
	clients map[string]contracts.TargetFHIRClient
	log     *zap.Logger
}

func NewTargetClientProvider(logger *zap.Logger) contracts.TargetClientProvider {
	return &targetClientProvider{
		clients: make(map[string]contracts.TargetFHIRClient),
		log:     logger,
	}
}

func (p *targetClientProvider) ClientFor(targetBaseURL string) contracts.TargetFHIRClient {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[targetBaseURL]; ok {
		return client
	}
	client := NewTargetFHIRClient(targetBaseURL, p.log)
	p.clients[targetBaseURL] = client
	return client
}
