package vendors

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/requests"
	"synclinic-service/internal/pkg/fhir_dto"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func newCernerTestConfig(baseURL, tokenURL string) *requests.TenantSyncConfig {
	return &requests.TenantSyncConfig{
		TenantID: "tenant-1",
		Vendor:   constvars.VendorCerner,
		BaseURL:  baseURL,
		TokenURL: tokenURL,
		SystemApp: &requests.TenantVendorApp{
			ClientID:     "client-1",
			ClientSecret: "secret-1",
			Scopes:       "system/DocumentReference.read",
		},
	}
}

func newVendorTestServer(t *testing.T, tokenCalls *int32, binaryBody []byte, binaryContentType string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/Binary/bin-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", binaryContentType)
		_, _ = w.Write(binaryBody)
	})
	return httptest.NewServer(mux)
}

func TestCernerFetchBinaryDocument(t *testing.T) {
	var tokenCalls int32
	payload := []byte("%PDF-1.4 this is long enough to be a document")
	server := newVendorTestServer(t, &tokenCalls, payload, "application/pdf")
	defer server.Close()

	adapter := NewCernerAdapter(
		newCernerTestConfig(server.URL, server.URL+"/token"),
		rate.NewLimiter(rate.Inf, 1),
		zap.NewNop(),
	)

	result := adapter.FetchBinaryDocument(context.Background(), "Binary/bin-1")
	require.Empty(t, result.Error)
	assert.Equal(t, payload, result.Data)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestCernerFetchBinaryDocumentCorruptedPayload(t *testing.T) {
	var tokenCalls int32
	server := newVendorTestServer(t, &tokenCalls, []byte("tiny"), "application/pdf")
	defer server.Close()

	adapter := NewCernerAdapter(
		newCernerTestConfig(server.URL, server.URL+"/token"),
		rate.NewLimiter(rate.Inf, 1),
		zap.NewNop(),
	)

	result := adapter.FetchBinaryDocument(context.Background(), "Binary/bin-1")
	assert.Nil(t, result.Data, "a payload below the sanity threshold must never be returned as data")
	assert.NotEmpty(t, result.Error)
}

func TestCernerFetchBinaryDocumentFHIREnvelope(t *testing.T) {
	var tokenCalls int32
	payload := []byte("discharge summary body, definitely long enough")
	envelope, err := json.Marshal(fhir_dto.Binary{
		ResourceType: constvars.ResourceBinary,
		ContentType:  "text/plain",
		Data:         base64.StdEncoding.EncodeToString(payload),
	})
	require.NoError(t, err)

	server := newVendorTestServer(t, &tokenCalls, envelope, "application/fhir+json")
	defer server.Close()

	adapter := NewCernerAdapter(
		newCernerTestConfig(server.URL, server.URL+"/token"),
		rate.NewLimiter(rate.Inf, 1),
		zap.NewNop(),
	)

	result := adapter.FetchBinaryDocument(context.Background(), "Binary/bin-1")
	require.Empty(t, result.Error)
	assert.Equal(t, payload, result.Data)
	assert.Equal(t, "text/plain", result.ContentType)
}

func TestCernerCapabilities(t *testing.T) {
	adapter := NewCernerAdapter(newCernerTestConfig("http://base", "http://base/token"), rate.NewLimiter(rate.Inf, 1), zap.NewNop())
	capabilities := adapter.Capabilities()
	assert.True(t, capabilities.SupportsDelete)
	assert.True(t, capabilities.SupportsUpdate)
}

func TestEpicDeleteNeverReachesVendor(t *testing.T) {
	var requestCount int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewEpicAdapter(&requests.TenantSyncConfig{
		TenantID: "tenant-1",
		Vendor:   constvars.VendorEpic,
		BaseURL:  server.URL,
		TokenURL: server.URL + "/token",
		SystemApp: &requests.TenantVendorApp{
			ClientID:      "client-1",
			PrivateKeyPEM: "not-a-key",
		},
	}, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	deleted, err := adapter.DeleteResource(context.Background(), constvars.ResourcePatient, "p-1")
	assert.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requestCount), "delete must not send any request")

	capabilities := adapter.Capabilities()
	assert.False(t, capabilities.SupportsDelete)
	assert.False(t, capabilities.SupportsUpdate)
}

func TestUnstructuredVendorRejection(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/Patient/p-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream proxy error</html>"))
	})
	mux.HandleFunc("/Patient", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewCernerAdapter(
		newCernerTestConfig(server.URL, server.URL+"/token"),
		rate.NewLimiter(rate.Inf, 1),
		zap.NewNop(),
	)

	// Reads answer with the null sentinel when the vendor body carries no
	// OperationOutcome.
	resp, err := adapter.FetchResource(context.Background(), constvars.ResourcePatient, "p-1")
	assert.NoError(t, err)
	assert.Nil(t, resp)

	// Creates surface the same situation as a transport error.
	resp, err = adapter.CreateResource(context.Background(), constvars.ResourcePatient, map[string]string{"resourceType": constvars.ResourcePatient})
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestCernerAuthWithoutClientSecret(t *testing.T) {
	var tokenCalls int32
	server := newVendorTestServer(t, &tokenCalls, nil, "application/pdf")
	defer server.Close()

	config := newCernerTestConfig(server.URL, server.URL+"/token")
	config.SystemApp.ClientSecret = ""
	adapter := NewCernerAdapter(config, rate.NewLimiter(rate.Inf, 1), zap.NewNop())

	assert.False(t, adapter.EnsureToken(context.Background(), constvars.AuthTypeSystem))
	assert.Equal(t, int32(0), atomic.LoadInt32(&tokenCalls), "the token endpoint must not be called without credentials")
}

func TestSearchDischargeSummariesQuery(t *testing.T) {
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "test-token", "expires_in": 3600})
	})
	mux.HandleFunc("/DocumentReference", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pat-1", r.URL.Query().Get("patient"))
		assert.Equal(t, "http://loinc.org|18842-5", r.URL.Query().Get("type"))
		assert.Equal(t, "100", r.URL.Query().Get("_count"), "page size follows the vendor capability")

		doc, _ := json.Marshal(fhir_dto.DocumentReference{ID: "doc-1", ResourceType: constvars.ResourceDocumentReference})
		w.Header().Set("Content-Type", "application/fhir+json")
		_ = json.NewEncoder(w).Encode(fhir_dto.Bundle{
			ResourceType: constvars.ResourceBundle,
			Type:         constvars.FhirBundleTypeSearchset,
			Entry:        []fhir_dto.BundleEntry{{Resource: doc}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	adapter := NewCernerAdapter(
		newCernerTestConfig(server.URL, server.URL+"/token"),
		rate.NewLimiter(rate.Inf, 1),
		zap.NewNop(),
	)

	documents, err := adapter.SearchDischargeSummaries(context.Background(), "pat-1")
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, "doc-1", documents[0].ID)
}
