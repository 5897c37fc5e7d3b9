package exports

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"

	"synclinic-service/internal/pkg/dto/responses"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTransformInlinePDF(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())

	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x41}, 1024-9)...)
	require.Len(t, payload, 1024)

	document := &responses.SourceDocument{
		ID: "doc-1",
		Content: []responses.SourceDocumentContent{{
			ContentType: "application/pdf",
			InlineData:  base64.StdEncoding.EncodeToString(payload),
		}},
	}

	transformed, err := transformer.Transform(context.Background(), &fakeAdapter{}, document)
	require.NoError(t, err)
	assert.Equal(t, payload, transformed.Data)
	assert.Equal(t, "application/pdf", transformed.ContentType)
	assert.Equal(t, 1024, transformed.OriginalSize)
}

func TestTransformShortInlinePayloadIsCorrupted(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())

	document := &responses.SourceDocument{
		ID: "doc-1",
		Content: []responses.SourceDocumentContent{{
			InlineData: base64.StdEncoding.EncodeToString([]byte("tiny")),
		}},
	}

	_, err := transformer.Transform(context.Background(), &fakeAdapter{}, document)
	assert.Error(t, err, "sub-threshold payloads must never become target binaries")
}

func TestTransformFetchesURLContent(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())
	payload := []byte("note text fetched from the vendor binary endpoint")

	adapter := &fakeAdapter{
		fetchBinaryDocument: func(binaryURL string) *responses.BinaryDocumentResult {
			assert.Equal(t, "Binary/bin-1", binaryURL)
			return &responses.BinaryDocumentResult{Data: payload, ContentType: "text/plain"}
		},
	}
	document := &responses.SourceDocument{
		ID: "doc-1",
		Content: []responses.SourceDocumentContent{{
			URL: "Binary/bin-1",
		}},
	}

	transformed, err := transformer.Transform(context.Background(), adapter, document)
	require.NoError(t, err)
	assert.Equal(t, payload, transformed.Data)
	assert.Equal(t, "text/plain", transformed.ContentType)
	assert.Equal(t, len(payload), transformed.OriginalSize)
}

func TestTransformPropagatesFetchFailure(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())

	adapter := &fakeAdapter{
		fetchBinaryDocument: func(binaryURL string) *responses.BinaryDocumentResult {
			return &responses.BinaryDocumentResult{Error: "binary payload too small, treating as corrupted"}
		},
	}
	document := &responses.SourceDocument{
		ID:      "doc-1",
		Content: []responses.SourceDocumentContent{{URL: "Binary/bin-1"}},
	}

	_, err := transformer.Transform(context.Background(), adapter, document)
	assert.Error(t, err)
}

func TestTransformNoUsableContent(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())

	_, err := transformer.Transform(context.Background(), &fakeAdapter{}, &responses.SourceDocument{ID: "doc-1"})
	assert.Error(t, err)
}

func TestTransformDefaultsContentType(t *testing.T) {
	transformer := NewBinaryTransformer(zap.NewNop())
	payload := []byte("payload without a declared content type")

	document := &responses.SourceDocument{
		ID: "doc-1",
		Content: []responses.SourceDocumentContent{{
			InlineData: base64.StdEncoding.EncodeToString(payload),
		}},
	}

	transformed, err := transformer.Transform(context.Background(), &fakeAdapter{}, document)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", transformed.ContentType)
}
