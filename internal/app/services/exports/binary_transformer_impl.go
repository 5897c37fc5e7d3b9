package exports

import (
	"context"
	"encoding/base64"
	"fmt"
	"synclinic-service/internal/app/contracts"
	"synclinic-service/internal/pkg/constvars"
	"synclinic-service/internal/pkg/dto/responses"
	"synclinic-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

type binaryTransformer struct {
	log *zap.Logger
}

func NewBinaryTransformer(logger *zap.Logger) contracts.BinaryTransformer {
	return &binaryTransformer{log: logger}
}

// Transform resolves the document's first usable content attachment to raw
// bytes: inline base64 data is decoded in place, URL attachments are fetched
// through the vendor adapter. A payload that fails the size sanity check is a
// hard failure for the document, never silently written.
func (t *binaryTransformer) Transform(ctx context.Context, adapter contracts.VendorAdapter, document *responses.SourceDocument) (*responses.TransformedBinary, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	t.log.Info("binaryTransformer.Transform called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDocumentIDKey, document.ID),
		zap.Int("content_items", len(document.Content)),
	)

	for _, content := range document.Content {
		if content.InlineData != "" {
			data, err := base64.StdEncoding.DecodeString(content.InlineData)
			if err != nil {
				return nil, exceptions.ErrBinaryDecodeFailed(err, document.ID)
			}
			if len(data) < constvars.MinimumBinaryPayloadLength {
				return nil, exceptions.ErrBinaryCorrupted(document.ID)
			}
			return &responses.TransformedBinary{
				Data:         data,
				ContentType:  normalizeContentType(content.ContentType),
				OriginalSize: len(data),
			}, nil
		}

		if content.URL != "" {
			result := adapter.FetchBinaryDocument(ctx, content.URL)
			if result.Error != "" {
				return nil, exceptions.ErrBinaryDecodeFailed(fmt.Errorf("%s", result.Error), document.ID)
			}
			contentType := result.ContentType
			if contentType == "" {
				contentType = normalizeContentType(content.ContentType)
			}
			return &responses.TransformedBinary{
				Data:         result.Data,
				ContentType:  normalizeContentType(contentType),
				OriginalSize: len(result.Data),
			}, nil
		}
	}

	return nil, exceptions.ErrBinaryCorrupted(document.ID)
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return constvars.MIMEOctetStream
	}
	return contentType
}
