package contracts

import (
	"context"
	"synclinic-service/internal/pkg/dto/responses"
)

// EventPublisher emits export completion events. Publishing is
// fire-and-forget: failures are logged by implementations and must never
// fail the export that produced the event.
type EventPublisher interface {
	PublishExportEvent(ctx context.Context, event *responses.ExportEvent) error
}
