package responses

// SourceDocument is the vendor-neutral parse of a vendor DocumentReference.
// It is derived per export call and never persisted.
type SourceDocument struct {
	ID                string
	Status            string
	TypeCode          string
	SourcePatientID   string
	SourceEncounterID string
	Date              string
	Authors           []string
	Content           []SourceDocumentContent
}

type SourceDocumentContent struct {
	ContentType string
	URL         string
	InlineData  string
	Title       string
	Size        int64
}

// BinaryDocumentResult is the outcome of a vendor binary fetch. Data is nil
// when the payload failed the sanity check; callers must branch on Error
// before treating the bytes as document content.
type BinaryDocumentResult struct {
	Data        []byte
	ContentType string
	Error       string
}

// TransformedBinary is the normalized payload ready for the target store.
type TransformedBinary struct {
	Data         []byte
	ContentType  string
	OriginalSize int
}
