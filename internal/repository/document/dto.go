package document

import (
	"fmt"

	"github.com/lexivec/lexivec/internal/db"
	domdoc "github.com/lexivec/lexivec/internal/domain/document"
)

// rowFromDocument maps a domain document onto the storage row shape.
// Seq is left zero for new documents so the backend assigns one.
func rowFromDocument(doc domdoc.Document) db.Row {
	return db.Row{
		ID:      doc.ID(),
		Content: doc.Content(),
		Meta:    doc.Metadata(),
		Vector:  doc.Vector(),
		Seq:     doc.Seq(),
	}
}

// documentFromRow hydrates a domain document from a storage row.
func documentFromRow(row db.Row) (domdoc.Document, error) {
	if row.ID == "" {
		return domdoc.Document{}, fmt.Errorf("row has no id")
	}
	return domdoc.Reconstruct(row.ID, row.Content, row.Meta, row.Vector, row.Seq), nil
}
