// Package storage persists the ledger as one serialized document under a
// single namespaced key: whole-document read before every operation,
// whole-document write after every mutation. Two backends implement the
// ledger.Provider interface; the config picks one.
package storage

import (
	"github.com/google/uuid"

	"github.com/jask/sangam/internal/ledger"
)

// DocumentKey is the namespaced key the whole ledger document lives under.
const DocumentKey = "sangam/ledger/v2"

// DefaultDocument builds the seeded document returned by Load when nothing
// has been saved yet. With demoMembers set it carries the three sample
// members used for first-run walkthroughs.
func DefaultDocument(group ledger.Group, demoMembers bool) ledger.Document {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	doc := ledger.Document{Group: group}
	if demoMembers {
		doc.Members = []ledger.Member{
			{ID: uuid.NewString(), Name: "Lakshmi Devi", Phone: "9876543210", TotalSavings: 2400},
			{ID: uuid.NewString(), Name: "Meena Bai", Phone: "9876543211", TotalSavings: 1800},
			{ID: uuid.NewString(), Name: "Saritha Akka", Phone: "9876543212", TotalSavings: 3000},
		}
	}
	return doc
}
