package domain

import "time"

// SourceFile records the provenance of an uploaded spreadsheet so the original
// blob can be removed when the manifest is wiped.
type SourceFile struct {
	FileName    string `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileURL     string `bson:"fileUrl,omitempty" json:"fileUrl,omitempty"`
	StoragePath string `bson:"storagePath,omitempty" json:"storagePath,omitempty"`
}

// ImportManifest is the denormalized snapshot of a shipment's last import.
// One document per shipment; it exists so wildcard deletion never has to scan
// the case collection.
type ImportManifest struct {
	ShipmentID  string     `bson:"shipmentId" json:"shipmentId"`
	CaseNumbers []string   `bson:"caseNumbers" json:"caseNumbers"`
	Count       int        `bson:"count" json:"count"`
	UploadedAt  time.Time  `bson:"uploadedAt" json:"uploadedAt"`
	UploadedBy  string     `bson:"uploadedBy" json:"uploadedBy"`
	Source      SourceFile `bson:"source,omitempty" json:"source,omitempty"`
}

// NewImportManifest builds a manifest from the deduplicated sanitized case
// numbers written for a shipment.
func NewImportManifest(shipmentID string, caseNumbers []string, source SourceFile, uploadedBy string, uploadedAt time.Time) *ImportManifest {
	return &ImportManifest{
		ShipmentID:  shipmentID,
		CaseNumbers: caseNumbers,
		Count:       len(caseNumbers),
		UploadedAt:  uploadedAt,
		UploadedBy:  uploadedBy,
		Source:      source,
	}
}
