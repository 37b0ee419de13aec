package models

// Alert is a read-only mirror of one document from the per-patient alerts
// collection. Fields beyond the id and owner are opaque to this service.
type Alert struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	PatientID string                 `bson:"patientId" json:"patientId"`
	Fields    map[string]interface{} `bson:",inline" json:"fields,omitempty"`
}
