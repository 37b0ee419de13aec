package responses

type Alert struct {
	ID        string                 `json:"id"`
	PatientID string                 `json:"patient_id"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type AlertSnapshot struct {
	PatientID string  `json:"patient_id"`
	Alerts    []Alert `json:"alerts"`
}
