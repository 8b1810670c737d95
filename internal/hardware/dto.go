package hardware

type LookupResponse struct {
	Record
	HasStorageMedia bool     `json:"hasStorageMedia"`
	Found           bool     `json:"found"`
	Compliance      Decision `json:"compliance"`
}
