package httpapi

type startSearchReq struct {
	Instructions string   `json:"instructions"`
	Marketplaces []string `json:"marketplaces"`
	Category     string   `json:"category"`
}

type startSearchResp struct {
	JobID string `json:"job_id"`
}

type setLLMKeyReq struct {
	APIKey string `json:"api_key"`
}
