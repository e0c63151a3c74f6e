package api

type Choice struct {
	Value            string `json:"value"`
	Weight           int    `json:"weight"`
	CumulativeWeight int    `json:"cumulative_weight"`
}

type Table struct {
	Name        string   `json:"name"`
	TotalWeight int      `json:"total_weight"`
	Choices     []Choice `json:"choices"`
}

type GetTablesResponse struct {
	Tables []Table `json:"tables"`
}

type GetTableResponse struct {
	Table Table `json:"table"`
}

type DrawResponse struct {
	ID    string `json:"id"`
	Table string `json:"table"`
	Value string `json:"value"`

	// Empty is set when the table had nothing to choose from.
	Empty bool `json:"empty"`
}

type SetWeightRequest struct {
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

type GetCountsResponse struct {
	Table  string           `json:"table"`
	Counts map[string]int64 `json:"counts"`
}
