package models

// Stock is one row of the stocks master table.
type Stock struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Exchange    string `json:"exchange"`
}
