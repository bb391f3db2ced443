package models

// Requests for stock data HTTP endpoints. Defined in domain for consistency and reuse.

type StockDataRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,min=1,max=10"`
	Period string `query:"period" json:"period" default:"daily" validate:"oneof=daily weekly hourly"`
	Start  string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string `query:"end" json:"end" validate:"omitempty,datetime=2006-01-02"`
}

type SearchRequest struct {
	Q     string `query:"q" json:"q" validate:"required,min=1,max=64"`
	Limit int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=50"`
}
