package models

// Requests for prediction HTTP endpoints.

type PredictRequest struct {
	Headline string `query:"headline" json:"headline" form:"headline"`
}

type AnalyzeRequest struct {
	Headline string `json:"headline" form:"headline"`
}

type RecentRequest struct {
	Source string `query:"source" json:"source" validate:"omitempty,oneof=finnhub kafka rss api"`
	Label  string `query:"label" json:"label" validate:"omitempty,oneof=UP DOWN_OR_FLAT"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
