package tgCallback

// Callback button data
const (
	RefreshPrice   string = "refresh_price"
	RefreshSummary string = "refresh_summary"
)
