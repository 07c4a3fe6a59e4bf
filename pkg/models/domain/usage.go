package domain

// DailyQueryStats aggregates one day of query activity from the provider's
// job history. Date is an ISO calendar date (YYYY-MM-DD).
type DailyQueryStats struct {
	Date             string
	QueryCount       int64
	TotalBytesBilled int64
}

// UsageReport is a rolling window of daily query stats, oldest day first.
// Days without activity are present with zero counts.
type UsageReport struct {
	ProjectID string
	Region    string
	Days      int
	Daily     []DailyQueryStats
}
