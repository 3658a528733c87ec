package mixpanel

// DownloadEvent is the analytics event fired when a resource is downloaded.
const DownloadEvent = "resource download"

// downloadsByDatasetJQL counts, per dataset, the distinct (user, day) pairs
// with at least one download, so repeated clicks in a day count once.
const downloadsByDatasetJQL = `function main() {
  return Events({
    from_date: params.from_date,
    to_date: params.to_date,
    event_selectors: [{event: params.event}]
  })
  .groupByUser(["properties.dataset id", mixpanel.numeric_bucket("time", mixpanel.daily_time_buckets)], mixpanel.reducer.null())
  .groupBy([mixpanel.slice("key", 1)], mixpanel.reducer.count())
  .map(function(r) { return {dataset_id: r.key[0], value: r.value}; });
}`

// jqlParams is passed to the script as the global params.
type jqlParams struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Event    string `json:"event"`
}

// DatasetCount is one row of the downloads query.
type DatasetCount struct {
	DatasetID string `json:"dataset_id"`
	Value     int    `json:"value"`
}
