package storage

type SurveyRecord struct {
	ID         string
	SurveyDate string
	Quantity   int64
	Status     string
	Category   string
}

type LoadRun struct {
	ID         string
	SourceUrl  string
	StartedAt  string
	FinishedAt string
	Pages      int64
	Fetched    int64
	Inserted   int64
	Status     string
	Error      string
}
