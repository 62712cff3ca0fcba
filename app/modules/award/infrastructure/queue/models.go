package awardqueue

// QueueAwards serializes medal runs.
const QueueAwards = "awards"

// DailyAwardsJob requests the medal run for Date (DD.MM.YYYY).
type DailyAwardsJob struct {
	Date string `json:"date"`
}

// Kind returns the job type identifier for River
func (DailyAwardsJob) Kind() string { return "daily_awards" }

// MessageRetentionJob prunes the raw chat message log.
type MessageRetentionJob struct{}

// Kind returns the job type identifier for River
func (MessageRetentionJob) Kind() string { return "message_retention" }
