package store

const eventsTable = "events"

var eventColumns = []string{
	"id",
	"executor",
	"kind",
	"worker",
	"task_id",
	"message",
	"created_at",
}

// Event queries
const (
	queryGetEvent = `
		SELECT id, executor, kind, worker, task_id, message, created_at
		FROM events WHERE id = ?`

	queryDeleteEventsBefore = `DELETE FROM events WHERE created_at < ?`
)
