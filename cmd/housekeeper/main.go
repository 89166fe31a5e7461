// Housekeeper purges aged event-log rows from a marketing-automation
// PostgreSQL database.
//
// It deletes old campaign and lead event logs, page hits and email
// statistics of unpublished emails, or clears the tokens column of email
// statistics. Large tables are processed in id windows and the transaction
// is committed periodically so locks stay short.
//
// Usage:
//
//	# Show what would be deleted
//	housekeeper purge --days-old 365 --dry-run
//
//	# Purge campaign events of one campaign
//	housekeeper purge --cmp-id 123
//
//	# Clear email stats tokens
//	housekeeper purge --email-stats-tokens
//
//	# Run on a cron schedule and serve /metrics
//	housekeeper schedule --config housekeeper.yaml
//
//	# Show table statistics
//	housekeeper status
package main

func main() {
	Execute()
}
