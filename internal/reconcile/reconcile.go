// Package reconcile repairs derived messaging state from the persisted
// messages, which are the source of truth. Unread counters and read-status
// promotion are maintained incrementally on the hot path; this job sweeps
// for drift left behind by crashes or raced writes.
package reconcile

import (
	"context"
	"fmt"

	"github.com/Tshikamisava/kasi-rent-sub001/internal/models"
	"gorm.io/gorm"
)

// Report summarizes one reconciliation sweep.
type Report struct {
	Participants   int
	RepairedCounts int
	PromotedReads  int
}

// unreadRecountSQL recomputes each active participant's unread counter from
// the message log. Tombstoned messages still count; only the reader's own
// messages and anything at or before their receipt are excluded.
const unreadRecountSQL = `
SELECT p.conversation_id, p.user_id, p.unread_count,
  (SELECT COUNT(*) FROM messages m
    WHERE m.conversation_id = p.conversation_id
      AND m.sender_id <> p.user_id
      AND m.created_at > p.last_read_at) AS actual
FROM participants p
WHERE p.active = ?`

// promoteReadSQL flips messages to read once every other active participant's
// receipt has passed them. Same invariant the receipt path enforces, applied
// across all conversations.
const promoteReadSQL = `
UPDATE messages SET status = ?
WHERE status <> ?
AND NOT EXISTS (
    SELECT 1 FROM participants p
    WHERE p.conversation_id = messages.conversation_id
      AND p.user_id <> messages.sender_id
      AND p.active = ?
      AND p.last_read_at < messages.created_at
)`

type counterRow struct {
	ConversationID uint
	UserID         uint
	UnreadCount    int
	Actual         int
}

// Verify recounts unread counters for every active participant, repairs any
// that drifted, and promotes message statuses that the incremental path
// missed. Safe to run while the system serves traffic.
func Verify(ctx context.Context, db *gorm.DB) (Report, error) {
	var report Report

	var rows []counterRow
	if err := db.WithContext(ctx).Raw(unreadRecountSQL, true).Scan(&rows).Error; err != nil {
		return report, fmt.Errorf("reconcile: recount unread: %w", err)
	}
	report.Participants = len(rows)

	for _, row := range rows {
		if row.UnreadCount == row.Actual {
			continue
		}
		err := db.WithContext(ctx).Model(&models.Participant{}).
			Where("conversation_id = ? AND user_id = ?", row.ConversationID, row.UserID).
			Update("unread_count", row.Actual).Error
		if err != nil {
			return report, fmt.Errorf("reconcile: repair counter conv=%d user=%d: %w",
				row.ConversationID, row.UserID, err)
		}
		report.RepairedCounts++
	}

	res := db.WithContext(ctx).Exec(promoteReadSQL,
		models.StatusRead, models.StatusRead, true)
	if res.Error != nil {
		return report, fmt.Errorf("reconcile: promote read statuses: %w", res.Error)
	}
	report.PromotedReads = int(res.RowsAffected)

	return report, nil
}
