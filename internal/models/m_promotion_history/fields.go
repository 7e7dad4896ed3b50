package m_promotion_history

// Table name constant
const TableName = "promotion_history"

// Field name constants for type-safe database access
const (
	HistoryID      = "history_id"
	PromotionID    = "promotion_id"
	Action         = "action"
	ActorID        = "actor_id"
	BeforeSnapshot = "before_snapshot"
	Changes        = "changes"
	CreatedAt      = "created_at"
)
