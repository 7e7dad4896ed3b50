package m_order

// Field name constants for the orders table. The engine only counts rows.
const (
	TableName = "orders"

	OrderID   = "order_id"
	Status    = "status"
	CreatedAt = "created_at"
)

// Order status constants.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)
