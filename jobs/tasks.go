package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeLowStockCheck re-checks a product that a sale pushed to or
	// below the low-stock threshold.
	TaskTypeLowStockCheck = "stock:low_check"
)

// LowStockCheckPayload identifies the product to re-check.
type LowStockCheckPayload struct {
	ProductID int64 `json:"product_id"`
}

// NewLowStockCheckTask constructs an Asynq task.
func NewLowStockCheckTask(productID int64) (*asynq.Task, error) {
	data, err := json.Marshal(LowStockCheckPayload{ProductID: productID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeLowStockCheck, data, asynq.Queue(QueueDefault)), nil
}
