package queue

import "time"

// TopicReconcileJobs carries one job per accepted payment notification.
// Jobs are keyed by payment id so duplicates share a partition. The worker
// pool may still run duplicates concurrently; the order status transition
// is a compare-and-set, so that is safe.
const TopicReconcileJobs = "payment.reconcile.jobs"

// ReconcileJob asks the worker to fetch the authoritative payment state
// from the gateway and apply it to the referenced order.
type ReconcileJob struct {
	PaymentID  string    `json:"payment_id"`
	EventID    int64     `json:"event_id"`
	ReceivedAt time.Time `json:"received_at"`
	Attempt    int       `json:"attempt"`
}
