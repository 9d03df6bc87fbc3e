// Package queue implements the per-stage work queues on Redis Streams,
// plus the sorted-set schedule used for delayed dispatch and retry
// redelivery. One stream per stage, one shared consumer group, deferred
// acknowledgment.
package queue
