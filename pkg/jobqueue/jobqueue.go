/**
 * @description
 * This package carries the orchestrator's job-queue contract over AMQP:
 * subscribe to a job type, receive activated jobs, and complete each one with
 * a variable map. Activated jobs are deliveries on a durable per-job-type
 * queue; completions are published to a topic exchange the orchestrator
 * consumes.
 *
 * @dependencies
 * - github.com/rabbitmq/amqp091-go: The AMQP client library.
 * - github.com/google/uuid: Consumer tags and fallback job keys.
 */
package jobqueue

// Job is one activated unit of work from the orchestrator.
type Job struct {
	Key       string
	Type      string
	Variables map[string]any
}

// Handler processes one activated job and returns the completion variables.
// Handlers must not leave a job hanging: every invocation returns a variable
// map, and the variable map is what completes the job.
type Handler func(job Job) map[string]any

// jobActivation is the wire shape of an activated-job delivery.
type jobActivation struct {
	JobKey    string         `json:"jobKey"`
	Variables map[string]any `json:"variables"`
}

// jobCompletion is the wire shape of a completion publish.
type jobCompletion struct {
	JobKey    string         `json:"jobKey"`
	Variables map[string]any `json:"variables"`
}
