package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"studyhub-backend/internal/bootstrap"
	"studyhub-backend/internal/shared/config"
	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/shared/telemetry"
	"studyhub-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	runner   workerproc.JobRunner
)

func initApp() {
	app, err := bootstrap.Build(context.Background(), config.Load())
	if err != nil {
		initErr = err
		return
	}
	runner = app.Jobs
}

// handleBatch reports failed records so SQS redelivers only those. Messages
// that can never succeed are acknowledged.
func handleBatch(ctx context.Context, r workerproc.JobRunner, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncWorkerJob("received")
		msg, _, err := workerproc.ParseMessage(record.Body)
		if err == nil {
			err = workerproc.HandleMessage(ctx, r, msg)
		}
		if err == nil {
			continue
		}
		fields := map[string]any{"sqs_message_id": record.MessageId, "job_id": msg.JobID, "error": err}
		if workerproc.Unrecoverable(err) {
			metrics.IncWorkerJob("discarded")
			telemetry.Error("worker.job.bad_message", fields)
			continue
		}
		telemetry.Error("worker.job.failed", fields)
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("worker.bootstrap_failed", map[string]any{"error": initErr})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return handleBatch(ctx, runner, event), nil
}

func main() {
	lambda.Start(handler)
}
