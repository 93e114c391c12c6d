package worker

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"realtime-chat/internal/service"
	"realtime-chat/internal/tasks"
)

// WorkerServer wraps the asynq server lifecycle and routes task types to
// their handlers.
type WorkerServer struct {
	server        *asynq.Server
	notifications *service.NotificationService
	log           *logrus.Entry
}

func NewWorkerServer(redisOpt asynq.RedisClientOpt, notifications *service.NotificationService, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:        server,
		notifications: notifications,
		log:           logEntry,
	}
}

// Start runs the worker. It blocks, so callers run it in its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	cleanupHandler := NewNotificationCleanupHandler(ws.notifications)
	mux.HandleFunc(tasks.TypeNotificationCleanup, cleanupHandler.ProcessTask)

	eventHandler := NewEventHandler()
	mux.Handle(tasks.EventTaskType(""), eventHandler)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown drains in-flight tasks and stops the server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}

// EventHandler consumes domain-event tasks. Today it only records them;
// downstream consumers (push gateways, analytics) hang off this point.
type EventHandler struct {
	log *logrus.Entry
}

func NewEventHandler() *EventHandler {
	return &EventHandler{log: logrus.WithField("component", "event_handler")}
}

func (h *EventHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	event := strings.TrimPrefix(t.Type(), tasks.EventTaskType(""))
	h.log.WithFields(logrus.Fields{
		"event": event,
		"bytes": len(t.Payload()),
	}).Debug("Domain event consumed")
	return nil
}
