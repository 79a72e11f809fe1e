package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeTaskServer struct {
	runErr   error
	shutdown bool
}

func (s *fakeTaskServer) Run(asynq.Handler) error { return s.runErr }

func (s *fakeTaskServer) Shutdown() { s.shutdown = true }

type fakeScheduler struct {
	startErr error
	started  bool
	shutdown bool
}

func (s *fakeScheduler) Start() error {
	s.started = s.startErr == nil
	return s.startErr
}

func (s *fakeScheduler) Shutdown() { s.shutdown = true }

func TestServiceStartShutsDownSchedulerWhenServerFails(t *testing.T) {
	server := &fakeTaskServer{runErr: errors.New("redis unreachable")}
	scheduler := &fakeScheduler{}
	svc := &Service{server: server, scheduler: scheduler, mux: asynq.NewServeMux()}

	err := svc.Start(context.Background())
	if err == nil || err.Error() != "redis unreachable" {
		t.Fatalf("expected server error, got %v", err)
	}
	if !scheduler.started || !scheduler.shutdown {
		t.Fatalf("scheduler should be started then shut down, got started=%v shutdown=%v", scheduler.started, scheduler.shutdown)
	}
}

func TestServiceStartSchedulerFailureSkipsServer(t *testing.T) {
	server := &fakeTaskServer{}
	scheduler := &fakeScheduler{startErr: errors.New("cron invalid")}
	svc := &Service{server: server, scheduler: scheduler, mux: asynq.NewServeMux()}

	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("expected scheduler start error")
	}
	if scheduler.shutdown {
		t.Fatalf("scheduler that never started should not be shut down")
	}
}

func TestServiceStartWithoutScheduler(t *testing.T) {
	server := &fakeTaskServer{}
	svc := &Service{server: server, mux: asynq.NewServeMux()}

	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start without scheduler failed: %v", err)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if !server.shutdown {
		t.Fatalf("server should be shut down on stop")
	}
}
