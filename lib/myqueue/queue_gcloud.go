package myqueue

import (
	"context"
	"fmt"
	"log"
	"time"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	taskspb "cloud.google.com/go/cloudtasks/apiv2/cloudtaskspb"
	grpcCodes "google.golang.org/grpc/codes"
	grpcStatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const triggerDelay = 5 * time.Second

type gcloudTaskQueue struct {
	client    *cloudtasks.Client
	queueName string
}

func newGcloudQueue(c context.Context, opts Options) (TaskQueuer, func(), error) {
	cloudTaskClient, err := cloudtasks.NewClient(c)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating cloudtask-client: %s", err)
	}
	return &gcloudTaskQueue{
			client:    cloudTaskClient,
			queueName: composeQueueName(opts),
		}, func() {
			cloudTaskClient.Close()
		}, nil
}

func composeQueueName(opts Options) string {
	queueName := opts.QueueName
	if queueName == "" {
		queueName = "default"
	}
	return fmt.Sprintf("projects/%s/locations/%s/queues/%s", opts.ProjectID, opts.LocationID, queueName)
}

func (q *gcloudTaskQueue) Enqueue(c context.Context, task Task) error {
	taskName := fmt.Sprintf("%s/tasks/%s", q.queueName, task.UID)
	_, err := q.client.CreateTask(c, &taskspb.CreateTaskRequest{
		Parent: q.queueName,
		Task: &taskspb.Task{
			Name:         taskName, // de-duplicate
			ScheduleTime: timestamppb.New(time.Now().Add(triggerDelay)),
			MessageType: &taskspb.Task_AppEngineHttpRequest{
				AppEngineHttpRequest: &taskspb.AppEngineHttpRequest{
					HttpMethod:  taskspb.HttpMethod_PUT,
					RelativeUri: task.WebhookURLPath,
					Body:        task.Payload,
				},
			},
			View: taskspb.Task_FULL,
		},
	})
	if err != nil {
		rsp, ok := grpcStatus.FromError(err)
		if ok && rsp.Code() == grpcCodes.AlreadyExists {
			log.Printf("task %s already exists -> ignore", taskName)
			return nil
		}
		return fmt.Errorf("error submitting task to queue: %s", err)
	}
	return nil
}
