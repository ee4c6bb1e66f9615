package main

import (
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/gilbertoneto04/betmanagerpro/model"
	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/hamba/avro/v2"
)

// Event payloads carry only public attributes, never credentials
type taskEvent struct {
	Tid         string `avro:"tid"`
	Type        string `avro:"type"`
	House       string `avro:"house"`
	AccountName string `avro:"accountName"`
	Status      string `avro:"status"`
}

type accountEvent struct {
	Aid    string `avro:"aid"`
	Name   string `avro:"name"`
	House  string `avro:"house"`
	Status string `avro:"status"`
}

type packEvent struct {
	Pid       string `avro:"pid"`
	House     string `avro:"house"`
	Quantity  int    `avro:"quantity"`
	Delivered int    `avro:"delivered"`
	Status    string `avro:"status"`
}

type userEvent struct {
	Uid    string `avro:"uid"`
	Login  string `avro:"login"`
	Name   string `avro:"name"`
	RoleId int    `avro:"roleId"`
}

// notifyAsync publishes a change event to Kafka so every connected client
// can refresh its snapshot. Notification failures never fail the operation
// they describe.
func (svc *dashSvc) notifyAsync(eventType string, e interface{}) {
	if svc.kafkaProducer == nil {
		return
	}

	topic := "dashboard_events"

	msg := kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(common.GenerateRandomString(10)),
		Value:          nil,
	}

	common.AppendKafkaHeader(&msg, "event", eventType)

	var b []byte
	var err error
	switch v := e.(type) {
	case Task:
		common.AppendKafkaHeader(&msg, "entity", "Task")
		b, err = avro.Marshal(model.TaskSchema, taskEvent{
			Tid:         v.PublicId,
			Type:        v.Type,
			House:       v.House,
			AccountName: v.AccountName,
			Status:      string(v.Status),
		})
	case Account:
		common.AppendKafkaHeader(&msg, "entity", "Account")
		b, err = avro.Marshal(model.AccountSchema, accountEvent{
			Aid:    v.PublicId,
			Name:   v.Name,
			House:  v.House,
			Status: string(v.Status),
		})
	case Pack:
		common.AppendKafkaHeader(&msg, "entity", "Pack")
		b, err = avro.Marshal(model.PackSchema, packEvent{
			Pid:       v.PublicId,
			House:     v.House,
			Quantity:  v.Quantity,
			Delivered: v.Delivered,
			Status:    string(v.Status),
		})
	}
	if err != nil {
		svc.logger.Errorf("Failed to marshal %s payload to avro", eventType)
		return
	}
	msg.Value = b

	if msg.Value != nil {
		err := svc.kafkaProducer.Produce(&msg, nil)
		if err != nil {
			svc.logger.Errorf("Failed to send event notification on %s", eventType)
			svc.logger.Error(err)
		}
	}
}

// startReadingNotification consumes user_events from the Auth service and
// keeps the local user table in sync
func (svc *dashSvc) startReadingNotification(abortCh <-chan bool) {
	defer func() {
		_ = svc.kafkaConsumer.Close()
	}()

	run := true
	runMx := &sync.Mutex{}

	go func() {
		for run {
			msg, err := svc.kafkaConsumer.ReadMessage(time.Second)
			if err != nil {
				if err.(kafka.Error).IsTimeout() {
					continue
				}
				svc.logger.Error(err)
				continue
			}

			eventType, err := common.GetKafkaHeader(msg, "event")
			if err != nil {
				svc.logger.Infof("missing event header in the message %s, skipping", msg.Key)
				continue
			}
			eventEntity, err := common.GetKafkaHeader(msg, "entity")
			if err != nil {
				svc.logger.Infof("missing entity header in the message %s, skipping", msg.Key)
				continue
			}
			if eventEntity != "User" {
				continue
			}

			switch eventType {
			case "UserCreated":
				var u userEvent
				err := avro.Unmarshal(model.UserSchema, msg.Value, &u)
				if err != nil {
					svc.logger.Errorf("Failed to process notification on %s: bad payload", eventType)
					continue
				}
				svc.syncUser(u)
			}
		}
	}()

	for {
		select {
		case <-abortCh:
			runMx.Lock()
			run = false
			runMx.Unlock()
			return
		}
	}
}

// syncUser upserts the local user row for an auth-side identity
func (svc *dashSvc) syncUser(u userEvent) {
	var existing User
	result := svc.db.First(&existing, "public_id = ?", u.Uid)
	if result.RowsAffected == 1 {
		existing.Login = u.Login
		existing.Name = u.Name
		existing.RoleID = schema.UserRole(u.RoleId)
		if err := svc.db.Save(&existing).Error; err != nil {
			svc.logger.Errorf("Failed to update user %s from notification", u.Uid)
		}
		return
	}

	user := User{
		PublicId: u.Uid,
		Login:    u.Login,
		Name:     u.Name,
		RoleID:   schema.UserRole(u.RoleId),
	}
	if err := svc.db.Create(&user).Error; err != nil {
		svc.logger.Errorf("Failed to create user %s based on notification", u.Uid)
		return
	}
	svc.logger.Infof("Created user %s based on notification", u.Uid)
}
