package main

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/gilbertoneto04/betmanagerpro/model"
	"github.com/hamba/avro/v2"
)

type userEvent struct {
	Uid    string `avro:"uid"`
	Login  string `avro:"login"`
	Name   string `avro:"name"`
	RoleId int    `avro:"roleId"`
}

// notifyAsync sends notification to Kafka
func (svc *authSvc) notifyAsync(eventType string, e interface{}) {

	topic := "user_events"

	msg := kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(common.GenerateRandomString(10)),
		Value:          nil,
	}

	common.AppendKafkaHeader(&msg, "event", eventType)

	switch u := e.(type) {
	case User:
		common.AppendKafkaHeader(&msg, "entity", "User")

		switch eventType {
		case "UserCreated", "UserUpdated":
			// public attributes only, never credentials
			b, err := avro.Marshal(model.UserSchema, userEvent{
				Uid:    u.PublicId,
				Login:  u.Login,
				Name:   u.Name,
				RoleId: int(u.RoleID),
			})
			if err != nil {
				svc.logger.Errorf("failed to marshal User %s to avro", u.PublicId)
			}
			msg.Value = b
		}
	}

	if msg.Value != nil {
		err := svc.kafkaProducer.Produce(&msg, nil)
		if err != nil {
			svc.logger.Errorf("Failed to send event notification on %s", eventType)
			svc.logger.Error(err)
		}
	}
}
