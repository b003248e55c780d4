package lib

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig() kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         "hmsProducer",
		"acks":              "all",
	}
}

var kafkaProducer *kafka.Producer

// NewKafkaProducer replaces the shared producer. Used by tests.
func NewKafkaProducer(p *kafka.Producer) {
	kafkaProducer = p
}

func getKafkaProducer(clientId string) (*kafka.Producer, error) {
	if kafkaProducer != nil {
		return kafkaProducer, nil
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	})
	if err != nil {
		log.Printf("Error on producer: %s\n", err.Error())
		return nil, err
	}
	kafkaProducer = p
	return p, nil
}

func KafkaProduceMessage(clientId string, topic string, payload map[string]any) error {
	p, err := getKafkaProducer(clientId)
	if err != nil {
		return err
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error serializing payload: %s\n", err.Error())
		return err
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("Error producing to %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

func KafkaCreateTopics(topics ...string) error {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return err
	}
	defer a.Close()
	specs := make([]kafka.TopicSpecification, 0, len(topics))
	for _, t := range topics {
		specs = append(specs, kafka.TopicSpecification{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	results, err := a.CreateTopics(context.Background(), specs)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return err
	}
	for _, r := range results {
		log.Printf("Topic %s: %s\n", r.Topic, r.Error.String())
	}
	return nil
}
