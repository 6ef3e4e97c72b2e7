package kafka

import (
	"Procura/internal/api/config"
	"Procura/internal/chat"
	"Procura/internal/pkg/es"
	"Procura/internal/repository"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	companyConsumer sarama.ConsumerGroup
	companyHandler  sarama.ConsumerGroupHandler

	deliveryConsumer sarama.ConsumerGroup
	deliveryHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	companyESRepo es.CompanyRepo,
	companyDBRepo repository.CompanyRepo,
	chatStore chat.Store,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	companyConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCompanyConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	companyHandler := NewCompanyHandler(companyESRepo, companyDBRepo)

	deliveryConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaDeliveryConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	deliveryHandler := NewDeliveryOrderHandler(chatStore, companyDBRepo)

	return &ConsumerManager{
		companyConsumer:  companyConsumer,
		companyHandler:   companyHandler,
		deliveryConsumer: deliveryConsumer,
		deliveryHandler:  deliveryHandler,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	// 启动 Company Consumer
	go func() {
		topic := cfg.KafkaCompanyConsumer.Topic
		log.Info("Company consumer started", "topic", topic)
		for {
			if err := m.companyConsumer.Consume(ctx, []string{topic}, m.companyHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	// 启动 Delivery Order Consumer
	go func() {
		topic := cfg.KafkaDeliveryConsumer.Topic
		log.Info("Delivery order consumer started", "topic", topic)
		for {
			if err := m.deliveryConsumer.Consume(ctx, []string{topic}, m.deliveryHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.companyConsumer.Close(); err != nil {
		log.Error("Failed to close company consumer", "err", err)
	}
	if err := m.deliveryConsumer.Close(); err != nil {
		log.Error("Failed to close delivery consumer", "err", err)
	}

	return nil
}
