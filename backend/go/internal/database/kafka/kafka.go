package kafka

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"newsgraph/backend/go/internal/config"
	"newsgraph/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaClient 持有一个管理连接，并按主题创建 Reader / Writer。
type KafkaClient struct {
	Conn   *kafka.Conn // 用于管理的连接
	Config *config.KafkaConfig
}

// NewClient 连接到 Kafka，并自动创建配置中尚不存在的主题。
func NewClient(cfg *config.KafkaConfig) (*KafkaClient, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("未配置 Kafka brokers")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka 初始化连接失败: %w", err)
	}

	if err := ensureTopics(conn, cfg.ArticleTopic, cfg.TripleTopic); err != nil {
		conn.Close()
		return nil, err
	}

	logger.New("kafka", "", "").WithField("brokers", cfg.Brokers).Info("成功初始化 Kafka 客户端")
	return &KafkaClient{Conn: conn, Config: cfg}, nil
}

func ensureTopics(conn *kafka.Conn, topics ...string) error {
	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
	}
	existing := make(map[string]struct{}, len(partitions))
	for _, p := range partitions {
		existing[p.Topic] = struct{}{}
	}

	var toCreate []kafka.TopicConfig
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if _, ok := existing[topic]; ok {
			continue
		}
		toCreate = append(toCreate, kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	if len(toCreate) == 0 {
		return nil
	}

	// 主题只能在 controller 上创建。
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("无法获取 Kafka controller: %w", err)
	}
	cconn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("连接 Kafka controller 失败: %w", err)
	}
	defer cconn.Close()

	if err := cconn.CreateTopics(toCreate...); err != nil {
		return fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
	}
	logger.New("kafka", "", "").WithField("count", len(toCreate)).Info("已创建 Kafka 主题")
	return nil
}

// NewWriter 为指定主题创建一个 Writer。
func (c *KafkaClient) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}
}

// NewReader 为指定主题创建一个消费者组 Reader。
func (c *KafkaClient) NewReader(topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.Config.Brokers,
		GroupID:     c.Config.GroupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxAttempts: 10,
		Dialer:      &kafka.Dialer{Timeout: 10 * time.Second},
	})
}

// Close 关闭管理连接。
func (c *KafkaClient) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	if err := c.Conn.Close(); err != nil {
		return fmt.Errorf("关闭 Kafka 管理连接失败: %w", err)
	}
	return nil
}

// HealthCheck 检查 Kafka 连接的健康状况。
func (c *KafkaClient) HealthCheck(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka 客户端未初始化，无法进行健康检查")
	}
	_, err := c.Conn.Controller()
	return err
}
